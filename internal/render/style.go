package render

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidStyle is wrapped by every Style validation failure.
var ErrInvalidStyle = errors.New("invalid style")

// pageSizes are the page names gofpdf knows, mapped to width x height in points.
var pageSizes = map[string][2]float64{
	"letter": {612, 792},
	"legal":  {612, 1008},
	"a3":     {841.89, 1190.55},
	"a4":     {595.28, 841.89},
	"a5":     {420.94, 595.28},
}

// Style holds the typographic settings of the rendered PDF. Lengths are in
// points except the margins, which are in inches. Zero values mean "use the
// default" when merged over DefaultStyle.
type Style struct {
	PageSize string  `yaml:"pageSize" json:"pageSize"`
	MarginX  float64 `yaml:"marginX" json:"marginX"`
	MarginY  float64 `yaml:"marginY" json:"marginY"`

	// FontFamily names a core PDF font. When FontFile is set the regular
	// and bold TrueType files are embedded instead and text is written as
	// UTF-8.
	FontFamily   string `yaml:"fontFamily" json:"fontFamily"`
	FontFile     string `yaml:"fontFile" json:"fontFile"`
	BoldFontFile string `yaml:"boldFontFile" json:"boldFontFile"`

	TitleSize       float64 `yaml:"titleSize" json:"titleSize"`
	TitleLeading    float64 `yaml:"titleLeading" json:"titleLeading"`
	TitleSpaceAfter float64 `yaml:"titleSpaceAfter" json:"titleSpaceAfter"`

	HeadingSize        float64 `yaml:"headingSize" json:"headingSize"`
	HeadingLeading     float64 `yaml:"headingLeading" json:"headingLeading"`
	HeadingSpaceBefore float64 `yaml:"headingSpaceBefore" json:"headingSpaceBefore"`
	HeadingSpaceAfter  float64 `yaml:"headingSpaceAfter" json:"headingSpaceAfter"`

	BodySize            float64 `yaml:"bodySize" json:"bodySize"`
	BodyLeading         float64 `yaml:"bodyLeading" json:"bodyLeading"`
	ParagraphSpaceAfter float64 `yaml:"paragraphSpaceAfter" json:"paragraphSpaceAfter"`

	ListIndent     float64 `yaml:"listIndent" json:"listIndent"`
	BulletGap      float64 `yaml:"bulletGap" json:"bulletGap"`
	ItemSpacing    float64 `yaml:"itemSpacing" json:"itemSpacing"`
	ListSpaceAfter float64 `yaml:"listSpaceAfter" json:"listSpaceAfter"`

	TableSize       float64 `yaml:"tableSize" json:"tableSize"`
	TableLeading    float64 `yaml:"tableLeading" json:"tableLeading"`
	CellPaddingX    float64 `yaml:"cellPaddingX" json:"cellPaddingX"`
	CellPaddingY    float64 `yaml:"cellPaddingY" json:"cellPaddingY"`
	GridLineWidth   float64 `yaml:"gridLineWidth" json:"gridLineWidth"`
	GridColor       string  `yaml:"gridColor" json:"gridColor"`
	HeaderFill      string  `yaml:"headerFill" json:"headerFill"`
	TableSpaceAfter float64 `yaml:"tableSpaceAfter" json:"tableSpaceAfter"`

	// Uncompressed disables content stream compression. Useful for
	// inspecting output.
	Uncompressed bool `yaml:"uncompressed" json:"uncompressed"`
}

// DefaultStyle is a plain, print-friendly Letter layout.
func DefaultStyle() Style {
	return Style{
		PageSize:   "Letter",
		MarginX:    0.85,
		MarginY:    0.8,
		FontFamily: "Helvetica",

		TitleSize:       18,
		TitleLeading:    22,
		TitleSpaceAfter: 18,

		HeadingSize:        12.8,
		HeadingLeading:     16,
		HeadingSpaceBefore: 10,
		HeadingSpaceAfter:  6,

		BodySize:            10.5,
		BodyLeading:         14,
		ParagraphSpaceAfter: 6,

		ListIndent:     18,
		BulletGap:      10,
		ItemSpacing:    3,
		ListSpaceAfter: 6,

		TableSize:       10,
		TableLeading:    12,
		CellPaddingX:    6,
		CellPaddingY:    4,
		GridLineWidth:   0.5,
		GridColor:       "#d3d3d3",
		HeaderFill:      "#f5f5f5",
		TableSpaceAfter: 10,
	}
}

// Merge returns s with every non-zero field of o copied over it.
func (s Style) Merge(o Style) Style {
	str := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	num := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	str(&s.PageSize, o.PageSize)
	num(&s.MarginX, o.MarginX)
	num(&s.MarginY, o.MarginY)
	str(&s.FontFamily, o.FontFamily)
	str(&s.FontFile, o.FontFile)
	str(&s.BoldFontFile, o.BoldFontFile)
	num(&s.TitleSize, o.TitleSize)
	num(&s.TitleLeading, o.TitleLeading)
	num(&s.TitleSpaceAfter, o.TitleSpaceAfter)
	num(&s.HeadingSize, o.HeadingSize)
	num(&s.HeadingLeading, o.HeadingLeading)
	num(&s.HeadingSpaceBefore, o.HeadingSpaceBefore)
	num(&s.HeadingSpaceAfter, o.HeadingSpaceAfter)
	num(&s.BodySize, o.BodySize)
	num(&s.BodyLeading, o.BodyLeading)
	num(&s.ParagraphSpaceAfter, o.ParagraphSpaceAfter)
	num(&s.ListIndent, o.ListIndent)
	num(&s.BulletGap, o.BulletGap)
	num(&s.ItemSpacing, o.ItemSpacing)
	num(&s.ListSpaceAfter, o.ListSpaceAfter)
	num(&s.TableSize, o.TableSize)
	num(&s.TableLeading, o.TableLeading)
	num(&s.CellPaddingX, o.CellPaddingX)
	num(&s.CellPaddingY, o.CellPaddingY)
	num(&s.GridLineWidth, o.GridLineWidth)
	str(&s.GridColor, o.GridColor)
	str(&s.HeaderFill, o.HeaderFill)
	num(&s.TableSpaceAfter, o.TableSpaceAfter)
	if o.Uncompressed {
		s.Uncompressed = true
	}
	return s
}

// Validate reports the first unusable setting.
func (s Style) Validate() error {
	size, ok := pageSizes[strings.ToLower(s.PageSize)]
	if !ok {
		return fmt.Errorf("%w: unknown page size %q", ErrInvalidStyle, s.PageSize)
	}
	if s.MarginX < 0 || s.MarginY < 0 {
		return fmt.Errorf("%w: negative margin", ErrInvalidStyle)
	}
	if s.MarginX*2*72 >= size[0] || s.MarginY*2*72 >= size[1] {
		return fmt.Errorf("%w: margins leave no room on %s", ErrInvalidStyle, s.PageSize)
	}
	if strings.TrimSpace(s.FontFamily) == "" && s.FontFile == "" {
		return fmt.Errorf("%w: font family is required", ErrInvalidStyle)
	}
	for _, f := range []string{s.FontFile, s.BoldFontFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("%w: font file: %v", ErrInvalidStyle, err)
		}
	}
	type setting struct {
		name string
		v    float64
	}
	positive := []setting{
		{"titleSize", s.TitleSize}, {"titleLeading", s.TitleLeading},
		{"headingSize", s.HeadingSize}, {"headingLeading", s.HeadingLeading},
		{"bodySize", s.BodySize}, {"bodyLeading", s.BodyLeading},
		{"tableSize", s.TableSize}, {"tableLeading", s.TableLeading},
	}
	for _, f := range positive {
		if f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidStyle, f.name)
		}
	}
	nonNegative := []setting{
		{"titleSpaceAfter", s.TitleSpaceAfter}, {"headingSpaceBefore", s.HeadingSpaceBefore},
		{"headingSpaceAfter", s.HeadingSpaceAfter}, {"paragraphSpaceAfter", s.ParagraphSpaceAfter},
		{"listIndent", s.ListIndent}, {"bulletGap", s.BulletGap}, {"itemSpacing", s.ItemSpacing},
		{"listSpaceAfter", s.ListSpaceAfter}, {"cellPaddingX", s.CellPaddingX},
		{"cellPaddingY", s.CellPaddingY}, {"gridLineWidth", s.GridLineWidth},
		{"tableSpaceAfter", s.TableSpaceAfter},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidStyle, f.name)
		}
	}
	if s.BulletGap > s.ListIndent {
		return fmt.Errorf("%w: bulletGap exceeds listIndent", ErrInvalidStyle)
	}
	for _, c := range []string{s.GridColor, s.HeaderFill} {
		if _, err := parseColor(c); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidStyle, err)
		}
	}
	return nil
}

type rgb struct{ r, g, b int }

// parseColor accepts "#rrggbb" or "rrggbb".
func parseColor(s string) (rgb, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return rgb{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("color %q: %w", s, err)
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, nil
}
