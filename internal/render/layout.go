package render

import (
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/evidencepdf/internal/extract"
)

// layout flows blocks top to bottom, starting a new page whenever the next
// line would cross the bottom margin.
type layout struct {
	pdf    *gofpdf.Fpdf
	st     Style
	enc    textEncoder
	family string
	bullet string
	grid   rgb
	fill   rgb

	left, top, bottom float64
	width             float64
	stats             Stats
}

func newLayout(pdf *gofpdf.Fpdf, st Style, enc textEncoder) *layout {
	pageW, pageH := pdf.GetPageSize()
	l := &layout{
		pdf:    pdf,
		st:     st,
		enc:    enc,
		family: st.FontFamily,
		bullet: enc("•"),
		left:   st.MarginX * 72,
		top:    st.MarginY * 72,
		bottom: pageH - st.MarginY*72,
		width:  pageW - 2*st.MarginX*72,
	}
	if st.FontFile != "" {
		l.family = utf8Family
	}
	// Validate has already rejected bad colors; black is the fallback.
	l.grid, _ = parseColor(st.GridColor)
	l.fill, _ = parseColor(st.HeaderFill)
	return l
}

func (l *layout) font(style string, size float64) {
	l.pdf.SetFont(l.family, style, size)
}

func (l *layout) atTop() bool { return l.pdf.GetY() <= l.top+0.01 }

func (l *layout) newPage() {
	l.pdf.AddPage()
	l.pdf.SetY(l.top)
}

// ensure starts a new page unless h more points fit on the current one.
// Content taller than a whole page is placed at the top and overflows.
func (l *layout) ensure(h float64) {
	if l.pdf.GetY()+h > l.bottom && !l.atTop() {
		l.newPage()
	}
}

// space adds vertical gap. It is dropped at the top of a page and where it
// would cross the bottom margin.
func (l *layout) space(h float64) {
	if h <= 0 || l.atTop() {
		return
	}
	y := l.pdf.GetY() + h
	if y >= l.bottom {
		l.newPage()
		return
	}
	l.pdf.SetY(y)
}

func (l *layout) lines(lines []string, x, w, leading float64, align string) {
	for _, line := range lines {
		l.ensure(leading)
		l.pdf.SetX(x)
		l.pdf.CellFormat(w, leading, line, "", 1, align, false, 0, "")
	}
}

// wrap breaks encoded text into lines no wider than w under the current
// font. Words longer than w are split. Text is already normalized, so words
// are separated by single ASCII spaces; encoded bytes are never reinterpreted
// as UTF-8 whitespace.
func (l *layout) wrap(s string, w float64) []string {
	var out []string
	line := ""
	for _, word := range strings.Split(s, " ") {
		if word == "" {
			continue
		}
		cand := word
		if line != "" {
			cand = line + " " + word
		}
		if l.pdf.GetStringWidth(cand) <= w {
			line = cand
			continue
		}
		if line != "" {
			out = append(out, line)
		}
		line = ""
		for word != "" && l.pdf.GetStringWidth(word) > w {
			head, rest := l.splitWord(word, w)
			out = append(out, head)
			word = rest
		}
		line = word
	}
	if line != "" {
		out = append(out, line)
	}
	return out
}

// splitWord returns the longest prefix of word that fits in w (at least one
// character) and the remainder.
func (l *layout) splitWord(word string, w float64) (string, string) {
	cut := 0
	for i := range word {
		if i == 0 {
			continue
		}
		if l.pdf.GetStringWidth(word[:i]) > w {
			break
		}
		cut = i
	}
	if cut == 0 {
		_, cut = utf8.DecodeRuneInString(word)
	}
	return word[:cut], word[cut:]
}

func (l *layout) title(text string) {
	l.font("B", l.st.TitleSize)
	l.lines(l.wrap(l.enc(text), l.width), l.left, l.width, l.st.TitleLeading, "C")
	l.space(l.st.TitleSpaceAfter)
}

func (l *layout) block(b extract.Block) {
	switch b.Kind {
	case extract.Heading1:
		// The page title already carries the top-level heading.
	case extract.Heading2:
		l.heading(b.Text)
	case extract.Paragraph:
		l.paragraph(b.Text)
	case extract.BulletList:
		l.list(b.Items)
	case extract.Table:
		l.table(b)
	}
}

func (l *layout) heading(text string) {
	l.space(l.st.HeadingSpaceBefore)
	l.font("B", l.st.HeadingSize)
	lines := l.wrap(l.enc(text), l.width)
	// keep the heading with the first line of what follows
	l.ensure(float64(len(lines))*l.st.HeadingLeading + l.st.HeadingSpaceAfter + l.st.BodyLeading)
	l.lines(lines, l.left, l.width, l.st.HeadingLeading, "L")
	l.space(l.st.HeadingSpaceAfter)
	l.stats.Headings++
}

func (l *layout) paragraph(text string) {
	l.font("", l.st.BodySize)
	l.lines(l.wrap(l.enc(text), l.width), l.left, l.width, l.st.BodyLeading, "L")
	l.space(l.st.ParagraphSpaceAfter)
	l.stats.Paragraphs++
}

func (l *layout) list(items []string) {
	if len(items) == 0 {
		return
	}
	l.font("", l.st.BodySize)
	x := l.left + l.st.ListIndent
	w := l.width - l.st.ListIndent
	for i, item := range items {
		if i > 0 {
			l.space(l.st.ItemSpacing)
		}
		lines := l.wrap(l.enc(item), w)
		if len(lines) == 0 {
			continue
		}
		l.ensure(l.st.BodyLeading)
		y := l.pdf.GetY()
		l.pdf.SetXY(x-l.st.BulletGap, y)
		l.pdf.CellFormat(l.st.BulletGap, l.st.BodyLeading, l.bullet, "", 0, "L", false, 0, "")
		l.pdf.SetY(y)
		l.lines(lines, x, w, l.st.BodyLeading, "L")
		l.stats.Items++
	}
	l.space(l.st.ListSpaceAfter)
	l.stats.Lists++
}
