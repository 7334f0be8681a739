// Package render lays out an extracted evidence Document as a paginated PDF.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/evidencepdf/internal/extract"
)

// utf8Family is the family name registered for embedded TrueType fonts.
const utf8Family = "evidence"

// Stats counts what was laid out for one document. Rows excludes header rows
// repeated on continuation pages.
type Stats struct {
	Pages      int
	Headings   int
	Paragraphs int
	Lists      int
	Items      int
	Tables     int
	Rows       int
}

// Renderer writes Documents as PDF using a fixed Style.
type Renderer struct {
	style   Style
	creator string
	created time.Time
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithCreator sets the PDF Creator metadata.
func WithCreator(creator string) Option {
	return func(r *Renderer) { r.creator = creator }
}

// WithCreationDate pins the PDF creation date, making output reproducible.
func WithCreationDate(t time.Time) Option {
	return func(r *Renderer) { r.created = t }
}

// New returns a Renderer for style. The style should already be validated.
func New(style Style, opts ...Option) *Renderer {
	r := &Renderer{style: style, creator: "evidencepdf"}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render writes doc to outPath. Parent directories are created and an
// existing file is replaced. The PDF is written to a temporary file next to
// outPath and renamed into place, so a failed render leaves nothing behind.
func (r *Renderer) Render(doc extract.Document, outPath string) (Stats, error) {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("mkdir output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outPath)+".*.tmp")
	if err != nil {
		return Stats{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	stats, err := r.Write(doc, tmp)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return stats, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return stats, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return stats, fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return stats, fmt.Errorf("rename output: %w", err)
	}
	return stats, nil
}

// Write lays out doc and writes the finished PDF to w.
func (r *Renderer) Write(doc extract.Document, w io.Writer) (Stats, error) {
	pdf, enc := r.newPDF(doc.Title)
	l := newLayout(pdf, r.style, enc)
	if pdf.Ok() {
		l.title(doc.Title)
		for _, b := range doc.Blocks {
			l.block(b)
		}
	}
	if err := pdf.Error(); err != nil {
		return l.stats, fmt.Errorf("layout: %w", err)
	}
	l.stats.Pages = pdf.PageNo()
	if err := pdf.Output(w); err != nil {
		return l.stats, fmt.Errorf("write pdf: %w", err)
	}
	return l.stats, nil
}

func (r *Renderer) newPDF(title string) (*gofpdf.Fpdf, textEncoder) {
	st := r.style
	pdf := gofpdf.New("P", "pt", st.PageSize, "")
	pdf.SetMargins(st.MarginX*72, st.MarginY*72, st.MarginX*72)
	// Page breaks are placed by the layout, which knows about headers and
	// keep-with-next.
	pdf.SetAutoPageBreak(false, st.MarginY*72)
	pdf.SetCompression(!st.Uncompressed)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(title, true)
	pdf.SetCreator(r.creator, true)
	if !r.created.IsZero() {
		pdf.SetCreationDate(r.created)
	}

	enc := textEncoder(cp1252)
	if st.FontFile != "" {
		pdf.AddUTF8Font(utf8Family, "", st.FontFile)
		bold := st.BoldFontFile
		if bold == "" {
			bold = st.FontFile
		}
		pdf.AddUTF8Font(utf8Family, "B", bold)
		enc = passthrough
	}
	pdf.AddPage()
	return pdf, enc
}
