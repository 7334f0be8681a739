package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/evidencepdf/internal/extract"
)

func inspectableStyle() Style {
	st := DefaultStyle()
	st.Uncompressed = true
	return st
}

func tj(s string) string { return "(" + s + ") Tj" }

func writePDF(t *testing.T, doc extract.Document) ([]byte, Stats) {
	t.Helper()
	var buf bytes.Buffer
	stats, err := New(inspectableStyle()).Write(doc, &buf)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
	return buf.Bytes(), stats
}

// Blocks appear in the content stream in document order.
func TestWrite_EvidencePageInOrder(t *testing.T) {
	doc := extract.Document{
		Title: "Report X",
		Blocks: []extract.Block{
			{Kind: extract.Heading2, Text: "Summary"},
			{Kind: extract.Paragraph, Text: "All checks passed."},
			{Kind: extract.BulletList, Items: []string{"Check A", "Check B"}},
		},
	}
	out, stats := writePDF(t, doc)

	pos := -1
	for _, s := range []string{"Report X", "Summary", "All checks passed.", "Check A", "Check B"} {
		i := bytes.Index(out, []byte(tj(s)))
		if i < 0 {
			t.Fatalf("expected %q in output", s)
		}
		if i < pos {
			t.Fatalf("expected %q after the previous block", s)
		}
		pos = i
	}
	if bytes.Count(out, []byte(tj("\x95"))) != 2 {
		t.Fatalf("expected one bullet marker per item")
	}
	want := Stats{Pages: 1, Headings: 1, Paragraphs: 1, Lists: 1, Items: 2}
	if stats != want {
		t.Fatalf("expected stats %+v, got %+v", want, stats)
	}
}

// Heading1 blocks only ever feed the title.
func TestWrite_SkipsHeading1Blocks(t *testing.T) {
	doc := extract.Document{
		Title: "Title",
		Blocks: []extract.Block{
			{Kind: extract.Heading1, Text: "Hidden heading"},
			{Kind: extract.Paragraph, Text: "Visible"},
		},
	}
	out, stats := writePDF(t, doc)
	if bytes.Contains(out, []byte("Hidden heading")) {
		t.Fatalf("h1 blocks must not be rendered")
	}
	if stats.Headings != 0 || stats.Paragraphs != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestWrite_TitleOnlyDocument(t *testing.T) {
	out, stats := writePDF(t, extract.Document{Title: "fallback-name"})
	if !bytes.Contains(out, []byte(tj("fallback-name"))) {
		t.Fatalf("expected the title on page one")
	}
	if stats.Pages != 1 {
		t.Fatalf("expected a single page, got %d", stats.Pages)
	}
}

// An all-blank row never reaches the grid.
func TestWrite_TableRows(t *testing.T) {
	html := `<h1>T</h1><section class="card"><table>
	  <tr><th>Check</th><th>Result</th><th>Notes</th></tr>
	  <tr><td>lint</td><td>ok</td><td>clean</td></tr>
	  <tr><td></td><td> </td><td></td></tr>
	</table></section>`
	doc := extract.FromHTML([]byte(html), extract.Options{})
	out, stats := writePDF(t, doc)
	if stats.Tables != 1 || stats.Rows != 2 {
		t.Fatalf("expected one table with 2 rows, got %+v", stats)
	}
	for _, s := range []string{"Check", "Result", "Notes", "lint", "ok", "clean"} {
		if !bytes.Contains(out, []byte(tj(s))) {
			t.Fatalf("expected cell %q in output", s)
		}
	}
}

// The header row is drawn once on every page the table spans.
func TestWrite_LongTableRepeatsHeader(t *testing.T) {
	rows := [][]string{{"Name", "Result"}}
	for i := 0; i < 80; i++ {
		rows = append(rows, []string{fmt.Sprintf("check %02d", i), "pass"})
	}
	doc := extract.Document{Title: "Long", Blocks: []extract.Block{{Kind: extract.Table, Rows: rows}}}
	out, stats := writePDF(t, doc)
	if stats.Pages < 2 {
		t.Fatalf("expected the table to span pages, got %d", stats.Pages)
	}
	if got := bytes.Count(out, []byte(tj("Name"))); got != stats.Pages {
		t.Fatalf("expected header once per page (%d), got %d", stats.Pages, got)
	}
	if stats.Rows != 81 {
		t.Fatalf("expected 81 rows, got %d", stats.Rows)
	}
	for i := 0; i < 80; i++ {
		if !bytes.Contains(out, []byte(tj(fmt.Sprintf("check %02d", i)))) {
			t.Fatalf("row %d missing", i)
		}
	}
}

// A row taller than a page continues under a repeated header.
func TestWrite_RowTallerThanPageIsSplit(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("evidence ", 3000))
	doc := extract.Document{Title: "Tall", Blocks: []extract.Block{{Kind: extract.Table, Rows: [][]string{{"Head"}, {long}}}}}
	out, stats := writePDF(t, doc)
	if stats.Pages < 2 {
		t.Fatalf("expected the row to continue on another page, got %d pages", stats.Pages)
	}
	if got := bytes.Count(out, []byte(tj("Head"))); got != stats.Pages {
		t.Fatalf("expected header on each of %d pages, got %d", stats.Pages, got)
	}
}

// A table with more columns than the page can hold at minimum width must
// still finish rendering.
func TestWrite_VeryWideTableFinishes(t *testing.T) {
	for _, cols := range []int{41, 60, 120} {
		header := make([]string, cols)
		row := make([]string, cols)
		for i := range header {
			header[i] = fmt.Sprintf("h%02d", i)
			row[i] = fmt.Sprintf("value %d", i)
		}
		doc := extract.Document{Title: "Wide", Blocks: []extract.Block{{Kind: extract.Table, Rows: [][]string{header, row}}}}

		type result struct {
			stats Stats
			err   error
		}
		done := make(chan result, 1)
		go func() {
			stats, err := New(DefaultStyle()).Write(doc, &bytes.Buffer{})
			done <- result{stats, err}
		}()
		select {
		case res := <-done:
			if res.err != nil {
				t.Fatalf("cols=%d: write: %v", cols, res.err)
			}
			if res.stats.Tables != 1 || res.stats.Rows != 2 {
				t.Fatalf("cols=%d: unexpected stats %+v", cols, res.stats)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("cols=%d: write did not finish", cols)
		}
	}
}

func TestWrite_LongParagraphFlowsOntoNewPages(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("Lorem ipsum dolor sit amet. ", 1500))
	_, stats := writePDF(t, extract.Document{Title: "Flow", Blocks: []extract.Block{{Kind: extract.Paragraph, Text: text}}})
	if stats.Pages < 2 {
		t.Fatalf("expected multiple pages, got %d", stats.Pages)
	}
}

// A pinned creation date gives the same output twice.
func TestWrite_StableAcrossRuns(t *testing.T) {
	doc := extract.Document{
		Title: "Stable",
		Blocks: []extract.Block{
			{Kind: extract.Heading2, Text: "H"},
			{Kind: extract.Table, Rows: [][]string{{"a", "b"}, {"c", ""}}},
		},
	}
	r := New(DefaultStyle(), WithCreationDate(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	var a, b bytes.Buffer
	sa, err := r.Write(doc, &a)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	sb, err := r.Write(doc, &b)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if sa != sb || a.Len() != b.Len() {
		t.Fatalf("expected stable output: %+v/%d vs %+v/%d", sa, a.Len(), sb, b.Len())
	}
}

// Parent directories are created and a stale file is replaced.
func TestRender_CreatesParentsAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "deeper", "page.pdf")
	r := New(DefaultStyle())
	doc := extract.Document{Title: "T", Blocks: []extract.Block{{Kind: extract.Paragraph, Text: "body"}}}

	if _, err := r.Render(doc, out); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := os.WriteFile(out, []byte("stale"), 0o644); err != nil {
		t.Fatalf("write stale: %v", err)
	}
	if _, err := r.Render(doc, out); err != nil {
		t.Fatalf("re-render: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("expected the stale file to be replaced")
	}
	entries, err := os.ReadDir(filepath.Dir(out))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the PDF in the output dir, got %d entries", len(entries))
	}
}

// A failed rename removes the temporary file.
func TestRender_FailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "taken")
	if err := os.MkdirAll(filepath.Join(out, "child"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err := New(DefaultStyle()).Render(extract.Document{Title: "T"}, out)
	if err == nil {
		t.Fatalf("expected rename onto a non-empty directory to fail")
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file %s left behind", e.Name())
		}
	}
}

func TestWrite_MissingFontIsAnError(t *testing.T) {
	st := DefaultStyle()
	st.FontFile = filepath.Join(t.TempDir(), "missing.ttf")
	_, err := New(st).Write(extract.Document{Title: "T"}, &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected an error for a missing font file")
	}
}

// Each kind of bad setting is rejected with ErrInvalidStyle.
func TestStyle_Validate(t *testing.T) {
	if err := DefaultStyle().Validate(); err != nil {
		t.Fatalf("default style should validate: %v", err)
	}
	cases := map[string]func(*Style){
		"page size":      func(s *Style) { s.PageSize = "B7" },
		"negative":       func(s *Style) { s.MarginX = -1 },
		"huge margin":    func(s *Style) { s.MarginY = 6 },
		"zero body size": func(s *Style) { s.BodySize = 0 },
		"bad color":      func(s *Style) { s.GridColor = "grey" },
		"bullet gap":     func(s *Style) { s.BulletGap = 40 },
		"font file":      func(s *Style) { s.FontFile = "/nonexistent/font.ttf" },
	}
	for name, mutate := range cases {
		st := DefaultStyle()
		mutate(&st)
		if err := st.Validate(); !errors.Is(err, ErrInvalidStyle) {
			t.Fatalf("%s: expected ErrInvalidStyle, got %v", name, err)
		}
	}
}

// With several bad settings, the first in declaration order is reported.
func TestStyle_ValidateReportsFirstSetting(t *testing.T) {
	for i := 0; i < 20; i++ {
		st := DefaultStyle()
		st.TableLeading = 0
		st.TitleSize = 0
		st.BodySize = -1
		err := st.Validate()
		if !errors.Is(err, ErrInvalidStyle) || !strings.Contains(err.Error(), "titleSize") {
			t.Fatalf("expected titleSize to be reported, got %v", err)
		}
	}
	st := DefaultStyle()
	st.TableSpaceAfter = -1
	st.HeadingSpaceBefore = -1
	if err := st.Validate(); err == nil || !strings.Contains(err.Error(), "headingSpaceBefore") {
		t.Fatalf("expected headingSpaceBefore to be reported, got %v", err)
	}
}

// Non-zero overrides win; everything else keeps its default.
func TestStyle_Merge(t *testing.T) {
	st := DefaultStyle().Merge(Style{PageSize: "A4", BodySize: 11, Uncompressed: true})
	if st.PageSize != "A4" || st.BodySize != 11 || !st.Uncompressed {
		t.Fatalf("expected overrides applied, got %+v", st)
	}
	if st.MarginX != 0.85 || st.FontFamily != "Helvetica" {
		t.Fatalf("expected defaults kept, got %+v", st)
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("merged style should validate: %v", err)
	}
}
