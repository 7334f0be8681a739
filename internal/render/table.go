package render

import "github.com/hyperifyio/evidencepdf/internal/extract"

// table draws a bordered grid whose first row is the header: bold text on a
// filled background, repeated at the top of each continuation page. Rows
// that do not fit move to the next page; rows taller than a page are split.
func (l *layout) table(b extract.Block) {
	if len(b.Rows) == 0 {
		return
	}
	cells := make([][]string, len(b.Rows))
	for i, r := range b.Rows {
		enc := make([]string, len(r))
		for j, c := range r {
			enc[j] = l.enc(c)
		}
		cells[i] = enc
	}
	widths := l.columnWidths(cells, b.Columns())

	header := l.wrapRow(cells[0], widths, true)
	// keep the header with at least one line of the first body row
	need := l.rowHeight(header)
	if len(cells) > 1 {
		need += l.st.TableLeading + 2*l.st.CellPaddingY
	}
	l.ensure(need)
	l.drawRow(header, widths, true)
	l.stats.Rows++

	bodyTop := l.pdf.GetY()
	for _, r := range cells[1:] {
		l.bodyRow(l.wrapRow(r, widths, false), widths, header, &bodyTop)
		l.stats.Rows++
	}
	l.space(l.st.TableSpaceAfter)
	l.stats.Tables++
}

func (l *layout) bodyRow(lines [][]string, widths []float64, header [][]string, bodyTop *float64) {
	for {
		avail := l.bottom - l.pdf.GetY()
		if l.rowHeight(lines) <= avail {
			l.drawRow(lines, widths, false)
			return
		}
		if l.pdf.GetY() > *bodyTop+0.01 {
			l.continueTable(header, widths, bodyTop)
			continue
		}
		fit := int((avail - 2*l.st.CellPaddingY) / l.st.TableLeading)
		if fit < 1 {
			fit = 1
		}
		head, rest := splitRow(lines, fit)
		l.drawRow(head, widths, false)
		if maxLines(rest) == 0 {
			return
		}
		lines = rest
		l.continueTable(header, widths, bodyTop)
	}
}

func (l *layout) continueTable(header [][]string, widths []float64, bodyTop *float64) {
	l.newPage()
	l.drawRow(header, widths, true)
	*bodyTop = l.pdf.GetY()
}

// columnWidths sizes columns to their widest cell, scaling down
// proportionally when the table is wider than the content area.
func (l *layout) columnWidths(cells [][]string, cols int) []float64 {
	padX := 2 * l.st.CellPaddingX
	natural := make([]float64, cols)
	for ri, r := range cells {
		l.tableFont(ri == 0)
		for i, c := range r {
			if w := l.pdf.GetStringWidth(c) + padX; w > natural[i] {
				natural[i] = w
			}
		}
	}
	minW := padX + 2*l.st.TableSize
	total := 0.0
	for i := range natural {
		if natural[i] < minW {
			natural[i] = minW
		}
		total += natural[i]
	}
	if total <= l.width {
		return natural
	}
	out := make([]float64, cols)
	fixed := minW * float64(cols)
	if fixed >= l.width {
		// Too many columns for the page: share the width equally, but keep
		// room for the padding and one point of text.
		w := max(l.width/float64(cols), padX+1)
		for i := range out {
			out[i] = w
		}
		return out
	}
	spare := l.width - fixed
	extra := total - fixed
	for i := range out {
		out[i] = minW + spare*(natural[i]-minW)/extra
	}
	return out
}

func (l *layout) tableFont(header bool) {
	if header {
		l.font("B", l.st.TableSize)
		return
	}
	l.font("", l.st.TableSize)
}

func (l *layout) wrapRow(cells []string, widths []float64, header bool) [][]string {
	l.tableFont(header)
	out := make([][]string, len(widths))
	for i := range widths {
		if i < len(cells) {
			out[i] = l.wrap(cells[i], max(widths[i]-2*l.st.CellPaddingX, 1))
		}
	}
	return out
}

func (l *layout) rowHeight(lines [][]string) float64 {
	n := maxLines(lines)
	if n == 0 {
		n = 1
	}
	return float64(n)*l.st.TableLeading + 2*l.st.CellPaddingY
}

func (l *layout) drawRow(lines [][]string, widths []float64, header bool) {
	y := l.pdf.GetY()
	h := l.rowHeight(lines)
	style := "D"
	if header {
		style = "FD"
	}
	l.tableFont(header)
	l.pdf.SetLineWidth(l.st.GridLineWidth)
	l.pdf.SetDrawColor(l.grid.r, l.grid.g, l.grid.b)
	l.pdf.SetFillColor(l.fill.r, l.fill.g, l.fill.b)
	x := l.left
	for i, w := range widths {
		l.pdf.Rect(x, y, w, h, style)
		for j, line := range lines[i] {
			l.pdf.SetXY(x+l.st.CellPaddingX, y+l.st.CellPaddingY+float64(j)*l.st.TableLeading)
			l.pdf.CellFormat(w-2*l.st.CellPaddingX, l.st.TableLeading, line, "", 0, "L", false, 0, "")
		}
		x += w
	}
	l.pdf.SetXY(l.left, y+h)
}

func maxLines(lines [][]string) int {
	n := 0
	for _, c := range lines {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}

// splitRow cuts every cell after its first n lines.
func splitRow(lines [][]string, n int) (head, rest [][]string) {
	head = make([][]string, len(lines))
	rest = make([][]string, len(lines))
	for i, c := range lines {
		k := n
		if k > len(c) {
			k = len(c)
		}
		head[i] = c[:k]
		rest[i] = c[k:]
	}
	return head, rest
}
