package extract

// BlockKind identifies the structural role of a Block.
type BlockKind int

const (
	Heading1 BlockKind = iota
	Heading2
	Paragraph
	BulletList
	Table
)

func (k BlockKind) String() string {
	switch k {
	case Heading1:
		return "h1"
	case Heading2:
		return "h2"
	case Paragraph:
		return "p"
	case BulletList:
		return "ul"
	case Table:
		return "table"
	}
	return "unknown"
}

// Block is one unit of extracted content. Text is set for headings and
// paragraphs, Items for bullet lists and Rows for tables.
type Block struct {
	Kind  BlockKind
	Text  string
	Items []string
	Rows  [][]string
}

// Columns returns the column count of a table block, or 0 for other kinds.
// Rows of a table block are always padded to this width.
func (b Block) Columns() int {
	n := 0
	for _, r := range b.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// Document is the title plus ordered blocks extracted from one page.
type Document struct {
	Title  string
	Blocks []Block
}

// newTableBlock drops rows whose cells are all empty and right-pads the
// survivors to the widest row. ok is false when no row survives.
func newTableBlock(rows [][]string) (Block, bool) {
	kept := make([][]string, 0, len(rows))
	width := 0
	for _, r := range rows {
		if allEmpty(r) {
			continue
		}
		kept = append(kept, r)
		if len(r) > width {
			width = len(r)
		}
	}
	if len(kept) == 0 {
		return Block{}, false
	}
	for i, r := range kept {
		for len(r) < width {
			r = append(r, "")
		}
		kept[i] = r
	}
	return Block{Kind: Table, Rows: kept}, true
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
