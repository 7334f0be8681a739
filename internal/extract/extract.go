package extract

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// The qualifying container used when Options leaves it unset.
const (
	DefaultContainerTag   = "section"
	DefaultContainerClass = "card"
)

// Options selects the qualifying container and the title used when the page
// has no top-level heading.
type Options struct {
	ContainerTag   string
	ContainerClass string
	FallbackTitle  string
}

func (o Options) withDefaults() Options {
	if o.ContainerTag == "" {
		o.ContainerTag = DefaultContainerTag
	}
	if o.ContainerClass == "" {
		o.ContainerClass = DefaultContainerClass
	}
	o.ContainerTag = strings.ToLower(o.ContainerTag)
	return o
}

// FromHTML extracts the title and content blocks of an evidence page. Only
// descendants of the first <section class="card"> (or the configured
// container) become blocks; the first <h1> anywhere sets the title.
// Malformed input never fails: whatever was captured before the scan ended
// is returned.
func FromHTML(input []byte, opts Options) Document {
	return FromReader(bytes.NewReader(input), opts)
}

// FromReader is FromHTML over a stream. Read errors end the scan the same
// way EOF does.
func FromReader(r io.Reader, opts Options) Document {
	p := newParser(opts.withDefaults())
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			p.finish()
			return p.document()
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			class := ""
			if hasAttr && tag == p.opts.ContainerTag {
				class = classAttr(z)
			}
			p.start(tag, class)
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				p.text(" ")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			p.end(string(name))
		case html.TextToken:
			p.text(string(z.Text()))
		}
	}
}

func classAttr(z *html.Tokenizer) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}

func hasClass(attr, want string) bool {
	for _, c := range strings.Fields(attr) {
		if c == want {
			return true
		}
	}
	return false
}

// skipped elements never contribute text, inside or outside the scope.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// blockStarts implicitly close an open heading or paragraph capture.
var blockStarts = map[string]bool{
	"h1":    true,
	"h2":    true,
	"p":     true,
	"ul":    true,
	"table": true,
}

// breaks separate words when they appear inside a list item or table cell.
var breaks = map[string]bool{
	"p": true, "div": true, "ul": true, "ol": true, "li": true,
	"table": true, "tr": true, "th": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// mode is the single active capture target.
type mode int

const (
	modeIdle mode = iota
	modeText       // h1, h2 or p; tag holds which
	modeList       // inside <ul>, between items
	modeItem       // inside <li>
	modeTable      // inside <table>, between rows
	modeRow        // inside <tr>, between cells
	modeCell       // inside <th> or <td>
)

type capture struct {
	mode mode
	tag  string
	// nest counts same-kind containers opened inside an item or cell
	// (a <ul> in an <li>, a <table> in a <td>); their text joins the outer
	// item or cell.
	nest  int
	buf   strings.Builder
	items []string
	rows  [][]string
	row   []string
}

type parser struct {
	opts   Options
	title  string
	blocks []Block
	depth  int
	closed bool
	skip   int
	cap    capture

	// heading is the title capture. It runs beside cap so the first <h1>
	// sets the title wherever it appears, even inside a list or table.
	heading titleCapture
}

type titleCapture struct {
	open bool
	buf  strings.Builder
}

func newParser(opts Options) *parser {
	return &parser{opts: opts}
}

func (p *parser) inScope() bool { return p.depth > 0 }

func (p *parser) start(tag, class string) {
	if skipped[tag] {
		p.skip++
		return
	}
	if p.skip > 0 {
		return
	}
	if tag == "br" {
		p.text(" ")
		return
	}
	if tag == p.opts.ContainerTag {
		if p.depth > 0 {
			p.depth++
		} else if !p.closed && hasClass(class, p.opts.ContainerClass) {
			p.depth = 1
		}
		return
	}

	if p.heading.open {
		if !blockStarts[tag] {
			return
		}
		p.endTitle()
	}
	if tag == "h1" && p.title == "" {
		if p.cap.mode == modeText {
			p.flushText()
		}
		p.heading.open = true
		p.heading.buf.Reset()
		return
	}

	switch p.cap.mode {
	case modeItem, modeCell:
		if breaks[tag] {
			p.cap.buf.WriteByte(' ')
		}
	}

	switch p.cap.mode {
	case modeItem:
		switch {
		case tag == "ul":
			p.cap.nest++
		case tag == "li" && p.cap.nest == 0:
			p.endItem()
			p.beginCapture(modeItem, tag)
		}
		return
	case modeCell:
		switch {
		case tag == "table":
			p.cap.nest++
		case p.cap.nest > 0:
		case tag == "th" || tag == "td":
			p.endCell()
			p.beginCapture(modeCell, tag)
		case tag == "tr":
			p.endCell()
			p.endRow()
			p.beginRow()
		}
		return
	case modeText:
		if !blockStarts[tag] {
			return
		}
		p.flushText()
	}

	switch tag {
	case "h1":
		if p.cap.mode == modeIdle && p.inScope() {
			p.beginCapture(modeText, tag)
		}
	case "h2", "p":
		if p.cap.mode == modeIdle && p.inScope() {
			p.beginCapture(modeText, tag)
		}
	case "ul":
		if p.cap.mode == modeIdle && p.inScope() {
			p.cap.mode = modeList
			p.cap.items = nil
		}
	case "li":
		if p.cap.mode == modeList {
			p.beginCapture(modeItem, tag)
		}
	case "table":
		if p.cap.mode == modeIdle && p.inScope() {
			p.cap.mode = modeTable
			p.cap.rows = nil
		}
	case "tr":
		switch p.cap.mode {
		case modeTable:
			p.beginRow()
		case modeRow:
			p.endRow()
			p.beginRow()
		}
	case "th", "td":
		if p.cap.mode == modeRow {
			p.beginCapture(modeCell, tag)
		}
	}
}

func (p *parser) end(tag string) {
	if skipped[tag] {
		if p.skip > 0 {
			p.skip--
		}
		return
	}
	if p.skip > 0 {
		return
	}
	if tag == p.opts.ContainerTag && p.depth > 0 {
		p.depth--
		if p.depth == 0 {
			p.flushAll()
			p.closed = true
		}
		return
	}
	if p.heading.open {
		if tag == "h1" {
			p.endTitle()
		}
		return
	}

	switch p.cap.mode {
	case modeItem, modeCell:
		if breaks[tag] {
			p.cap.buf.WriteByte(' ')
		}
	}

	switch p.cap.mode {
	case modeText:
		if tag == p.cap.tag {
			p.flushText()
		}
	case modeItem:
		if p.cap.nest > 0 {
			if tag == "ul" {
				p.cap.nest--
			}
			return
		}
		switch tag {
		case "li":
			p.endItem()
		case "ul":
			p.endItem()
			p.endList()
		}
	case modeList:
		if tag == "ul" {
			p.endList()
		}
	case modeCell:
		if p.cap.nest > 0 {
			if tag == "table" {
				p.cap.nest--
			}
			return
		}
		switch tag {
		case "th", "td":
			p.endCell()
		case "tr":
			p.endCell()
			p.endRow()
		case "table":
			p.endCell()
			p.endRow()
			p.endTable()
		}
	case modeRow:
		switch tag {
		case "tr":
			p.endRow()
		case "table":
			p.endRow()
			p.endTable()
		}
	case modeTable:
		if tag == "table" {
			p.endTable()
		}
	}
}

// text accumulates character data for whichever target is open. Inline
// wrappers never change the target, so their text is kept.
func (p *parser) text(s string) {
	if p.skip > 0 {
		return
	}
	if p.heading.open {
		p.heading.buf.WriteString(s)
		return
	}
	switch p.cap.mode {
	case modeText, modeItem, modeCell:
		p.cap.buf.WriteString(s)
	}
}

func (p *parser) beginCapture(m mode, tag string) {
	p.cap.mode = m
	p.cap.tag = tag
	p.cap.nest = 0
	p.cap.buf.Reset()
}

func (p *parser) takeText() string {
	s := Normalize(p.cap.buf.String())
	p.cap.buf.Reset()
	p.cap.tag = ""
	p.cap.nest = 0
	return s
}

func (p *parser) flushText() {
	tag := p.cap.tag
	s := p.takeText()
	p.cap.mode = modeIdle
	if s == "" {
		return
	}
	switch tag {
	case "h1":
		p.blocks = append(p.blocks, Block{Kind: Heading1, Text: s})
	case "h2":
		p.blocks = append(p.blocks, Block{Kind: Heading2, Text: s})
	case "p":
		p.blocks = append(p.blocks, Block{Kind: Paragraph, Text: s})
	}
}

// endTitle closes the title capture. An <h1> with no text leaves the title
// unset for a later one.
func (p *parser) endTitle() {
	s := Normalize(p.heading.buf.String())
	p.heading.open = false
	p.heading.buf.Reset()
	if s != "" && p.title == "" {
		p.title = s
	}
}

func (p *parser) endItem() {
	if s := p.takeText(); s != "" {
		p.cap.items = append(p.cap.items, s)
	}
	p.cap.mode = modeList
}

func (p *parser) endList() {
	if len(p.cap.items) > 0 {
		p.blocks = append(p.blocks, Block{Kind: BulletList, Items: p.cap.items})
	}
	p.cap.items = nil
	p.cap.mode = modeIdle
}

func (p *parser) beginRow() {
	p.cap.row = []string{}
	p.cap.mode = modeRow
}

func (p *parser) endCell() {
	p.cap.row = append(p.cap.row, p.takeText())
	p.cap.mode = modeRow
}

func (p *parser) endRow() {
	p.cap.rows = append(p.cap.rows, p.cap.row)
	p.cap.row = nil
	p.cap.mode = modeTable
}

func (p *parser) endTable() {
	if b, ok := newTableBlock(p.cap.rows); ok {
		p.blocks = append(p.blocks, b)
	}
	p.cap.rows = nil
	p.cap.mode = modeIdle
}

// flushAll closes every open target, keeping what it collected so far.
func (p *parser) flushAll() {
	switch p.cap.mode {
	case modeText:
		p.flushText()
	case modeItem:
		p.endItem()
		p.endList()
	case modeList:
		p.endList()
	case modeCell:
		p.endCell()
		p.endRow()
		p.endTable()
	case modeRow:
		p.endRow()
		p.endTable()
	case modeTable:
		p.endTable()
	}
}

func (p *parser) finish() {
	if p.heading.open {
		p.endTitle()
	}
	p.flushAll()
}

func (p *parser) document() Document {
	title := p.title
	if title == "" {
		title = p.opts.FallbackTitle
	}
	return Document{Title: title, Blocks: p.blocks}
}
