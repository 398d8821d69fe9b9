// Package document defines the renderer-neutral document model and composes
// it from grouped records and team rosters.
//
// A Document is an ordered list of blocks. Renderers (PDF, XLSX, terminal,
// JSON) walk the blocks with a type switch; the set of block types is closed.
package document

import (
	"encoding/json"
	"strings"
)

// Kind names a block type.
type Kind string

const (
	KindText      Kind = "text"
	KindRule      Kind = "rule"
	KindTable     Kind = "table"
	KindPageBreak Kind = "page_break"
	KindImage     Kind = "image"
)

// Block is one element of a document. Only types in this package implement it.
type Block interface {
	Kind() Kind
	isBlock()
}

// TextStyle tags a text block with its typographic role.
type TextStyle string

const (
	StyleTitle       TextStyle = "title"
	StyleDateHeader  TextStyle = "date_header"
	StyleBanner      TextStyle = "banner"
	StyleMemberName  TextStyle = "member_name"
	StyleNote        TextStyle = "note"
	StylePlaceholder TextStyle = "placeholder"
)

// Align is horizontal alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Colours used by the composer. Renderers may map them to their own palette.
const (
	ColorText           = "#0f172a"
	ColorBanner         = "#0f172a"
	ColorBannerText     = "#ffffff"
	ColorRule           = "#f59e0b"
	ColorAltFill        = "#e2e8f0"
	ColorHighlight      = "#dc2626"
	ColorHighlightLabel = "#ef4444"
	ColorMuted          = "#475569"
	ColorLabel          = "#64748b"
	ColorCell           = "#1e293b"
	ColorCoordinator    = "#4f46e5"
	ColorStandby        = "#d97706"
	ColorBadgeText      = "#451a03"
	ColorBadgeFill      = "#fef3c7"
)

// Text is a paragraph.
type Text struct {
	Content string    `json:"content"`
	Style   TextStyle `json:"style"`
	Align   Align     `json:"align,omitempty"`
	// Tag is a short label shown at the far end of the line, e.g. a member type.
	Tag string `json:"tag,omitempty"`
	// KeepWithNext asks the renderer not to break a page after this block.
	KeepWithNext bool `json:"keep_with_next,omitempty"`
}

// Rule is a horizontal line spanning the content width.
type Rule struct {
	Color     string  `json:"color"`
	Thickness float64 `json:"thickness"`
}

// Column describes one table column.
type Column struct {
	Key     string  `json:"key"`
	Header  string  `json:"header"`
	Weight  float64 `json:"weight"`
	Percent float64 `json:"percent"`
	Align   Align   `json:"align"`
}

// Run is a span of uniformly styled text.
type Run struct {
	Text  string  `json:"text"`
	Bold  bool    `json:"bold,omitempty"`
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// Line is a sequence of runs rendered on one line. A badge line is drawn on
// a tinted background.
type Line struct {
	Runs  []Run `json:"runs"`
	Badge bool  `json:"badge,omitempty"`
}

// Text concatenates the runs.
func (l Line) Text() string {
	var b strings.Builder
	for _, r := range l.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Cell is a table cell made of one or more lines.
type Cell struct {
	Lines []Line `json:"lines"`
	Fill  string `json:"fill,omitempty"`
	Align Align  `json:"align,omitempty"`
}

// Text joins the cell's lines with newlines.
func (c Cell) Text() string {
	parts := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}

// Highlighted reports whether any run in the cell uses the highlight colour.
func (c Cell) Highlighted() bool {
	for _, l := range c.Lines {
		for _, r := range l.Runs {
			if r.Color == ColorHighlight {
				return true
			}
		}
	}
	return false
}

// Table is a grid of cells. Header is nil when the table has no header row.
type Table struct {
	Columns      []Column `json:"columns"`
	Header       []Cell   `json:"header,omitempty"`
	Rows         [][]Cell `json:"rows"`
	KeepTogether bool     `json:"keep_together,omitempty"`
}

// PageBreak starts a new page.
type PageBreak struct{}

// Image is an embedded picture. Data is base64, optionally as a data URL.
type Image struct {
	Data  string  `json:"data"`
	Width float64 `json:"width"`
	Align Align   `json:"align,omitempty"`
}

func (Text) Kind() Kind      { return KindText }
func (Rule) Kind() Kind      { return KindRule }
func (Table) Kind() Kind     { return KindTable }
func (PageBreak) Kind() Kind { return KindPageBreak }
func (Image) Kind() Kind     { return KindImage }

func (Text) isBlock()      {}
func (Rule) isBlock()      {}
func (Table) isBlock()     {}
func (PageBreak) isBlock() {}
func (Image) isBlock()     {}

// Document is the composed output, ready for a renderer.
type Document struct {
	Title    string
	Filename string
	Blocks   []Block
}

// BaseName is Filename without its extension.
func (d Document) BaseName() string {
	return strings.TrimSuffix(d.Filename, ".pdf")
}

type taggedBlock struct {
	Kind  Kind  `json:"kind"`
	Block Block `json:"block,omitempty"`
}

// MarshalJSON tags every block with its kind.
func (d Document) MarshalJSON() ([]byte, error) {
	blocks := make([]taggedBlock, len(d.Blocks))
	for i, b := range d.Blocks {
		blocks[i] = taggedBlock{Kind: b.Kind()}
		if b.Kind() != KindPageBreak {
			blocks[i].Block = b
		}
	}
	return json.Marshal(struct {
		Title    string        `json:"title"`
		Filename string        `json:"filename"`
		Blocks   []taggedBlock `json:"blocks"`
	}{d.Title, d.Filename, blocks})
}
