package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/pkordes/festsched/internal/document"
)

const defaultTermWidth = 100

// Terminal prints a document as coloured text. Highlighted cells are red.
type Terminal struct {
	Width   int
	NoColor bool
}

func (*Terminal) Ext() string { return "txt" }

// Render writes the document to w.
func (t *Terminal) Render(w io.Writer, doc document.Document) error {
	tw := &termWriter{w: w, width: t.Width, noColor: t.NoColor}
	if tw.width <= 0 {
		tw.width = defaultTermWidth
	}
	for _, b := range doc.Blocks {
		tw.block(b)
	}
	if tw.err != nil {
		return fmt.Errorf("render.Terminal.Render: %w", tw.err)
	}
	return nil
}

type termWriter struct {
	w       io.Writer
	width   int
	noColor bool
	err     error
}

func (t *termWriter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.noColor {
		c.DisableColor()
	}
	return c
}

func (t *termWriter) println(s string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.w, s)
}

func (t *termWriter) center(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= t.width {
		return s
	}
	return strings.Repeat(" ", (t.width-n)/2) + s
}

func (t *termWriter) block(b document.Block) {
	switch b := b.(type) {
	case document.Text:
		t.text(b)
	case document.Rule:
		t.println(t.paint(color.FgYellow).Sprint(strings.Repeat("=", t.width)))
	case document.Table:
		t.table(b)
	case document.PageBreak:
		t.println("")
		t.println(t.paint(color.FgHiBlack).Sprint(strings.Repeat("-", t.width)))
		t.println("")
	case document.Image:
		t.println(t.paint(color.FgHiBlack).Sprint(t.center("[image]")))
	}
}

func (t *termWriter) text(b document.Text) {
	switch b.Style {
	case document.StyleTitle:
		t.println(t.paint(color.Bold).Sprint(t.center(b.Content)))
	case document.StyleDateHeader:
		t.println("")
		t.println(t.paint(color.FgCyan, color.Bold).Sprint(t.center(b.Content)))
	case document.StyleBanner:
		label := " " + b.Content + " "
		if pad := t.width - utf8.RuneCountInString(label); pad > 0 {
			label = strings.Repeat(" ", pad/2) + label + strings.Repeat(" ", pad-pad/2)
		}
		t.println(t.paint(color.BgBlue, color.FgHiWhite, color.Bold).Sprint(label))
	case document.StyleMemberName:
		t.println("")
		line := t.paint(color.Bold).Sprint(b.Content)
		if b.Tag != "" {
			line += " " + t.paint(color.FgYellow).Sprintf("[%s]", b.Tag)
		}
		t.println(line)
	case document.StyleNote, document.StylePlaceholder:
		t.println(t.paint(color.Faint, color.Italic).Sprint(t.center(b.Content)))
	default:
		t.println(b.Content)
	}
}

func (t *termWriter) table(tb document.Table) {
	widths := make([]int, len(tb.Columns))
	for i, c := range tb.Columns {
		widths[i] = int(float64(t.width-2*len(widths)) * c.Percent / 100)
		if widths[i] < 6 {
			widths[i] = 6
		}
	}

	if tb.Header != nil {
		t.row(tb.Header, widths, t.paint(color.Bold, color.Underline))
	}
	for _, r := range tb.Rows {
		var c *color.Color
		for _, cell := range r {
			if cell.Highlighted() {
				c = t.paint(color.FgRed, color.Bold)
				break
			}
		}
		t.row(r, widths, c)
	}
}

// row prints one table row, wrapping each cell to its column width.
func (t *termWriter) row(cells []document.Cell, widths []int, c *color.Color) {
	wrapped := make([][]string, len(widths))
	height := 1
	for i := range widths {
		if i < len(cells) {
			wrapped[i] = wrap(cells[i].Text(), widths[i])
		}
		if len(wrapped[i]) > height {
			height = len(wrapped[i])
		}
	}

	for line := 0; line < height; line++ {
		var b strings.Builder
		for i, w := range widths {
			s := ""
			if line < len(wrapped[i]) {
				s = wrapped[i][line]
			}
			b.WriteString(s)
			b.WriteString(strings.Repeat(" ", w-utf8.RuneCountInString(s)+2))
		}
		out := strings.TrimRight(b.String(), " ")
		if c != nil {
			out = c.Sprint(out)
		}
		t.println(out)
	}
}

// wrap breaks text on spaces and newlines into lines of at most width runes.
// Words longer than width are cut.
func wrap(text string, width int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for utf8.RuneCountInString(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				r := []rune(word)
				out = append(out, string(r[:width]))
				word = string(r[width:])
			}
			switch {
			case line == "":
				line = word
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		out = append(out, line)
	}
	return out
}
