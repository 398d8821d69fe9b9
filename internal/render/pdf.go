package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/pkordes/festsched/internal/document"
	"github.com/pkordes/festsched/internal/textfmt"
)

// Page geometry in points.
const (
	pageMargin   = 40.0
	bottomMargin = 50.0
	cellPad      = 4.0
	keepWithNext = 60.0
	font         = "Helvetica"
	headerFill   = "#f1f5f9"
	gridColor    = "#cbd5e1"
)

// PDF renders an A4 portrait report with a page footer.
type PDF struct {
	Now func() time.Time
}

func (*PDF) Ext() string { return FormatPDF }

// Render writes the document as PDF.
func (p *PDF) Render(w io.Writer, doc document.Document) error {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("FestSched", true)
	pdf.SetCreationDate(now())
	pdf.AliasNbPages("")

	pw := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pw.pageW, pw.pageH = pdf.GetPageSize()
	pw.contentW = pw.pageW - 2*pageMargin

	generated := textfmt.GeneratedOn(now())
	pdf.SetFooterFunc(func() {
		pdf.SetY(-30)
		pw.setFont(document.Run{Size: 8}, "")
		pw.setText(document.ColorLabel)
		footer := fmt.Sprintf("Generated by FestSched • %s • Page %d of {nb}", generated, pdf.PageNo())
		pdf.CellFormat(0, 10, pw.tr(footer), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	for _, b := range doc.Blocks {
		if err := pw.block(b); err != nil {
			return fmt.Errorf("render.PDF.Render: %w", err)
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("render.PDF.Render: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render.PDF.Render: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("render.PDF.Render: write: %w", err)
	}
	return nil
}

type pdfWriter struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	pageW    float64
	pageH    float64
	contentW float64
	images   int
}

func (w *pdfWriter) block(b document.Block) error {
	switch b := b.(type) {
	case document.Text:
		w.text(b)
	case document.Rule:
		w.rule(b)
	case document.Table:
		w.table(b)
	case document.PageBreak:
		w.pdf.AddPage()
	case document.Image:
		return w.image(b)
	}
	return nil
}

// limit is the lowest y content may reach on the current page.
func (w *pdfWriter) limit() float64 { return w.pageH - bottomMargin }

// ensure starts a new page unless h more points fit on this one.
func (w *pdfWriter) ensure(h float64) {
	y := w.pdf.GetY()
	if y+h > w.limit() && y > pageMargin+1 {
		w.pdf.AddPage()
	}
}

func (w *pdfWriter) setFont(r document.Run, style string) {
	if r.Bold && !strings.Contains(style, "B") {
		style += "B"
	}
	size := r.Size
	if size == 0 {
		size = 10
	}
	w.pdf.SetFont(font, style, size)
}

func (w *pdfWriter) setText(hex string) {
	c := parseHex(hex)
	w.pdf.SetTextColor(c.r, c.g, c.b)
}

func (w *pdfWriter) setFill(hex string) {
	c := parseHex(hex)
	w.pdf.SetFillColor(c.r, c.g, c.b)
}

func (w *pdfWriter) setDraw(hex string) {
	c := parseHex(hex)
	w.pdf.SetDrawColor(c.r, c.g, c.b)
}

func alignStr(a document.Align) string {
	switch a {
	case document.AlignCenter:
		return "C"
	case document.AlignRight:
		return "R"
	}
	return "L"
}

// ---- text ------------------------------------------------------------------

type textLook struct {
	size   float64
	style  string
	color  string
	height float64
	before float64
}

var textLooks = map[document.TextStyle]textLook{
	document.StyleTitle:       {size: 18, style: "B", color: document.ColorText, height: 24, before: 4},
	document.StyleDateHeader:  {size: 13, style: "B", color: document.ColorText, height: 20, before: 10},
	document.StyleBanner:      {size: 11, style: "B", color: document.ColorBannerText, height: 20, before: 6},
	document.StyleMemberName:  {size: 12, style: "B", color: document.ColorText, height: 20, before: 12},
	document.StyleNote:        {size: 10, style: "I", color: document.ColorMuted, height: 16, before: 2},
	document.StylePlaceholder: {size: 12, style: "I", color: document.ColorMuted, height: 20, before: 40},
}

func (w *pdfWriter) text(t document.Text) {
	look, ok := textLooks[t.Style]
	if !ok {
		look = textLook{size: 10, color: document.ColorText, height: 14}
	}

	need := look.before + look.height
	if t.KeepWithNext {
		need += keepWithNext
	}
	w.ensure(need)
	w.pdf.SetY(w.pdf.GetY() + look.before)

	w.pdf.SetFont(font, look.style, look.size)
	w.setText(look.color)
	content := w.tr(t.Content)

	switch t.Style {
	case document.StyleBanner:
		w.setFill(document.ColorBanner)
		w.pdf.CellFormat(w.contentW, look.height, content, "", 1, alignStr(t.Align), true, 0, "")
	case document.StyleMemberName:
		w.pdf.CellFormat(w.contentW*0.75, look.height, content, "", 0, "L", false, 0, "")
		if t.Tag != "" {
			w.pdf.SetFont(font, "B", 9)
			w.setText(document.ColorBadgeText)
			w.setFill(document.ColorBadgeFill)
			tag := w.tr(t.Tag)
			tw := w.pdf.GetStringWidth(tag) + 2*cellPad
			w.pdf.SetX(pageMargin + w.contentW - tw)
			w.pdf.CellFormat(tw, look.height, tag, "", 0, "C", true, 0, "")
		}
		w.pdf.Ln(look.height)
		w.setDraw(gridColor)
		w.pdf.SetLineWidth(0.5)
		y := w.pdf.GetY()
		w.pdf.Line(pageMargin, y, pageMargin+w.contentW, y)
		w.pdf.SetY(y + 4)
	default:
		w.pdf.MultiCell(w.contentW, look.height, content, "", alignStr(t.Align), false)
	}
}

func (w *pdfWriter) rule(r document.Rule) {
	w.setDraw(r.Color)
	w.pdf.SetLineWidth(r.Thickness)
	y := w.pdf.GetY() + 4
	w.pdf.Line(pageMargin, y, pageMargin+w.contentW, y)
	w.pdf.SetY(y + r.Thickness + 6)
}

// ---- tables ----------------------------------------------------------------

type fragment struct {
	text string
	run  document.Run
	x    float64
}

type visualLine struct {
	frags  []fragment
	width  float64
	height float64
	badge  bool
}

func lineHeight(size float64) float64 {
	if size == 0 {
		size = 10
	}
	return size * 1.3
}

// layout word-wraps a cell's runs into lines no wider than width.
func (w *pdfWriter) layout(c document.Cell, width float64) []visualLine {
	var out []visualLine
	for _, l := range c.Lines {
		cur := visualLine{badge: l.Badge}
		flush := func() {
			out = append(out, cur)
			cur = visualLine{badge: l.Badge}
		}
		for _, r := range l.Runs {
			w.setFont(r, "")
			if h := lineHeight(r.Size); h > cur.height {
				cur.height = h
			}
			for _, tok := range strings.SplitAfter(w.tr(r.Text), " ") {
				if tok == "" {
					continue
				}
				tw := w.pdf.GetStringWidth(tok)
				if cur.width+tw > width && cur.width > 0 {
					h := cur.height
					flush()
					cur.height = h
					tok = strings.TrimLeft(tok, " ")
					tw = w.pdf.GetStringWidth(tok)
				}
				cur.frags = append(cur.frags, fragment{text: tok, run: r, x: cur.width})
				cur.width += tw
			}
		}
		if cur.height == 0 {
			cur.height = lineHeight(0)
		}
		flush()
	}
	return out
}

func cellHeight(lines []visualLine) float64 {
	h := 2 * cellPad
	for _, l := range lines {
		h += l.height
	}
	return h
}

func (w *pdfWriter) table(t document.Table) {
	widths := make([]float64, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = w.contentW * c.Percent / 100
	}

	type laidRow struct {
		cells  [][]visualLine
		height float64
	}
	lay := func(row []document.Cell) laidRow {
		lr := laidRow{cells: make([][]visualLine, len(row))}
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			lr.cells[i] = w.layout(c, widths[i]-2*cellPad)
			if h := cellHeight(lr.cells[i]); h > lr.height {
				lr.height = h
			}
		}
		return lr
	}

	var header laidRow
	if t.Header != nil {
		header = lay(t.Header)
	}
	rows := make([]laidRow, len(t.Rows))
	total := header.height
	for i, r := range t.Rows {
		rows[i] = lay(r)
		total += rows[i].height
	}

	if t.KeepTogether && total <= w.limit()-pageMargin {
		w.ensure(total)
	} else if len(rows) > 0 {
		w.ensure(header.height + rows[0].height)
	}

	drawHeader := func() {
		if t.Header != nil {
			w.row(t.Header, header.cells, widths, header.height, headerFill, t.Columns)
		}
	}
	drawHeader()
	for i, r := range rows {
		if w.pdf.GetY()+r.height > w.limit() {
			w.pdf.AddPage()
			drawHeader()
		}
		w.row(t.Rows[i], r.cells, widths, r.height, "", t.Columns)
	}
	w.pdf.SetY(w.pdf.GetY() + 6)
}

func (w *pdfWriter) row(cells []document.Cell, lines [][]visualLine, widths []float64, height float64, defaultFill string, cols []document.Column) {
	y := w.pdf.GetY()
	x := pageMargin
	for i := range lines {
		c := cells[i]
		fill := c.Fill
		if fill == "" {
			fill = defaultFill
		}
		if fill != "" {
			w.setFill(fill)
			w.pdf.Rect(x, y, widths[i], height, "F")
		}
		align := c.Align
		if align == "" {
			align = cols[i].Align
		}

		ly := y + cellPad
		inner := widths[i] - 2*cellPad
		for _, l := range lines[i] {
			offset := 0.0
			switch align {
			case document.AlignCenter:
				offset = (inner - l.width) / 2
			case document.AlignRight:
				offset = inner - l.width
			}
			lx := x + cellPad + offset
			if l.badge && l.width > 0 {
				w.setFill(document.ColorBadgeFill)
				w.pdf.Rect(lx-2, ly, l.width+4, l.height, "F")
			}
			for _, f := range l.frags {
				w.setFont(f.run, "")
				color := f.run.Color
				if color == "" {
					color = document.ColorText
				}
				w.setText(color)
				size := f.run.Size
				if size == 0 {
					size = 10
				}
				w.pdf.Text(lx+f.x, ly+size, f.text)
			}
			ly += l.height
		}
		x += widths[i]
	}

	w.setDraw(gridColor)
	w.pdf.SetLineWidth(0.3)
	w.pdf.Line(pageMargin, y+height, pageMargin+w.contentW, y+height)
	w.pdf.SetXY(pageMargin, y+height)
}

// ---- images ----------------------------------------------------------------

func (w *pdfWriter) image(img document.Image) error {
	raw, kind, err := decodeImage(img.Data)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}

	w.images++
	name := fmt.Sprintf("image-%d", w.images)
	opts := fpdf.ImageOptions{ImageType: kind, ReadDpi: false}
	info := w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	if err := w.pdf.Error(); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	if info == nil || info.Width() == 0 {
		return fmt.Errorf("image: %w", ErrUnsupportedImage)
	}

	width := img.Width
	if width == 0 || width > w.contentW {
		width = w.contentW
	}
	height := width * info.Height() / info.Width()
	if maxH := w.limit() - pageMargin; height > maxH {
		width = width * maxH / height
		height = maxH
	}
	w.ensure(height)

	x := pageMargin
	switch img.Align {
	case document.AlignCenter:
		x += (w.contentW - width) / 2
	case document.AlignRight:
		x += w.contentW - width
	}
	y := w.pdf.GetY()
	w.pdf.ImageOptions(name, x, y, width, height, false, opts, 0, "")
	w.pdf.SetY(y + height + 10)
	return nil
}
