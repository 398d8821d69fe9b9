package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/festsched/internal/document"
)

// Spreadsheet geometry.
const (
	maxSheetName = 31
	sheetChars   = 100.0 // total width of a sheet's columns, in characters
	imageRows    = 20
)

// XLSX renders one worksheet per section. Sections are separated by page
// breaks and named after their first title.
type XLSX struct{}

func (*XLSX) Ext() string { return FormatXLSX }

// Render writes the document as an Excel workbook.
func (x *XLSX) Render(w io.Writer, doc document.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	sw := &sheetWriter{f: f, styles: map[string]int{}, used: map[string]bool{}}
	for i, section := range splitSections(doc.Blocks) {
		if err := sw.section(i, section); err != nil {
			return fmt.Errorf("render.XLSX.Render: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("render.XLSX.Render: write: %w", err)
	}
	return nil
}

// splitSections cuts blocks at page breaks. It always returns at least one
// section.
func splitSections(blocks []document.Block) [][]document.Block {
	sections := [][]document.Block{nil}
	for _, b := range blocks {
		if _, ok := b.(document.PageBreak); ok {
			sections = append(sections, nil)
			continue
		}
		sections[len(sections)-1] = append(sections[len(sections)-1], b)
	}
	out := sections[:0]
	for i, s := range sections {
		if len(s) > 0 || (i == 0 && len(sections) == 1) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = append(out, nil)
	}
	return out
}

// sheetName derives a unique, valid worksheet name from the first title.
// Excel compares sheet names case-insensitively, so used is keyed by the
// lower-cased name.
func sheetName(blocks []document.Block, index int, used map[string]bool) string {
	name := ""
	for _, b := range blocks {
		if t, ok := b.(document.Text); ok && t.Style == document.StyleTitle {
			name = t.Content
			break
		}
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return ' '
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = fmt.Sprintf("Section %d", index+1)
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

type sheetWriter struct {
	f      *excelize.File
	styles map[string]int
	used   map[string]bool

	sheet   string
	row     int
	widthed bool
	images  int
}

func (s *sheetWriter) section(index int, blocks []document.Block) error {
	name := sheetName(blocks, index, s.used)
	if index == 0 {
		if err := s.f.SetSheetName(s.f.GetSheetName(0), name); err != nil {
			return err
		}
	} else if _, err := s.f.NewSheet(name); err != nil {
		return err
	}
	s.sheet, s.row, s.widthed = name, 1, false

	width := sectionWidth(blocks)
	for _, b := range blocks {
		var err error
		switch b := b.(type) {
		case document.Text:
			err = s.text(b, width)
		case document.Rule:
			s.row++
		case document.Table:
			err = s.table(b)
		case document.Image:
			err = s.image(b)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// sectionWidth is the widest table's column count, at least one.
func sectionWidth(blocks []document.Block) int {
	n := 1
	for _, b := range blocks {
		if t, ok := b.(document.Table); ok && len(t.Columns) > n {
			n = len(t.Columns)
		}
	}
	return n
}

func (s *sheetWriter) style(key string, st *excelize.Style) (int, error) {
	if id, ok := s.styles[key]; ok {
		return id, nil
	}
	id, err := s.f.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("style %s: %w", key, err)
	}
	s.styles[key] = id
	return id, nil
}

func horizontal(a document.Align) string {
	switch a {
	case document.AlignCenter:
		return "center"
	case document.AlignRight:
		return "right"
	}
	return "left"
}

func solidFill(hex string) excelize.Fill {
	if hex == "" {
		return excelize.Fill{}
	}
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}}
}

func (s *sheetWriter) text(t document.Text, width int) error {
	font := &excelize.Font{Family: "Calibri", Size: 11, Color: document.ColorText}
	var fill excelize.Fill
	switch t.Style {
	case document.StyleTitle:
		font.Bold, font.Size = true, 16
	case document.StyleDateHeader:
		font.Bold, font.Size = true, 13
	case document.StyleBanner:
		font.Bold, font.Color = true, document.ColorBannerText
		fill = solidFill(document.ColorBanner)
	case document.StyleMemberName:
		font.Bold, font.Size = true, 12
	case document.StyleNote, document.StylePlaceholder:
		font.Italic, font.Color = true, document.ColorMuted
	}

	id, err := s.style("text:"+string(t.Style)+":"+string(t.Align), &excelize.Style{
		Font:      font,
		Fill:      fill,
		Alignment: &excelize.Alignment{Horizontal: horizontal(t.Align), Vertical: "center"},
	})
	if err != nil {
		return err
	}

	first, _ := excelize.CoordinatesToCellName(1, s.row)
	last, _ := excelize.CoordinatesToCellName(width, s.row)
	content := t.Content
	if t.Tag != "" && width == 1 {
		content += " (" + t.Tag + ")"
	}
	if err := s.f.SetCellStr(s.sheet, first, content); err != nil {
		return err
	}
	if t.Tag != "" && width > 1 {
		last, _ = excelize.CoordinatesToCellName(width-1, s.row)
		tagCell, _ := excelize.CoordinatesToCellName(width, s.row)
		if err := s.f.SetCellStr(s.sheet, tagCell, t.Tag); err != nil {
			return err
		}
	}
	if first != last {
		if err := s.f.MergeCell(s.sheet, first, last); err != nil {
			return err
		}
	}
	if err := s.f.SetCellStyle(s.sheet, first, last, id); err != nil {
		return err
	}
	s.row++
	return nil
}

func (s *sheetWriter) table(t document.Table) error {
	if !s.widthed {
		for i, c := range t.Columns {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := s.f.SetColWidth(s.sheet, col, col, sheetChars*c.Percent/100); err != nil {
				return err
			}
		}
		s.widthed = true
	}

	if t.Header != nil {
		if err := s.cells(t.Header, t.Columns, headerFill, true); err != nil {
			return err
		}
	}
	for _, r := range t.Rows {
		if err := s.cells(r, t.Columns, "", false); err != nil {
			return err
		}
	}
	s.row++
	return nil
}

func (s *sheetWriter) cells(row []document.Cell, cols []document.Column, defaultFill string, bold bool) error {
	for i, c := range row {
		if i >= len(cols) {
			break
		}
		addr, _ := excelize.CoordinatesToCellName(i+1, s.row)
		if err := s.f.SetCellStr(s.sheet, addr, c.Text()); err != nil {
			return err
		}

		fill := c.Fill
		if fill == "" {
			fill = defaultFill
		}
		color := document.ColorText
		if c.Highlighted() {
			color = document.ColorHighlight
		}
		align := c.Align
		if align == "" {
			align = cols[i].Align
		}
		key := fmt.Sprintf("cell:%s:%s:%s:%t", fill, color, align, bold)
		id, err := s.style(key, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 10, Color: color, Bold: bold},
			Fill:      solidFill(fill),
			Alignment: &excelize.Alignment{Horizontal: horizontal(align), Vertical: "top", WrapText: true},
		})
		if err != nil {
			return err
		}
		if err := s.f.SetCellStyle(s.sheet, addr, addr, id); err != nil {
			return err
		}
	}
	s.row++
	return nil
}

func (s *sheetWriter) image(img document.Image) error {
	raw, kind, err := decodeImage(img.Data)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	ext := map[string]string{"PNG": ".png", "JPG": ".jpg", "GIF": ".gif"}[kind]
	addr, _ := excelize.CoordinatesToCellName(1, s.row)
	s.images++
	err = s.f.AddPictureFromBytes(s.sheet, addr, &excelize.Picture{
		Extension: ext,
		File:      raw,
		Format:    &excelize.GraphicOptions{AltText: fmt.Sprintf("image %d", s.images)},
	})
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	s.row += imageRows
	return nil
}
