package document

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/festsched/internal/columns"
	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/grouping"
	"github.com/pkordes/festsched/internal/ordering"
	"github.com/pkordes/festsched/internal/team"
	"github.com/pkordes/festsched/internal/textfmt"
)

const (
	// FallbackTitle names a full report with no sections selected.
	FallbackTitle = "Festival_Report"
	// NoSectionsText is the placeholder body of such a report.
	NoSectionsText = "No sections selected for report."
	// NoAssignmentsText is shown under a member without duties.
	NoAssignmentsText = "No assignments scheduled"

	headerImageWidth = 515
	attachmentWidth  = 500
	ruleThickness    = 2
	// Member tables up to this many rows are kept on one page.
	keepTogetherRows = 15
)

// Data is the input to Compose. A nil slice means the input was not
// supplied; an empty, non-nil slice is a valid empty data set.
type Data struct {
	Activities  []domain.Record
	Services    []domain.Record
	Members     []domain.TeamMember
	Names       domain.NameMapping
	HeaderImage string
	Attachments []domain.Attachment
}

// Config carries the document titles.
type Config struct {
	PDFTitle        string
	ServicePDFTitle string
	TeamPDFTitle    string
}

// Options tunes composition.
type Options struct {
	// Timing is the display style for service and team timings and dates.
	// Schedule sections always use the print style.
	Timing   textfmt.Style
	Filter   team.Filter
	Sections domain.ReportSections
	Ordering ordering.Mode
	Logger   *slog.Logger
}

// Compose builds the document for mode. It returns domain.ErrInsufficientData
// when an input the mode needs was not supplied.
func Compose(mode domain.Mode, data Data, cfg Config, opts Options) (Document, error) {
	c := composer{data: data, cfg: cfg, opts: opts}

	var (
		title  string
		blocks []Block
		err    error
	)
	switch mode {
	case domain.ModeSchedule:
		title = cfg.PDFTitle
		blocks, err = c.schedule(true)
	case domain.ModeServices:
		title = cfg.ServicePDFTitle
		blocks, err = c.services()
	case domain.ModeTeam:
		title = cfg.TeamPDFTitle
		blocks, err = c.team()
	case domain.ModeFull:
		title = c.fullTitle()
		blocks, err = c.full()
	default:
		return Document{}, fmt.Errorf("document.Compose: unknown mode %q: %w", mode, domain.ErrValidation)
	}
	if err != nil {
		return Document{}, fmt.Errorf("document.Compose(%s): %w", mode, err)
	}

	return Document{Title: title, Filename: title + ".pdf", Blocks: blocks}, nil
}

type composer struct {
	data Data
	cfg  Config
	opts Options
}

func (c composer) fullTitle() string {
	s := c.opts.Sections
	switch {
	case s.IncludeSchedule:
		return c.cfg.PDFTitle
	case s.IncludeServices:
		return c.cfg.ServicePDFTitle
	case s.IncludeTeam:
		return c.cfg.TeamPDFTitle
	}
	return FallbackTitle
}

func (c composer) full() ([]Block, error) {
	s := c.opts.Sections
	var sections [][]Block

	if s.IncludeSchedule {
		b, err := c.schedule(false)
		if err != nil {
			return nil, err
		}
		sections = append(sections, b)
	}
	if s.IncludeServices {
		b, err := c.services()
		if err != nil {
			return nil, err
		}
		sections = append(sections, b)
	}
	if s.IncludeTeam {
		b, err := c.team()
		if err != nil {
			return nil, err
		}
		sections = append(sections, b)
	}

	var blocks []Block
	if len(sections) == 0 {
		blocks = append(blocks, Text{Content: NoSectionsText, Style: StylePlaceholder, Align: AlignCenter})
	} else {
		blocks = append(blocks, c.headerImage()...)
		for i, sec := range sections {
			if i > 0 {
				blocks = append(blocks, PageBreak{})
			}
			blocks = append(blocks, sec...)
		}
	}

	for _, a := range c.data.Attachments {
		blocks = append(blocks,
			PageBreak{},
			Text{Content: textfmt.StripExtension(a.Name), Style: StyleTitle, Align: AlignCenter},
			Image{Data: a.Data, Width: attachmentWidth, Align: AlignCenter},
		)
	}
	return blocks, nil
}

func (c composer) headerImage() []Block {
	if c.data.HeaderImage == "" {
		return nil
	}
	return []Block{Image{Data: c.data.HeaderImage, Width: headerImageWidth, Align: AlignCenter}}
}

func titleBlocks(title string) []Block {
	return []Block{
		Text{Content: title, Style: StyleTitle, Align: AlignCenter, KeepWithNext: true},
		Rule{Color: ColorRule, Thickness: ruleThickness},
	}
}

func banner(category string) Text {
	return Text{
		Content:      strings.ToUpper(textfmt.CategoryLabel(category)),
		Style:        StyleBanner,
		Align:        AlignCenter,
		KeepWithNext: true,
	}
}

func dateHeader(date string, style textfmt.Style) Text {
	return Text{
		Content:      textfmt.OrdinalDate(date, style),
		Style:        StyleDateHeader,
		Align:        AlignCenter,
		KeepWithNext: true,
	}
}

func rowFill(i int) string {
	if i%2 == 1 {
		return ColorAltFill
	}
	return ""
}

func tableColumns(l columns.Layout, align map[string]Align) []Column {
	out := make([]Column, len(l.Columns))
	for i, col := range l.Columns {
		a, ok := align[col.Key]
		if !ok {
			a = AlignLeft
		}
		out[i] = Column{Key: col.Key, Header: col.Header, Weight: col.Weight, Percent: col.Percent, Align: a}
	}
	return out
}

// ---- schedule --------------------------------------------------------------

var scheduleAlign = map[string]Align{
	columns.Activity: AlignLeft,
	columns.Location: AlignCenter,
	columns.Timings:  AlignRight,
}

func (c composer) schedule(withHeaderImage bool) ([]Block, error) {
	if c.data.Activities == nil {
		return nil, fmt.Errorf("activities not supplied: %w", domain.ErrInsufficientData)
	}

	var blocks []Block
	if withHeaderImage {
		blocks = append(blocks, c.headerImage()...)
	}
	blocks = append(blocks, titleBlocks(c.cfg.PDFTitle)...)

	g := grouping.Group(c.data.Activities, c.opts.Ordering)
	for _, date := range grouping.ScheduleDates(g, c.opts.Ordering) {
		blocks = append(blocks, dateHeader(date, textfmt.Print))
		byCat := g[date]
		for _, cat := range grouping.Categories(byCat) {
			recs := byCat[cat]
			blocks = append(blocks, banner(cat), scheduleTable(recs))
		}
	}
	return blocks, nil
}

func scheduleTable(recs []domain.Record) Table {
	layout := columns.Sniff(recs, columns.ScheduleSpecs)
	rows := make([][]Cell, 0, len(recs))
	for i, r := range recs {
		f := r.Fields
		fill := rowFill(i)
		text, muted := ColorText, ColorMuted
		if f.Select {
			text, muted = ColorHighlight, ColorHighlight
		}

		activity := f.Activity
		if activity == "" {
			activity = domain.NoNames
		}
		row := []Cell{{
			Lines: []Line{{Runs: []Run{{Text: activity, Bold: true, Color: text, Size: 10}}}},
			Fill:  fill,
			Align: AlignLeft,
		}}
		if layout.Has(columns.Location) {
			row = append(row, Cell{
				Lines: []Line{{Runs: []Run{{Text: strings.ToUpper(f.Location), Bold: true, Color: muted, Size: 9}}}},
				Fill:  fill,
				Align: AlignCenter,
			})
		}
		if layout.Has(columns.Timings) {
			row = append(row, Cell{
				Lines: []Line{{Runs: []Run{{Text: textfmt.Timing(f.Timings, textfmt.Print), Bold: true, Color: text, Size: 9}}}},
				Fill:  fill,
				Align: AlignRight,
			})
		}
		rows = append(rows, row)
	}
	return Table{Columns: tableColumns(layout, scheduleAlign), Rows: rows}
}

// ---- services --------------------------------------------------------------

var serviceAlign = map[string]Align{
	columns.Service:     AlignLeft,
	columns.Coordinator: AlignCenter,
	columns.Team:        AlignCenter,
	columns.Standby:     AlignRight,
}

func (c composer) services() ([]Block, error) {
	if c.data.Services == nil {
		return nil, fmt.Errorf("services not supplied: %w", domain.ErrInsufficientData)
	}

	blocks := titleBlocks(c.cfg.ServicePDFTitle)

	g := grouping.Group(c.data.Services, c.opts.Ordering)
	for _, date := range grouping.ServiceDates(g, c.opts.Ordering) {
		if date != domain.UnspecifiedDate {
			blocks = append(blocks, dateHeader(date, c.opts.Timing))
		}
		byCat := g[date]
		for _, cat := range grouping.Categories(byCat) {
			blocks = append(blocks, banner(cat), c.serviceTable(byCat[cat]))
		}
	}
	return blocks, nil
}

func (c composer) serviceTable(recs []domain.Record) Table {
	layout := columns.Sniff(recs, columns.ServiceSpecs)
	cols := tableColumns(layout, serviceAlign)

	header := make([]Cell, len(cols))
	for i, col := range cols {
		header[i] = Cell{
			Lines: []Line{{Runs: []Run{{Text: col.Header, Bold: true, Color: ColorText, Size: 10}}}},
			Align: col.Align,
		}
	}

	rows := make([][]Cell, 0, len(recs))
	for i, r := range recs {
		f := r.Fields
		fill := rowFill(i)
		text, badge := ColorText, ColorBadgeText
		if f.Select {
			text, badge = ColorHighlight, ColorHighlight
		}

		name := f.Service
		if name == "" {
			name = domain.NoNames
		}
		lines := []Line{{Runs: []Run{{Text: name, Bold: true, Color: text, Size: 10}}}}
		if timing := textfmt.Timing(f.Timings, c.opts.Timing); timing != "" {
			lines = append(lines, Line{Badge: true, Runs: []Run{{Text: timing, Bold: true, Color: badge, Size: 9}}})
		}
		row := []Cell{{Lines: lines, Fill: fill, Align: AlignLeft}}

		names := func(ids []string, align Align) Cell {
			return Cell{
				Lines: []Line{{Runs: []Run{{Text: team.ResolveNames(ids, c.data.Names), Color: text, Size: 9}}}},
				Fill:  fill,
				Align: align,
			}
		}
		if layout.Has(columns.Coordinator) {
			row = append(row, names(f.Coordinator, AlignCenter))
		}
		if layout.Has(columns.Team) {
			row = append(row, names(f.TeamMembers, AlignCenter))
		}
		if layout.Has(columns.Standby) {
			row = append(row, names(f.Standby, AlignRight))
		}
		rows = append(rows, row)
	}
	return Table{Columns: cols, Header: header, Rows: rows}
}

// ---- team ------------------------------------------------------------------

func (c composer) team() ([]Block, error) {
	if c.data.Members == nil {
		return nil, fmt.Errorf("team members not supplied: %w", domain.ErrInsufficientData)
	}
	if c.data.Services == nil {
		return nil, fmt.Errorf("service records not supplied: %w", domain.ErrInsufficientData)
	}

	blocks := titleBlocks(c.cfg.TeamPDFTitle)

	services := team.ServicesByID(c.data.Services)
	rosterOpts := team.RosterOptions{
		Names:    c.data.Names,
		Style:    c.opts.Timing,
		Ordering: c.opts.Ordering,
		Logger:   c.opts.Logger,
	}
	showEmpty := c.opts.Filter.Status == domain.StatusUnassigned

	for _, m := range c.opts.Filter.Apply(c.data.Members, services) {
		rows := team.BuildRoster(m, services, rosterOpts)
		if len(rows) == 0 {
			if showEmpty {
				blocks = append(blocks,
					memberHeader(m),
					Text{Content: NoAssignmentsText, Style: StyleNote, Align: AlignCenter},
				)
			}
			continue
		}
		blocks = append(blocks, memberHeader(m), dutyTable(rows))
	}
	return blocks, nil
}

func memberHeader(m domain.TeamMember) Text {
	return Text{
		Content:      strings.ToUpper(m.Name),
		Style:        StyleMemberName,
		Align:        AlignLeft,
		Tag:          m.Type,
		KeepWithNext: true,
	}
}

func dutyTable(rows []domain.DutyRow) Table {
	cols := tableColumns(columns.Fixed(columns.TeamSpecs), nil)

	header := make([]Cell, len(cols))
	for i, col := range cols {
		header[i] = Cell{Lines: []Line{{Runs: []Run{{Text: col.Header, Bold: true, Color: ColorLabel, Size: 9}}}}}
	}

	body := make([][]Cell, 0, len(rows))
	for i, r := range rows {
		fill := rowFill(i)
		base, info, label, badge := ColorCell, ColorLabel, ColorLabel, ColorBadgeText
		if r.Highlighted {
			base, info, label, badge = ColorHighlight, ColorHighlight, ColorHighlightLabel, ColorHighlight
		}

		serviceCell := Cell{
			Lines: []Line{
				{Runs: []Run{{Text: r.ServiceName, Bold: true, Color: base, Size: 10}}},
				{Runs: []Run{{Text: strings.ToUpper(string(r.Role)), Bold: true, Color: roleColor(r.Role), Size: 8}}},
			},
			Fill: fill,
		}

		var refs []Run
		for j, ref := range r.CrossRefs {
			prefix := ""
			if j > 0 {
				prefix = "   "
			}
			refs = append(refs,
				Run{Text: prefix + ref.Label + ": ", Bold: true, Color: label, Size: 8},
				Run{Text: ref.Names, Color: info, Size: 9},
			)
		}
		teamCell := Cell{Lines: []Line{{Runs: refs}}, Fill: fill}

		dateLines := []Line{{Runs: []Run{{Text: r.DateLabel, Color: base, Size: 10}}}}
		if r.Timing != "" {
			dateLines = append(dateLines, Line{Badge: true, Runs: []Run{{Text: r.Timing, Bold: true, Color: badge, Size: 9}}})
		}
		dateCell := Cell{Lines: dateLines, Fill: fill}

		body = append(body, []Cell{serviceCell, teamCell, dateCell})
	}

	return Table{
		Columns:      cols,
		Header:       header,
		Rows:         body,
		KeepTogether: len(rows) <= keepTogetherRows,
	}
}

func roleColor(r domain.Role) string {
	switch r {
	case domain.RoleCoordinator:
		return ColorCoordinator
	case domain.RoleStandby:
		return ColorStandby
	}
	return ColorMuted
}
