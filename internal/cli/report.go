package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/render"
	"github.com/pkordes/festsched/internal/service"
	"github.com/pkordes/festsched/internal/team"
	"github.com/pkordes/festsched/internal/textfmt"
)

var modeArgs = []string{
	string(domain.ModeSchedule),
	string(domain.ModeServices),
	string(domain.ModeTeam),
	string(domain.ModeFull),
}

// reportFlags are the flags shared by show and export.
type reportFlags struct {
	timing  string
	search  string
	typ     string
	status  string
	include []string
	attach  []string
}

func (f *reportFlags) register(fs *pflag.FlagSet, defaultTiming textfmt.Style) {
	fs.StringVar(&f.timing, "timing", defaultTiming.String(), "timing style: screen or print")
	fs.StringVar(&f.search, "search", "", "team mode: only members whose name contains this text")
	fs.StringVar(&f.typ, "type", "", "team mode: only members of this type (e.g. FTM, PTM)")
	fs.StringVar(&f.status, "status", "", "team mode: all, assigned or unassigned")
	fs.StringSliceVar(&f.include, "include", []string{"schedule", "services", "team"}, "full mode: sections to include, or none")
	fs.StringSliceVar(&f.attach, "attach", nil, "full mode: image file appended on its own page (repeatable)")
}

// request validates the flags and builds a report request for mode.
func (f *reportFlags) request(mode string) (service.ReportRequest, error) {
	m := domain.Mode(mode)
	if !m.Valid() {
		return service.ReportRequest{}, fmt.Errorf("mode %q (want %s): %w", mode, strings.Join(modeArgs, ", "), domain.ErrValidation)
	}

	timing, err := textfmt.ParseStyle(f.timing)
	if err != nil {
		return service.ReportRequest{}, fmt.Errorf("%w: %w", err, domain.ErrValidation)
	}

	status := domain.AssignmentStatus(strings.ToLower(f.status))
	if status != "" && !status.Valid() {
		return service.ReportRequest{}, fmt.Errorf("status %q (want all, assigned or unassigned): %w", f.status, domain.ErrValidation)
	}

	req := service.ReportRequest{
		Mode:   m,
		Timing: timing,
		Filter: team.Filter{Search: f.search, Type: f.typ, Status: status},
	}

	if m == domain.ModeFull {
		if req.Sections, err = parseSections(f.include); err != nil {
			return service.ReportRequest{}, err
		}
		if req.Attachments, err = loadAttachments(f.attach); err != nil {
			return service.ReportRequest{}, err
		}
	} else if len(f.attach) > 0 {
		return service.ReportRequest{}, fmt.Errorf("--attach only applies to full reports: %w", domain.ErrValidation)
	}
	return req, nil
}

func parseSections(include []string) (domain.ReportSections, error) {
	var s domain.ReportSections
	for _, name := range include {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "schedule":
			s.IncludeSchedule = true
		case "services":
			s.IncludeServices = true
		case "team":
			s.IncludeTeam = true
		case "none", "":
		default:
			return s, fmt.Errorf("section %q (want schedule, services, team or none): %w", name, domain.ErrValidation)
		}
	}
	return s, nil
}

func loadAttachments(paths []string) ([]domain.Attachment, error) {
	out := make([]domain.Attachment, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("attachment: %w", err)
		}
		data, err := service.DataURL(raw)
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", p, err)
		}
		out = append(out, domain.Attachment{Name: filepath.Base(p), Data: data})
	}
	return out, nil
}

func newShowCmd(a *app) *cobra.Command {
	var (
		flags reportFlags
		width int
	)
	cmd := &cobra.Command{
		Use:       "show MODE",
		Short:     "Print a document to the terminal",
		Long:      "Composes a schedule, services, team or full document from the cache and prints it as coloured text.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: modeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args[0])
			if err != nil {
				return err
			}
			return a.withServices(cmd.Context(), func(s *services) error {
				return s.reports.Show(cmd.Context(), req, a.out, &render.Terminal{Width: width, NoColor: a.noColor})
			})
		},
	}
	flags.register(cmd.Flags(), textfmt.Screen)
	cmd.Flags().IntVar(&width, "width", 100, "line width in columns")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		flags  reportFlags
		format string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export MODE",
		Short: "Write a document to a PDF, XLSX or JSON file",
		Long: `Composes a schedule, services, team or full document from the cache, writes
it into the output directory named after its title, and records it in the
export history.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: modeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = a.cfg.OutputDir
			}
			return a.withServices(cmd.Context(), func(s *services) error {
				rec, path, err := s.reports.Export(cmd.Context(), service.ExportRequest{
					ReportRequest: req,
					Format:        format,
					OutDir:        outDir,
				})
				if err != nil {
					return err
				}
				a.success("wrote %s (%s)", path, humanBytes(rec.ByteSize))
				return nil
			})
		},
	}
	flags.register(cmd.Flags(), textfmt.Print)
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatPDF, "output format: "+strings.Join(render.Formats, ", "))
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default OUTPUT_DIR)")
	return cmd
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the member types accepted by --type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd.Context(), func(s *services) error {
				types, err := s.reports.MemberTypes(cmd.Context())
				if err != nil {
					return err
				}
				for _, t := range types {
					fmt.Fprintln(a.out, t)
				}
				return nil
			})
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		mode   string
		page   int
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past exports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			p := domain.NewPaginationParams(&page, &limit)
			return a.withServices(cmd.Context(), func(s *services) error {
				recs, total, err := s.reports.History(cmd.Context(), domain.Mode(mode), p)
				if err != nil {
					return err
				}
				return a.printHistory(output, recs, total, p)
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "only exports of this mode")
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&limit, "limit", 20, "exports per page (max 100)")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, yaml or json")
	return cmd
}

// historyEntry is the YAML/JSON shape of one export.
type historyEntry struct {
	ID        string `yaml:"id" json:"id"`
	Mode      string `yaml:"mode" json:"mode"`
	Title     string `yaml:"title" json:"title"`
	Filename  string `yaml:"filename" json:"filename"`
	Format    string `yaml:"format" json:"format"`
	Bytes     int64  `yaml:"bytes" json:"bytes"`
	CreatedAt string `yaml:"created_at" json:"created_at"`
}

type historyPage struct {
	Page    int            `yaml:"page" json:"page"`
	Limit   int            `yaml:"limit" json:"limit"`
	Total   int64          `yaml:"total" json:"total"`
	Exports []historyEntry `yaml:"exports" json:"exports"`
}

func (a *app) printHistory(output string, recs []domain.ExportRecord, total int64, p domain.PaginationParams) error {
	entries := make([]historyEntry, len(recs))
	for i, r := range recs {
		entries[i] = historyEntry{
			ID:        r.ID.String(),
			Mode:      string(r.Mode),
			Title:     r.Title,
			Filename:  r.Filename,
			Format:    r.Format,
			Bytes:     r.ByteSize,
			CreatedAt: r.CreatedAt.Local().Format("2006-01-02 15:04"),
		}
	}
	if output != outputTable {
		return encode(a.out, output, historyPage{Page: p.Page, Limit: p.Limit, Total: total, Exports: entries})
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.CreatedAt, e.Mode, e.Format, truncate(e.Filename, 48), humanBytes(e.Bytes)}
	}
	if err := table(a.out, []string{"created", "mode", "format", "file", "size"}, rows); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.paint(color.Faint).Sprintf("page %d, %d of %d exports", p.Page, len(entries), total))
	return nil
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return strconv.FormatFloat(float64(n)/(1<<20), 'f', 1, 64) + " MB"
	case n >= 1<<10:
		return strconv.FormatFloat(float64(n)/(1<<10), 'f', 1, 64) + " KB"
	}
	return strconv.FormatInt(n, 10) + " B"
}
