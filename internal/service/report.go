package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/festsched/internal/document"
	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/ordering"
	"github.com/pkordes/festsched/internal/render"
	"github.com/pkordes/festsched/internal/repo"
	"github.com/pkordes/festsched/internal/team"
	"github.com/pkordes/festsched/internal/textfmt"
)

// ReportRequest selects and tunes one document.
type ReportRequest struct {
	Mode        domain.Mode
	Timing      textfmt.Style
	Filter      team.Filter
	Sections    domain.ReportSections
	Attachments []domain.Attachment
}

// ExportRequest is a ReportRequest written to a file.
type ExportRequest struct {
	ReportRequest
	Format string
	OutDir string
}

// ReportService composes documents from the cache, renders them, and keeps
// the export history.
type ReportService struct {
	records  repo.RecordRepo
	exports  repo.ExportRepo
	settings *SettingsService
	ordering ordering.Mode
	log      *slog.Logger
	now      func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(records repo.RecordRepo, exports repo.ExportRepo, settings *SettingsService, mode ordering.Mode, logger *slog.Logger) *ReportService {
	return &ReportService{
		records:  records,
		exports:  exports,
		settings: settings,
		ordering: mode,
		log:      logger.With("service", "report"),
		now:      time.Now,
	}
}

// needs reports which cached tables a request reads. The team table is
// always loaded for services so coordinator names resolve.
func needs(req ReportRequest) map[domain.Table]bool {
	n := map[domain.Table]bool{}
	switch req.Mode {
	case domain.ModeSchedule:
		n[domain.TableActivities] = true
	case domain.ModeServices:
		n[domain.TableServices], n[domain.TableTeam] = true, true
	case domain.ModeTeam:
		n[domain.TableServices], n[domain.TableTeam] = true, true
	case domain.ModeFull:
		if req.Sections.IncludeSchedule {
			n[domain.TableActivities] = true
		}
		if req.Sections.IncludeServices || req.Sections.IncludeTeam {
			n[domain.TableServices], n[domain.TableTeam] = true, true
		}
	}
	return n
}

// load reads the cached tables a request needs, in parallel. Tables that
// were never loaded stay nil.
func (s *ReportService) load(ctx context.Context, req ReportRequest) (document.Data, error) {
	need := needs(req)
	var activities, services, members []domain.Record

	g, gctx := errgroup.WithContext(ctx)
	for table, dst := range map[domain.Table]*[]domain.Record{
		domain.TableActivities: &activities,
		domain.TableServices:   &services,
		domain.TableTeam:       &members,
	} {
		if !need[table] {
			continue
		}
		g.Go(func() error {
			recs, err := s.records.ListByTable(gctx, table)
			if err != nil {
				return fmt.Errorf("load %s: %w", table, err)
			}
			*dst = recs
			return nil
		})
	}

	var header string
	g.Go(func() error {
		var err error
		header, err = s.settings.HeaderImage(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return document.Data{}, err
	}

	data := document.Data{
		Activities:  activities,
		Services:    services,
		HeaderImage: header,
		Attachments: req.Attachments,
	}
	if members != nil {
		data.Members = team.BuildMembers(members)
	}
	data.Names = team.BuildNameMapping(data.Members)
	return data, nil
}

// Compose builds the document for req from the cache.
func (s *ReportService) Compose(ctx context.Context, req ReportRequest) (document.Document, error) {
	if !req.Mode.Valid() {
		return document.Document{}, fmt.Errorf("service.ReportService.Compose: mode %q: %w", req.Mode, domain.ErrValidation)
	}
	if st := req.Filter.Status; st != "" && !st.Valid() {
		return document.Document{}, fmt.Errorf("service.ReportService.Compose: status %q: %w", st, domain.ErrValidation)
	}

	data, err := s.load(ctx, req)
	if err != nil {
		return document.Document{}, fmt.Errorf("service.ReportService.Compose: %w", err)
	}
	cfg, err := s.settings.Titles(ctx)
	if err != nil {
		return document.Document{}, fmt.Errorf("service.ReportService.Compose: %w", err)
	}

	doc, err := document.Compose(req.Mode, data, cfg, document.Options{
		Timing:   req.Timing,
		Filter:   req.Filter,
		Sections: req.Sections,
		Ordering: s.ordering,
		Logger:   s.log,
	})
	if err != nil {
		return document.Document{}, fmt.Errorf("service.ReportService.Compose: %w", err)
	}
	return doc, nil
}

// Show renders req to w with the terminal renderer.
func (s *ReportService) Show(ctx context.Context, req ReportRequest, w io.Writer, term *render.Terminal) error {
	doc, err := s.Compose(ctx, req)
	if err != nil {
		return err
	}
	if err := term.Render(w, doc); err != nil {
		return fmt.Errorf("service.ReportService.Show: %w", err)
	}
	return nil
}

// Export composes, renders and writes the document into req.OutDir, then
// records it in the export history.
func (s *ReportService) Export(ctx context.Context, req ExportRequest) (domain.ExportRecord, string, error) {
	r, err := render.New(req.Format, render.Options{Now: s.now})
	if err != nil {
		return domain.ExportRecord{}, "", fmt.Errorf("service.ReportService.Export: %w", err)
	}

	doc, err := s.Compose(ctx, req.ReportRequest)
	if err != nil {
		return domain.ExportRecord{}, "", err
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		return domain.ExportRecord{}, "", fmt.Errorf("service.ReportService.Export: %w", err)
	}

	filename := render.Filename(doc, r)
	dir := req.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.ExportRecord{}, "", fmt.Errorf("service.ReportService.Export: %w", err)
	}
	path := filepath.Join(dir, safeFilename(filename))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return domain.ExportRecord{}, "", fmt.Errorf("service.ReportService.Export: %w", err)
	}

	rec, err := s.exports.Create(ctx, domain.ExportRecord{
		Mode:     req.Mode,
		Title:    doc.Title,
		Filename: filename,
		Format:   r.Ext(),
		ByteSize: int64(buf.Len()),
	})
	if err != nil {
		return domain.ExportRecord{}, "", fmt.Errorf("service.ReportService.Export: %w", err)
	}

	s.log.InfoContext(ctx, "document exported",
		"mode", req.Mode, "format", r.Ext(), "path", path, "bytes", buf.Len())
	return rec, path, nil
}

// MemberTypes lists the member types in the cached team table, led by
// team.AllTypes.
func (s *ReportService) MemberTypes(ctx context.Context) ([]string, error) {
	recs, err := s.records.ListByTable(ctx, domain.TableTeam)
	if err != nil {
		return nil, fmt.Errorf("service.ReportService.MemberTypes: %w", err)
	}
	if recs == nil {
		return nil, fmt.Errorf("service.ReportService.MemberTypes: team members not loaded: %w", domain.ErrInsufficientData)
	}
	return team.UniqueTypes(team.BuildMembers(recs)), nil
}

// History returns one page of past exports, newest first.
func (s *ReportService) History(ctx context.Context, mode domain.Mode, p domain.PaginationParams) ([]domain.ExportRecord, int64, error) {
	if mode != "" && !mode.Valid() {
		return nil, 0, fmt.Errorf("service.ReportService.History: mode %q: %w", mode, domain.ErrValidation)
	}
	recs, total, err := s.exports.List(ctx, mode, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReportService.History: %w", err)
	}
	return recs, total, nil
}

// safeFilename replaces path separators so a title cannot escape the output
// directory.
func safeFilename(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}
