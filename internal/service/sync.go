package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/normalize"
	"github.com/pkordes/festsched/internal/repo"
)

// Fetcher reads records and base metadata from the remote source.
// *airtable.Client satisfies it.
type Fetcher interface {
	ListRecords(ctx context.Context, table string) ([]normalize.RESTRecord, error)
	BaseName(ctx context.Context) (string, error)
}

// SourceTables maps each local table to its remote table name. An empty
// name skips that table during sync.
type SourceTables map[domain.Table]string

// SyncResult reports what a sync stored.
type SyncResult struct {
	Counts   map[domain.Table]int
	BaseName string
	SyncedAt time.Time
}

// SyncService refreshes the local cache from the remote source.
type SyncService struct {
	fetch    Fetcher
	records  repo.RecordRepo
	settings *SettingsService
	tables   SourceTables
	log      *slog.Logger
	now      func() time.Time
}

// NewSyncService constructs a SyncService.
func NewSyncService(f Fetcher, records repo.RecordRepo, settings *SettingsService, tables SourceTables, logger *slog.Logger) *SyncService {
	return &SyncService{
		fetch:    f,
		records:  records,
		settings: settings,
		tables:   tables,
		log:      logger.With("service", "sync"),
		now:      time.Now,
	}
}

// Sync fetches every configured table in parallel, then replaces the cached
// copies in one transaction. A failed fetch aborts the sync before anything
// is written, and a failed store leaves every table as it was.
// A failed base-name lookup is logged and leaves the titles untouched.
func (s *SyncService) Sync(ctx context.Context) (SyncResult, error) {
	fetched := make(map[domain.Table][]domain.Record, len(domain.Tables))
	results := make([][]domain.Record, len(domain.Tables))
	var baseName string

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		name, err := s.fetch.BaseName(gctx)
		if err != nil {
			s.log.WarnContext(gctx, "base name lookup failed", "error", err)
			return nil
		}
		baseName = name
		return nil
	})

	for i, table := range domain.Tables {
		remote := s.tables[table]
		if remote == "" {
			s.log.DebugContext(ctx, "table not configured, skipping", "table", table)
			continue
		}
		g.Go(func() error {
			raw, err := s.fetch.ListRecords(gctx, remote)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", remote, err)
			}
			results[i] = normalize.Records(raw)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return SyncResult{}, fmt.Errorf("service.SyncService.Sync: %w", err)
	}

	for i, table := range domain.Tables {
		if s.tables[table] != "" {
			fetched[table] = results[i]
		}
	}

	if err := s.records.ReplaceTables(ctx, fetched); err != nil {
		return SyncResult{}, fmt.Errorf("service.SyncService.Sync: store: %w", err)
	}

	res := SyncResult{Counts: make(map[domain.Table]int, len(fetched)), BaseName: baseName, SyncedAt: s.now()}
	for _, table := range domain.Tables {
		if recs, ok := fetched[table]; ok {
			res.Counts[table] = len(recs)
			s.log.InfoContext(ctx, "table synced", "table", table, "records", len(recs))
		}
	}

	if err := s.settings.ApplyBaseName(ctx, baseName); err != nil {
		return SyncResult{}, fmt.Errorf("service.SyncService.Sync: %w", err)
	}
	if err := s.settings.MarkSynced(ctx, res.SyncedAt); err != nil {
		return SyncResult{}, fmt.Errorf("service.SyncService.Sync: %w", err)
	}
	return res, nil
}

// Import loads an exported JSON document (an object with a "records" array,
// or a bare array) into one cached table.
func (s *SyncService) Import(ctx context.Context, table domain.Table, r io.Reader) (int, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("service.SyncService.Import: table %q: %w", table, domain.ErrValidation)
	}
	recs, err := normalize.Decode(r)
	if err != nil {
		return 0, fmt.Errorf("service.SyncService.Import: %w", err)
	}
	if err := s.records.ReplaceTable(ctx, table, recs); err != nil {
		return 0, fmt.Errorf("service.SyncService.Import: %w", err)
	}
	s.log.InfoContext(ctx, "table imported", "table", table, "records", len(recs))
	return len(recs), nil
}
