package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/normalize"
	"github.com/pkordes/festsched/internal/repo"
	"github.com/pkordes/festsched/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. The mem* constructors return doubles backed by maps.

// ---- records ---------------------------------------------------------------

type mockRecordRepo struct {
	replaceTable  func(ctx context.Context, table domain.Table, records []domain.Record) error
	replaceTables func(ctx context.Context, tables map[domain.Table][]domain.Record) error
	listByTable   func(ctx context.Context, table domain.Table) ([]domain.Record, error)
}

func (m *mockRecordRepo) ReplaceTable(ctx context.Context, table domain.Table, records []domain.Record) error {
	return m.replaceTable(ctx, table, records)
}
func (m *mockRecordRepo) ReplaceTables(ctx context.Context, tables map[domain.Table][]domain.Record) error {
	return m.replaceTables(ctx, tables)
}
func (m *mockRecordRepo) ListByTable(ctx context.Context, table domain.Table) ([]domain.Record, error) {
	return m.listByTable(ctx, table)
}

var _ repo.RecordRepo = (*mockRecordRepo)(nil)

// memRecords returns a record repo over tables. Replacements are written
// back into tables; a table missing from the map has never been loaded.
func memRecords(tables map[domain.Table][]domain.Record) *mockRecordRepo {
	var mu sync.Mutex
	put := func(table domain.Table, records []domain.Record) {
		if records == nil {
			records = []domain.Record{}
		}
		tables[table] = records
	}
	return &mockRecordRepo{
		replaceTable: func(_ context.Context, table domain.Table, records []domain.Record) error {
			mu.Lock()
			defer mu.Unlock()
			put(table, records)
			return nil
		},
		replaceTables: func(_ context.Context, batch map[domain.Table][]domain.Record) error {
			mu.Lock()
			defer mu.Unlock()
			for table, records := range batch {
				put(table, records)
			}
			return nil
		},
		listByTable: func(_ context.Context, table domain.Table) ([]domain.Record, error) {
			mu.Lock()
			defer mu.Unlock()
			return tables[table], nil
		},
	}
}

// ---- settings --------------------------------------------------------------

type mockSettingsRepo struct {
	get    func(ctx context.Context, key string) (string, error)
	set    func(ctx context.Context, key, value string) error
	delete func(ctx context.Context, key string) error
	list   func(ctx context.Context, prefix string) ([]repo.Setting, error)
}

func (m *mockSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	return m.get(ctx, key)
}
func (m *mockSettingsRepo) Set(ctx context.Context, key, value string) error {
	return m.set(ctx, key, value)
}
func (m *mockSettingsRepo) Delete(ctx context.Context, key string) error {
	return m.delete(ctx, key)
}
func (m *mockSettingsRepo) List(ctx context.Context, prefix string) ([]repo.Setting, error) {
	return m.list(ctx, prefix)
}

var _ repo.SettingsRepo = (*mockSettingsRepo)(nil)

func memSettings(store map[string]string) *mockSettingsRepo {
	var mu sync.Mutex
	return &mockSettingsRepo{
		get: func(_ context.Context, key string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			v, ok := store[key]
			if !ok {
				return "", domain.ErrNotFound
			}
			return v, nil
		},
		set: func(_ context.Context, key, value string) error {
			mu.Lock()
			defer mu.Unlock()
			store[key] = value
			return nil
		},
		delete: func(_ context.Context, key string) error {
			mu.Lock()
			defer mu.Unlock()
			if _, ok := store[key]; !ok {
				return domain.ErrNotFound
			}
			delete(store, key)
			return nil
		},
		list: func(_ context.Context, prefix string) ([]repo.Setting, error) {
			mu.Lock()
			defer mu.Unlock()
			out := []repo.Setting{}
			for k, v := range store {
				if strings.HasPrefix(k, prefix) {
					out = append(out, repo.Setting{Key: k, Value: v})
				}
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
			return out, nil
		},
	}
}

// ---- exports ---------------------------------------------------------------

type mockExportRepo struct {
	create func(ctx context.Context, rec domain.ExportRecord) (domain.ExportRecord, error)
	list   func(ctx context.Context, mode domain.Mode, p domain.PaginationParams) ([]domain.ExportRecord, int64, error)
}

func (m *mockExportRepo) Create(ctx context.Context, rec domain.ExportRecord) (domain.ExportRecord, error) {
	return m.create(ctx, rec)
}
func (m *mockExportRepo) List(ctx context.Context, mode domain.Mode, p domain.PaginationParams) ([]domain.ExportRecord, int64, error) {
	return m.list(ctx, mode, p)
}

var _ repo.ExportRepo = (*mockExportRepo)(nil)

// ---- fetcher ---------------------------------------------------------------

type mockFetcher struct {
	listRecords func(ctx context.Context, table string) ([]normalize.RESTRecord, error)
	baseName    func(ctx context.Context) (string, error)
}

func (m *mockFetcher) ListRecords(ctx context.Context, table string) ([]normalize.RESTRecord, error) {
	return m.listRecords(ctx, table)
}
func (m *mockFetcher) BaseName(ctx context.Context) (string, error) {
	return m.baseName(ctx)
}

var _ service.Fetcher = (*mockFetcher)(nil)
