// Package repo contains all database access logic for FestSched.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/festsched/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Begin on a pgx.Tx opens a savepoint.
// Integration tests pass a transaction that is rolled back after each test;
// unit tests pass a pgxmock connection.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RecordRepo is the local cache of the three source tables.
type RecordRepo interface {
	// ReplaceTable makes the cached contents of table exactly records, in
	// order. Rows missing from records are deleted. Duplicate IDs keep their
	// first occurrence.
	ReplaceTable(ctx context.Context, table domain.Table, records []domain.Record) error

	// ReplaceTables applies ReplaceTable to every entry in one transaction.
	// Either all tables are replaced or none are.
	ReplaceTables(ctx context.Context, tables map[domain.Table][]domain.Record) error

	// ListByTable returns the cached records of table in the order they were
	// stored. It returns nil when the table has never been loaded, and an
	// empty slice when it was loaded with no records.
	ListByTable(ctx context.Context, table domain.Table) ([]domain.Record, error)
}

// pgRecordRepo is the Postgres implementation of RecordRepo.
type pgRecordRepo struct {
	db db
}

// NewRecordRepo constructs a RecordRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRecordRepo(db db) RecordRepo {
	return &pgRecordRepo{db: db}
}

// cachedRecord is the JSON shape handed to jsonb_to_recordset.
type cachedRecord struct {
	ID          string        `json:"id"`
	CreatedTime string        `json:"created_time"`
	Fields      domain.Fields `json:"fields"`
	Position    int           `json:"position"`
}

// ReplaceTable upserts every record, deletes the rest and marks the table as
// loaded in one statement, so readers never observe a half-replaced table.
func (r *pgRecordRepo) ReplaceTable(ctx context.Context, table domain.Table, records []domain.Record) error {
	if !table.Valid() {
		return fmt.Errorf("repo.RecordRepo.ReplaceTable: table %q: %w", table, domain.ErrValidation)
	}

	seen := make(map[string]bool, len(records))
	rows := make([]cachedRecord, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" || seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		rows = append(rows, cachedRecord{
			ID:          rec.ID,
			CreatedTime: rec.CreatedTime,
			Fields:      rec.Fields,
			Position:    len(rows),
		})
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("repo.RecordRepo.ReplaceTable: encode: %w", err)
	}

	const q = `
		WITH incoming AS (
			SELECT r.id, r.created_time, r.fields, r.position
			FROM jsonb_to_recordset(@records::jsonb)
			     AS r(id TEXT, created_time TEXT, fields JSONB, position INTEGER)
		), upserted AS (
			INSERT INTO records (table_name, id, created_time, fields, position, synced_at)
			SELECT @table_name, id, created_time, fields, position, now()
			FROM incoming
			ON CONFLICT (table_name, id) DO UPDATE
			SET created_time = EXCLUDED.created_time,
			    fields       = EXCLUDED.fields,
			    position     = EXCLUDED.position,
			    synced_at    = EXCLUDED.synced_at
			RETURNING id
		), marked AS (
			INSERT INTO loaded_tables (table_name, loaded_at)
			VALUES (@table_name, now())
			ON CONFLICT (table_name) DO UPDATE SET loaded_at = EXCLUDED.loaded_at
		)
		DELETE FROM records
		WHERE table_name = @table_name
		  AND id NOT IN (SELECT id FROM incoming)`

	args := pgx.NamedArgs{
		"records":    string(payload),
		"table_name": string(table),
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.RecordRepo.ReplaceTable: %w", err)
	}
	return nil
}

// ReplaceTables replaces every table in tables inside one transaction, in
// domain.Tables order.
func (r *pgRecordRepo) ReplaceTables(ctx context.Context, tables map[domain.Table][]domain.Record) error {
	for table := range tables {
		if !table.Valid() {
			return fmt.Errorf("repo.RecordRepo.ReplaceTables: table %q: %w", table, domain.ErrValidation)
		}
	}
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		txRepo := &pgRecordRepo{db: tx}
		for _, table := range domain.Tables {
			records, ok := tables[table]
			if !ok {
				continue
			}
			if err := txRepo.ReplaceTable(ctx, table, records); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.RecordRepo.ReplaceTables: %w", err)
	}
	return nil
}

// ListByTable returns the cached rows of one table ordered by position.
func (r *pgRecordRepo) ListByTable(ctx context.Context, table domain.Table) ([]domain.Record, error) {
	const q = `
		SELECT id, created_time, fields
		FROM records
		WHERE table_name = @table_name
		ORDER BY position, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"table_name": string(table)})
	if err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.ListByTable: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RecordRepo.ListByTable: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.ListByTable: rows: %w", err)
	}
	rows.Close()
	if records != nil {
		return records, nil
	}

	const loadedQ = `SELECT EXISTS (SELECT 1 FROM loaded_tables WHERE table_name = @table_name)`
	var loaded bool
	if err := r.db.QueryRow(ctx, loadedQ, pgx.NamedArgs{"table_name": string(table)}).Scan(&loaded); err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.ListByTable: loaded: %w", err)
	}
	if loaded {
		return []domain.Record{}, nil
	}
	return records, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord maps a single row into a domain.Record. Relation slices are
// never nil on the way out.
func scanRecord(s scanner) (domain.Record, error) {
	var (
		rec    domain.Record
		fields []byte
	)
	if err := s.Scan(&rec.ID, &rec.CreatedTime, &fields); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Record{}, domain.ErrNotFound
		}
		return domain.Record{}, err
	}
	if err := json.Unmarshal(fields, &rec.Fields); err != nil {
		return domain.Record{}, fmt.Errorf("decode fields of %s: %w", rec.ID, err)
	}
	for _, s := range []*[]string{
		&rec.Fields.Coordinator, &rec.Fields.TeamMembers, &rec.Fields.Standby,
		&rec.Fields.TeamMember, &rec.Fields.Department,
	} {
		if *s == nil {
			*s = []string{}
		}
	}
	return rec, nil
}
