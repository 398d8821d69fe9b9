package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/festsched/internal/domain"
)

// builder produces Postgres ($1, $2, ...) placeholders.
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ExportRepo stores the history of rendered documents.
type ExportRepo interface {
	// Create inserts an export record and returns it with the DB-generated
	// id and created_at populated.
	Create(ctx context.Context, rec domain.ExportRecord) (domain.ExportRecord, error)

	// List returns one page of exports, newest first, and the total number of
	// matching rows. An empty mode matches every mode.
	List(ctx context.Context, mode domain.Mode, p domain.PaginationParams) ([]domain.ExportRecord, int64, error)
}

// pgExportRepo is the Postgres implementation of ExportRepo.
type pgExportRepo struct {
	db db
}

// NewExportRepo constructs an ExportRepo backed by the provided db connection.
func NewExportRepo(db db) ExportRepo {
	return &pgExportRepo{db: db}
}

func (r *pgExportRepo) Create(ctx context.Context, rec domain.ExportRecord) (domain.ExportRecord, error) {
	const q = `
		INSERT INTO exports (mode, title, filename, format, byte_size)
		VALUES (@mode, @title, @filename, @format, @byte_size)
		RETURNING id, mode, title, filename, format, byte_size, created_at`

	args := pgx.NamedArgs{
		"mode":      string(rec.Mode),
		"title":     rec.Title,
		"filename":  rec.Filename,
		"format":    rec.Format,
		"byte_size": rec.ByteSize,
	}

	result, err := scanExport(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ExportRecord{}, fmt.Errorf("repo.ExportRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgExportRepo) List(ctx context.Context, mode domain.Mode, p domain.PaginationParams) ([]domain.ExportRecord, int64, error) {
	where := squirrel.And{}
	if mode != "" {
		where = append(where, squirrel.Eq{"mode": string(mode)})
	}

	countSQL, countArgs, err := builder.Select("COUNT(*)").From("exports").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ExportRepo.List: build count: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ExportRepo.List: count: %w", err)
	}

	listSQL, listArgs, err := builder.
		Select("id", "mode", "title", "filename", "format", "byte_size", "created_at").
		From("exports").
		Where(where).
		OrderBy("created_at DESC", "id").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ExportRepo.List: build: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ExportRepo.List: %w", err)
	}
	defer rows.Close()

	exports := []domain.ExportRecord{}
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ExportRepo.List: scan: %w", err)
		}
		exports = append(exports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ExportRepo.List: rows: %w", err)
	}
	return exports, total, nil
}

// scanExport maps a single database row into a domain.ExportRecord.
func scanExport(s scanner) (domain.ExportRecord, error) {
	var (
		e    domain.ExportRecord
		id   pgtype.UUID
		mode string
	)
	err := s.Scan(&id, &mode, &e.Title, &e.Filename, &e.Format, &e.ByteSize, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ExportRecord{}, domain.ErrNotFound
		}
		return domain.ExportRecord{}, err
	}
	e.ID = uuid.UUID(id.Bytes)
	e.Mode = domain.Mode(mode)
	return e, nil
}
