package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/festsched/internal/domain"
)

// Setting is one stored key/value pair.
type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// SettingsRepo is a small key/value store for titles and the cached header image.
type SettingsRepo interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key has never been set.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error

	// List returns every setting whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Setting, error)
}

// pgSettingsRepo is the Postgres implementation of SettingsRepo.
type pgSettingsRepo struct {
	db db
}

// NewSettingsRepo constructs a SettingsRepo backed by the provided db connection.
func NewSettingsRepo(db db) SettingsRepo {
	return &pgSettingsRepo{db: db}
}

func (r *pgSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM settings WHERE key = @key`

	var value string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("repo.SettingsRepo.Get: %q: %w", key, domain.ErrNotFound)
		}
		return "", fmt.Errorf("repo.SettingsRepo.Get: %w", err)
	}
	return value, nil
}

func (r *pgSettingsRepo) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO settings (key, value)
		VALUES (@key, @value)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"key": key, "value": value}); err != nil {
		return fmt.Errorf("repo.SettingsRepo.Set: %w", err)
	}
	return nil
}

func (r *pgSettingsRepo) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM settings WHERE key = @key`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"key": key})
	if err != nil {
		return fmt.Errorf("repo.SettingsRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SettingsRepo.Delete: %q: %w", key, domain.ErrNotFound)
	}
	return nil
}

// List returns settings whose key starts with prefix. Pass prefix="" for all.
func (r *pgSettingsRepo) List(ctx context.Context, prefix string) ([]Setting, error) {
	const q = `
		SELECT key, value
		FROM settings
		WHERE key LIKE @prefix || '%'
		ORDER BY key`

	settings := []Setting{}
	if err := pgxscan.Select(ctx, r.db, &settings, q, pgx.NamedArgs{"prefix": prefix}); err != nil {
		return nil, fmt.Errorf("repo.SettingsRepo.List: %w", err)
	}
	return settings, nil
}
