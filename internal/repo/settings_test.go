package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/repo"
)

func TestSettingsRepo_SetGet(t *testing.T) {
	r := repo.NewSettingsRepo(newTestTx(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "title.schedule", "FEST - SCHEDULE"))
	require.NoError(t, r.Set(ctx, "title.schedule", "FEST 2025 - SCHEDULE"))

	got, err := r.Get(ctx, "title.schedule")

	require.NoError(t, err)
	assert.Equal(t, "FEST 2025 - SCHEDULE", got)
}

func TestSettingsRepo_Get_NotFound(t *testing.T) {
	r := repo.NewSettingsRepo(newTestTx(t))

	_, err := r.Get(context.Background(), "no.such.key")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettingsRepo_Delete(t *testing.T) {
	r := repo.NewSettingsRepo(newTestTx(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "header_image", "data:image/png;base64,AAAA"))
	require.NoError(t, r.Delete(ctx, "header_image"))

	_, err := r.Get(ctx, "header_image")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "header_image"), domain.ErrNotFound)
}

func TestSettingsRepo_List_prefix(t *testing.T) {
	r := repo.NewSettingsRepo(newTestTx(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "title.team", "T"))
	require.NoError(t, r.Set(ctx, "title.schedule", "S"))
	require.NoError(t, r.Set(ctx, "header_image", "X"))

	got, err := r.List(ctx, "title.")

	require.NoError(t, err)
	assert.Equal(t, []repo.Setting{{Key: "title.schedule", Value: "S"}, {Key: "title.team", Value: "T"}}, got)
}
