package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/repo"
)

func exportFixture(mode domain.Mode) domain.ExportRecord {
	return domain.ExportRecord{
		Mode:     mode,
		Title:    "FEST - SCHEDULE",
		Filename: "FEST - SCHEDULE.pdf",
		Format:   "pdf",
		ByteSize: 4096,
	}
}

func TestExportRepo_Create(t *testing.T) {
	r := repo.NewExportRepo(newTestTx(t))

	got, err := r.Create(context.Background(), exportFixture(domain.ModeSchedule))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, domain.ModeSchedule, got.Mode)
	assert.Equal(t, int64(4096), got.ByteSize)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
}

func TestExportRepo_List_filterAndPage(t *testing.T) {
	r := repo.NewExportRepo(newTestTx(t))
	ctx := context.Background()

	for _, m := range []domain.Mode{domain.ModeSchedule, domain.ModeTeam, domain.ModeTeam, domain.ModeTeam} {
		_, err := r.Create(ctx, exportFixture(m))
		require.NoError(t, err)
	}

	page, limit := 1, 2
	got, total, err := r.List(ctx, domain.ModeTeam, domain.NewPaginationParams(&page, &limit))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, domain.ModeTeam, e.Mode)
	}

	all, total, err := r.List(ctx, "", domain.NewPaginationParams(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)
}
