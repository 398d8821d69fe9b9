package repo_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/repo"
	"github.com/pkordes/festsched/testutil"
)

// newTestTx opens a transaction against the test database. The transaction
// is rolled back when the test finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL to be set; TestMain applies the migrations.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

func recordFixture(id, service string) domain.Record {
	return domain.Record{
		ID:          id,
		CreatedTime: "2025-01-01T00:00:00.000Z",
		Fields: domain.Fields{
			Service:     service,
			Date:        "2025-01-02",
			Coordinator: []string{"tm1"},
			TeamMembers: []string{},
			Standby:     []string{},
			TeamMember:  []string{},
			Department:  []string{},
		},
	}
}

func TestRecordRepo_ReplaceTable_roundTrip(t *testing.T) {
	r := repo.NewRecordRepo(newTestTx(t))
	ctx := context.Background()

	want := []domain.Record{recordFixture("s2", "Parking"), recordFixture("s1", "Kitchen")}
	require.NoError(t, r.ReplaceTable(ctx, domain.TableServices, want))

	got, err := r.ListByTable(ctx, domain.TableServices)

	require.NoError(t, err)
	assert.Equal(t, want, got, "records come back in insertion order")
}

func TestRecordRepo_ReplaceTable_removesStaleRows(t *testing.T) {
	r := repo.NewRecordRepo(newTestTx(t))
	ctx := context.Background()

	require.NoError(t, r.ReplaceTable(ctx, domain.TableServices, []domain.Record{
		recordFixture("s1", "Kitchen"), recordFixture("s2", "Parking"),
	}))
	require.NoError(t, r.ReplaceTable(ctx, domain.TableServices, []domain.Record{
		recordFixture("s2", "Parking lot"),
	}))

	got, err := r.ListByTable(ctx, domain.TableServices)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s2", got[0].ID)
	assert.Equal(t, "Parking lot", got[0].Fields.Service)
}

func TestRecordRepo_ReplaceTable_tablesAreIndependent(t *testing.T) {
	r := repo.NewRecordRepo(newTestTx(t))
	ctx := context.Background()

	require.NoError(t, r.ReplaceTable(ctx, domain.TableServices, []domain.Record{recordFixture("x1", "Kitchen")}))
	require.NoError(t, r.ReplaceTable(ctx, domain.TableActivities, []domain.Record{recordFixture("x1", "Aarti")}))

	services, err := r.ListByTable(ctx, domain.TableServices)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Kitchen", services[0].Fields.Service)
}

func TestRecordRepo_ReplaceTable_emptyClearsTable(t *testing.T) {
	r := repo.NewRecordRepo(newTestTx(t))
	ctx := context.Background()

	require.NoError(t, r.ReplaceTable(ctx, domain.TableTeam, []domain.Record{recordFixture("tm1", "")}))
	require.NoError(t, r.ReplaceTable(ctx, domain.TableTeam, []domain.Record{}))

	got, err := r.ListByTable(ctx, domain.TableTeam)

	require.NoError(t, err)
	require.NotNil(t, got, "a table loaded empty is still loaded")
	assert.Empty(t, got)
}

func TestRecordRepo_ReplaceTables_invalidTableWritesNothing(t *testing.T) {
	r := repo.NewRecordRepo(newTestTx(t))
	ctx := context.Background()

	err := r.ReplaceTables(ctx, map[domain.Table][]domain.Record{
		domain.TableServices: {recordFixture("s1", "Kitchen")},
		"bogus":              {},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := r.ListByTable(ctx, domain.TableServices)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordRepo_ReplaceTables_roundTrip(t *testing.T) {
	r := repo.NewRecordRepo(newTestTx(t))
	ctx := context.Background()

	require.NoError(t, r.ReplaceTables(ctx, map[domain.Table][]domain.Record{
		domain.TableServices: {recordFixture("s1", "Kitchen")},
		domain.TableTeam:     {},
	}))

	services, err := r.ListByTable(ctx, domain.TableServices)
	require.NoError(t, err)
	require.Len(t, services, 1)

	members, err := r.ListByTable(ctx, domain.TableTeam)
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)
}
