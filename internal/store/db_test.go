package store

import (
	"context"
	"path/filepath"
	"testing"

	"caseburn/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "caseload.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveLoad_PreservesOrderAndFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	recs := []model.ClientRecord{
		{ID: "z", Name: "Zed", SupportLevel: model.Level3, HourlyRate: 190.41, Balance: -120.5, PlanEnd: "2025-12-31", HoursPerWeek: 2, Notes: "line1\nline2"},
		{ID: "a", Name: "Amy", NDISNumber: "430123456", SupportLevel: model.Level2, TotalBudget: 18000, Balance: 15000, HoursPerWeek: 1.5},
	}
	require.NoError(t, db.SaveClients(ctx, recs))

	got, err := db.LoadClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, recs, got)

	n, err := db.ClientCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSaveClients_ReplacesPreviousList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveClients(ctx, []model.ClientRecord{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, db.SaveClients(ctx, []model.ClientRecord{{ID: "b", Name: "only"}}))

	got, err := db.LoadClients(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "only", got[0].Name)
}

func TestSaveClients_DuplicateIDRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveClients(ctx, []model.ClientRecord{{ID: "keep"}}))
	err := db.SaveClients(ctx, []model.ClientRecord{{ID: "x"}, {ID: "x"}})
	require.Error(t, err)

	got, err := db.LoadClients(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].ID)
}

func TestLastSaved(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ts, err := db.LastSaved(ctx)
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	require.NoError(t, db.SaveClients(ctx, nil))
	ts, err = db.LastSaved(ctx)
	require.NoError(t, err)
	assert.False(t, ts.IsZero())
}

func TestSaveClients_RetiredIDsAccumulate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ids, err := db.LoadRetired(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, db.SaveClients(ctx, []model.ClientRecord{{ID: "b"}}, "c", "a"))
	require.NoError(t, db.SaveClients(ctx, nil, "a", "d"))

	ids, err = db.LoadRetired(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, ids)
}
