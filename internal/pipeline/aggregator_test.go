package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"caseburn/internal/caseload"
	"caseburn/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func weeksOut(n int) string {
	return asOf.AddDate(0, 0, 7*n).Format("2006-01-02")
}

func sampleRecords() []model.ClientRecord {
	return []model.ClientRecord{
		{ID: "a", Name: "Alice", SupportLevel: model.Level2, Balance: 10000, HoursPerWeek: 2, PlanEnd: weeksOut(20)},
		{ID: "b", Name: "Bob", SupportLevel: model.Level2, Balance: 1000, HoursPerWeek: 5, PlanEnd: weeksOut(20)},
		{Name: "No ID"},
		{ID: "c", Name: "Cara", SupportLevel: model.Level3, Balance: 5000, HoursPerWeek: 0, PlanEnd: weeksOut(10)},
	}
}

func TestAggregate_Rollup(t *testing.T) {
	metrics, rollup := Aggregate(sampleRecords(), asOf)

	require.Len(t, metrics, 3)
	ids := make([]string, len(metrics))
	for i, m := range metrics {
		ids[i] = m.ID
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids); diff != "" {
		t.Errorf("metric order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 3, rollup.Participants)
	assert.InDelta(t, 16000.0, rollup.TotalFunds, 1e-9)
	wantWeekly := 2*100.14 + 5*100.14
	assert.InDelta(t, wantWeekly, rollup.WeeklyRevenue, 1e-9)
	assert.InDelta(t, wantWeekly*WeeksPerMonth, rollup.ProjectedMonthlyRevenue, 1e-9)
	assert.Equal(t, 1, rollup.CriticalRiskCount)
	assert.Equal(t, 2, rollup.StatusCounts[model.RobustSurplus])
	assert.Equal(t, 1, rollup.StatusCounts[model.CriticalShortfall])

	assert.Equal(t, 1, rollup.SkippedCount)
	require.Len(t, rollup.Skipped, 1)
	assert.Equal(t, 2, rollup.Skipped[0].Index)
	assert.Contains(t, rollup.Skipped[0].Reason, "missing id")
}

func TestAggregate_Empty(t *testing.T) {
	metrics, rollup := Aggregate(nil, asOf)
	assert.Empty(t, metrics)
	assert.Equal(t, 0, rollup.Participants)
	assert.Zero(t, rollup.TotalFunds)
	assert.Zero(t, rollup.ProjectedMonthlyRevenue)
	assert.Zero(t, rollup.SkippedCount)
}

func TestWatchlist(t *testing.T) {
	metrics, _ := Aggregate(sampleRecords(), asOf)
	w := Watchlist(metrics)
	require.Len(t, w, 1)
	assert.Equal(t, "Bob", w[0].Name)
}

func TestFilterByName(t *testing.T) {
	metrics, _ := Aggregate(sampleRecords(), asOf)
	assert.Len(t, FilterByName(metrics, ""), 3)

	got := FilterByName(metrics, "AL")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestFind(t *testing.T) {
	metrics, _ := Aggregate(sampleRecords(), asOf)

	m, ok := Find(metrics, "b")
	require.True(t, ok)
	assert.Equal(t, "Bob", m.Name)

	m, ok = Find(metrics, "cara")
	require.True(t, ok)
	assert.Equal(t, "c", m.ID)

	_, ok = Find(metrics, "nobody")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want model.Status
		ok   bool
	}{
		{"critical", model.CriticalShortfall, true},
		{"MONITORING_REQUIRED", model.MonitoringRequired, true},
		{"robust surplus", model.RobustSurplus, true},
		{"sustainable", model.Sustainable, true},
		{"", 0, false},
		{"bogus", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "caseload.db")

	recs := sampleRecords()
	recs = append(recs[:2], recs[3])
	s, err := caseload.NewStore(recs)
	require.NoError(t, err)
	require.NoError(t, Save(ctx, dbPath, s))

	res, err := Load(ctx, dbPath)
	require.NoError(t, err)
	if diff := cmp.Diff(recs, res.Store.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, res.LastSaved.IsZero())
}

func TestSaveLoad_DeletedIDsStayRetired(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "caseload.db")

	s, err := caseload.NewStore([]model.ClientRecord{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}})
	require.NoError(t, err)
	require.NoError(t, s.Delete("a"))
	require.NoError(t, Save(ctx, dbPath, s))

	res, err := Load(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.Store.Retired())

	_, err = res.Store.Add(model.ClientRecord{ID: "a", Name: "Again"})
	assert.ErrorIs(t, err, caseload.ErrDuplicateID)

	n, err := ClientCount(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
