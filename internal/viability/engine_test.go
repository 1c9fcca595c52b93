package viability

import (
	"errors"
	"math"
	"testing"
	"time"

	"caseburn/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2025, 3, 3, 15, 4, 5, 0, time.UTC)

func weeksOut(n int) string {
	return civilDay(asOf).AddDate(0, 0, 7*n).Format(LayoutISO)
}

func record(balance, hours, rate float64, planEnd string) model.ClientRecord {
	return model.ClientRecord{
		ID:           "c-1",
		Name:         "Test Participant",
		SupportLevel: model.Level2,
		HourlyRate:   rate,
		Balance:      balance,
		PlanEnd:      planEnd,
		HoursPerWeek: hours,
	}
}

func TestComputeMetrics_ScenarioA_RobustSurplus(t *testing.T) {
	m, err := ComputeMetrics(record(15000, 1.5, 100.14, weeksOut(40)), asOf)
	require.NoError(t, err)

	assert.InDelta(t, 150.21, m.WeeklyCost, 1e-9)
	assert.InDelta(t, 40, m.WeeksRemaining, 1e-9)
	assert.InDelta(t, 99.86, m.RunwayWeeks, 0.01)
	assert.Equal(t, model.RobustSurplus, m.Status)
	assert.Equal(t, "#10b981", m.RiskColor)
	assert.InDelta(t, 15000-150.21*40, m.Surplus, 1e-6)
	assert.InDelta(t, 150.21*40, m.RequiredToFinish, 1e-6)
}

func TestComputeMetrics_ScenarioB_CriticalShortfall(t *testing.T) {
	rec := record(1000, 5, 190.41, weeksOut(10))
	rec.SupportLevel = model.Level3
	m, err := ComputeMetrics(rec, asOf)
	require.NoError(t, err)

	assert.InDelta(t, 952.05, m.WeeklyCost, 1e-9)
	assert.InDelta(t, 1.05, m.RunwayWeeks, 0.01)
	assert.InDelta(t, 10, m.WeeksRemaining, 1e-9)
	assert.Equal(t, model.CriticalShortfall, m.Status)
	assert.Equal(t, "#ef4444", m.RiskColor)
	assert.Equal(t, "risk", m.RiskTier)

	// floor(1.0503 * 7) = 7 days
	assert.Equal(t, civilDay(asOf).AddDate(0, 0, 7), m.DepletionDate)
}

func TestComputeMetrics_ScenarioC_BadPlanEndFallsBack(t *testing.T) {
	for _, planEnd := range []string{"", "not a date", "2025-13-45", "31-12-2025"} {
		t.Run(planEnd, func(t *testing.T) {
			m, err := ComputeMetrics(record(5000, 1, 100, planEnd), asOf)
			require.NoError(t, err)
			assert.True(t, m.PlanEndFallback)
			assert.Equal(t, civilDay(asOf).AddDate(0, 0, 280), m.PlanEnd)
			assert.InDelta(t, 40, m.WeeksRemaining, 1e-9)
		})
	}
}

func TestComputeMetrics_ScenarioD_ZeroHoursIsRobust(t *testing.T) {
	for _, balance := range []float64{-2500, 0, 12000} {
		m, err := ComputeMetrics(record(balance, 0, 100.14, weeksOut(20)), asOf)
		require.NoError(t, err)
		assert.Zero(t, m.WeeklyCost)
		assert.Equal(t, InfiniteRunwayWeeks, m.RunwayWeeks)
		assert.Equal(t, model.RobustSurplus, m.Status, "balance %.0f", balance)
	}
}

func TestComputeMetrics_MissingIDIsValidationError(t *testing.T) {
	rec := record(100, 1, 100, weeksOut(4))
	rec.ID = "   "

	_, err := ComputeMetrics(rec, asOf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "missing id", ve.Reason)
}

func TestComputeMetrics_Defaults(t *testing.T) {
	rec := model.ClientRecord{
		ID:           "c-2",
		SupportLevel: "Level 3",
		HourlyRate:   math.NaN(),
		Balance:      math.Inf(1),
		HoursPerWeek: -3,
		PlanEnd:      weeksOut(8),
	}
	m, err := ComputeMetrics(rec, asOf)
	require.NoError(t, err)

	assert.Equal(t, "Unknown", m.Name)
	assert.Equal(t, 190.41, m.HourlyRate)
	assert.Zero(t, m.Balance)
	assert.Zero(t, m.HoursPerWeek)
	assert.Equal(t, InfiniteRunwayWeeks, m.RunwayWeeks)
}

func TestEffectiveRate(t *testing.T) {
	assert.Equal(t, 120.0, EffectiveRate(model.ClientRecord{HourlyRate: 120}))
	assert.Equal(t, 190.41, EffectiveRate(model.ClientRecord{SupportLevel: model.Level3}))
	assert.Equal(t, 100.14, EffectiveRate(model.ClientRecord{SupportLevel: "Plan Management"}))
	assert.Equal(t, 100.14, EffectiveRate(model.ClientRecord{HourlyRate: -5}))
	assert.Equal(t, 190.41, EffectiveRate(model.ClientRecord{HourlyRate: 0, SupportLevel: model.Level3}), "zero rate reads as not stored")
}

func TestComputeMetrics_PlanAlreadyEnded(t *testing.T) {
	past := civilDay(asOf).AddDate(0, 0, -30).Format(LayoutISO)

	m, err := ComputeMetrics(record(50, 1, 100, past), asOf)
	require.NoError(t, err)
	assert.Zero(t, m.WeeksRemaining)
	assert.Equal(t, model.RobustSurplus, m.Status, "non-negative runway with no weeks left")

	m, err = ComputeMetrics(record(-50, 1, 100, past), asOf)
	require.NoError(t, err)
	assert.Equal(t, model.CriticalShortfall, m.Status, "negative balance with no weeks left")
}

func TestComputeMetrics_DMYDates(t *testing.T) {
	dmy := civilDay(asOf).AddDate(0, 0, 70).Format("02/01/2006")

	m, err := ComputeMetrics(record(1000, 1, 100, dmy), asOf)
	require.NoError(t, err)
	assert.False(t, m.PlanEndFallback)
	assert.InDelta(t, 10, m.WeeksRemaining, 1e-9)

	m, err = ComputeMetricsWith(record(1000, 1, 100, dmy), asOf, NewOptions(false))
	require.NoError(t, err)
	assert.True(t, m.PlanEndFallback, "DD/MM/YYYY disabled")
}

func TestComputeMetrics_Idempotent(t *testing.T) {
	rec := record(7321.5, 2.25, 100.14, weeksOut(17))
	a, errA := ComputeMetrics(rec, asOf)
	b, errB := ComputeMetrics(rec, asOf)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestComputeMetrics_HugeRunwayDepletionStaysAhead(t *testing.T) {
	m, err := ComputeMetrics(record(1e15, 1e-12, 100.14, weeksOut(10)), asOf)
	require.NoError(t, err)

	assert.Equal(t, model.RobustSurplus, m.Status)
	assert.Greater(t, m.RunwayWeeks, 1e18)
	assert.True(t, m.DepletionDate.After(civilDay(asOf).AddDate(1000, 0, 0)),
		"depletion %s should be far in the future", m.DepletionDate)
}

func TestDepletionDays_Clamped(t *testing.T) {
	assert.Equal(t, 14, depletionDays(2.1))
	assert.Equal(t, -8, depletionDays(-1.1))
	assert.Equal(t, maxDepletionDays, depletionDays(1e30))
	assert.Equal(t, maxDepletionDays, depletionDays(math.Inf(1)))
	assert.Equal(t, -maxDepletionDays, depletionDays(math.Inf(-1)))
	assert.Equal(t, 0, depletionDays(math.NaN()))
}

func TestClassify_Boundaries(t *testing.T) {
	const wr = 10.0
	eps := 1e-9

	tests := []struct {
		name   string
		runway float64
		want   model.Status
	}{
		{"exactly 1.2x", 12, model.RobustSurplus},
		{"just below 1.2x", 12 - eps, model.Sustainable},
		{"exactly weeks remaining", wr, model.Sustainable},
		{"just below weeks remaining", wr - eps, model.MonitoringRequired},
		{"exactly 4-week buffer", wr - 4, model.MonitoringRequired},
		{"just below buffer", wr - 4 - eps, model.CriticalShortfall},
		{"negative runway", -1, model.CriticalShortfall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.runway, wr))
		})
	}
}

func TestClassify_ShortPlanBufferClampsAtZero(t *testing.T) {
	// wr - 4 < 0, so any non-negative runway is at least MONITORING.
	assert.Equal(t, model.MonitoringRequired, Classify(0.5, 3))
	assert.Equal(t, model.CriticalShortfall, Classify(-0.1, 3))
}

func TestComputeMetrics_BoundaryThroughRecord(t *testing.T) {
	// weekly cost 100, 10 weeks left
	tests := []struct {
		balance float64
		want    model.Status
	}{
		{1200, model.RobustSurplus},
		{1000, model.Sustainable},
		{999.99, model.MonitoringRequired},
		{600, model.MonitoringRequired},
		{599, model.CriticalShortfall},
	}
	for _, tt := range tests {
		m, err := ComputeMetrics(record(tt.balance, 1, 100, weeksOut(10)), asOf)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.Status, "balance %.2f", tt.balance)
	}
}

func FuzzComputeMetrics(f *testing.F) {
	f.Add(15000.0, 1.5, 100.14, "2025-12-08")
	f.Add(-200.0, 0.0, 0.0, "")
	f.Add(1000.0, 5.0, 190.41, "31/12/2025")
	f.Add(1e15, 1e-12, 100.14, "2026-01-01")
	f.Add(-1e300, 1e-300, 0.0, "")

	f.Fuzz(func(t *testing.T, balance, hours, rate float64, planEnd string) {
		m, err := ComputeMetrics(record(balance, hours, rate, planEnd), asOf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Status < model.RobustSurplus || m.Status > model.CriticalShortfall {
			t.Fatalf("status out of range: %d", m.Status)
		}
		if m.WeeksRemaining < 0 {
			t.Fatalf("negative weeks remaining: %f", m.WeeksRemaining)
		}
		if m.WeeklyCost == 0 && (m.RunwayWeeks != InfiniteRunwayWeeks || m.Status != model.RobustSurplus) {
			t.Fatalf("zero spend gave runway %f status %s", m.RunwayWeeks, m.Status)
		}
		if m.RiskColor == "" {
			t.Fatal("missing risk color")
		}
		today := civilDay(asOf)
		if m.RunwayWeeks >= 1 && !m.DepletionDate.After(today) {
			t.Fatalf("runway %g weeks but depletion %s is not after %s", m.RunwayWeeks, m.DepletionDate, today)
		}
		if m.RunwayWeeks < 0 && m.DepletionDate.After(today) {
			t.Fatalf("negative runway %g but depletion %s is after %s", m.RunwayWeeks, m.DepletionDate, today)
		}
	})
}
