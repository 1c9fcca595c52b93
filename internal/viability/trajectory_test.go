package viability

import (
	"testing"

	"caseburn/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrajectory_LengthAndShape(t *testing.T) {
	m, err := ComputeMetrics(record(1000, 1, 100, weeksOut(10)), asOf)
	require.NoError(t, err)

	pts := Trajectory(m, asOf)
	require.Len(t, pts, 16) // weeks 0..15

	assert.Equal(t, civilDay(asOf), pts[0].Date)
	assert.Equal(t, civilDay(asOf).AddDate(0, 0, 7*15), pts[15].Date)
	assert.Equal(t, 1000.0, pts[0].Actual)
	assert.Equal(t, 1000.0, pts[0].Ideal)
	assert.InDelta(t, 500, pts[5].Actual, 1e-9)
	assert.InDelta(t, 500, pts[5].Ideal, 1e-9)
	assert.Zero(t, pts[10].Ideal)
	assert.Zero(t, pts[12].Actual, "floored at zero")
}

func TestTrajectory_MinimumLength(t *testing.T) {
	m := model.ClientMetrics{Balance: 300, WeeklyCost: 100, WeeksRemaining: 0}

	pts := Trajectory(m, asOf)
	require.Len(t, pts, 7) // max(floor(0),1)+5 = 6 -> weeks 0..6
	for _, p := range pts {
		assert.Zero(t, p.Ideal, "no ideal burn once the plan has ended")
	}
	assert.InDelta(t, 100, pts[2].Actual, 1e-9)
	assert.Zero(t, pts[3].Actual)
}

func TestTrajectory_Restartable(t *testing.T) {
	m, err := ComputeMetrics(record(8000, 2, 100.14, weeksOut(30)), asOf)
	require.NoError(t, err)
	assert.Equal(t, Trajectory(m, asOf), Trajectory(m, asOf))
}

func TestTrajectory_NegativeBalanceFloorsActual(t *testing.T) {
	m := model.ClientMetrics{Balance: -500, WeeklyCost: 50, WeeksRemaining: 3.5}
	pts := Trajectory(m, asOf)
	require.Len(t, pts, 9)
	for _, p := range pts {
		assert.Zero(t, p.Actual)
	}
	assert.Zero(t, pts[0].Ideal)
}
