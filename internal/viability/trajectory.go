package viability

import (
	"math"
	"time"

	"caseburn/internal/model"
)

// trajectoryTailWeeks extends the chart past the plan end.
const trajectoryTailWeeks = 5

// Trajectory projects the weekly balance from asOf to a few weeks past plan end.
//
// Actual follows the current weekly cost; Ideal is the straight line that
// reaches zero exactly at plan end. Both are floored at zero. The series runs
// from week 0 to max(floor(weeksRemaining), 1)+5 inclusive.
func Trajectory(m model.ClientMetrics, asOf time.Time) []model.TrajectoryPoint {
	today := civilDay(asOf)
	last := max(int(math.Floor(m.WeeksRemaining)), 1) + trajectoryTailWeeks

	idealBurn := 0.0
	if m.WeeksRemaining > 0 {
		idealBurn = m.Balance / m.WeeksRemaining
	}

	points := make([]model.TrajectoryPoint, 0, last+1)
	for w := 0; w <= last; w++ {
		ideal := 0.0
		if m.WeeksRemaining > 0 {
			ideal = math.Max(0, m.Balance-float64(w)*idealBurn)
		}
		points = append(points, model.TrajectoryPoint{
			Week:   w,
			Date:   today.AddDate(0, 0, 7*w),
			Actual: math.Max(0, m.Balance-float64(w)*m.WeeklyCost),
			Ideal:  ideal,
		})
	}
	return points
}
