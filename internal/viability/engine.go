// Package viability computes the funding runway and plan health of a single client.
//
// Every function here is pure: the reference date is passed in and no state
// is kept between calls, so the same (record, asOf) always yields the same
// metrics.
package viability

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"caseburn/internal/config"
	"caseburn/internal/model"
)

const (
	// InfiniteRunwayWeeks stands in for the runway of a client with no spend.
	InfiniteRunwayWeeks = 999.0

	// FallbackPlanWeeks is how far past asOf a missing plan end is assumed to be.
	FallbackPlanWeeks = 40

	robustMultiplier  = 1.2
	monitorBufferWeek = 4.0

	// maxDepletionDays bounds the depletion offset so it fits an int on every platform.
	maxDepletionDays = math.MaxInt32
)

// ErrInvalidRecord marks a record that cannot be turned into metrics at all.
var ErrInvalidRecord = errors.New("viability: invalid record")

// ValidationError explains why a record was skipped.
type ValidationError struct {
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("viability: invalid record: %s", e.Reason)
	}
	return fmt.Sprintf("viability: invalid record %s: %s", e.ID, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRecord }

// riskTag is the presentation hint attached 1:1 to a status.
type riskTag struct {
	Color string
	Tier  string
}

var riskTags = map[model.Status]riskTag{
	model.RobustSurplus:      {Color: "#10b981", Tier: "safe"},
	model.Sustainable:        {Color: "#22c55e", Tier: "ok"},
	model.MonitoringRequired: {Color: "#eab308", Tier: "watch"},
	model.CriticalShortfall:  {Color: "#ef4444", Tier: "risk"},
}

// RiskColor returns the hex color for a status.
func RiskColor(s model.Status) string {
	return riskTags[s].Color
}

// RiskTier returns the short tier tag for a status.
func RiskTier(s model.Status) string {
	return riskTags[s].Tier
}

// ComputeMetrics derives a client's financial position as of the given date,
// accepting both ISO and DD/MM/YYYY plan end dates.
func ComputeMetrics(rec model.ClientRecord, asOf time.Time) (model.ClientMetrics, error) {
	return ComputeMetricsWith(rec, asOf, DefaultOptions())
}

// ComputeMetricsWith is ComputeMetrics with explicit parsing options.
//
// Bad numbers, unknown levels and unparseable dates are replaced with
// defaults rather than reported. Only a record without an id is rejected.
func ComputeMetricsWith(rec model.ClientRecord, asOf time.Time, opts Options) (model.ClientMetrics, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return model.ClientMetrics{}, &ValidationError{Reason: "missing id"}
	}

	today := civilDay(asOf)

	balance := finiteOrZero(rec.Balance)
	budget := finiteOrZero(rec.TotalBudget)
	hours := finiteOrZero(rec.HoursPerWeek)
	if hours < 0 {
		hours = 0
	}
	rate := EffectiveRate(rec)

	planEnd, ok := ParsePlanEnd(rec.PlanEnd, opts)
	if !ok {
		planEnd = today.AddDate(0, 0, FallbackPlanWeeks*7)
	}

	weeksRemaining := math.Max(0, daysBetween(today, planEnd)/7)
	weeklyCost := hours * rate

	runway := InfiniteRunwayWeeks
	if weeklyCost > 0 {
		runway = balance / weeklyCost
	}

	required := weeklyCost * weeksRemaining
	status := Classify(runway, weeksRemaining)

	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = "Unknown"
	}

	return model.ClientMetrics{
		ID:               id,
		Name:             name,
		NDISNumber:       rec.NDISNumber,
		SupportLevel:     rec.SupportLevel,
		HourlyRate:       rate,
		TotalBudget:      budget,
		Balance:          balance,
		HoursPerWeek:     hours,
		PlanEnd:          planEnd,
		Notes:            rec.Notes,
		PlanEndFallback:  !ok,
		WeeksRemaining:   weeksRemaining,
		WeeklyCost:       weeklyCost,
		RunwayWeeks:      runway,
		BufferWeeks:      runway - weeksRemaining,
		DepletionDate:    today.AddDate(0, 0, depletionDays(runway)),
		RequiredToFinish: required,
		Surplus:          balance - required,
		Status:           status,
		RiskColor:        RiskColor(status),
		RiskTier:         RiskTier(status),
	}, nil
}

// Classify assigns a status tier. The checks run top to bottom and the first
// match wins; the 1.2x surplus band and the flat 4-week buffer are separate rules.
func Classify(runwayWeeks, weeksRemaining float64) model.Status {
	switch {
	case runwayWeeks >= weeksRemaining*robustMultiplier:
		return model.RobustSurplus
	case runwayWeeks >= weeksRemaining:
		return model.Sustainable
	case runwayWeeks >= math.Max(0, weeksRemaining-monitorBufferWeek):
		return model.MonitoringRequired
	default:
		return model.CriticalShortfall
	}
}

// EffectiveRate returns the stored hourly rate when it is usable, otherwise the
// rate table entry for the support level, otherwise the Level 2 rate.
func EffectiveRate(rec model.ClientRecord) float64 {
	r := rec.HourlyRate
	if r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r) {
		return r
	}
	return config.RateFor(rec.SupportLevel)
}

// depletionDays converts a runway to whole days, clamped to maxDepletionDays
// in either direction.
func depletionDays(runwayWeeks float64) int {
	days := math.Floor(runwayWeeks * 7)
	switch {
	case math.IsNaN(days):
		return 0
	case days > maxDepletionDays:
		return maxDepletionDays
	case days < -maxDepletionDays:
		return -maxDepletionDays
	}
	return int(days)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
