// Package pipeline turns stored client records into metrics and portfolio rollups.
package pipeline

import (
	"strings"
	"time"

	"caseburn/internal/model"
	"caseburn/internal/viability"
)

// WeeksPerMonth converts weekly revenue to the monthly projection.
const WeeksPerMonth = 4.33

// Aggregate computes metrics for every record and the caseload rollup.
// Records the engine rejects are left out and counted in the rollup.
// Metrics keep the input order.
func Aggregate(records []model.ClientRecord, asOf time.Time) ([]model.ClientMetrics, model.CaseloadRollup) {
	return AggregateWith(records, asOf, viability.DefaultOptions())
}

// AggregateWith is Aggregate with explicit parsing options.
func AggregateWith(records []model.ClientRecord, asOf time.Time, opts viability.Options) ([]model.ClientMetrics, model.CaseloadRollup) {
	metrics := make([]model.ClientMetrics, 0, len(records))
	var skipped []model.SkippedRecord

	for i, r := range records {
		m, err := viability.ComputeMetricsWith(r, asOf, opts)
		if err != nil {
			skipped = append(skipped, model.SkippedRecord{Index: i, ID: r.ID, Reason: err.Error()})
			continue
		}
		metrics = append(metrics, m)
	}

	rollup := Rollup(metrics)
	rollup.Skipped = skipped
	rollup.SkippedCount = len(skipped)
	return metrics, rollup
}

// Rollup sums portfolio totals over already-computed metrics.
func Rollup(metrics []model.ClientMetrics) model.CaseloadRollup {
	r := model.CaseloadRollup{
		Participants: len(metrics),
		StatusCounts: make(map[model.Status]int, len(model.AllStatuses)),
	}
	for _, m := range metrics {
		r.TotalFunds += m.Balance
		r.WeeklyRevenue += m.WeeklyCost
		r.StatusCounts[m.Status]++
		if m.Status == model.CriticalShortfall {
			r.CriticalRiskCount++
		}
	}
	r.ProjectedMonthlyRevenue = r.WeeklyRevenue * WeeksPerMonth
	return r
}

// Watchlist returns the clients in critical shortfall, in caseload order.
func Watchlist(metrics []model.ClientMetrics) []model.ClientMetrics {
	return FilterByStatus(metrics, model.CriticalShortfall)
}

// FilterByStatus returns metrics with any of the given statuses.
func FilterByStatus(metrics []model.ClientMetrics, statuses ...model.Status) []model.ClientMetrics {
	want := make(map[model.Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	var out []model.ClientMetrics
	for _, m := range metrics {
		if want[m.Status] {
			out = append(out, m)
		}
	}
	return out
}

// FilterByName returns metrics whose name or NDIS number contains query (case-insensitive).
func FilterByName(metrics []model.ClientMetrics, query string) []model.ClientMetrics {
	if query == "" {
		return metrics
	}
	var out []model.ClientMetrics
	for _, m := range metrics {
		if containsIgnoreCase(m.Name, query) || containsIgnoreCase(m.NDISNumber, query) {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the metrics for a client by exact id, or by a unique
// case-insensitive name or id prefix.
func Find(metrics []model.ClientMetrics, ref string) (model.ClientMetrics, bool) {
	for _, m := range metrics {
		if m.ID == ref {
			return m, true
		}
	}

	var match model.ClientMetrics
	found := 0
	for _, m := range metrics {
		if strings.EqualFold(m.Name, ref) || strings.HasPrefix(m.ID, ref) {
			match = m
			found++
		}
	}
	return match, found == 1
}

// ParseStatus parses a status name such as "critical" or "MONITORING_REQUIRED".
func ParseStatus(s string) (model.Status, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	for _, st := range model.AllStatuses {
		full := st.Key()
		if key == full || strings.HasPrefix(full, key) && key != "" {
			return st, true
		}
	}
	return 0, false
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
