// Package report assembles the caseload master report and renders it as
// a Word document or Markdown.
package report

import (
	"math"
	"time"

	"caseburn/internal/model"
	"caseburn/internal/pipeline"
)

// Document titles and fixed lines.
const (
	Title            = "Caseload Master Report"
	ConfidentialLine = "Confidential: Internal Use Only"
)

// WatchItem is one line of the critical risk watchlist.
type WatchItem struct {
	Name          string
	DepletionDate time.Time
	Shortfall     float64 // positive dollars
}

// SummaryRow is one row of the executive summary table.
type SummaryRow struct {
	Participant string
	Status      model.Status
	PlanEnd     time.Time
	Outcome     float64
}

// Document is the assembled report, independent of output format.
type Document struct {
	GeneratedAt time.Time
	Rollup      model.CaseloadRollup
	Watchlist   []WatchItem
	Summary     []SummaryRow
	Clients     []model.ClientMetrics
}

// Assemble builds the report content from computed metrics.
func Assemble(metrics []model.ClientMetrics, rollup model.CaseloadRollup, generatedAt time.Time) Document {
	doc := Document{
		GeneratedAt: generatedAt,
		Rollup:      rollup,
		Clients:     metrics,
		Summary:     make([]SummaryRow, 0, len(metrics)),
	}

	for _, m := range pipeline.Watchlist(metrics) {
		doc.Watchlist = append(doc.Watchlist, WatchItem{
			Name:          m.Name,
			DepletionDate: m.DepletionDate,
			Shortfall:     math.Abs(m.Surplus),
		})
	}

	for _, m := range metrics {
		doc.Summary = append(doc.Summary, SummaryRow{
			Participant: m.Name,
			Status:      m.Status,
			PlanEnd:     m.PlanEnd,
			Outcome:     m.Surplus,
		})
	}
	return doc
}

// FileName returns the conventional report file name for a date.
func FileName(t time.Time) string {
	return "Caseload_Report_" + t.Format("2006-01-02") + ".docx"
}
