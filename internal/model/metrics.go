package model

import "time"

// Status is the four-tier plan health classification.
type Status int

// Status tiers, ordered from healthiest to least healthy.
const (
	RobustSurplus Status = iota
	Sustainable
	MonitoringRequired
	CriticalShortfall
)

// AllStatuses lists every tier in display order.
var AllStatuses = []Status{RobustSurplus, Sustainable, MonitoringRequired, CriticalShortfall}

func (s Status) String() string {
	switch s {
	case RobustSurplus:
		return "ROBUST SURPLUS"
	case Sustainable:
		return "SUSTAINABLE"
	case MonitoringRequired:
		return "MONITORING REQUIRED"
	case CriticalShortfall:
		return "CRITICAL SHORTFALL"
	default:
		return "UNKNOWN"
	}
}

// Key returns the machine-readable status name, e.g. "CRITICAL_SHORTFALL".
func (s Status) Key() string {
	switch s {
	case RobustSurplus:
		return "ROBUST_SURPLUS"
	case Sustainable:
		return "SUSTAINABLE"
	case MonitoringRequired:
		return "MONITORING_REQUIRED"
	case CriticalShortfall:
		return "CRITICAL_SHORTFALL"
	default:
		return "UNKNOWN"
	}
}

// ClientMetrics is the derived financial position of one client at a reference date.
// It is recomputed from its ClientRecord on every read and never stored.
type ClientMetrics struct {
	// Effective record values after defaults were applied.
	ID           string
	Name         string
	NDISNumber   string
	SupportLevel SupportLevel
	HourlyRate   float64
	TotalBudget  float64
	Balance      float64
	HoursPerWeek float64
	PlanEnd      time.Time
	Notes        string

	PlanEndFallback  bool // PlanEnd was substituted
	WeeksRemaining   float64
	WeeklyCost       float64
	RunwayWeeks      float64
	BufferWeeks      float64 // RunwayWeeks - WeeksRemaining
	DepletionDate    time.Time
	RequiredToFinish float64
	Surplus          float64
	Status           Status
	RiskColor        string
	RiskTier         string
}

// SkippedRecord describes a record the aggregator excluded.
type SkippedRecord struct {
	Index  int
	ID     string
	Reason string
}

// CaseloadRollup holds portfolio-level totals over the included metrics.
type CaseloadRollup struct {
	Participants            int
	TotalFunds              float64
	WeeklyRevenue           float64
	ProjectedMonthlyRevenue float64
	CriticalRiskCount       int
	StatusCounts            map[Status]int
	SkippedCount            int
	Skipped                 []SkippedRecord
}

// TrajectoryPoint is one week on the projected balance chart.
type TrajectoryPoint struct {
	Week   int
	Date   time.Time
	Actual float64
	Ideal  float64
}
