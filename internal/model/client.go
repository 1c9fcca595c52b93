// Package model defines the caseload data types shared across caseburn.
package model

// SupportLevel is a funded support coordination tier from the NDIS price guide.
type SupportLevel string

// Support levels with a fixed hourly rate.
const (
	Level2 SupportLevel = "Level 2: Coordination of Supports"
	Level3 SupportLevel = "Level 3: Specialist Support Coordination"
)

// ClientRecord is one participant on the caseload as entered by the coordinator.
type ClientRecord struct {
	ID           string
	Name         string
	NDISNumber   string
	SupportLevel SupportLevel
	HourlyRate   float64 // 0 means derive from SupportLevel
	TotalBudget  float64
	Balance      float64
	PlanEnd      string // YYYY-MM-DD, DD/MM/YYYY tolerated
	HoursPerWeek float64
	Notes        string
}
