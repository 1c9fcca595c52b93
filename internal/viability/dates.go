package viability

import (
	"strings"
	"time"
)

// Date layouts accepted for plan end dates.
const (
	LayoutISO = "2006-01-02"
	LayoutDMY = "2/1/2006"
)

// Options controls how loosely record fields are parsed.
type Options struct {
	// DateLayouts are tried in order. NewOptions always puts LayoutISO first.
	DateLayouts []string
}

// DefaultOptions accepts ISO dates first, then DD/MM/YYYY.
func DefaultOptions() Options {
	return NewOptions(true)
}

// NewOptions builds parsing options; acceptDMY enables the DD/MM/YYYY layout.
func NewOptions(acceptDMY bool) Options {
	layouts := []string{LayoutISO}
	if acceptDMY {
		layouts = append(layouts, LayoutDMY)
	}
	return Options{DateLayouts: layouts}
}

// ParsePlanEnd parses a plan end date as a calendar day in UTC.
// A full RFC 3339 timestamp is accepted by its date part.
func ParsePlanEnd(raw string, opts Options) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	layouts := opts.DateLayouts
	if len(layouts) == 0 {
		layouts = []string{LayoutISO}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civilDay(t), true
		}
		if layout == LayoutISO {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return civilDay(t), true
			}
		}
	}
	return time.Time{}, false
}

// civilDay drops the clock and zone, keeping the calendar date as UTC midnight.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole calendar days from a to b (negative if b is earlier).
func daysBetween(a, b time.Time) float64 {
	return float64((civilDay(b).Unix() - civilDay(a).Unix()) / 86400)
}
