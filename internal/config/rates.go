package config

import (
	"strings"

	"caseburn/internal/model"
)

// DefaultHourlyRate applies when neither a stored rate nor a known level is available.
const DefaultHourlyRate = 100.14

// Rates maps each support level to its hourly rate in AUD.
// The table is read-only.
var Rates = map[model.SupportLevel]float64{
	model.Level2: 100.14,
	model.Level3: 190.41,
}

// SupportLevels lists the rate table levels in display order.
var SupportLevels = []model.SupportLevel{model.Level2, model.Level3}

var levelAliases = map[string]model.SupportLevel{
	"2":                               model.Level2,
	"l2":                              model.Level2,
	"level 2":                         model.Level2,
	"level2":                          model.Level2,
	"coordination of supports":        model.Level2,
	"support coordination":            model.Level2,
	"3":                               model.Level3,
	"l3":                              model.Level3,
	"level 3":                         model.Level3,
	"level3":                          model.Level3,
	"specialist support coordination": model.Level3,
	"specialist":                      model.Level3,
}

// NormalizeSupportLevel maps free-text level names onto the rate table.
// e.g., "Level 3" -> model.Level3
// Returns the trimmed input and false if the level is unknown.
func NormalizeSupportLevel(raw string) (model.SupportLevel, bool) {
	trimmed := strings.TrimSpace(raw)
	if _, ok := Rates[model.SupportLevel(trimmed)]; ok {
		return model.SupportLevel(trimmed), true
	}

	key := strings.ToLower(trimmed)
	if lvl, ok := levelAliases[key]; ok {
		return lvl, true
	}

	// "Level 2: anything" style labels
	if head, _, found := strings.Cut(key, ":"); found {
		if lvl, ok := levelAliases[strings.TrimSpace(head)]; ok {
			return lvl, true
		}
	}

	return model.SupportLevel(trimmed), false
}

// LookupRate returns the hourly rate for a level, normalizing the name first.
// Returns zero and false if the level is unknown.
func LookupRate(level model.SupportLevel) (float64, bool) {
	normalized, ok := NormalizeSupportLevel(string(level))
	if !ok {
		return 0, false
	}
	return Rates[normalized], true
}

// RateFor returns the table rate for a level, or DefaultHourlyRate.
func RateFor(level model.SupportLevel) float64 {
	if r, ok := LookupRate(level); ok {
		return r
	}
	return DefaultHourlyRate
}
