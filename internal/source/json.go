// Package source reads and writes caseload backups and spreadsheet imports.
package source

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"caseburn/internal/config"
	"caseburn/internal/model"
)

// jsonRecord is the backup wire format. Field names match the browser
// backups so old exports restore unchanged.
type jsonRecord struct {
	ID         flexString `json:"id"`
	Name       string     `json:"name"`
	NDISNumber flexString `json:"ndis_number"`
	Level      string     `json:"level"`
	Rate       flexNumber `json:"rate"`
	Budget     flexNumber `json:"budget"`
	Balance    flexNumber `json:"balance"`
	PlanEnd    string     `json:"plan_end"`
	Hours      flexNumber `json:"hours"`
	Notes      string     `json:"notes"`
}

// jsonAliases are camelCase spellings accepted on read only.
type jsonAliases struct {
	NDISNumber     flexString `json:"ndisNumber"`
	SupportLevel   string     `json:"supportLevel"`
	HourlyRate     flexNumber `json:"hourlyRate"`
	TotalBudget    flexNumber `json:"totalBudget"`
	CurrentBalance flexNumber `json:"currentBalance"`
	PlanEndDate    string     `json:"planEndDate"`
	PlanEnd        string     `json:"planEnd"`
	HoursPerWeek   flexNumber `json:"hoursPerWeek"`
}

// flexNumber accepts JSON numbers, numeric strings, and null.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, _ := ParseAmount(s)
		*n = flexNumber(f)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*n = flexNumber(f)
	return nil
}

// flexString accepts JSON strings and numbers.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(b)
	return nil
}

// ReadJSON decodes a backup: a JSON array of client records.
func ReadJSON(r io.Reader) ([]model.ClientRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding backup: %w", err)
	}

	recs := make([]model.ClientRecord, 0, len(raw))
	for i, item := range raw {
		var jr jsonRecord
		if err := json.Unmarshal(item, &jr); err != nil {
			return nil, fmt.Errorf("decoding backup record %d: %w", i, err)
		}
		var alias jsonAliases
		if err := json.Unmarshal(item, &alias); err != nil {
			return nil, fmt.Errorf("decoding backup record %d: %w", i, err)
		}
		recs = append(recs, fromJSON(jr, alias))
	}
	return recs, nil
}

func fromJSON(jr jsonRecord, alias jsonAliases) model.ClientRecord {
	if jr.NDISNumber == "" {
		jr.NDISNumber = alias.NDISNumber
	}
	if jr.Level == "" {
		jr.Level = alias.SupportLevel
	}
	if jr.Rate == 0 {
		jr.Rate = alias.HourlyRate
	}
	if jr.Budget == 0 {
		jr.Budget = alias.TotalBudget
	}
	if jr.Balance == 0 {
		jr.Balance = alias.CurrentBalance
	}
	if jr.PlanEnd == "" {
		jr.PlanEnd = alias.PlanEndDate
	}
	if jr.PlanEnd == "" {
		jr.PlanEnd = alias.PlanEnd
	}
	if jr.Hours == 0 {
		jr.Hours = alias.HoursPerWeek
	}

	level, _ := config.NormalizeSupportLevel(jr.Level)
	return model.ClientRecord{
		ID:           strings.TrimSpace(string(jr.ID)),
		Name:         jr.Name,
		NDISNumber:   string(jr.NDISNumber),
		SupportLevel: level,
		HourlyRate:   float64(jr.Rate),
		TotalBudget:  float64(jr.Budget),
		Balance:      float64(jr.Balance),
		PlanEnd:      strings.TrimSpace(jr.PlanEnd),
		HoursPerWeek: float64(jr.Hours),
		Notes:        jr.Notes,
	}
}

// WriteJSON encodes recs as an indented backup array.
func WriteJSON(w io.Writer, recs []model.ClientRecord) error {
	out := make([]jsonRecord, len(recs))
	for i, r := range recs {
		out[i] = jsonRecord{
			ID:         flexString(r.ID),
			Name:       r.Name,
			NDISNumber: flexString(r.NDISNumber),
			Level:      string(r.SupportLevel),
			Rate:       flexNumber(r.HourlyRate),
			Budget:     flexNumber(r.TotalBudget),
			Balance:    flexNumber(r.Balance),
			PlanEnd:    r.PlanEnd,
			Hours:      flexNumber(r.HoursPerWeek),
			Notes:      r.Notes,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
