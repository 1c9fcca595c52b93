package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"caseburn/internal/config"
	"caseburn/internal/model"
	"caseburn/internal/viability"
)

// DefaultParticipantName is used for CSV rows with a blank name.
const DefaultParticipantName = "Unknown Participant"

// CSV column names, in template order.
const (
	ColName         = "Name"
	ColNDISNumber   = "NDIS Number"
	ColSupportLevel = "Support Level"
	ColTotalBudget  = "Total Budget"
	ColBalance      = "Current Balance"
	ColPlanEnd      = "Plan End Date"
	ColHours        = "Hours Per Week"
)

// CSVHeaders is the import/template header row.
var CSVHeaders = []string{ColName, ColNDISNumber, ColSupportLevel, ColTotalBudget, ColBalance, ColPlanEnd, ColHours}

var headerAliases = map[string]string{
	"plan end date (yyyy-mm-dd)": ColPlanEnd,
	"plan end":                   ColPlanEnd,
	"balance":                    ColBalance,
	"budget":                     ColTotalBudget,
	"level":                      ColSupportLevel,
	"ndis":                       ColNDISNumber,
	"hours":                      ColHours,
}

// ErrNoHeader means the first CSV row names none of the known columns.
var ErrNoHeader = errors.New("csv: no recognised header columns")

// CSVOptions controls CSV import.
type CSVOptions struct {
	Dates viability.Options
	NewID func() string
}

// DefaultCSVOptions parses ISO and day-first dates and assigns random UUIDs.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Dates: viability.DefaultOptions(), NewID: uuid.NewString}
}

// ParseCSV reads client rows from a spreadsheet export. Every row gets a
// fresh id. Blank rows are skipped.
func ParseCSV(r io.Reader, opts CSVOptions) ([]model.ClientRecord, error) {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	cols := mapColumns(header)
	if len(cols) == 0 {
		return nil, ErrNoHeader
	}

	var recs []model.ClientRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		if blankRow(row) {
			continue
		}
		recs = append(recs, rowToRecord(row, cols, opts))
	}
	return recs, nil
}

func mapColumns(header []string) map[string]int {
	canon := make(map[string]string, len(CSVHeaders)+len(headerAliases))
	for _, h := range CSVHeaders {
		canon[strings.ToLower(h)] = h
	}
	for alias, h := range headerAliases {
		canon[alias] = h
	}

	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name, ok := canon[key]; ok {
			if _, seen := cols[name]; !seen {
				cols[name] = i
			}
		}
	}
	return cols
}

func rowToRecord(row []string, cols map[string]int, opts CSVOptions) model.ClientRecord {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	amount := func(name string) float64 {
		f, _ := ParseAmount(cell(name))
		return f
	}

	name := cell(ColName)
	if name == "" {
		name = DefaultParticipantName
	}

	level, ok := config.NormalizeSupportLevel(cell(ColSupportLevel))
	if !ok {
		level = model.Level2
	}

	planEnd := ""
	if t, ok := viability.ParsePlanEnd(cell(ColPlanEnd), opts.Dates); ok {
		planEnd = t.Format(viability.LayoutISO)
	}

	return model.ClientRecord{
		ID:           opts.NewID(),
		Name:         name,
		NDISNumber:   cell(ColNDISNumber),
		SupportLevel: level,
		HourlyRate:   config.RateFor(level),
		TotalBudget:  amount(ColTotalBudget),
		Balance:      amount(ColBalance),
		PlanEnd:      planEnd,
		HoursPerWeek: amount(ColHours),
	}
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteTemplate writes the import header and one example row.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(CSVHeaders)
	_ = cw.Write([]string{
		"John Doe",
		"430123456",
		string(model.Level2),
		"18000",
		"15000",
		"2025-12-31",
		"1.5",
	})
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes recs in import format so the file can be re-imported.
func WriteCSV(w io.Writer, recs []model.ClientRecord) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(CSVHeaders)
	for _, r := range recs {
		_ = cw.Write([]string{
			r.Name,
			r.NDISNumber,
			string(r.SupportLevel),
			formatFloat(r.TotalBudget),
			formatFloat(r.Balance),
			r.PlanEnd,
			formatFloat(r.HoursPerWeek),
		})
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
