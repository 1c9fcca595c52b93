package cmd

import (
	"testing"

	"caseburn/internal/model"
	"caseburn/internal/viability"

	"github.com/spf13/cobra"
)

func parseClientFlags(t *testing.T, args ...string) (*cobra.Command, *clientFlags) {
	t.Helper()
	var f clientFlags
	c := &cobra.Command{Use: "test"}
	f.bind(c)
	if err := c.Flags().Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return c, &f
}

func TestClientFlagsApplyOnlyChanged(t *testing.T) {
	c, f := parseClientFlags(t, "--level", "3", "--balance", "$1,200.50", "--plan-end", "30/06/2026")

	rec := model.ClientRecord{
		Name: "Jo Smith", NDISNumber: "430000009",
		SupportLevel: model.Level2, HourlyRate: 100.14,
		TotalBudget: 9000, Balance: 50, HoursPerWeek: 2,
	}
	if err := f.apply(c, &rec, viability.DefaultOptions()); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if rec.Name != "Jo Smith" || rec.NDISNumber != "430000009" {
		t.Errorf("unchanged fields were overwritten: %+v", rec)
	}
	if rec.SupportLevel != model.Level3 {
		t.Errorf("SupportLevel = %q, want Level 3", rec.SupportLevel)
	}
	if rec.HourlyRate != 190.41 {
		t.Errorf("HourlyRate = %v, want 190.41 from the new level", rec.HourlyRate)
	}
	if rec.Balance != 1200.50 {
		t.Errorf("Balance = %v, want 1200.50", rec.Balance)
	}
	if rec.PlanEnd != "2026-06-30" {
		t.Errorf("PlanEnd = %q, want ISO date", rec.PlanEnd)
	}
	if rec.TotalBudget != 9000 || rec.HoursPerWeek != 2 {
		t.Errorf("amounts not given were changed: %+v", rec)
	}
}

func TestClientFlagsExplicitRateWins(t *testing.T) {
	c, f := parseClientFlags(t, "--level", "3", "--rate", "150")

	var rec model.ClientRecord
	if err := f.apply(c, &rec, viability.DefaultOptions()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if rec.HourlyRate != 150 {
		t.Errorf("HourlyRate = %v, want 150", rec.HourlyRate)
	}
}

func TestClientFlagsRejectBadValues(t *testing.T) {
	cases := [][]string{
		{"--hours", "lots"},
		{"--balance=-5"},
		{"--level", "Level 9"},
		{"--plan-end", "soon"},
	}
	for _, args := range cases {
		c, f := parseClientFlags(t, args...)
		var rec model.ClientRecord
		if err := f.apply(c, &rec, viability.DefaultOptions()); err == nil {
			t.Errorf("apply(%v) succeeded, want error", args)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0f8fad5b-d9cb-469f-a165-70867728950e"); got != "0f8fad5b" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("c1"); got != "c1" {
		t.Errorf("shortID(c1) = %q", got)
	}
}
