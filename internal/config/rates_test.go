package config

import (
	"testing"

	"caseburn/internal/model"
)

func TestNormalizeSupportLevel(t *testing.T) {
	tests := []struct {
		raw    string
		want   model.SupportLevel
		wantOK bool
	}{
		{"Level 2: Coordination of Supports", model.Level2, true},
		{"  Level 3: Specialist Support Coordination ", model.Level3, true},
		{"Level 2", model.Level2, true},
		{"level3", model.Level3, true},
		{"L2", model.Level2, true},
		{"3", model.Level3, true},
		{"Level 3: SSC", model.Level3, true},
		{"Specialist Support Coordination", model.Level3, true},
		{"Level 1: Core", model.SupportLevel("Level 1: Core"), false},
		{"", model.SupportLevel(""), false},
	}

	for _, tt := range tests {
		got, ok := NormalizeSupportLevel(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeSupportLevel(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLookupRate(t *testing.T) {
	if r, ok := LookupRate(model.Level2); !ok || r != 100.14 {
		t.Fatalf("Level 2 rate = (%.2f, %v), want (100.14, true)", r, ok)
	}
	if r, ok := LookupRate("Level 3"); !ok || r != 190.41 {
		t.Fatalf("Level 3 alias rate = (%.2f, %v), want (190.41, true)", r, ok)
	}
	if _, ok := LookupRate("Plan Management"); ok {
		t.Fatal("LookupRate returned ok for unknown level")
	}
}

func TestRateFor_FallsBackToDefault(t *testing.T) {
	if got := RateFor("unknown"); got != DefaultHourlyRate {
		t.Fatalf("RateFor(unknown) = %.2f, want %.2f", got, DefaultHourlyRate)
	}
	if got := RateFor(model.Level3); got != 190.41 {
		t.Fatalf("RateFor(Level3) = %.2f, want 190.41", got)
	}
}
