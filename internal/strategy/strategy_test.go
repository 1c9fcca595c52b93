package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"caseburn/internal/caseload"
	"caseburn/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
	block  bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func sampleMetrics() model.ClientMetrics {
	return model.ClientMetrics{
		ID:         "c1",
		Name:       "Alice",
		Status:     model.CriticalShortfall,
		Balance:    1500,
		WeeklyCost: 500.7,
		PlanEnd:    time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Surplus:    -8512.5,
	}
}

func newStore(t *testing.T) *caseload.Store {
	t.Helper()
	s, err := caseload.NewStore([]model.ClientRecord{{ID: "c1", Name: "Alice", Notes: "old"}})
	require.NoError(t, err)
	return s
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleMetrics())
	assert.Contains(t, p, "Write a strategic file note for: Alice.")
	assert.Contains(t, p, "- Status: CRITICAL SHORTFALL")
	assert.Contains(t, p, "- Balance: $1,500.00")
	assert.Contains(t, p, "- Weekly Burn: $500.70")
	assert.Contains(t, p, "- Plan Ends: 2025-12-31")
	assert.Contains(t, p, "- Outcome: -$8,512.50")
	assert.Contains(t, p, "Max 200 words")
}

func TestAnnotate_StoresNote(t *testing.T) {
	s := newStore(t)
	gen := &fakeGenerator{text: "  Executive Summary: act now.\n"}

	text, err := Annotate(context.Background(), gen, s, sampleMetrics())
	require.NoError(t, err)
	assert.Equal(t, "Executive Summary: act now.", text)

	rec, ok := s.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "Executive Summary: act now.", rec.Notes)
	assert.Contains(t, gen.prompt, "Alice")
}

func TestAnnotate_FailureLeavesNotes(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
		want error
	}{
		{"missing credential", nil, ErrMissingCredential},
		{"empty response", &fakeGenerator{text: "   "}, ErrEmptyResponse},
		{"upstream error", &fakeGenerator{err: errors.New("503")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			_, err := Annotate(context.Background(), tt.gen, s, sampleMetrics())
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			rec, _ := s.Get("c1")
			assert.Equal(t, "old", rec.Notes)
		})
	}
}

func TestGenerateNote_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := GenerateNote(ctx, &fakeGenerator{block: true}, sampleMetrics())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "  ", "gemini-2.0-flash")
	assert.ErrorIs(t, err, ErrMissingCredential)
}
