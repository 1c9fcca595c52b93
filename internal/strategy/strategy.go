// Package strategy generates free-text strategy notes for a client using a
// text-generation model.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caseburn/internal/cli"
	"caseburn/internal/model"
)

// DefaultTimeout bounds a single note generation.
const DefaultTimeout = 30 * time.Second

var (
	// ErrMissingCredential indicates no API key is configured.
	ErrMissingCredential = errors.New("strategy: API key is missing")
	// ErrEmptyResponse indicates the model returned no text.
	ErrEmptyResponse = errors.New("strategy: no content generated")
	// ErrTimeout indicates the model did not answer in time.
	ErrTimeout = errors.New("strategy: request timed out")
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NoteSetter stores notes against a client id.
type NoteSetter interface {
	SetNotes(id, notes string) error
}

// BuildPrompt writes the file-note prompt for one client.
func BuildPrompt(m model.ClientMetrics) string {
	var b strings.Builder
	b.WriteString("Act as a Senior NDIS Support Coordinator.\n")
	fmt.Fprintf(&b, "Write a strategic file note for: %s.\n\n", m.Name)
	b.WriteString("DATA:\n")
	fmt.Fprintf(&b, "- Status: %s\n", m.Status)
	fmt.Fprintf(&b, "- Balance: %s\n", cli.FormatMoney(m.Balance))
	fmt.Fprintf(&b, "- Weekly Burn: %s\n", cli.FormatMoney(m.WeeklyCost))
	fmt.Fprintf(&b, "- Plan Ends: %s\n", m.PlanEnd.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Outcome: %s\n\n", cli.FormatSigned(m.Surplus))
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("- Tone: Professional, Objective, Australian English.\n")
	b.WriteString("- Include: Executive Summary, Risk Assessment, 3 Recommendations.\n")
	b.WriteString("- Max 200 words.\n")
	return b.String()
}

// GenerateNote asks gen for a strategy note about m. The call is bounded by
// DefaultTimeout unless ctx has an earlier deadline.
func GenerateNote(ctx context.Context, gen Generator, m model.ClientMetrics) (string, error) {
	if gen == nil {
		return "", ErrMissingCredential
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	text, err := gen.Generate(ctx, BuildPrompt(m))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("generating note for %s: %w", m.Name, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Annotate generates a note for m and stores it as the client's notes.
// Notes are left untouched when generation fails.
func Annotate(ctx context.Context, gen Generator, notes NoteSetter, m model.ClientMetrics) (string, error) {
	text, err := GenerateNote(ctx, gen, m)
	if err != nil {
		return "", err
	}
	if err := notes.SetNotes(m.ID, text); err != nil {
		return "", err
	}
	return text, nil
}
