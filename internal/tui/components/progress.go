package components

import (
	"fmt"
	"strings"

	"caseburn/internal/cli"
	"caseburn/internal/model"
	"caseburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// RunwayFraction is funded weeks over weeks left in the plan, clamped to 0..1.
// Plans with no weeks left count as fully funded.
func RunwayFraction(m model.ClientMetrics) float64 {
	if m.WeeksRemaining <= 0 {
		return 1
	}
	pct := m.RunwayWeeks / m.WeeksRemaining
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// RunwayBar renders a labelled runway bar in the client's status color.
func RunwayBar(label string, m model.ClientMetrics, labelW, barWidth int) string {
	t := theme.Active
	color := t.StatusColor(m.Status)
	pct := RunwayFraction(m)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	weeksStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		weeksStyle.Render(cli.FormatWeeks(m.RunwayWeeks)) +
		dimStyle.Render(" / "+cli.FormatWeeks(m.WeeksRemaining)+" wks")
}

// StatusBadge renders a status label on its color.
func StatusBadge(s model.Status) string {
	t := theme.Active
	return lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.StatusColor(s)).
		Bold(true).
		Padding(0, 1).
		Render(s.String())
}

// StatusDot renders a colored bullet for list rows.
func StatusDot(s model.Status) string {
	t := theme.Active
	return lipgloss.NewStyle().
		Foreground(t.StatusColor(s)).
		Background(t.Surface).
		Render("●")
}
