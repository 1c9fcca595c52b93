package components

import (
	"caseburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. notice is shown after the
// key hints; info is right-aligned.
func RenderStatusBar(width int, notice, info string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)
	noticeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface)

	left := " [?]help  [a]dd  [w]rite report  [q]uit"
	if notice != "" {
		left += "  " + noticeStyle.Render(notice)
	}
	right := ""
	if info != "" {
		right = info + " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	bar := left + lipgloss.NewStyle().Background(t.Surface).Width(padding).Render("") + right
	return style.Render(bar)
}
