package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"caseburn/internal/cli"
	"caseburn/internal/model"
	"caseburn/internal/report"
	"caseburn/internal/strategy"
	"caseburn/internal/tui/components"
	"caseburn/internal/tui/theme"
	"caseburn/internal/viability"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// clientState holds the client detail tab state.
type clientState struct {
	id           string
	scroll       int
	notes        textarea.Model
	editingNotes bool
	generating   bool
	aiErr        error
	showEmail    bool
}

func newClientState(width int) clientState {
	ta := textarea.New()
	ta.Placeholder = "Strategy notes..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(8)
	cs := clientState{notes: ta}
	cs.resize(width)
	return cs
}

func (c *clientState) resize(width int) {
	w := components.CardInnerWidth(width)
	if w < 20 {
		w = 20
	}
	c.notes.SetWidth(w)
}

// openClient switches to the Client tab showing id.
func (a *App) openClient(id string) {
	if a.client.id != id {
		a.client = newClientState(a.contentWidth())
		a.client.id = id
	}
	a.activeTab = tabClient
}

func (a App) updateClientKey(key string) (tea.Model, tea.Cmd, bool) {
	m, ok := a.selected()
	if !ok {
		return a, nil, false
	}

	halfPage := (a.height - scrollOverhead) / 2
	if halfPage < minHalfPageScroll {
		halfPage = minHalfPageScroll
	}

	switch key {
	case "n":
		if a.client.generating {
			return a, nil, true
		}
		a.client.generating = true
		a.client.aiErr = nil
		return a, tea.Batch(generateNoteCmd(a.newGen, a.cfg, m), a.spinner.Tick), true
	case "e":
		a.client.editingNotes = true
		a.client.notes.SetValue(m.Notes)
		a.client.notes.Focus()
		return a, textarea.Blink, true
	case "u":
		next, cmd := a.editClient(m.ID)
		return next, cmd, true
	case "m":
		a.client.showEmail = !a.client.showEmail
	case "x":
		next, cmd := a.confirmDelete(m)
		return next, cmd, true
	case "esc", "backspace":
		a.activeTab = tabDashboard
	case "j", "down", "k", "up":
		delta := 1
		if key == "k" || key == "up" {
			delta = -1
		}
		clients := a.visibleClients()
		a.dash.move(delta, len(clients))
		if a.dash.cursor < len(clients) {
			a.openClient(clients[a.dash.cursor].ID)
		}
	case "J":
		a.client.scroll++
	case "K":
		if a.client.scroll > 0 {
			a.client.scroll--
		}
	case "ctrl+d":
		a.client.scroll += halfPage
	case "ctrl+u":
		a.client.scroll -= halfPage
		if a.client.scroll < 0 {
			a.client.scroll = 0
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateNotesEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		a.client.editingNotes = false
		a.client.notes.Blur()
		if err := a.store.SetNotes(a.client.id, a.client.notes.Value()); err != nil {
			a.notice = err.Error()
			return a, nil
		}
		a.recompute()
		a.notice = "Notes saved"
		return a, a.persist()
	case "esc":
		a.client.editingNotes = false
		a.client.notes.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.client.notes, cmd = a.client.notes.Update(msg)
	return a, cmd
}

func (a App) renderClientTab(cw, h int) string {
	t := theme.Active
	m, ok := a.selected()
	if !ok {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("Client",
			muted.Render("No client selected. Pick one on the Dashboard [d] and press Enter."), cw)
	}

	var b strings.Builder
	b.WriteString(a.renderClientHeader(m, cw))
	b.WriteString("\n")
	b.WriteString(components.MetricCardRow(clientMetricCards(m), cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(a.renderRunwayCard(m, cw))
		b.WriteString("\n")
		b.WriteString(a.renderTrajectoryCard(m, cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			a.renderRunwayCard(m, widths[0]),
			a.renderTrajectoryCard(m, widths[1]),
		}))
	}
	b.WriteString("\n")
	b.WriteString(a.renderNotesCard(m, cw))
	if a.client.showEmail {
		b.WriteString("\n")
		b.WriteString(a.renderEmailCard(m, cw))
	}

	// Apply vertical scroll
	lines := strings.Split(b.String(), "\n")
	scroll := a.client.scroll
	if maxScroll := len(lines) - h; scroll > maxScroll {
		scroll = maxScroll
	}
	if scroll < 0 {
		scroll = 0
	}
	return strings.Join(lines[scroll:], "\n")
}

func (a App) renderClientHeader(m model.ClientMetrics, cw int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var body strings.Builder
	body.WriteString(nameStyle.Render(m.Name))
	body.WriteString(spaceStyle.Render("  "))
	body.WriteString(components.StatusBadge(m.Status))
	body.WriteString("\n")

	ndis := m.NDISNumber
	if ndis == "" {
		ndis = "-"
	}
	body.WriteString(mutedStyle.Render(fmt.Sprintf("NDIS %s · %s · %s/hr · %s hrs/wk",
		ndis, m.SupportLevel, cli.FormatMoney(m.HourlyRate), cli.FormatHours(m.HoursPerWeek))))

	return components.ContentCard("Client", body.String(), cw)
}

func clientMetricCards(m model.ClientMetrics) []components.Metric {
	t := theme.Active
	outcome := "Projected Surplus"
	outcomeColor := t.GreenBright
	if m.Surplus < 0 {
		outcome = "Projected Shortfall"
		outcomeColor = t.Red
	}

	return []components.Metric{
		{Label: "Balance", Value: cli.FormatMoney(m.Balance), Delta: "of " + cli.FormatMoneyWhole(m.TotalBudget)},
		{Label: "Weekly Cost", Value: cli.FormatMoney(m.WeeklyCost)},
		{Label: "Runway", Value: cli.FormatWeeks(m.RunwayWeeks) + " wks", Color: t.StatusColor(m.Status)},
		{Label: "Weeks Left", Value: cli.FormatWeeks(m.WeeksRemaining), Delta: "ends " + cli.FormatDate(m.PlanEnd)},
		{Label: outcome, Value: cli.FormatSigned(m.Surplus), Color: outcomeColor},
	}
}

func (a App) renderRunwayCard(m model.ClientMetrics, w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	labelW := 8
	barW := innerW - labelW - 20
	if barW < 10 {
		barW = 10
	}

	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-20s", label)) + valueStyle.Render(value) + "\n"
	}

	var body strings.Builder
	body.WriteString(components.RunwayBar("Runway", m, labelW, barW))
	body.WriteString("\n\n")
	body.WriteString(row("Buffer", cli.FormatWeeks(m.BufferWeeks)+" wks"))
	body.WriteString(row("Funds run out", cli.FormatDate(m.DepletionDate)))
	body.WriteString(row("Needed to finish", cli.FormatMoney(m.RequiredToFinish)))
	body.WriteString(row("Plan end", cli.FormatLongDate(m.PlanEnd)))
	body.WriteString(row("Risk tier", m.RiskTier))
	if m.PlanEndFallback {
		body.WriteString(warnStyle.Render("Plan end missing or unreadable; using a default."))
	}

	return components.ContentCard("Runway", strings.TrimRight(body.String(), "\n"), w)
}

func (a App) renderTrajectoryCard(m model.ClientMetrics, w int) string {
	t := theme.Active
	points := viability.Trajectory(m, a.asOf)

	series := components.RunwaySeries{
		Actual:  make([]float64, len(points)),
		Ideal:   make([]float64, len(points)),
		Labels:  make([]string, len(points)),
		PlanEnd: -1,
	}
	for i, p := range points {
		series.Actual[i] = p.Actual
		series.Ideal[i] = p.Ideal
		series.Labels[i] = p.Date.Format("Jan 02")
		if series.PlanEnd < 0 && !p.Date.Before(m.PlanEnd) {
			series.PlanEnd = i
		}
	}

	chart := components.RunwayChart(series, t.StatusColor(m.Status), components.CardInnerWidth(w), 6)
	return components.ContentCard("Projected Balance", chart, w)
}

func (a App) renderNotesCard(m model.ClientMetrics, cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	innerW := components.CardInnerWidth(cw)

	var body strings.Builder
	switch {
	case a.client.editingNotes:
		body.WriteString(a.client.notes.View())
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render("[ctrl+s] save  [esc] cancel"))
		return components.FocusCard("Strategy Notes", body.String(), cw)
	case strings.TrimSpace(m.Notes) == "":
		body.WriteString(mutedStyle.Render("No notes yet."))
	default:
		body.WriteString(textStyle.Render(lipgloss.NewStyle().Width(innerW).Render(m.Notes)))
	}

	body.WriteString("\n\n")
	switch {
	case a.client.generating:
		body.WriteString(a.spinner.View())
		body.WriteString(mutedStyle.Render(" Generating strategy note..."))
	case a.client.aiErr != nil:
		body.WriteString(errStyle.Render(aiErrorText(a.client.aiErr)))
	default:
		body.WriteString(mutedStyle.Render("[n] generate  [e] edit  [u] update client  [m] email draft"))
	}

	return components.ContentCard("Strategy Notes", body.String(), cw)
}

func aiErrorText(err error) string {
	switch {
	case errors.Is(err, strategy.ErrMissingCredential):
		return "No Gemini API key. Add one on the Settings tab [s]."
	case errors.Is(err, strategy.ErrTimeout):
		return "The model did not answer in time. Try again."
	case errors.Is(err, strategy.ErrEmptyResponse):
		return "The model returned no text. Try again."
	default:
		return "Generation failed: " + err.Error()
	}
}

func (a App) renderEmailCard(m model.ClientMetrics, cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	draft := report.EmailDraft(m, time.Now())

	var body strings.Builder
	body.WriteString(labelStyle.Render("Subject: "))
	body.WriteString(textStyle.Render(draft.Subject))
	body.WriteString("\n\n")
	body.WriteString(textStyle.Render(lipgloss.NewStyle().Width(innerW).Render(draft.Body)))
	body.WriteString("\n\n")
	body.WriteString(dimStyle.Render(truncStr(draft.MailtoURL(), innerW)))

	return components.ContentCard("Email Draft", body.String(), cw)
}
