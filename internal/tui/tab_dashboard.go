package tui

import (
	"fmt"
	"strings"

	"caseburn/internal/cli"
	"caseburn/internal/model"
	"caseburn/internal/pipeline"
	"caseburn/internal/tui/components"
	"caseburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// noFilter shows every status on the client list.
const noFilter = -1

// dashboardState holds the dashboard tab state.
type dashboardState struct {
	cursor    int
	offset    int // scroll offset for the client list
	searching bool
	search    textinput.Model
	query     string
	filter    int // noFilter or a model.Status
}

func newDashboardState() dashboardState {
	ti := textinput.New()
	ti.Placeholder = "name or NDIS number"
	ti.CharLimit = 64
	ti.Width = 30
	ti.Prompt = "/ "
	return dashboardState{search: ti, filter: noFilter}
}

func (d *dashboardState) clamp(n int) {
	if d.cursor >= n {
		d.cursor = n - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
}

func (d *dashboardState) move(delta, n int) {
	d.cursor += delta
	d.clamp(n)
}

// visibleClients applies the status filter and search query.
func (a App) visibleClients() []model.ClientMetrics {
	out := a.metrics
	if a.dash.filter != noFilter {
		out = pipeline.FilterByStatus(out, model.Status(a.dash.filter))
	}
	return pipeline.FilterByName(out, a.dash.query)
}

func (a App) updateDashboardKey(key string) (tea.Model, tea.Cmd, bool) {
	clients := a.visibleClients()
	halfPage := (a.height - scrollOverhead) / 2
	if halfPage < minHalfPageScroll {
		halfPage = minHalfPageScroll
	}

	switch key {
	case "j", "down":
		a.dash.move(1, len(clients))
	case "k", "up":
		a.dash.move(-1, len(clients))
	case "ctrl+d":
		a.dash.move(halfPage, len(clients))
	case "ctrl+u":
		a.dash.move(-halfPage, len(clients))
	case "g":
		a.dash.cursor = 0
		a.dash.offset = 0
	case "G":
		a.dash.move(len(clients), len(clients))
	case "enter":
		if a.dash.cursor < len(clients) {
			a.openClient(clients[a.dash.cursor].ID)
		}
	case "/":
		a.dash.searching = true
		a.dash.search.SetValue(a.dash.query)
		a.dash.search.CursorEnd()
		a.dash.search.Focus()
		return a, textinput.Blink, true
	case "f":
		a.dash.filter++
		if a.dash.filter >= len(model.AllStatuses) {
			a.dash.filter = noFilter
		}
		a.dash.cursor = 0
		a.dash.offset = 0
	case "esc":
		a.dash.query = ""
		a.dash.filter = noFilter
		a.dash.clamp(len(a.visibleClients()))
	case "x":
		if a.dash.cursor < len(clients) {
			m, cmd := a.confirmDelete(clients[a.dash.cursor])
			return m, cmd, true
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateDashboardSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.dash.searching = false
		a.dash.search.Blur()
		return a, nil
	case "esc":
		a.dash.searching = false
		a.dash.search.Blur()
		a.dash.query = ""
		a.dash.clamp(len(a.visibleClients()))
		return a, nil
	}

	var cmd tea.Cmd
	a.dash.search, cmd = a.dash.search.Update(msg)
	a.dash.query = strings.TrimSpace(a.dash.search.Value())
	a.dash.cursor = 0
	a.dash.offset = 0
	return a, cmd
}

func (a App) renderDashboardTab(cw, h int) string {
	t := theme.Active
	r := a.rollup

	criticalColor := t.GreenBright
	if r.CriticalRiskCount > 0 {
		criticalColor = t.Red
	}

	cards := []components.Metric{
		{Label: "Participants", Value: cli.FormatNumber(int64(r.Participants)), Delta: skippedDelta(r)},
		{Label: "Total Funds", Value: cli.FormatMoneyWhole(r.TotalFunds), Delta: "current balances"},
		{Label: "Weekly Revenue", Value: cli.FormatMoney(r.WeeklyRevenue), Delta: "hours × rate"},
		{Label: "Monthly Projection", Value: cli.FormatMoneyWhole(r.ProjectedMonthlyRevenue), Delta: fmt.Sprintf("× %.2f weeks", pipeline.WeeksPerMonth)},
		{Label: "Critical Risk", Value: cli.FormatNumber(int64(r.CriticalRiskCount)), Delta: "shortfall before plan end", Color: criticalColor},
	}
	if a.isCompactLayout() {
		cards = []components.Metric{cards[0], cards[1], cards[2], cards[4]}
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		b.WriteString(a.renderStatusDistribution(cw))
		b.WriteString("\n")
	} else {
		b.WriteString(components.CardRow([]string{
			a.renderStatusDistribution(widths[0]),
			a.renderWatchlist(widths[1]),
		}))
		b.WriteString("\n")
	}

	used := lipgloss.Height(b.String())
	b.WriteString(a.renderClientList(cw, h-used))
	return b.String()
}

func skippedDelta(r model.CaseloadRollup) string {
	if r.SkippedCount == 0 {
		return "on caseload"
	}
	return fmt.Sprintf("%d skipped", r.SkippedCount)
}

func (a App) renderStatusDistribution(w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	labelW := 20
	countW := 4
	barW := innerW - labelW - countW - 2
	if barW < 5 {
		barW = 5
	}

	maxCount := 0
	for _, s := range model.AllStatuses {
		if c := a.rollup.StatusCounts[s]; c > maxCount {
			maxCount = c
		}
	}

	var body strings.Builder
	for i, s := range model.AllStatuses {
		count := a.rollup.StatusCounts[s]
		filled := 0
		if maxCount > 0 {
			filled = count * barW / maxCount
		}
		if count > 0 && filled == 0 {
			filled = 1
		}
		barStyle := lipgloss.NewStyle().Foreground(t.StatusColor(s)).Background(t.Surface)
		emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

		body.WriteString(components.StatusDot(s))
		body.WriteString(spaceStyle.Render(" "))
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW-2, s.String())))
		body.WriteString(barStyle.Render(strings.Repeat("█", filled)))
		body.WriteString(emptyStyle.Render(strings.Repeat("░", barW-filled)))
		body.WriteString(countStyle.Render(fmt.Sprintf("%*d", countW+2, count)))
		if i < len(model.AllStatuses)-1 {
			body.WriteString("\n")
		}
	}

	return components.ContentCard("Plan Health", body.String(), w)
}

func (a App) renderWatchlist(w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	watch := pipeline.Watchlist(a.metrics)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	redStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	var body strings.Builder
	if len(watch) == 0 {
		body.WriteString(greenStyle.Render("No clients in critical shortfall."))
		for i := 1; i < len(model.AllStatuses); i++ {
			body.WriteString("\n")
		}
		return components.ContentCard("Critical Watchlist", body.String(), w)
	}

	shown := len(watch)
	limit := len(model.AllStatuses)
	if shown > limit {
		shown = limit - 1
	}
	nameW := innerW - 26
	if nameW < 10 {
		nameW = 10
	}
	for i := 0; i < shown; i++ {
		m := watch[i]
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(m.Name, nameW))))
		body.WriteString(redStyle.Render(fmt.Sprintf("%10s", cli.FormatSigned(m.Surplus))))
		body.WriteString(mutedStyle.Render(fmt.Sprintf("  out %s", cli.FormatShortDate(m.DepletionDate))))
		if i < shown-1 {
			body.WriteString("\n")
		}
	}
	if shown < len(watch) {
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(fmt.Sprintf("+%d more", len(watch)-shown)))
	}

	return components.FocusCard(fmt.Sprintf("Critical Watchlist (%d)", len(watch)), body.String(), w)
}

func (a App) renderClientList(cw, h int) string {
	t := theme.Active
	ds := a.dash
	clients := a.visibleClients()
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	title := "Clients"
	if ds.filter != noFilter {
		title = fmt.Sprintf("Clients · %s", model.Status(ds.filter).String())
	}

	var body strings.Builder
	if ds.searching {
		body.WriteString(ds.search.View())
		body.WriteString("\n")
	}

	if len(clients) == 0 {
		msg := "No clients yet. Press [a] to add one or run `caseburn import`."
		if len(a.metrics) > 0 {
			msg = "No clients match."
		}
		body.WriteString(mutedStyle.Render(msg))
		return components.ContentCard(title, body.String(), cw)
	}

	// Fixed columns: dot(2) level(4) balance(12) runway(9) left(9) surplus(13)
	fixedW := 2 + 4 + 12 + 9 + 9 + 13
	showNDIS := !a.isCompactLayout()
	if showNDIS {
		fixedW += 12
	}
	nameW := innerW - fixedW
	if nameW < 12 {
		nameW = 12
	}

	header := fmt.Sprintf("  %-*s", nameW, "Name")
	if showNDIS {
		header += fmt.Sprintf("%-12s", "NDIS")
	}
	header += fmt.Sprintf("%-4s%12s%9s%9s%13s", "Lvl", "Balance", "Runway", "Left", "Surplus")
	body.WriteString(headerStyle.Render(header))
	body.WriteString("\n")

	visible := h - lipgloss.Height(body.String()) - 3 // card border + title
	if visible < 3 {
		visible = 3
	}

	offset := ds.offset
	if ds.cursor < offset {
		offset = ds.cursor
	}
	if ds.cursor >= offset+visible {
		offset = ds.cursor - visible + 1
	}
	end := offset + visible
	if end > len(clients) {
		end = len(clients)
	}

	for i := offset; i < end; i++ {
		m := clients[i]
		line := fmt.Sprintf("%-*s", nameW, truncStr(m.Name, nameW-1))
		if showNDIS {
			line += fmt.Sprintf("%-12s", truncStr(m.NDISNumber, 11))
		}
		line += fmt.Sprintf("%-4s%12s%9s%9s%13s",
			levelShort(m.SupportLevel),
			cli.FormatMoneyWhole(m.Balance),
			cli.FormatWeeks(m.RunwayWeeks),
			cli.FormatWeeks(m.WeeksRemaining),
			cli.FormatSigned(m.Surplus))

		style := rowStyle
		if i == ds.cursor {
			style = selectedStyle
		}
		body.WriteString(components.StatusDot(m.Status))
		body.WriteString(style.Render(" " + line))
		if i < end-1 {
			body.WriteString("\n")
		}
	}

	if len(clients) > visible {
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(fmt.Sprintf("%d-%d of %d  [j/k] move  [enter] open  [/] search  [f] filter",
			offset+1, end, len(clients))))
	}

	return components.ContentCard(title, body.String(), cw)
}

func levelShort(l model.SupportLevel) string {
	switch l {
	case model.Level2:
		return "L2"
	case model.Level3:
		return "L3"
	default:
		return "?"
	}
}
