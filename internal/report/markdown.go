package report

import (
	"fmt"
	"strings"

	"caseburn/internal/cli"
)

// Markdown renders doc as Markdown for terminal preview.
func Markdown(doc Document) string {
	var b strings.Builder
	r := doc.Rollup

	fmt.Fprintf(&b, "# %s\n\n", Title)
	fmt.Fprintf(&b, "Date: %s  \n_%s_\n\n", cli.FormatLongDate(doc.GeneratedAt), ConfidentialLine)

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "- **Total Participants:** %d\n", r.Participants)
	fmt.Fprintf(&b, "- **Funds Under Management:** %s\n", cli.FormatMoney(r.TotalFunds))
	fmt.Fprintf(&b, "- **Projected Monthly Revenue:** %s\n", cli.FormatMoney(r.ProjectedMonthlyRevenue))
	fmt.Fprintf(&b, "- **Weekly Revenue:** %s\n", cli.FormatMoney(r.WeeklyRevenue))
	if r.SkippedCount > 0 {
		fmt.Fprintf(&b, "- **Records excluded (invalid):** %d\n", r.SkippedCount)
	}
	b.WriteString("\n")
	if r.CriticalRiskCount > 0 {
		fmt.Fprintf(&b, "> **ALERT:** %d participant(s) in critical shortfall.\n\n", r.CriticalRiskCount)
	}

	b.WriteString("### Critical Risk Watchlist\n\n")
	if len(doc.Watchlist) == 0 {
		b.WriteString("No participants in critical shortfall.\n\n")
	}
	for _, item := range doc.Watchlist {
		fmt.Fprintf(&b, "- %s\n", watchLine(item))
	}
	if len(doc.Watchlist) > 0 {
		b.WriteString("\n")
	}

	if len(doc.Summary) > 0 {
		b.WriteString("### Caseload Summary\n\n")
		b.WriteString("| Participant | Status | Plan End | Outcome |\n")
		b.WriteString("|---|---|---|---:|\n")
		for _, s := range doc.Summary {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				mdCell(s.Participant), s.Status, cli.FormatDate(s.PlanEnd), cli.FormatSigned(s.Outcome))
		}
		b.WriteString("\n")
	}

	for _, m := range doc.Clients {
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "## %s\n\n", clientHeading(m))
		fmt.Fprintf(&b, "**PLAN HEALTH: %s**\n\n", m.Status)
		for _, line := range clientLines(m) {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
		if notes := strings.TrimSpace(m.Notes); notes != "" {
			b.WriteString("### Strategy Notes\n\n")
			b.WriteString(notes)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
