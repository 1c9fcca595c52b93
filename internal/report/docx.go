package report

import (
	"fmt"
	"io"
	"strings"

	"caseburn/internal/cli"
	"caseburn/internal/model"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	colorCritical = "FF0000"
	colorHealthy  = "2EA043"
)

// WriteDocx renders doc as a Word document.
func WriteDocx(w io.Writer, doc Document) error {
	d, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	if err := buildDocx(d, doc); err != nil {
		return err
	}
	if err := d.Write(w); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

func buildDocx(d *docx.RootDoc, doc Document) error {
	heading := func(text string, level uint) error {
		if _, err := d.AddHeading(text, level); err != nil {
			return fmt.Errorf("adding heading %q: %w", text, err)
		}
		return nil
	}

	// Title page
	if err := heading(Title, 0); err != nil {
		return err
	}
	d.AddParagraph("Date: " + cli.FormatLongDate(doc.GeneratedAt))
	d.AddParagraph(ConfidentialLine)

	// Executive summary
	r := doc.Rollup
	if err := heading("Executive Summary", 1); err != nil {
		return err
	}
	d.AddEmptyParagraph().AddText(fmt.Sprintf("Total Participants: %d", r.Participants)).Bold(true)
	d.AddParagraph("Funds Under Management: " + cli.FormatMoney(r.TotalFunds))
	d.AddParagraph("Projected Monthly Revenue: " + cli.FormatMoney(r.ProjectedMonthlyRevenue))
	d.AddParagraph("Weekly Revenue: " + cli.FormatMoney(r.WeeklyRevenue))
	if r.SkippedCount > 0 {
		d.AddParagraph(fmt.Sprintf("Records excluded (invalid): %d", r.SkippedCount))
	}
	if r.CriticalRiskCount > 0 {
		d.AddEmptyParagraph().
			AddText(fmt.Sprintf("ALERT: %d participant(s) in critical shortfall.", r.CriticalRiskCount)).
			Bold(true).
			Color(colorCritical)
	}

	if err := heading("Critical Risk Watchlist", 3); err != nil {
		return err
	}
	if len(doc.Watchlist) == 0 {
		d.AddParagraph("No participants in critical shortfall.")
	}
	for _, item := range doc.Watchlist {
		d.AddParagraph(watchLine(item)).Style("ListBullet")
	}

	if len(doc.Summary) > 0 {
		if err := heading("Caseload Summary", 3); err != nil {
			return err
		}
		tbl := d.AddTable()
		tbl.Style("TableGrid")
		hdr := tbl.AddRow()
		for _, h := range []string{"Participant", "Status", "Plan End", "Outcome"} {
			hdr.AddCell().AddEmptyPara().AddText(h).Bold(true)
		}
		for _, s := range doc.Summary {
			row := tbl.AddRow()
			row.AddCell().AddParagraph(s.Participant)
			row.AddCell().AddParagraph(s.Status.String())
			row.AddCell().AddParagraph(cli.FormatDate(s.PlanEnd))
			row.AddCell().AddParagraph(cli.FormatSigned(s.Outcome))
		}
	}
	d.AddPageBreak()

	// One page per client
	for i, m := range doc.Clients {
		if err := heading(clientHeading(m), 1); err != nil {
			return err
		}
		color := colorHealthy
		if m.Status == model.CriticalShortfall {
			color = colorCritical
		}
		d.AddEmptyParagraph().AddText("PLAN HEALTH: " + m.Status.String()).Bold(true).Color(color)
		for _, line := range clientLines(m) {
			d.AddParagraph(line)
		}
		if strings.TrimSpace(m.Notes) != "" {
			if err := heading("Strategy Notes", 2); err != nil {
				return err
			}
			for _, line := range strings.Split(strings.ReplaceAll(m.Notes, "\r\n", "\n"), "\n") {
				d.AddParagraph(line)
			}
		}
		if i < len(doc.Clients)-1 {
			d.AddPageBreak()
		}
	}
	return nil
}

func watchLine(item WatchItem) string {
	return fmt.Sprintf("%s: Runs out on %s (%s shortfall)",
		item.Name, cli.FormatShortDate(item.DepletionDate), cli.FormatMoneyWhole(item.Shortfall))
}

func clientHeading(m model.ClientMetrics) string {
	if m.NDISNumber == "" {
		return m.Name
	}
	return fmt.Sprintf("%s (%s)", m.Name, m.NDISNumber)
}

func clientLines(m model.ClientMetrics) []string {
	planEnd := fmt.Sprintf("Plan Ends: %s (%s wks left)", cli.FormatDate(m.PlanEnd), cli.FormatWeeks(m.WeeksRemaining))
	if m.PlanEndFallback {
		planEnd += " [estimated]"
	}
	return []string{
		"Support Level: " + string(m.SupportLevel),
		"Current Balance: " + cli.FormatMoney(m.Balance),
		fmt.Sprintf("Weekly Burn: %s (%s hrs/wk)", cli.FormatMoney(m.WeeklyCost), cli.FormatHours(m.HoursPerWeek)),
		fmt.Sprintf("Runway: %s wks (buffer %s wks)", cli.FormatWeeks(m.RunwayWeeks), formatBuffer(m)),
		planEnd,
		"Projected Outcome: " + cli.FormatSigned(m.Surplus),
	}
}

func formatBuffer(m model.ClientMetrics) string {
	if m.RunwayWeeks >= cli.InfiniteWeeks {
		return "∞"
	}
	b := m.BufferWeeks
	if b > 0 {
		return "+" + cli.FormatWeeks(b)
	}
	return cli.FormatWeeks(b)
}
