package report

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"caseburn/internal/cli"
	"caseburn/internal/model"
)

// Draft is a plain-text email about one client.
type Draft struct {
	Subject string
	Body    string
}

// EmailDraft builds the viability update email for a client.
func EmailDraft(m model.ClientMetrics, now time.Time) Draft {
	subject := fmt.Sprintf("Viability Update: %s - %s", m.Name, now.Format("02 Jan 2006"))

	var b strings.Builder
	b.WriteString("Hi Team,\n\n")
	fmt.Fprintf(&b, "Current Status: %s\n", m.Status)
	fmt.Fprintf(&b, "Balance: %s\n", cli.FormatMoney(m.Balance))
	fmt.Fprintf(&b, "Plan Ends: %s\n", cli.FormatDate(m.PlanEnd))
	b.WriteString("\nStrategy:\n")
	b.WriteString(m.Notes)

	return Draft{Subject: subject, Body: b.String()}
}

// MailtoURL encodes the draft as a mailto: link with no recipient.
func (d Draft) MailtoURL() string {
	return "mailto:?subject=" + encodeComponent(d.Subject) + "&body=" + encodeComponent(d.Body)
}

// encodeComponent percent-encodes s with spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
