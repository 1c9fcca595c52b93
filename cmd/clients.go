package cmd

import (
	"fmt"
	"strings"

	"caseburn/internal/cli"
	"caseburn/internal/model"
	"caseburn/internal/pipeline"
	"caseburn/internal/viability"

	"github.com/spf13/cobra"
)

var (
	flagStatus []string
	flagSearch string
)

var clientsCmd = &cobra.Command{
	Use:     "clients",
	Aliases: []string{"ls", "list"},
	Short:   "List clients with runway and status",
	RunE:    runClients,
}

var showCmd = &cobra.Command{
	Use:   "show <client>",
	Short: "Show one client's viability in detail",
	Long:  "Show one client's viability. <client> is an id, an id prefix, or the exact name.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	clientsCmd.Flags().StringSliceVarP(&flagStatus, "status", "s", nil, "Filter by status (robust, sustainable, monitoring, critical)")
	clientsCmd.Flags().StringVar(&flagSearch, "search", "", "Filter by name or NDIS number (substring match)")
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(showCmd)
}

func runClients(cmd *cobra.Command, _ []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}

	metrics := view.Metrics
	if len(flagStatus) > 0 {
		statuses := make([]model.Status, 0, len(flagStatus))
		for _, raw := range flagStatus {
			s, ok := pipeline.ParseStatus(raw)
			if !ok {
				return fmt.Errorf("unknown status %q", raw)
			}
			statuses = append(statuses, s)
		}
		metrics = pipeline.FilterByStatus(metrics, statuses...)
	}
	metrics = pipeline.FilterByName(metrics, flagSearch)

	if len(metrics) == 0 {
		fmt.Println("\n  No clients found.")
		return nil
	}

	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			shortID(m.ID),
			m.Name,
			m.NDISNumber,
			cli.FormatMoney(m.Balance),
			cli.FormatMoney(m.WeeklyCost),
			cli.FormatWeeks(m.RunwayWeeks),
			cli.FormatWeeks(m.WeeksRemaining),
			cli.FormatSigned(m.Surplus),
			m.Status.String(),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CLIENTS  %d of %d", len(metrics), len(view.Metrics))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Name", "NDIS", "Balance", "Weekly", "Runway", "Weeks Left", "Outcome", "Status"},
		Rows:    rows,
	}))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}
	m, err := view.findClient(args[0])
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(strings.ToUpper(m.Name)))
	fmt.Println()
	fmt.Println(cli.RenderKV("Status", cli.RenderStatus(m.Status)))
	fmt.Println(cli.RenderKV("ID", m.ID))
	fmt.Println(cli.RenderKV("NDIS Number", orDash(m.NDISNumber)))
	fmt.Println(cli.RenderKV("Support Level", string(m.SupportLevel)))
	fmt.Println(cli.RenderKV("Hourly Rate", cli.FormatMoney(m.HourlyRate)))
	fmt.Println(cli.RenderKV("Hours / Week", cli.FormatHours(m.HoursPerWeek)))
	fmt.Println()
	fmt.Println(cli.RenderKV("Total Budget", cli.FormatMoney(m.TotalBudget)))
	fmt.Println(cli.RenderKV("Current Balance", cli.RenderMoney(m.Balance)))
	fmt.Println(cli.RenderKV("Weekly Burn", cli.FormatMoney(m.WeeklyCost)))
	fmt.Println(cli.RenderKV("Plan End", cli.FormatLongDate(m.PlanEnd)))
	fmt.Println(cli.RenderKV("Weeks Remaining", cli.FormatWeeks(m.WeeksRemaining)))
	fmt.Println(cli.RenderKV("Funds Run Out", cli.FormatDate(m.DepletionDate)))
	fmt.Println(cli.RenderKV("Buffer", cli.FormatWeeks(m.BufferWeeks)+" wks"))
	fmt.Println(cli.RenderKV("Needed To Finish", cli.FormatMoney(m.RequiredToFinish)))
	fmt.Println(cli.RenderKV("Projected Outcome", cli.FormatSigned(m.Surplus)))
	fmt.Println()
	fmt.Println("  " + cli.RenderRunwayBar(m, 30))

	points := viability.Trajectory(m, view.AsOf)
	actual := make([]float64, len(points))
	for i, p := range points {
		actual[i] = p.Actual
	}
	fmt.Println("  " + cli.RenderMuted("balance ") + cli.RenderSparkline(actual))

	if m.PlanEndFallback {
		fmt.Println()
		fmt.Println(cli.RenderWarning("  Plan end is missing or unreadable; a default date was used."))
	}

	if strings.TrimSpace(m.Notes) != "" {
		fmt.Println()
		fmt.Println(cli.RenderMuted("  Strategy Notes"))
		for _, line := range strings.Split(m.Notes, "\n") {
			fmt.Println("  " + line)
		}
	}
	fmt.Println()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
