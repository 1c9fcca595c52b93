package cmd

import (
	"fmt"
	"os"

	"caseburn/internal/cli"
	"caseburn/internal/model"
	"caseburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Caseload totals and critical watchlist",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}

	if view.Result.Store.Len() == 0 {
		fmt.Println("\n  No clients on the caseload.")
		fmt.Println("  Add one with `caseburn add` or import a spreadsheet with `caseburn import csv`.")
		return nil
	}

	r := view.Rollup

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CASELOAD  as of %s", cli.FormatLongDate(view.AsOf))))
	fmt.Println()

	rows := [][]string{
		{"Participants", cli.FormatNumber(int64(r.Participants))},
		{"Funds Under Management", cli.FormatMoney(r.TotalFunds)},
		{"---"},
		{"Weekly Revenue", cli.FormatMoney(r.WeeklyRevenue)},
		{"Projected Monthly Revenue", cli.FormatMoney(r.ProjectedMonthlyRevenue)},
		{"---"},
	}
	for _, s := range model.AllStatuses {
		rows = append(rows, []string{s.String(), cli.FormatNumber(int64(r.StatusCounts[s]))})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	watch := pipeline.Watchlist(view.Metrics)
	if len(watch) > 0 {
		fmt.Println()
		fmt.Println(cli.RenderWarning(fmt.Sprintf("  %d client(s) will run out of funds before plan end", r.CriticalRiskCount)))
		fmt.Println()

		watchRows := make([][]string, 0, len(watch))
		for _, m := range watch {
			watchRows = append(watchRows, []string{
				m.Name,
				cli.FormatDate(m.DepletionDate),
				cli.FormatWeeks(m.RunwayWeeks),
				cli.FormatSigned(m.Surplus),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Critical Risk Watchlist",
			Headers: []string{"Participant", "Funds Run Out", "Runway", "Shortfall"},
			Rows:    watchRows,
		}))
	}

	if r.SkippedCount > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d record(s) skipped as invalid\n", r.SkippedCount)
	}

	return nil
}
