package cmd

import (
	"fmt"
	"os"
	"time"

	"caseburn/internal/report"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagReportOutput string
	flagPreview      bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the caseload master report (.docx)",
	Long: `Write the caseload master report as a Word document: an executive summary,
the critical risk watchlist, a summary table, and one page per client.

With --preview the same content is rendered in the terminal instead.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&flagReportOutput, "output", "o", "", "Output file (default Caseload_Report_<date>.docx)")
	reportCmd.Flags().BoolVar(&flagPreview, "preview", false, "Render the report in the terminal")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}

	doc := report.Assemble(view.Metrics, view.Rollup, time.Now())

	if flagPreview {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return fmt.Errorf("creating renderer: %w", err)
		}
		out, err := renderer.Render(report.Markdown(doc))
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
		fmt.Print(out)
		return nil
	}

	path := flagReportOutput
	if path == "" {
		path = report.FileName(doc.GeneratedAt)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := report.WriteDocx(f, doc); err != nil {
		_ = f.Close()
		logger.Error("report failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("  Report written to %s (%d clients, %d critical)\n",
		path, view.Rollup.Participants, view.Rollup.CriticalRiskCount)
	return nil
}
