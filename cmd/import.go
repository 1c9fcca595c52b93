package cmd

import (
	"fmt"
	"io"
	"os"

	"caseburn/internal/model"
	"caseburn/internal/source"
	"caseburn/internal/viability"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import clients from a spreadsheet or a backup",
}

var importCSVCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Append clients from a CSV spreadsheet",
	Long: `Append clients from a CSV file. The header row names the columns:

  Name, NDIS Number, Support Level, Total Budget, Current Balance,
  Plan End Date, Hours Per Week

Columns may appear in any order. Run ` + "`caseburn template`" + ` for a starter file.
Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCSV,
}

var importJSONCmd = &cobra.Command{
	Use:   "json <file>",
	Short: "Restore the caseload from a JSON backup",
	Long:  "Replace the whole caseload with the clients in a JSON backup made by `caseburn export`.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportJSON,
}

func init() {
	importJSONCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask before replacing existing clients")
	importCmd.AddCommand(importCSVCmd)
	importCmd.AddCommand(importJSONCmd)
	rootCmd.AddCommand(importCmd)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

func newProgressBar(total int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetVisibility(interactive()),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}

	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	opts := source.DefaultCSVOptions()
	opts.Dates = viability.NewOptions(view.Config.General.AcceptDMYDates)
	recs, err := source.ParseCSV(in, opts)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	if len(recs) == 0 {
		fmt.Println("  No rows to import.")
		return nil
	}

	bar := newProgressBar(len(recs), "  Importing")
	for _, rec := range recs {
		if _, err := view.Result.Store.Add(rec); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if err := view.save(cmd.Context()); err != nil {
		return err
	}

	logger.Info("csv import", zap.String("file", args[0]), zap.Int("rows", len(recs)))
	fmt.Printf("  Imported %d client(s); caseload now has %d\n", len(recs), view.Result.Store.Len())
	reportInvalid(recs, view)
	return nil
}

func runImportJSON(cmd *cobra.Command, args []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}

	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	recs, err := source.ReadJSON(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	if n := view.Result.Store.Len(); n > 0 {
		if err := confirm(fmt.Sprintf("Replace %d clients with %d from the backup?", n, len(recs)), ""); err != nil {
			return err
		}
	}
	if err := view.Result.Store.Replace(recs); err != nil {
		return fmt.Errorf("restoring %s: %w", args[0], err)
	}
	if err := view.save(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("  Restored %d client(s)\n", len(recs))
	reportInvalid(recs, view)
	return nil
}

// reportInvalid warns about imported rows the engine cannot evaluate.
func reportInvalid(recs []model.ClientRecord, view *caseloadView) {
	opts := viability.NewOptions(view.Config.General.AcceptDMYDates)
	bad := 0
	for _, r := range recs {
		if _, err := viability.ComputeMetricsWith(r, view.AsOf, opts); err != nil {
			bad++
		}
	}
	if bad > 0 {
		fmt.Fprintf(os.Stderr, "  %d imported record(s) are invalid and will be skipped in totals\n", bad)
	}
}
