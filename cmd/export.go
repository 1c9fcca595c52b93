package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"caseburn/internal/source"

	"github.com/spf13/cobra"
)

var (
	flagFormat         string
	flagExportOutput   string
	flagTemplateOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Back up the caseload as JSON or CSV",
	RunE:  runExport,
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a CSV import template",
	RunE:  runTemplate,
}

func init() {
	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "json", "Output format: json or csv")
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", `Output file ("-" for stdout, default caseburn-backup-<date>.<format>)`)
	templateCmd.Flags().StringVarP(&flagTemplateOutput, "output", "o", "-", `Output file ("-" for stdout)`)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(templateCmd)
}

// openOutput returns stdout for "-" or a new file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func runExport(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result, err := loadData(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	var write func(io.Writer) error
	switch flagFormat {
	case "json":
		write = func(w io.Writer) error { return source.WriteJSON(w, result.Store.Records()) }
	case "csv":
		write = func(w io.Writer) error { return source.WriteCSV(w, result.Store.Records()) }
	default:
		return fmt.Errorf("unknown format %q: want json or csv", flagFormat)
	}

	path := flagExportOutput
	if path == "" {
		path = fmt.Sprintf("caseburn-backup-%s.%s", time.Now().Format("2006-01-02"), flagFormat)
	}
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	if path != "-" {
		fmt.Fprintf(os.Stderr, "  Exported %d client(s) to %s\n", result.Store.Len(), path)
	}
	return nil
}

func runTemplate(_ *cobra.Command, _ []string) error {
	out, err := openOutput(flagTemplateOutput)
	if err != nil {
		return err
	}
	if err := source.WriteTemplate(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
