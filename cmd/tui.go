package cmd

import (
	"fmt"
	"time"

	"caseburn/internal/tui"
	"caseburn/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagReportDir string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagReportDir, "report-dir", ".", "Directory for reports written from the dashboard")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Load config for theme
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	var asOf time.Time
	if flagAsOf != "" {
		t, err := referenceDate()
		if err != nil {
			return err
		}
		asOf = t
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		DBPath:    dbPath(cfg),
		AsOf:      asOf,
		Config:    cfg,
		ReportDir: flagReportDir,
		Logger:    logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
