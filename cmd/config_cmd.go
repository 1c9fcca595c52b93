// Package cmd implements the caseburn CLI commands.
package cmd

import (
	"fmt"

	"caseburn/internal/config"
	"caseburn/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:          %s\n", dbPath(cfg))
	if n, err := pipeline.ClientCount(cmd.Context(), dbPath(cfg)); err == nil {
		fmt.Printf("    Clients:           %d\n", n)
	} else {
		logger.Warn("counting clients", zap.Error(err))
	}
	fmt.Printf("    Accept DD/MM/YYYY: %v\n", cfg.General.AcceptDMYDates)
	fmt.Println()

	fmt.Println("  [AI]")
	apiKey := config.GetGeminiAPIKey(cfg)
	if apiKey != "" {
		fmt.Printf("    API key: %s\n", maskAPIKey(apiKey))
	} else {
		fmt.Println("    API key: not configured")
	}
	fmt.Printf("    Model:   %s\n", config.GetModel(cfg))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Security]")
	if config.GetAccessCode(cfg) != "" {
		fmt.Println("    Access code: set")
	} else {
		fmt.Println("    Access code: none")
	}
	fmt.Println()

	fmt.Println("  Support coordination rates:")
	for _, lvl := range config.SupportLevels {
		fmt.Printf("    %-42s $%.2f/hr\n", lvl, config.RateFor(lvl))
	}
	fmt.Println()

	fmt.Println("  Run `caseburn setup` to reconfigure.")
	return nil
}
