package cmd

import (
	"fmt"
	"strings"

	"caseburn/internal/config"
	"caseburn/internal/pipeline"
	"caseburn/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	if !stdinIsTerminal() {
		return fmt.Errorf("setup needs an interactive terminal; edit %s instead", config.Path())
	}

	// Load existing config or defaults
	cfg := loadConfig()

	clients, err := pipeline.ClientCount(cmd.Context(), dbPath(cfg))
	if err != nil {
		logger.Warn("counting clients", zap.Error(err))
	}

	apiKey := ""
	modelName := config.GetModel(cfg)
	themeName := cfg.Appearance.Theme
	if !theme.Valid(themeName) {
		themeName = theme.FlexokiDark.Name
	}
	acceptDMY := cfg.General.AcceptDMYDates
	accessCode := cfg.Security.AccessCode

	keyHint := "Used for strategy notes. Leave blank to skip."
	if existing := config.GetGeminiAPIKey(cfg); existing != "" {
		keyHint = fmt.Sprintf("Current: %s. Leave blank to keep it.", maskAPIKey(existing))
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to caseburn!").
				Description(fmt.Sprintf("%d clients in %s", clients, dbPath(cfg))),
			huh.NewInput().
				Title("1. Gemini API key").
				Description(keyHint).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewInput().
				Title("2. Model").
				Placeholder(config.DefaultModel).
				Value(&modelName),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("3. Color theme").
				Options(themeOpts...).
				Value(&themeName),
			huh.NewConfirm().
				Title("4. Accept DD/MM/YYYY plan end dates?").
				Value(&acceptDMY),
			huh.NewInput().
				Title("5. Dashboard access code").
				Description("Asked for when the dashboard opens. Leave blank for none.").
				EchoMode(huh.EchoModePassword).
				Value(&accessCode),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if k := strings.TrimSpace(apiKey); k != "" {
		cfg.AI.APIKey = k
	}
	cfg.AI.Model = strings.TrimSpace(modelName)
	cfg.Appearance.Theme = themeName
	cfg.General.AcceptDMYDates = acceptDMY
	cfg.Security.AccessCode = strings.TrimSpace(accessCode)

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `caseburn setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
