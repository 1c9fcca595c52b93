package cmd

import (
	"errors"
	"fmt"
	"os"

	"caseburn/internal/config"
	"caseburn/internal/strategy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagPromptOnly bool
	flagDryRun     bool
)

var noteCmd = &cobra.Command{
	Use:   "note <client>",
	Short: "Generate a strategy note with Gemini",
	Long: `Generate a strategic file note for a client from their viability figures
and save it as the client's notes. Needs a Gemini API key in GEMINI_API_KEY
or the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runNote,
}

func init() {
	noteCmd.Flags().BoolVar(&flagPromptOnly, "prompt", false, "Print the prompt and exit")
	noteCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the note without saving it")
	rootCmd.AddCommand(noteCmd)
}

func runNote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	view, err := loadView(ctx)
	if err != nil {
		return err
	}
	m, err := view.findClient(args[0])
	if err != nil {
		return err
	}

	if flagPromptOnly {
		fmt.Print(strategy.BuildPrompt(m))
		return nil
	}

	gen, err := strategy.NewGemini(ctx, config.GetGeminiAPIKey(view.Config), config.GetModel(view.Config))
	if err != nil {
		if errors.Is(err, strategy.ErrMissingCredential) {
			return fmt.Errorf("%w: set GEMINI_API_KEY or run `caseburn setup`", err)
		}
		return err
	}

	if interactive() {
		fmt.Fprintf(os.Stderr, "  Generating note for %s with %s...\n", m.Name, gen.Model())
	}

	var text string
	if flagDryRun {
		text, err = strategy.GenerateNote(ctx, gen, m)
	} else {
		text, err = strategy.Annotate(ctx, gen, view.Result.Store, m)
	}
	if err != nil {
		logger.Warn("note generation failed", zap.String("client", m.ID), zap.Error(err))
		return err
	}

	fmt.Println()
	fmt.Println(text)
	fmt.Println()

	if flagDryRun {
		return nil
	}
	if err := view.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "  Saved as notes for %s\n", m.Name)
	return nil
}
