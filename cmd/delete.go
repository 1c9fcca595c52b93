package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var errNotConfirmed = errors.New("not confirmed: pass --yes to skip the prompt")

var flagYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <client>",
	Aliases: []string{"rm"},
	Short:   "Remove a client from the caseload",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove every client from the caseload",
	RunE:  runReset,
}

func init() {
	deleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")
	resetCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resetCmd)
}

// confirm asks a yes/no question unless --yes was given.
func confirm(title, description string) error {
	if flagYes {
		return nil
	}
	if !stdinIsTerminal() {
		return errNotConfirmed
	}

	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return err
	}
	if !ok {
		return errNotConfirmed
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}
	m, err := view.findClient(args[0])
	if err != nil {
		return err
	}

	if err := confirm(fmt.Sprintf("Delete %s?", m.Name), "The client is removed from the caseload."); err != nil {
		return err
	}
	if err := view.Result.Store.Delete(m.ID); err != nil {
		return err
	}
	if err := view.save(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("  Deleted %s\n", m.Name)
	return nil
}

func runReset(cmd *cobra.Command, _ []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}
	n := view.Result.Store.Len()
	if n == 0 {
		fmt.Println("  Caseload is already empty.")
		return nil
	}

	if err := confirm(fmt.Sprintf("Remove all %d clients?", n), "Export a backup first with `caseburn export`."); err != nil {
		return err
	}
	view.Result.Store.Reset()
	if err := view.save(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("  Removed %d clients\n", n)
	return nil
}
