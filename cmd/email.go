package cmd

import (
	"fmt"
	"time"

	"caseburn/internal/report"

	"github.com/spf13/cobra"
)

var flagMailto bool

var emailCmd = &cobra.Command{
	Use:   "email <client>",
	Short: "Draft a viability update email for a client",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmail,
}

func init() {
	emailCmd.Flags().BoolVar(&flagMailto, "mailto", false, "Print a mailto: link instead of the text")
	rootCmd.AddCommand(emailCmd)
}

func runEmail(cmd *cobra.Command, args []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}
	m, err := view.findClient(args[0])
	if err != nil {
		return err
	}

	draft := report.EmailDraft(m, time.Now())
	if flagMailto {
		fmt.Println(draft.MailtoURL())
		return nil
	}

	fmt.Printf("Subject: %s\n\n%s\n", draft.Subject, draft.Body)
	return nil
}
