package cmd

import (
	"fmt"
	"strings"

	"caseburn/internal/config"
	"caseburn/internal/model"
	"caseburn/internal/source"
	"caseburn/internal/viability"

	"github.com/spf13/cobra"
)

// clientFlags are the record fields settable from the command line.
type clientFlags struct {
	name    string
	ndis    string
	level   string
	rate    string
	budget  string
	balance string
	planEnd string
	hours   string
	notes   string
}

func (f *clientFlags) bind(c *cobra.Command) {
	c.Flags().StringVar(&f.name, "name", "", "Participant name")
	c.Flags().StringVar(&f.ndis, "ndis", "", "NDIS number")
	c.Flags().StringVar(&f.level, "level", "", `Support level ("2", "3", "Level 3", ...)`)
	c.Flags().StringVar(&f.rate, "rate", "", "Hourly rate (default from support level)")
	c.Flags().StringVar(&f.budget, "budget", "", "Total plan budget")
	c.Flags().StringVar(&f.balance, "balance", "", "Current balance")
	c.Flags().StringVar(&f.planEnd, "plan-end", "", "Plan end date YYYY-MM-DD")
	c.Flags().StringVar(&f.hours, "hours", "", "Hours of support per week")
	c.Flags().StringVar(&f.notes, "notes", "", "Strategy notes")
}

// apply copies every flag the user set onto rec.
func (f *clientFlags) apply(c *cobra.Command, rec *model.ClientRecord, opts viability.Options) error {
	changed := c.Flags().Changed

	if changed("name") {
		rec.Name = strings.TrimSpace(f.name)
	}
	if changed("ndis") {
		rec.NDISNumber = strings.TrimSpace(f.ndis)
	}
	if changed("level") {
		lvl, ok := config.NormalizeSupportLevel(f.level)
		if !ok {
			return fmt.Errorf("unknown support level %q", f.level)
		}
		rec.SupportLevel = lvl
		if !changed("rate") {
			rec.HourlyRate = config.RateFor(lvl)
		}
	}
	if changed("plan-end") {
		t, ok := viability.ParsePlanEnd(f.planEnd, opts)
		if !ok {
			return fmt.Errorf("invalid --plan-end %q: want YYYY-MM-DD", f.planEnd)
		}
		rec.PlanEnd = t.Format(viability.LayoutISO)
	}
	if changed("notes") {
		rec.Notes = f.notes
	}

	amounts := []struct {
		flag string
		raw  string
		dst  *float64
	}{
		{"rate", f.rate, &rec.HourlyRate},
		{"budget", f.budget, &rec.TotalBudget},
		{"balance", f.balance, &rec.Balance},
		{"hours", f.hours, &rec.HoursPerWeek},
	}
	for _, a := range amounts {
		if !changed(a.flag) {
			continue
		}
		v, ok := source.ParseAmount(a.raw)
		if !ok || v < 0 {
			return fmt.Errorf("invalid --%s %q", a.flag, a.raw)
		}
		*a.dst = v
	}
	return nil
}

var (
	addFlags  clientFlags
	editFlags clientFlags
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a client to the caseload",
	Example: `  caseburn add --name "Alex Nguyen" --ndis 430000001 --level 2 \
    --budget 20000 --balance 15000 --plan-end 2026-06-30 --hours 2`,
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <client>",
	Short: "Change a client's details",
	Long:  "Change a client's details. Only the flags given are updated.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	addFlags.bind(addCmd)
	_ = addCmd.MarkFlagRequired("name")
	editFlags.bind(editCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}

	rec := model.ClientRecord{
		SupportLevel: model.Level2,
		HourlyRate:   config.RateFor(model.Level2),
	}
	if err := addFlags.apply(cmd, &rec, viability.NewOptions(view.Config.General.AcceptDMYDates)); err != nil {
		return err
	}
	if rec.Name == "" {
		return fmt.Errorf("--name must not be blank")
	}

	added, err := view.Result.Store.Add(rec)
	if err != nil {
		return err
	}
	if err := view.save(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("  Added %s (%s)\n", added.Name, added.ID)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}
	m, err := view.findClient(args[0])
	if err != nil {
		return err
	}

	rec, _ := view.Result.Store.Get(m.ID)
	if err := editFlags.apply(cmd, &rec, viability.NewOptions(view.Config.General.AcceptDMYDates)); err != nil {
		return err
	}
	if err := view.Result.Store.Update(rec); err != nil {
		return err
	}
	if err := view.save(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("  Updated %s\n", rec.Name)
	return nil
}
