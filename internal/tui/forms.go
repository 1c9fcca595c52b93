package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"caseburn/internal/config"
	"caseburn/internal/model"
	"caseburn/internal/source"
	"caseburn/internal/tui/theme"
	"caseburn/internal/viability"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type formKind int

const (
	formNone formKind = iota
	formAccessGate
	formSetup
	formAddClient
	formEditClient
	formDeleteClient
)

var errWrongCode = errors.New("incorrect access code")

// formValues backs whichever form is open. It is heap-allocated so the
// field pointers handed to huh stay valid across App copies.
type formValues struct {
	// Client
	ID      string
	Name    string
	NDIS    string
	Level   string
	Rate    string
	Budget  string
	Balance string
	PlanEnd string
	Hours   string
	Notes   string

	// Setup
	APIKey     string
	Model      string
	Theme      string
	AccessCode string
	AcceptDMY  bool

	// Gate / confirm
	Code    string
	Confirm bool
}

// clientValues converts between a record and the string form fields.
type clientValues model.ClientRecord

func (c clientValues) toForm() *formValues {
	v := &formValues{
		ID:      c.ID,
		Name:    c.Name,
		NDIS:    c.NDISNumber,
		Level:   string(c.SupportLevel),
		PlanEnd: c.PlanEnd,
		Notes:   c.Notes,
	}
	if v.Level == "" {
		v.Level = string(model.Level2)
	}
	if c.HourlyRate > 0 {
		v.Rate = formatField(c.HourlyRate)
	}
	if c.TotalBudget != 0 {
		v.Budget = formatField(c.TotalBudget)
	}
	if c.Balance != 0 {
		v.Balance = formatField(c.Balance)
	}
	if c.HoursPerWeek != 0 {
		v.Hours = formatField(c.HoursPerWeek)
	}
	return v
}

func formatField(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// record builds a ClientRecord from the form. An empty rate means the
// level's rate table entry.
func (v *formValues) record() model.ClientRecord {
	level, _ := config.NormalizeSupportLevel(v.Level)
	rec := model.ClientRecord{
		ID:           v.ID,
		Name:         strings.TrimSpace(v.Name),
		NDISNumber:   strings.TrimSpace(v.NDIS),
		SupportLevel: level,
		PlanEnd:      strings.TrimSpace(v.PlanEnd),
		Notes:        v.Notes,
	}
	rec.HourlyRate, _ = source.ParseAmount(v.Rate)
	if rec.HourlyRate <= 0 {
		rec.HourlyRate = config.RateFor(level)
	}
	rec.TotalBudget, _ = source.ParseAmount(v.Budget)
	rec.Balance, _ = source.ParseAmount(v.Balance)
	rec.HoursPerWeek, _ = source.ParseAmount(v.Hours)
	return rec
}

func setupValuesFrom(cfg config.Config) *formValues {
	v := &formValues{
		APIKey:     cfg.AI.APIKey,
		Model:      config.GetModel(cfg),
		Theme:      cfg.Appearance.Theme,
		AccessCode: cfg.Security.AccessCode,
		AcceptDMY:  cfg.General.AcceptDMYDates,
	}
	if !theme.Valid(v.Theme) {
		v.Theme = theme.FlexokiDark.Name
	}
	return v
}

// huhTheme returns a huh theme using the active dashboard palette.
func huhTheme() *huh.Theme {
	t := theme.Active
	h := huh.ThemeBase()

	h.Focused.Title = lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	h.Focused.Description = lipgloss.NewStyle().Foreground(t.TextMuted)
	h.Focused.SelectSelector = lipgloss.NewStyle().Foreground(t.Accent)
	h.Focused.SelectedOption = lipgloss.NewStyle().Foreground(t.GreenBright)
	h.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(t.TextPrimary)
	h.Focused.FocusedButton = lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Padding(0, 1)
	h.Focused.BlurredButton = lipgloss.NewStyle().Foreground(t.TextDim).Padding(0, 1)
	h.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(t.Red)
	h.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(t.Red)
	h.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(t.Accent)
	h.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(t.Accent)
	h.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(t.TextPrimary)
	h.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(t.TextDim)

	h.Blurred.Title = lipgloss.NewStyle().Foreground(t.TextMuted)
	h.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(t.TextDim)
	h.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(t.TextDim)
	h.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(t.TextDim)
	h.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(t.TextDim)
	h.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(t.TextMuted)

	return h
}

func newAccessGateForm(code string, v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("caseburn").
				Description("This caseload is protected."),
			huh.NewInput().
				Title("Access code").
				EchoMode(huh.EchoModePassword).
				Value(&v.Code).
				Validate(func(s string) error {
					if strings.TrimSpace(s) != code {
						return errWrongCode
					}
					return nil
				}),
		),
	).WithTheme(huhTheme())
}

func newSetupForm(clients int, v *formValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to caseburn").
				Description(fmt.Sprintf("%d clients on file.\nLet's set up a few things.", clients)),
			huh.NewInput().
				Title("Gemini API key").
				Description("Used for strategy notes. Leave blank to skip.").
				EchoMode(huh.EchoModePassword).
				Value(&v.APIKey),
			huh.NewInput().
				Title("Model").
				Placeholder(config.DefaultModel).
				Value(&v.Model),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
			huh.NewConfirm().
				Title("Accept DD/MM/YYYY plan end dates?").
				Value(&v.AcceptDMY),
			huh.NewInput().
				Title("Access code").
				Description("Required to open the dashboard. Leave blank for none.").
				EchoMode(huh.EchoModePassword).
				Value(&v.AccessCode),
		),
	).WithTheme(huhTheme())
}

func validateAmount(allowEmpty bool) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			if allowEmpty {
				return nil
			}
			return errors.New("required")
		}
		f, ok := source.ParseAmount(s)
		if !ok {
			return errors.New("not a number")
		}
		if f < 0 {
			return errors.New("must not be negative")
		}
		return nil
	}
}

func newClientForm(title string, v *formValues, opts viability.Options) *huh.Form {
	levelOpts := make([]huh.Option[string], 0, len(config.SupportLevels))
	for _, lvl := range config.SupportLevels {
		levelOpts = append(levelOpts, huh.NewOption(string(lvl), string(lvl)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title),
			huh.NewInput().
				Title("Participant name").
				Value(&v.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("required")
					}
					return nil
				}),
			huh.NewInput().
				Title("NDIS number").
				Value(&v.NDIS),
			huh.NewSelect[string]().
				Title("Support level").
				Options(levelOpts...).
				Value(&v.Level),
			huh.NewInput().
				Title("Hourly rate").
				Placeholder("from price guide").
				Value(&v.Rate).
				Validate(validateAmount(true)),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Total budget").
				Value(&v.Budget).
				Validate(validateAmount(false)),
			huh.NewInput().
				Title("Current balance").
				Value(&v.Balance).
				Validate(validateAmount(false)),
			huh.NewInput().
				Title("Plan end").
				Placeholder("YYYY-MM-DD").
				Value(&v.PlanEnd).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, ok := viability.ParsePlanEnd(s, opts); !ok {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Hours per week").
				Value(&v.Hours).
				Validate(validateAmount(false)),
		),
	).WithTheme(huhTheme())
}

func newDeleteForm(name string, v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", name)).
				Description("The client is removed from the caseload.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&v.Confirm),
		),
	).WithTheme(huhTheme())
}

// openForm makes f the active overlay and returns its init command.
func (a *App) openForm(kind formKind, f *huh.Form) tea.Cmd {
	if a.width > 0 {
		f = f.WithWidth(a.width / 2).WithHeight(a.height)
	}
	a.form = f
	a.formKind = kind
	return f.Init()
}

func (a *App) closeForm() {
	a.form = nil
	a.formKind = formNone
	a.formVals = nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Escape cancels the form.
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return a.cancelForm()
	}

	m, cmd := a.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		return a.finishForm()
	case huh.StateAborted:
		return a.cancelForm()
	}
	return a, cmd
}

func (a App) cancelForm() (tea.Model, tea.Cmd) {
	kind := a.formKind
	a.closeForm()
	if kind == formAccessGate {
		return a, tea.Quit
	}
	return a, nil
}

// finishForm applies a completed form.
func (a App) finishForm() (tea.Model, tea.Cmd) {
	kind := a.formKind
	v := a.formVals
	a.closeForm()

	switch kind {
	case formAccessGate:
		if a.loaded && !config.Exists() {
			a.formVals = setupValuesFrom(a.cfg)
			return a, a.openForm(formSetup, newSetupForm(a.store.Len(), a.formVals))
		}

	case formSetup:
		a.cfg.AI.APIKey = strings.TrimSpace(v.APIKey)
		a.cfg.AI.Model = strings.TrimSpace(v.Model)
		a.cfg.Appearance.Theme = v.Theme
		a.cfg.Security.AccessCode = strings.TrimSpace(v.AccessCode)
		a.cfg.General.AcceptDMYDates = v.AcceptDMY
		theme.SetActive(v.Theme)
		a.parseOpts = viability.NewOptions(v.AcceptDMY)
		if err := config.Save(a.cfg); err != nil {
			a.log.Error("save config", zap.Error(err))
			a.notice = "Could not save config: " + err.Error()
		} else {
			a.notice = "Saved to " + config.Path()
		}
		a.recompute()

	case formAddClient:
		rec, err := a.store.Add(v.record())
		if err != nil {
			a.notice = err.Error()
			return a, nil
		}
		a.recompute()
		a.openClient(rec.ID)
		a.notice = "Added " + rec.Name
		return a, a.persist()

	case formEditClient:
		rec := v.record()
		if err := a.store.Update(rec); err != nil {
			a.notice = err.Error()
			return a, nil
		}
		a.recompute()
		a.notice = "Updated " + rec.Name
		return a, a.persist()

	case formDeleteClient:
		if !v.Confirm {
			return a, nil
		}
		if err := a.store.Delete(v.ID); err != nil {
			a.notice = err.Error()
			return a, nil
		}
		if a.client.id == v.ID {
			a.client = newClientState(a.contentWidth())
			a.activeTab = tabDashboard
		}
		a.recompute()
		a.notice = "Deleted " + v.Name
		return a, a.persist()
	}
	return a, nil
}

// confirmDelete opens the delete confirmation for a client.
func (a App) confirmDelete(m model.ClientMetrics) (tea.Model, tea.Cmd) {
	a.formVals = &formValues{ID: m.ID, Name: m.Name}
	return a, a.openForm(formDeleteClient, newDeleteForm(m.Name, a.formVals))
}

// editClient opens the client form prefilled with the stored record.
func (a App) editClient(id string) (tea.Model, tea.Cmd) {
	rec, ok := a.store.Get(id)
	if !ok {
		return a, nil
	}
	a.formVals = clientValues(rec).toForm()
	return a, a.openForm(formEditClient, newClientForm("Edit "+rec.Name, a.formVals, a.parseOpts))
}
