// Package tui provides the interactive Bubble Tea dashboard for caseburn.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"caseburn/internal/caseload"
	"caseburn/internal/config"
	"caseburn/internal/model"
	"caseburn/internal/pipeline"
	"caseburn/internal/report"
	"caseburn/internal/strategy"
	"caseburn/internal/tui/components"
	"caseburn/internal/tui/theme"
	"caseburn/internal/viability"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Tab indexes, matching components.Tabs.
const (
	tabDashboard = iota
	tabClient
	tabSettings
)

// DataLoadedMsg is sent when the caseload has been read from disk.
type DataLoadedMsg struct {
	Result *pipeline.LoadResult
	Err    error
}

// SavedMsg is sent when a save to disk finishes.
type SavedMsg struct {
	Err error
}

// NoteMsg carries a generated strategy note for one client.
type NoteMsg struct {
	ClientID string
	Text     string
	Err      error
}

// ReportMsg is sent when the docx report has been written.
type ReportMsg struct {
	Path string
	Err  error
}

// GeneratorFunc creates the note generator on demand.
type GeneratorFunc func(ctx context.Context, cfg config.Config) (strategy.Generator, error)

// Options configures the dashboard.
type Options struct {
	DBPath    string
	AsOf      time.Time // zero means today
	Config    config.Config
	ReportDir string
	Logger    *zap.Logger
	Generator GeneratorFunc
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	store     *caseload.Store
	metrics   []model.ClientMetrics
	rollup    model.CaseloadRollup
	loaded    bool
	loadErr   error
	loadTime  time.Duration
	lastSaved time.Time

	dbPath    string
	asOf      time.Time
	fixedAsOf bool
	cfg       config.Config
	parseOpts viability.Options
	reportDir string
	log       *zap.Logger
	newGen    GeneratorFunc

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	notice    string

	// Per-tab state
	dash     dashboardState
	client   clientState
	settings settingsState

	// Active huh form (setup, client add/edit, delete confirm, access gate)
	form     *huh.Form
	formKind formKind
	formVals *formValues

	spinner spinner.Model
	saving  bool
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1
	minContentHeight  = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gen := opts.Generator
	if gen == nil {
		gen = geminiGenerator
	}

	a := App{
		dbPath:    opts.DBPath,
		asOf:      opts.AsOf,
		fixedAsOf: !opts.AsOf.IsZero(),
		cfg:       opts.Config,
		parseOpts: viability.NewOptions(opts.Config.General.AcceptDMYDates),
		reportDir: opts.ReportDir,
		log:       log,
		newGen:    gen,
		spinner:   sp,
		dash:      newDashboardState(),
		client:    newClientState(0),
	}
	if a.asOf.IsZero() {
		a.asOf = time.Now()
	}

	if code := config.GetAccessCode(opts.Config); code != "" {
		a.formVals = &formValues{}
		a.openForm(formAccessGate, newAccessGateForm(code, a.formVals))
	}
	return a
}

func geminiGenerator(ctx context.Context, cfg config.Config) (strategy.Generator, error) {
	return strategy.NewGemini(ctx, config.GetGeminiAPIKey(cfg), config.GetModel(cfg))
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		loadDataCmd(a.dbPath),
		a.spinner.Tick,
	}
	if a.form != nil {
		cmds = append(cmds, a.form.Init())
	}
	return tea.Batch(cmds...)
}

// recompute derives metrics from the store. Call after every mutation.
func (a *App) recompute() {
	if !a.fixedAsOf {
		a.asOf = time.Now()
	}
	a.metrics, a.rollup = pipeline.AggregateWith(a.store.Records(), a.asOf, a.parseOpts)
	for _, s := range a.rollup.Skipped {
		a.log.Warn("skipping invalid record",
			zap.Int("index", s.Index),
			zap.String("id", s.ID),
			zap.String("reason", s.Reason))
	}
	a.dash.clamp(len(a.visibleClients()))
}

// selected returns the metrics for the client open on the Client tab.
func (a App) selected() (model.ClientMetrics, bool) {
	if a.client.id == "" {
		return model.ClientMetrics{}, false
	}
	return pipeline.Find(a.metrics, a.client.id)
}

// persist saves the store in the background.
func (a *App) persist() tea.Cmd {
	a.saving = true
	return saveCmd(a.dbPath, a.store.Records(), a.store.Retired())
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.client.resize(a.contentWidth())
		return a, nil

	case DataLoadedMsg:
		return a.applyLoaded(msg)

	case SavedMsg:
		a.saving = false
		if msg.Err != nil {
			a.log.Error("save failed", zap.String("db", a.dbPath), zap.Error(msg.Err))
			a.notice = "Save failed: " + msg.Err.Error()
		} else {
			a.lastSaved = time.Now()
		}
		return a, nil

	case NoteMsg:
		return a.applyNote(msg)

	case ReportMsg:
		if msg.Err != nil {
			a.log.Error("report failed", zap.Error(msg.Err))
			a.notice = "Report failed: " + msg.Err.Error()
		} else {
			a.notice = "Report written to " + msg.Path
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.client.generating {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKey(msg)
	}

	// Forward unhandled messages (cursor blinks, etc.) to whatever has focus.
	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.client.editingNotes {
		var cmd tea.Cmd
		a.client.notes, cmd = a.client.notes.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) applyLoaded(msg DataLoadedMsg) (tea.Model, tea.Cmd) {
	a.loaded = true
	if msg.Err != nil {
		a.loadErr = msg.Err
		a.log.Error("load failed", zap.String("db", a.dbPath), zap.Error(msg.Err))
		s, _ := caseload.NewStore(nil)
		a.store = s
	} else {
		a.store = msg.Result.Store
		a.loadTime = msg.Result.LoadTime
		a.lastSaved = msg.Result.LastSaved
	}
	a.recompute()

	// First-run setup once the gate (if any) is cleared.
	if a.form == nil && !config.Exists() {
		a.formVals = setupValuesFrom(a.cfg)
		return a, a.openForm(formSetup, newSetupForm(a.store.Len(), a.formVals))
	}
	return a, nil
}

func (a App) applyNote(msg NoteMsg) (tea.Model, tea.Cmd) {
	if msg.ClientID == a.client.id {
		a.client.generating = false
	}
	if msg.Err != nil {
		a.log.Warn("note generation failed", zap.String("client", msg.ClientID), zap.Error(msg.Err))
		a.client.aiErr = msg.Err
		return a, nil
	}
	if err := a.store.SetNotes(msg.ClientID, msg.Text); err != nil {
		// Client was deleted while the request was in flight.
		a.client.aiErr = err
		return a, nil
	}
	a.client.aiErr = nil
	a.recompute()
	return a, a.persist()
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.form != nil {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabDashboard {
			a.dash.move(-1, len(a.visibleClients()))
		} else if a.activeTab == tabClient && a.client.scroll > 0 {
			a.client.scroll--
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabDashboard {
			a.dash.move(1, len(a.visibleClients()))
		} else if a.activeTab == tabClient {
			a.client.scroll++
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// Text inputs own the keyboard while focused.
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabClient && a.client.editingNotes {
		return a.updateNotesEditor(msg)
	}
	if a.activeTab == tabDashboard && a.dash.searching {
		return a.updateDashboardSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}
	a.notice = ""

	switch a.activeTab {
	case tabDashboard:
		if m, cmd, ok := a.updateDashboardKey(key); ok {
			return m, cmd
		}
	case tabClient:
		if m, cmd, ok := a.updateClientKey(key); ok {
			return m, cmd
		}
	case tabSettings:
		if m, cmd, ok := a.updateSettingsKey(key); ok {
			return m, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "a":
		a.formVals = clientValues{}.toForm()
		return a, a.openForm(formAddClient, newClientForm("Add Client", a.formVals, a.parseOpts))
	case "w":
		doc := report.Assemble(a.metrics, a.rollup, time.Now())
		return a, writeReportCmd(a.reportDir, doc)
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.form != nil && (a.formKind == formAccessGate || a.loaded) {
		return a.viewForm()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  caseburn needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(a.form.View()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ caseburn"))
	b.WriteString(subtitleStyle.Render(" · NDIS Caseload Viability"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading caseload..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"d c s", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through clients"},
			{"Enter", "Open client"},
			{"J K ^d ^u", "Scroll client detail"},
		}},
		{"Dashboard", []struct{ key, desc string }{
			{"/", "Search by name or NDIS number"},
			{"f", "Cycle status filter"},
			{"Esc", "Clear search and filter"},
		}},
		{"Client", []struct{ key, desc string }{
			{"n", "Generate strategy note"},
			{"e", "Edit notes (ctrl+s saves)"},
			{"u", "Update client details"},
			{"m", "Show email draft"},
			{"x", "Delete client"},
		}},
		{"Global", []struct{ key, desc string }{
			{"a", "Add client"},
			{"w", "Write docx report"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for i, sec := range sections {
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + as-of line
	pillStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)
	pillAccent := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	info := pillStyle.Render(" as of ") + pillAccent.Render(a.asOf.Format("02 Jan 2006"))
	if a.dash.query != "" {
		info += pillStyle.Render(" │ search ") + pillAccent.Render(a.dash.query)
	}
	if a.dash.filter >= 0 {
		info += pillStyle.Render(" │ ") + pillAccent.Render(model.Status(a.dash.filter).String())
	}
	info += pillStyle.Render(" ")

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(info)

	// 2. Status bar
	right := fmt.Sprintf("%d clients", a.store.Len())
	switch {
	case a.saving:
		right = "saving… · " + right
	case !a.lastSaved.IsZero():
		right = "saved " + a.lastSaved.Format("15:04") + " · " + right
	}
	notice := a.notice
	if a.loadErr != nil {
		notice = "Load failed: " + a.loadErr.Error()
	}
	statusBar := components.RenderStatusBar(w, notice, right)

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabDashboard:
		content = a.renderDashboardTab(cw, contentH)
	case tabClient:
		content = a.renderClientTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Center when the terminal is wider than the content
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func loadDataCmd(dbPath string) tea.Cmd {
	return func() tea.Msg {
		res, err := pipeline.Load(context.Background(), dbPath)
		return DataLoadedMsg{Result: res, Err: err}
	}
}

func saveCmd(dbPath string, recs []model.ClientRecord, retired []string) tea.Cmd {
	return func() tea.Msg {
		return SavedMsg{Err: pipeline.SaveRecords(context.Background(), dbPath, recs, retired)}
	}
}

func generateNoteCmd(newGen GeneratorFunc, cfg config.Config, m model.ClientMetrics) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		gen, err := newGen(ctx, cfg)
		if err != nil {
			return NoteMsg{ClientID: m.ID, Err: err}
		}
		text, err := strategy.GenerateNote(ctx, gen, m)
		return NoteMsg{ClientID: m.ID, Text: text, Err: err}
	}
}

func writeReportCmd(dir string, doc report.Document) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, report.FileName(doc.GeneratedAt))
		f, err := os.Create(path)
		if err != nil {
			return ReportMsg{Err: err}
		}
		if err := report.WriteDocx(f, doc); err != nil {
			_ = f.Close()
			return ReportMsg{Err: err}
		}
		return ReportMsg{Path: path, Err: f.Close()}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
