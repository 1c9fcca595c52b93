package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"caseburn/internal/caseload"
	"caseburn/internal/config"
	"caseburn/internal/model"
	"caseburn/internal/pipeline"
	"caseburn/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

var testAsOf = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func testRecords() []model.ClientRecord {
	return []model.ClientRecord{
		{
			ID: "c1", Name: "Alex Nguyen", NDISNumber: "430000001",
			SupportLevel: model.Level2, HourlyRate: 100,
			TotalBudget: 20000, Balance: 20000, PlanEnd: "2025-12-31", HoursPerWeek: 2,
		},
		{
			ID: "c2", Name: "Sam Patel", NDISNumber: "430000002",
			SupportLevel: model.Level3, HourlyRate: 200,
			TotalBudget: 10000, Balance: 1000, PlanEnd: "2025-12-31", HoursPerWeek: 5,
		},
	}
}

// loadedApp returns an App that has received its data and a window size.
func loadedApp(t *testing.T, recs []model.ClientRecord) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CASEBURN_ACCESS_CODE", "")
	t.Setenv("GEMINI_API_KEY", "")
	if err := config.Save(config.DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	s, err := caseload.NewStore(recs)
	if err != nil {
		t.Fatal(err)
	}

	a := NewApp(Options{
		DBPath:    filepath.Join(t.TempDir(), "caseload.db"),
		AsOf:      testAsOf,
		Config:    config.DefaultConfig(),
		ReportDir: t.TempDir(),
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	m, _ = m.Update(DataLoadedMsg{Result: &pipeline.LoadResult{Store: s}})
	return m.(App)
}

func press(t *testing.T, a App, keys ...tea.KeyMsg) App {
	t.Helper()
	var m tea.Model = a
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m.(App)
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := components.TabVisualWidth(components.Tabs[i], i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < n-1 {
				pos++ // separator
			}
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("active=%d x past last tab -> %d, want -1", active, got)
		}
	}
}

func TestLetterKeysSwitchTabs(t *testing.T) {
	a := loadedApp(t, testRecords())

	cases := []struct {
		key  string
		want int
	}{
		{"s", tabSettings},
		{"c", tabClient},
		{"d", tabDashboard},
	}
	for _, tc := range cases {
		a = press(t, a, runeKey(tc.key))
		if a.activeTab != tc.want {
			t.Fatalf("key %q -> tab %d, want %d", tc.key, a.activeTab, tc.want)
		}
	}
}

func TestEnterOpensSelectedClient(t *testing.T) {
	a := loadedApp(t, testRecords())
	a = press(t, a, runeKey("j"), tea.KeyMsg{Type: tea.KeyEnter})

	if a.activeTab != tabClient {
		t.Fatalf("activeTab = %d, want client tab", a.activeTab)
	}
	if a.client.id != "c2" {
		t.Fatalf("client.id = %q, want c2", a.client.id)
	}

	a = press(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.activeTab != tabDashboard {
		t.Fatalf("esc -> tab %d, want dashboard", a.activeTab)
	}
}

func TestStatusFilterCycles(t *testing.T) {
	a := loadedApp(t, testRecords())

	a = press(t, a, runeKey("f"))
	if a.dash.filter != int(model.RobustSurplus) {
		t.Fatalf("filter = %d, want RobustSurplus", a.dash.filter)
	}
	for _, m := range a.visibleClients() {
		if m.Status != model.RobustSurplus {
			t.Fatalf("visible client %s has status %s", m.Name, m.Status)
		}
	}

	for range model.AllStatuses {
		a = press(t, a, runeKey("f"))
	}
	if a.dash.filter != noFilter {
		t.Fatalf("filter after full cycle = %d, want noFilter", a.dash.filter)
	}
	if got := len(a.visibleClients()); got != 2 {
		t.Fatalf("visible = %d, want 2", got)
	}
}

func TestSearchNarrowsClientList(t *testing.T) {
	a := loadedApp(t, testRecords())
	a = press(t, a, runeKey("/"), runeKey("p"), runeKey("a"), runeKey("t"), tea.KeyMsg{Type: tea.KeyEnter})

	if a.dash.searching {
		t.Fatal("search still active after enter")
	}
	got := a.visibleClients()
	if len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("visible = %+v, want only c2", got)
	}
}

func TestNoteAppliedOnlyOnSuccess(t *testing.T) {
	a := loadedApp(t, testRecords())
	a.client.id = "c1"
	a.client.generating = true

	m, _ := a.Update(NoteMsg{ClientID: "c1", Err: errors.New("boom")})
	a = m.(App)
	if a.client.generating {
		t.Fatal("generating still set after failure")
	}
	if a.client.aiErr == nil {
		t.Fatal("aiErr not recorded")
	}
	if rec, _ := a.store.Get("c1"); rec.Notes != "" {
		t.Fatalf("notes changed on failure: %q", rec.Notes)
	}

	m, cmd := a.Update(NoteMsg{ClientID: "c1", Text: "Review hours with the provider."})
	a = m.(App)
	if rec, _ := a.store.Get("c1"); rec.Notes != "Review hours with the provider." {
		t.Fatalf("notes = %q", rec.Notes)
	}
	if cmd == nil || !a.saving {
		t.Fatal("expected a save after the note was applied")
	}
}

func TestNoteForDeletedClientIsDropped(t *testing.T) {
	a := loadedApp(t, testRecords())
	if err := a.store.Delete("c2"); err != nil {
		t.Fatal(err)
	}

	m, cmd := a.Update(NoteMsg{ClientID: "c2", Text: "late"})
	a = m.(App)
	if cmd != nil {
		t.Fatal("no save expected for a missing client")
	}
	if a.client.aiErr == nil {
		t.Fatal("expected an error for the missing client")
	}
}

func TestAccessGateBlocksUntilCancelled(t *testing.T) {
	t.Setenv("CASEBURN_ACCESS_CODE", "")
	cfg := config.DefaultConfig()
	cfg.Security.AccessCode = "2468"

	a := NewApp(Options{DBPath: filepath.Join(t.TempDir(), "c.db"), Config: cfg})
	if a.form == nil || a.formKind != formAccessGate {
		t.Fatal("access gate not shown")
	}

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("cancelling the gate should quit")
	}
}

func TestDeleteConfirmRemovesClient(t *testing.T) {
	a := loadedApp(t, testRecords())
	a = press(t, a, runeKey("x"))
	if a.formKind != formDeleteClient {
		t.Fatalf("formKind = %d, want delete confirm", a.formKind)
	}

	a.formVals.Confirm = true
	m, cmd := a.finishForm()
	a = m.(App)
	if _, ok := a.store.Get("c1"); ok {
		t.Fatal("c1 still present")
	}
	if cmd == nil {
		t.Fatal("expected a save after delete")
	}
	if a.rollup.Participants != 1 {
		t.Fatalf("participants = %d, want 1", a.rollup.Participants)
	}
}

func TestClientFormBuildsRecord(t *testing.T) {
	v := clientValues(model.ClientRecord{
		ID: "c9", Name: "Jo Smith", SupportLevel: model.Level3,
		TotalBudget: 5000, Balance: 4000, PlanEnd: "2025-06-30", HoursPerWeek: 1.5,
	}).toForm()
	v.Balance = "$3,500.50"

	rec := v.record()
	if rec.ID != "c9" || rec.Name != "Jo Smith" {
		t.Fatalf("identity lost: %+v", rec)
	}
	if rec.Balance != 3500.50 {
		t.Fatalf("Balance = %v, want 3500.50", rec.Balance)
	}
	if rec.HourlyRate != config.RateFor(model.Level3) {
		t.Fatalf("HourlyRate = %v, want level 3 rate", rec.HourlyRate)
	}
	if rec.HoursPerWeek != 1.5 {
		t.Fatalf("HoursPerWeek = %v", rec.HoursPerWeek)
	}
}

func TestViewRendersEachTab(t *testing.T) {
	a := loadedApp(t, testRecords())
	a.client.id = "c2"

	for tab := range components.Tabs {
		a.activeTab = tab
		out := a.View()
		if out == "" {
			t.Fatalf("tab %d rendered empty", tab)
		}
		if got := strings.Count(out, "\n") + 1; got != a.height {
			t.Fatalf("tab %d rendered %d lines, want %d", tab, got, a.height)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t, testRecords())
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if out := m.(App).View(); !strings.Contains(out, "too narrow") {
		t.Fatalf("expected narrow warning, got %q", out)
	}
}
