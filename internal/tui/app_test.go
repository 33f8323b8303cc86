package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func testSnapshot(revision uint64) *pipeline.Snapshot {
	lk := pipeline.NewLookups()
	lk.Categories["food"] = model.Category{ID: "food", Name: "Groceries"}
	lk.Categories["save"] = model.Category{ID: "save", Name: "Savings"}

	now := time.Now()
	entry := func(id, amount string, kind model.Kind, cat model.ID, monthsAgo int) model.Entry {
		return model.Entry{
			ID:          model.ID(id),
			Amount:      decimal.RequireFromString(amount),
			Currency:    "TRY",
			Kind:        kind,
			Date:        pipeline.Civil(now).AddDate(0, -monthsAgo, 0),
			CategoryID:  cat,
			Description: "entry " + id,
		}
	}

	return &pipeline.Snapshot{
		Entries: []model.Entry{
			entry("1", "1000", model.KindIncome, "", 0),
			entry("2", "150", model.KindExpense, "food", 0),
			entry("3", "90", model.KindExpense, "food", 8),
			entry("4", "300", model.KindDeposit, "save", 1),
		},
		Lookups: lk,
		Budgets: []model.Budget{{ID: "b1", Name: "Food budget", Amount: decimal.NewFromInt(200), CategoryID: "food"}},
		Goals: []model.Goal{{ID: "g1", Name: "Holiday", TargetAmount: decimal.NewFromInt(500),
			CurrentAmount: decimal.NewFromInt(100), CategoryID: "save"}},
		Revision: revision,
		LoadedAt: now,
	}
}

func newTestApp(t *testing.T) App {
	t.Helper()
	theme.SetActive("flexoki-dark")

	req, err := pipeline.ParseReportRequest("6m", "", "")
	require.NoError(t, err)

	a := App{
		snap:    testSnapshot(1),
		loaded:  true,
		width:   140,
		height:  40,
		windows: windowCycle(req),
		loc:     config.LocaleEnglish,
		recent:  10,
		reports: pipeline.NewReportCache(8, time.Minute),
		dataDir: t.TempDir(),
	}
	a.recompute()
	return a
}

func press(t *testing.T, a App, key string) App {
	t.Helper()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	m, _ := a.Update(msg)
	next, ok := m.(App)
	require.True(t, ok)
	return next
}

func TestWindowCycle(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	first := pipeline.ReportRequest{
		Window:     pipeline.Window{Range: pipeline.RangeCustom, Start: &start},
		CategoryID: "food",
	}
	cycle := windowCycle(first)
	require.Len(t, cycle, 4)
	assert.Equal(t, pipeline.RangeCustom, cycle[0].Window.Range)
	for _, req := range cycle {
		assert.Equal(t, model.ID("food"), req.CategoryID, "category must carry across windows")
	}

	req, err := pipeline.ParseReportRequest("12m", "", "")
	require.NoError(t, err)
	cycle = windowCycle(req)
	require.Len(t, cycle, 3)
	assert.Equal(t, pipeline.Range12M, cycle[0].Window.Range)
}

func TestRecomputeUsesWindow(t *testing.T) {
	a := newTestApp(t)

	// Entry 3 is eight months old: outside 6m, inside 12m.
	assert.Equal(t, 3, a.report.EntryCount)
	assert.True(t, a.report.Expense.Total.Equal(decimal.NewFromInt(150)))

	a = press(t, a, "w")
	assert.Equal(t, "last 12 months", a.windowLabel())
	assert.Equal(t, 4, a.report.EntryCount)
	assert.True(t, a.report.Expense.Total.Equal(decimal.NewFromInt(240)))

	a = press(t, a, "W")
	assert.Equal(t, "last 6 months", a.windowLabel())

	// Budgets are not windowed: 150 + 90 against 200.
	require.Len(t, a.overview.Budgets, 1)
	assert.True(t, a.overview.Budgets[0].Exceeded)
	require.Len(t, a.overview.Goals, 1)
	assert.True(t, a.overview.Goals[0].Current.Equal(decimal.NewFromInt(400)))
}

func TestTabKeys(t *testing.T) {
	a := newTestApp(t)
	for key, want := range map[string]int{"c": tabCategories, "b": tabBudgets, "g": tabGoals, "t": tabTrend, "o": tabOverview} {
		a = press(t, a, key)
		assert.Equal(t, want, a.activeTab, "key %q", key)
	}
}

func TestScrollClampsToList(t *testing.T) {
	a := newTestApp(t)
	a = press(t, a, "c")
	for i := 0; i < 10; i++ {
		a = press(t, a, "j")
	}
	assert.Equal(t, len(a.catStats)-1, a.scroll)
	a = press(t, a, "k")
	assert.Equal(t, len(a.catStats)-2, a.scroll)
}

func TestRefreshKeepsStateOnSameRevision(t *testing.T) {
	a := newTestApp(t)
	a = press(t, a, "c")
	a = press(t, a, "j")
	require.Equal(t, 1, a.scroll)

	m, _ := a.Update(RefreshDataMsg{Snapshot: testSnapshot(1)})
	a = m.(App)
	assert.Equal(t, 1, a.scroll, "unchanged revision should not reset scroll")

	m, _ = a.Update(RefreshDataMsg{Snapshot: testSnapshot(2)})
	a = m.(App)
	assert.Equal(t, 0, a.scroll)
	assert.Equal(t, uint64(2), a.snap.Revision)
}

func TestViewRendersEveryTab(t *testing.T) {
	a := newTestApp(t)

	wants := map[int]string{
		tabOverview:   "Top expenses",
		tabCategories: "Groceries",
		tabBudgets:    "Food budget",
		tabGoals:      "Holiday",
		tabTrend:      "Monthly trend",
	}
	for tab, want := range wants {
		a.activeTab = tab
		view := a.View()
		assert.Contains(t, view, want, "tab %d", tab)
		assert.Equal(t, a.height, lipgloss.Height(view), "tab %d fills the terminal", tab)
	}
}

func TestViewEmptyLedger(t *testing.T) {
	a := newTestApp(t)
	a.snap = &pipeline.Snapshot{Lookups: pipeline.NewLookups()}
	a.recompute()
	assert.True(t, strings.Contains(a.View(), "No entries found"))
}

func TestViewTooNarrow(t *testing.T) {
	a := newTestApp(t)
	a.width = 60
	assert.Contains(t, a.View(), "Terminal too narrow")
}
