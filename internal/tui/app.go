// Package tui provides the interactive Bubble Tea dashboard for noralyzer.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/store"
	"github.com/noralyzer/noralyzer/internal/tui/components"
	"github.com/noralyzer/noralyzer/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the initial ledger load finishes.
type DataLoadedMsg struct {
	Snapshot *pipeline.Snapshot
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports journal parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg struct {
	Snapshot *pipeline.Snapshot
	LoadTime time.Duration
	Err      error
}

// Options configures a new App.
type Options struct {
	DataDir     string
	Request     pipeline.ReportRequest
	Locale      config.Locale
	UseCache    bool
	RecentCount int
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	snap     *pipeline.Snapshot
	loaded   bool
	loadTime time.Duration
	loadErr  error

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Pre-computed for the current window
	reports  *pipeline.ReportCache
	report   model.Report
	overview model.Overview
	catStats []model.CategoryTotal

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	scroll    int // list offset of the active tab

	// Window state
	windows []pipeline.ReportRequest
	window  int
	loc     config.Locale
	recent  int

	// Setup (huh form), shown on first run and on demand
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading, channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	dataDir  string
	useCache bool
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	minRefresh       = 10 * time.Second
)

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("config unreadable, using defaults", "error", err)
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	t := theme.Active
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	cfg := loadConfigOrDefault()
	refreshInterval := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < minRefresh {
		refreshInterval = 30 * time.Second
	}

	recent := opts.RecentCount
	if recent <= 0 {
		recent = 10
	}

	return App{
		dataDir:         opts.DataDir,
		useCache:        opts.UseCache,
		windows:         windowCycle(opts.Request),
		loc:             opts.Locale,
		recent:          recent,
		needSetup:       !config.Exists(),
		setupVals:       SetupValuesFrom(cfg),
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		reports:         pipeline.NewReportCache(32, 5*time.Minute),
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
	}
}

// windowCycle returns the windows the w key steps through: the requested
// one first, then the fixed ranges it is not, all sharing its category.
func windowCycle(first pipeline.ReportRequest) []pipeline.ReportRequest {
	out := []pipeline.ReportRequest{first}
	for _, r := range []pipeline.Range{pipeline.Range6M, pipeline.Range12M, pipeline.RangeAll} {
		if r == first.Window.Range {
			continue
		}
		req := first
		req.Window = pipeline.Window{Range: r}
		out = append(out, req)
	}
	return out
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.dataDir, a.useCache, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a App) request() pipeline.ReportRequest {
	if a.window < 0 || a.window >= len(a.windows) {
		return pipeline.ReportRequest{Window: pipeline.Window{Range: pipeline.Range6M}}
	}
	return a.windows[a.window]
}

func (a App) categorySelector() string {
	req := a.request()
	if req.Uncategorized {
		return pipeline.UncategorizedSelector
	}
	return string(req.CategoryID)
}

func (a *App) recompute() {
	if a.snap == nil {
		return
	}
	a.report = a.reports.Report(a.snap, a.request(), time.Now(), a.loc)
	a.overview = pipeline.Overview(a.snap, a.recent)
	a.catStats = pipeline.CategoryStats(a.snap)
	a.scroll = 0
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scrollBy(-1)
		case tea.MouseButtonWheelDown:
			a.scrollBy(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
					a.scroll = 0
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		a.lastRefresh = time.Now()
		if msg.Snapshot != nil {
			a.snap = msg.Snapshot
			a.recompute()
		}
		if a.needSetup {
			cmd := a.openSetup()
			return a, cmd
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.dataDir, a.useCache))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.loadErr = msg.Err
		if msg.Snapshot != nil {
			// Unchanged revisions keep the computed views and scroll position.
			if a.snap == nil || msg.Snapshot.Revision != a.snap.Revision {
				a.snap = msg.Snapshot
				a.loadTime = msg.LoadTime
				a.recompute()
			}
		}
		return a, nil
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
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

	// The setup form intercepts all keys while open.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.useCache)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		cfg := loadConfigOrDefault()
		cfg.TUI.AutoRefresh = a.autoRefresh
		if err := config.Save(cfg); err != nil {
			slog.Warn("saving auto-refresh setting", "error", err)
		}
		return a, nil
	case "w":
		a.window = (a.window + 1) % len(a.windows)
		a.recompute()
		return a, nil
	case "W":
		a.window = (a.window - 1 + len(a.windows)) % len(a.windows)
		a.recompute()
		return a, nil
	case "s":
		cmd := a.openSetup()
		return a, cmd
	case "j", "down":
		a.scrollBy(1)
		return a, nil
	case "k", "up":
		a.scrollBy(-1)
		return a, nil
	case "left", "h":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		a.scroll = 0
		return a, nil
	case "right", "l", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		a.scroll = 0
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
			a.scroll = 0
		}
	}
	return a, nil
}

func (a *App) scrollBy(n int) {
	a.scroll = min(max(a.scroll+n, 0), max(a.listLen()-1, 0))
}

// listLen is the number of scrollable rows on the active tab.
func (a App) listLen() int {
	switch a.activeTab {
	case tabOverview:
		return len(a.overview.Recent)
	case tabCategories:
		return len(a.catStats)
	case tabBudgets:
		return len(a.overview.Budgets)
	case tabGoals:
		return len(a.overview.Goals)
	case tabTrend:
		return len(a.report.Trend.Months)
	}
	return 0
}

func (a *App) openSetup() tea.Cmd {
	a.setupVals = SetupValuesFrom(loadConfigOrDefault())
	entries := 0
	if a.snap != nil {
		entries = len(a.snap.Entries)
	}
	a.setupForm = NewSetupForm(entries, a.dataDir, &a.setupVals)
	if a.width > 0 {
		a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
	}
	return a.setupForm.Init()
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			slog.Warn("saving setup", "error", err)
		}
		a.needSetup = false
		a.setupForm = nil
		a.reports.Purge()
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
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
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  noralyzer needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logo := t.Text(t.AccentBright).Bold(true)
	sub := t.Text(t.TextMuted)
	count := t.Text(t.TextPrimary)

	var b strings.Builder
	b.WriteString(logo.Render("◈ noralyzer"))
	b.WriteString(sub.Render(" · personal finance"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(max(a.width-40, 20), 40)
		pct := float64(a.progress) / float64(a.progressMax) * 100
		b.WriteString(t.Text(t.Accent).Render(a.spinner.View()))
		b.WriteString(sub.Render(" Parsing journals\n\n"))
		b.WriteString(components.ProgressBar(pct, barW, true))
		b.WriteString("\n")
		b.WriteString(count.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(sub.Render(" / "))
		b.WriteString(count.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(t.Text(t.Accent).Render(a.spinner.View()))
		b.WriteString(sub.Render(" Discovering journals..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	section := t.Text(t.Accent).Bold(true)
	keyStyle := t.Text(t.AccentBright).Bold(true)
	desc := t.Text(t.TextMuted)

	var b strings.Builder
	b.WriteString(t.Text(t.AccentBright).Bold(true).Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	groups := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o c b g t", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Scroll lists"},
		}},
		{"Actions", [][2]string{
			{"w W", "Next / Previous time window"},
			{"r", "Reload journals"},
			{"R", "Toggle auto-refresh"},
			{"s", "Settings"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(section.Render(g.title))
		b.WriteString("\n")
		for _, bind := range g.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				desc.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(t.Text(t.TextDim).Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	filter := pill.Render(" ") + accent.Render(a.windowLabel())
	if sel := a.categorySelector(); sel != "" {
		filter += pill.Render(" │ ") + accent.Render(a.categoryName(model.ID(sel)))
	}
	if a.loadErr != nil {
		filter += pill.Render(" │ ") + lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).
			Render("load failed: "+cli.Truncate(a.loadErr.Error(), 60))
	}
	filter += pill.Render(" ")

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filter)

	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		Window:      a.windowLabel(),
		DataAge:     a.dataAge(),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
	})

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.snap == nil || len(a.snap.Entries) == 0:
		content = a.renderEmpty(cw)
	default:
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabCategories:
			content = a.renderCategoriesTab(cw, contentH)
		case tabBudgets:
			content = a.renderBudgetsTab(cw, contentH)
		case tabGoals:
			content = a.renderGoalsTab(cw, contentH)
		case tabTrend:
			content = a.renderTrendTab(cw, contentH)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderEmpty(cw int) string {
	t := theme.Active
	body := t.Text(t.TextMuted).Render("No entries found in ") +
		t.Text(t.TextPrimary).Render(a.dataDir) + "\n\n" +
		t.Text(t.TextMuted).Render("Record one with ") +
		t.Text(t.Accent).Render("noralyzer add") +
		t.Text(t.TextMuted).Render(", then press r to reload.")
	return components.ContentCard("Empty ledger", body, cw)
}

func (a App) windowLabel() string {
	req := a.request()
	switch req.Window.Range {
	case pipeline.Range6M:
		return "last 6 months"
	case pipeline.Range12M:
		return "last 12 months"
	case pipeline.RangeAll:
		return "all time"
	case pipeline.RangeCustom:
		if req.Window.Start != nil {
			return "since " + cli.FormatDate(*req.Window.Start)
		}
		return "all time"
	}
	return string(req.Window.Range)
}

func (a App) categoryName(id model.ID) string {
	if id == pipeline.UncategorizedSelector {
		return a.loc.Uncategorized()
	}
	if a.snap != nil {
		if c, ok := a.snap.Lookups.Category(id); ok && c.Name != "" {
			return c.Name
		}
	}
	return string(id)
}

func (a App) dataAge() string {
	if a.lastRefresh.IsZero() {
		return ""
	}
	return cli.FormatAge(a.lastRefresh)
}

// ─── Loading ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadSnapshot runs the cached loader, falling back to a full parse.
func loadSnapshot(dataDir string, useCache bool, progressFn pipeline.ProgressFunc) (*pipeline.Snapshot, error) {
	if useCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			cr, loadErr := pipeline.LoadWithCache(dataDir, cache, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return cr.Snapshot, nil
			}
			slog.Warn("cached load failed, falling back to full parse", "error", loadErr)
		}
	}
	result, err := pipeline.Load(dataDir, progressFn)
	if err != nil {
		return nil, err
	}
	return result.Snapshot, nil
}

// loadDataCmd starts the loader in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(dataDir string, useCache bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send; a dropped update is superseded by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			snap, err := loadSnapshot(dataDir, useCache, progressFn)
			sub <- DataLoadedMsg{Snapshot: snap, LoadTime: time.Since(start), Err: err}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads the ledger in the background without progress UI.
func refreshDataCmd(dataDir string, useCache bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		snap, err := loadSnapshot(dataDir, useCache, nil)
		return RefreshDataMsg{Snapshot: snap, LoadTime: time.Since(start), Err: err}
	}
}

// ─── Layout helpers ─────────────────────────────────────────────

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
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// visibleRows returns the slice window [from, to) of n rows that fits in
// height rows, starting at offset.
func visibleRows(n, offset, height int) (int, int) {
	if height <= 0 || n == 0 {
		return 0, 0
	}
	from := min(max(offset, 0), max(n-1, 0))
	to := min(from+height, n)
	return from, to
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow RenderTabBar: one leading space, then tabs joined by
// components.TabSeparator.
func (a App) tabAtX(x int) int {
	pos := 1
	sep := len(components.TabSeparator)
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + sep
	}
	return -1
}
