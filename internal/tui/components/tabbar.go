package components

import (
	"strings"

	"github.com/noralyzer/noralyzer/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Categories", Key: 'c', KeyPos: 0},
	{Name: "Budgets", Key: 'b', KeyPos: 0},
	{Name: "Goals", Key: 'g', KeyPos: 0},
	{Name: "Trend", Key: 't', KeyPos: 0},
}

// TabSeparator is placed between rendered tabs.
const TabSeparator = "  "

// TabVisualWidth returns the rendered width of a tab label. Inactive tabs
// show their shortcut in brackets, adding two columns.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name)
	if !active {
		w += 2
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active

	bg := lipgloss.NewStyle().Background(t.Background)
	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background).Bold(true)
	dimKeyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}
		before := tab.Name[:tab.KeyPos]
		key := string(tab.Name[tab.KeyPos])
		after := tab.Name[tab.KeyPos+1:]
		parts = append(parts, inactiveStyle.Render(before)+
			dimKeyStyle.Render("[")+keyStyle.Render(key)+dimKeyStyle.Render("]")+
			inactiveStyle.Render(after))
	}

	row := bg.Render(" ") + strings.Join(parts, bg.Render(TabSeparator))
	if pad := width - lipgloss.Width(row); pad > 0 {
		row += bg.Render(strings.Repeat(" ", pad))
	}
	return row
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
