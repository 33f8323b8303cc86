package components

import (
	"strings"

	"github.com/noralyzer/noralyzer/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports about the loaded ledger.
type StatusInfo struct {
	Window      string // active time window label
	DataAge     string // how long ago the snapshot was loaded
	Refreshing  bool
	AutoRefresh bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	left := base.Render(" ") +
		key.Render("[?]") + base.Render("help  ") +
		key.Render("[w]") + base.Render("indow  ") +
		key.Render("[r]") + base.Render("efresh  ") +
		key.Render("[q]") + base.Render("uit")

	var right []string
	if info.Window != "" {
		right = append(right, info.Window)
	}
	switch {
	case info.Refreshing:
		right = append(right, "refreshing...")
	case info.DataAge != "":
		right = append(right, "loaded "+info.DataAge)
	}
	if info.AutoRefresh {
		right = append(right, "auto")
	}
	rightStr := base.Render(strings.Join(right, "  ·  ") + " ")

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(rightStr), 0)
	return left + base.Render(strings.Repeat(" ", padding)) + rightStr
}
