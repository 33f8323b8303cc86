package tui

import (
	"fmt"
	"strings"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/tui/components"
	"github.com/noralyzer/noralyzer/internal/tui/theme"
)

// renderCategoriesTab shows every category with its all-time total next to
// the expense share within the active window.
func (a App) renderCategoriesTab(cw, h int) string {
	t := theme.Active

	if len(a.catStats) == 0 {
		return components.ContentCard("Categories", t.Text(t.TextDim).Render("No categories defined"), cw)
	}

	share := make(map[string]float64, len(a.report.Breakdown))
	for _, g := range a.report.Breakdown {
		share[string(g.CategoryID)] = g.Percentage
	}

	inner := components.CardInnerWidth(cw)
	countW, amountW, shareW := 8, 16, 7
	nameW := max(inner-countW-amountW-shareW-3, 12)
	if a.isCompactLayout() {
		shareW = 0
		nameW = max(inner-countW-amountW-2, 12)
	}

	head := t.Text(t.TextMuted).Bold(true)
	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf("%-*s %*s %*s", nameW, "Category", countW, "Entries", amountW, "All time")))
	if shareW > 0 {
		b.WriteString(head.Render(fmt.Sprintf(" %*s", shareW, "Share")))
	}

	// Title, header and two border rows.
	from, to := visibleRows(len(a.catStats), a.scroll, h-4)
	for _, c := range a.catStats[from:to] {
		name := c.Name
		if c.Uncategorized {
			name = a.loc.Uncategorized()
		}
		if c.Icon != "" {
			name = c.Icon + " " + name
		}
		b.WriteString("\n")
		b.WriteString(t.Text(t.Highlight).Render(fmt.Sprintf("%-*s", nameW, cli.Truncate(name, nameW))))
		b.WriteString(t.Text(t.TextMuted).Render(fmt.Sprintf(" %*s", countW, cli.FormatNumber(int64(c.Count)))))
		b.WriteString(t.Text(t.TextPrimary).Render(fmt.Sprintf(" %*s", amountW, cli.FormatMoney(c.Amount, a.loc))))
		if shareW > 0 {
			pct, ok := share[string(c.CategoryID)]
			cell := "-"
			if ok {
				cell = cli.FormatPercent(pct)
			}
			b.WriteString(t.Text(t.Expense).Render(fmt.Sprintf(" %*s", shareW, cell)))
		}
	}

	title := fmt.Sprintf("Categories (%d)", len(a.catStats))
	if to-from < len(a.catStats) {
		title += fmt.Sprintf("  %d-%d", from+1, to)
	}
	return components.ContentCard(title, b.String(), cw)
}
