package tui

import (
	"fmt"
	"strings"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/tui/components"
	"github.com/noralyzer/noralyzer/internal/tui/theme"
)

func (a App) renderBudgetsTab(cw, h int) string {
	t := theme.Active
	budgets := a.overview.Budgets

	if len(budgets) == 0 {
		return components.ContentCard("Budgets",
			t.Text(t.TextDim).Render("No budgets yet. Add one with `noralyzer budgets add`."), cw)
	}

	inner := components.CardInnerWidth(cw)
	labelW := min(24, inner/3)
	barW := max(inner-labelW-6, 10)

	// Each budget takes three rows: bar, detail and a gap.
	from, to := visibleRows(len(budgets), a.scroll, max((h-3)/3, 1))

	var b strings.Builder
	for i, bs := range budgets[from:to] {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := bs.Budget.Name
		if label == "" {
			label = string(bs.Budget.ID)
		}
		b.WriteString(components.LabeledBar(cli.Truncate(label, labelW), bs.Percentage, labelW, barW, false))
		b.WriteString("\n")

		detail := fmt.Sprintf("%s of %s", cli.FormatMoney(bs.Spent, a.loc), cli.FormatAmount(bs.Budget.Amount, a.loc))
		if bs.Budget.CategoryID != "" {
			detail += " · " + a.categoryName(bs.Budget.CategoryID)
		}
		if bs.Budget.Period != "" {
			detail += " · " + bs.Budget.Period
		}
		detail += " · " + cli.FormatOptionalDate(bs.Budget.StartDate, "…") + " → " + cli.FormatOptionalDate(bs.Budget.EndDate, "…")
		b.WriteString(t.Text(t.TextDim).Render(fmt.Sprintf("%-*s", labelW, "")))
		b.WriteString(t.Text(t.TextMuted).Render(" " + detail))

		if bs.Exceeded {
			b.WriteString(t.Text(t.Expense).Bold(true).Render(
				"  over by " + cli.FormatAmount(bs.Remaining.Neg(), a.loc)))
		} else {
			b.WriteString(t.Text(t.Income).Render(
				"  " + cli.FormatAmount(bs.Remaining, a.loc) + " left"))
		}
	}

	exceeded := 0
	for _, bs := range budgets {
		if bs.Exceeded {
			exceeded++
		}
	}
	title := fmt.Sprintf("Budgets (%d, %d exceeded)", len(budgets), exceeded)
	return components.ContentCard(title, b.String(), cw)
}
