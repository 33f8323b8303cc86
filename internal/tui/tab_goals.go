package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/tui/components"
	"github.com/noralyzer/noralyzer/internal/tui/theme"
)

func (a App) renderGoalsTab(cw, h int) string {
	t := theme.Active
	goals := a.overview.Goals

	if len(goals) == 0 {
		return components.ContentCard("Savings goals",
			t.Text(t.TextDim).Render("No goals yet. Add one with `noralyzer goals add`."), cw)
	}

	inner := components.CardInnerWidth(cw)
	labelW := min(24, inner/3)
	barW := max(inner-labelW-6, 10)
	from, to := visibleRows(len(goals), a.scroll, max((h-3)/3, 1))
	now := time.Now()

	var b strings.Builder
	for i, gs := range goals[from:to] {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := gs.Goal.Name
		if label == "" {
			label = string(gs.Goal.ID)
		}
		b.WriteString(components.LabeledBar(cli.Truncate(label, labelW), gs.Percentage, labelW, barW, true))
		b.WriteString("\n")

		detail := fmt.Sprintf("%s of %s", cli.FormatAmount(gs.Current, a.loc), cli.FormatAmount(gs.Goal.TargetAmount, a.loc))
		if gs.Goal.CategoryID != "" {
			detail += fmt.Sprintf(" · %s linked from %s", cli.FormatMoney(gs.Linked, a.loc), a.categoryName(gs.Goal.CategoryID))
		}
		b.WriteString(t.Text(t.TextDim).Render(fmt.Sprintf("%-*s", labelW, "")))
		b.WriteString(t.Text(t.TextMuted).Render(" " + detail))

		switch {
		case gs.Reached:
			b.WriteString(t.Text(t.Income).Bold(true).Render("  reached"))
		case gs.Goal.Deadline != nil && gs.Goal.Deadline.Before(now):
			b.WriteString(t.Text(t.Warn).Render("  missed " + cli.FormatDate(*gs.Goal.Deadline)))
		case gs.Goal.Deadline != nil:
			b.WriteString(t.Text(t.TextMuted).Render(
				fmt.Sprintf("  %s to go by %s", cli.FormatAmount(gs.Remaining, a.loc), cli.FormatDate(*gs.Goal.Deadline))))
		default:
			b.WriteString(t.Text(t.TextMuted).Render("  " + cli.FormatAmount(gs.Remaining, a.loc) + " to go"))
		}
	}

	reached := 0
	for _, gs := range goals {
		if gs.Reached {
			reached++
		}
	}
	title := fmt.Sprintf("Savings goals (%d, %d reached)", len(goals), reached)
	return components.ContentCard(title, b.String(), cw)
}
