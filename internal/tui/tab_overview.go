package tui

import (
	"fmt"
	"strings"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/tui/components"
	"github.com/noralyzer/noralyzer/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab indexes, in components.Tabs order.
const (
	tabOverview = iota
	tabCategories
	tabBudgets
	tabGoals
	tabTrend
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	r := a.report
	ov := a.overview

	balanceColor := t.Income
	if r.Balance.IsNegative() {
		balanceColor = t.Expense
	}

	exceeded, reached := 0, 0
	for _, b := range ov.Budgets {
		if b.Exceeded {
			exceeded++
		}
	}
	for _, g := range ov.Goals {
		if g.Reached {
			reached++
		}
	}

	metrics := []components.Metric{
		{Label: "Income", Value: cli.FormatMoney(r.Income, a.loc), Color: t.Income,
			Delta: "all time " + cli.FormatMoney(ov.Income, a.loc)},
		{Label: "Expense", Value: cli.FormatMoney(r.Expense, a.loc), Color: t.Expense,
			Delta: "all time " + cli.FormatMoney(ov.Expense, a.loc)},
		{Label: "Balance", Value: cli.FormatAmount(r.Balance, a.loc), Color: balanceColor,
			Delta: "all time " + cli.FormatAmount(ov.Balance, a.loc)},
		{Label: "Entries", Value: cli.FormatNumber(int64(r.EntryCount)),
			Delta: fmt.Sprintf("%d budgets over · %d goals reached", exceeded, reached)},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(a.topCategoriesCard(cw))
		b.WriteString("\n")
		b.WriteString(a.recentCard(cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			a.topCategoriesCard(widths[0]),
			a.recentCard(widths[1]),
		}))
	}

	if note := cli.MixedNote(r.Income, r.Expense); note != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).Render(" " + note))
	}
	return b.String()
}

func (a App) topCategoriesCard(w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	groups := a.report.Breakdown
	if len(groups) == 0 {
		return components.ContentCard("Top expenses", t.Text(t.TextDim).Render("No expenses in this window"), w)
	}
	groups = groups[:min(len(groups), 8)]

	nameW := min(18, inner/3)
	amountW := 14
	barW := max(inner-nameW-amountW-8, 5)
	peak := groups[0].Amount.Total.InexactFloat64()

	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		name := g.Name
		if g.Uncategorized {
			name = a.loc.Uncategorized()
		}
		b.WriteString(t.Text(t.Highlight).Render(fmt.Sprintf("%-*s", nameW, cli.Truncate(name, nameW))))
		b.WriteString(t.Text(t.TextPrimary).Render(" "))
		b.WriteString(components.HBar(g.Amount.Total.InexactFloat64(), peak, barW, t.Expense))
		b.WriteString(t.Text(t.TextPrimary).Render(fmt.Sprintf(" %*s", amountW, cli.FormatMoney(g.Amount, a.loc))))
		b.WriteString(t.Text(t.TextMuted).Render(fmt.Sprintf(" %5s", cli.FormatPercent(g.Percentage))))
	}
	return components.ContentCard("Top expenses", b.String(), w)
}

func (a App) recentCard(w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	recent := a.overview.Recent
	if len(recent) == 0 {
		return components.ContentCard("Recent entries", t.Text(t.TextDim).Render("Nothing recorded yet"), w)
	}
	from, to := visibleRows(len(recent), a.scroll, len(recent))

	amountW := 14
	descW := max(inner-10-amountW-3, 8)

	var b strings.Builder
	for i, e := range recent[from:to] {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.Text(t.TextMuted).Render(cli.FormatDate(e.Date) + " "))
		b.WriteString(t.Text(t.TextPrimary).Render(fmt.Sprintf("%-*s", descW, cli.Truncate(a.entryLabel(e), descW))))
		b.WriteString(t.Text(kindColor(e.Kind)).Render(fmt.Sprintf(" %*s", amountW, a.signedAmount(e))))
	}
	return components.ContentCard("Recent entries", b.String(), w)
}

// entryLabel prefers the description, then the category name, then the kind.
func (a App) entryLabel(e model.Entry) string {
	if e.Description != "" {
		return e.Description
	}
	if id := a.snap.Lookups.CategoryOf(e); id != "" {
		return a.categoryName(id)
	}
	return string(e.Kind)
}

func (a App) signedAmount(e model.Entry) string {
	s := e.Currency.Symbol() + cli.FormatAmount(e.Amount, a.loc)
	switch pipeline.Classify(e.Kind) {
	case pipeline.IncomeLike:
		return "+" + s
	case pipeline.ExpenseLike:
		return "-" + s
	}
	return s
}

func kindColor(k model.Kind) lipgloss.Color {
	t := theme.Active
	switch pipeline.Classify(k) {
	case pipeline.IncomeLike:
		return t.Income
	case pipeline.ExpenseLike:
		return t.Expense
	}
	return t.Neutral
}
