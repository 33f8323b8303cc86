package tui

import (
	"fmt"
	"strings"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/tui/components"
	"github.com/noralyzer/noralyzer/internal/tui/theme"

	"github.com/shopspring/decimal"
)

func (a App) renderTrendTab(cw, h int) string {
	t := theme.Active
	tr := a.report.Trend

	if len(tr.Months) == 0 {
		return components.ContentCard("Monthly trend", t.Text(t.TextDim).Render("No entries in this window"), cw)
	}

	income := floats(tr.Income)
	expense := floats(tr.Expense)

	tableW := cw
	chartW := 0
	if !a.isCompactLayout() {
		widths := components.LayoutRow(cw, 2)
		tableW, chartW = widths[0], widths[1]
	}

	table := a.trendTable(tableW, h)
	if chartW == 0 {
		return table
	}

	// Title, legend, sparkline rows and borders.
	chartH := max(h-7, 2)
	body := components.Legend(
		components.LegendItem{Label: "income", Color: t.Income},
		components.LegendItem{Label: "expense", Color: t.Expense},
	) + "\n" +
		components.MonthBars(tr.Labels, income, expense, components.CardInnerWidth(chartW), chartH) + "\n\n" +
		t.Text(t.TextMuted).Render("expense ") + components.Sparkline(expense, t.Expense)

	return components.CardRow([]string{table, components.ContentCard("Income vs expense", body, chartW)})
}

func (a App) trendTable(w, h int) string {
	t := theme.Active
	tr := a.report.Trend

	inner := components.CardInnerWidth(w)
	amountW := max((inner-16)/3, 10)
	monthW := max(inner-3*amountW-3, 8)

	head := t.Text(t.TextMuted).Bold(true)
	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf("%-*s %*s %*s %*s", monthW, "Month", amountW, "Income", amountW, "Expense", amountW, "Net")))

	// Newest first reads better in a table.
	n := len(tr.Months)
	from, to := visibleRows(n, a.scroll, h-5)
	for i := from; i < to; i++ {
		idx := n - 1 - i
		net := tr.Income[idx].Sub(tr.Expense[idx])
		netColor := t.Income
		if net.IsNegative() {
			netColor = t.Expense
		}
		b.WriteString("\n")
		b.WriteString(t.Text(t.TextPrimary).Render(fmt.Sprintf("%-*s", monthW, cli.Truncate(tr.Labels[idx], monthW))))
		b.WriteString(t.Text(t.Income).Render(fmt.Sprintf(" %*s", amountW, cli.FormatAmount(tr.Income[idx], a.loc))))
		b.WriteString(t.Text(t.Expense).Render(fmt.Sprintf(" %*s", amountW, cli.FormatAmount(tr.Expense[idx], a.loc))))
		b.WriteString(t.Text(netColor).Render(fmt.Sprintf(" %*s", amountW, cli.FormatDelta(net, a.loc))))
	}

	b.WriteString("\n")
	b.WriteString(head.Render(fmt.Sprintf("%-*s %*s %*s %*s", monthW, "Total",
		amountW, cli.FormatMoney(a.report.Income, a.loc),
		amountW, cli.FormatMoney(a.report.Expense, a.loc),
		amountW, cli.FormatDelta(a.report.Balance, a.loc))))

	return components.ContentCard(fmt.Sprintf("Monthly trend (%d months)", n), b.String(), w)
}

func floats(ds []decimal.Decimal) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.InexactFloat64()
	}
	return out
}
