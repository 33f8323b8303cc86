package cmd

import (
	"fmt"
	"time"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Income, expense, balance and category breakdown for a time window",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	req, err := reportRequest()
	if err != nil {
		return err
	}

	snap, err := loadData()
	if err != nil {
		return err
	}
	if emptyLedger(snap) {
		return nil
	}

	loc := locale()
	r := pipeline.Compose(snap, req, time.Now(), loc)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEDGER REPORT  %s", windowLabel(r))))
	fmt.Println()

	if r.EntryCount == 0 {
		fmt.Println("  No entries in the selected window.")
		return nil
	}

	rows := [][]string{
		{"Entries", cli.FormatNumber(int64(r.EntryCount))},
		{"---"},
		{"Income", cli.RenderSigned(cli.FormatMoney(r.Income, loc), true)},
		{"Expense", cli.RenderSigned(cli.FormatMoney(r.Expense, loc), false)},
		{"---"},
		{"Balance", cli.FormatDelta(r.Balance, loc)},
	}
	if r.CategoryID != "" {
		rows = append([][]string{{"Category", categoryLabel(snap, r.CategoryID, loc)}, {"---"}}, rows...)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Totals",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(r.Breakdown) > 0 {
		fmt.Print(renderBreakdown("Expense by Category", r.Breakdown, true, loc))
	}

	if len(r.Trend.Months) > 0 {
		fmt.Print(renderTrend(r.Trend, loc))
	}

	if note := cli.MixedNote(r.Income, r.Expense); note != "" {
		fmt.Println(cli.RenderNote(note))
	}
	fmt.Println()
	return nil
}

// windowLabel describes the report window for titles.
func windowLabel(r model.Report) string {
	switch pipeline.Range(r.Range) {
	case pipeline.Range6M:
		return "Last 6 months"
	case pipeline.Range12M:
		return "Last 12 months"
	case pipeline.RangeCustom:
		if r.From != nil {
			return "Since " + cli.FormatDate(*r.From)
		}
	}
	return "All time"
}

func categoryLabel(snap *pipeline.Snapshot, id model.ID, loc config.Locale) string {
	switch id {
	case "":
		return "-"
	case pipeline.UncategorizedSelector:
		return loc.Uncategorized()
	}
	if c, ok := snap.Lookups.Category(id); ok {
		return c.Name
	}
	return string(id)
}

// renderBreakdown renders category totals. The share column is only shown
// when percentages were computed for the groups.
func renderBreakdown(title string, groups []model.CategoryTotal, share bool, loc config.Locale) string {
	headers := []string{"Category", "Entries", "Amount"}
	if share {
		headers = append(headers, "Share")
	}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		name := g.Name
		if g.Uncategorized {
			name = loc.Uncategorized()
		}
		if g.Icon != "" {
			name = g.Icon + " " + name
		}
		row := []string{
			cli.Truncate(name, 24),
			cli.FormatNumber(int64(g.Count)),
			cli.FormatMoney(g.Amount, loc),
		}
		if share {
			row = append(row, cli.FormatPercent(g.Percentage))
		}
		rows = append(rows, row)
	}
	return cli.RenderTable(cli.Table{
		Title:   title,
		Headers: headers,
		Rows:    rows,
	})
}

func renderTrend(tr model.Trend, loc config.Locale) string {
	rows := make([][]string, 0, len(tr.Months)+2)
	incomes := make([]float64, len(tr.Months))
	expenses := make([]float64, len(tr.Months))
	for i := range tr.Months {
		incomes[i] = tr.Income[i].InexactFloat64()
		expenses[i] = tr.Expense[i].InexactFloat64()
		rows = append(rows, []string{
			tr.Labels[i],
			cli.RenderSigned(cli.FormatAmount(tr.Income[i], loc), true),
			cli.RenderSigned(cli.FormatAmount(tr.Expense[i], loc), false),
			cli.FormatDelta(tr.Income[i].Sub(tr.Expense[i]), loc),
		})
	}
	rows = append(rows, []string{"---"}, []string{
		"Trend",
		cli.RenderSparkline(incomes),
		cli.RenderSparkline(expenses),
		"",
	})
	return cli.RenderTable(cli.Table{
		Title:   "Monthly Trend",
		Headers: []string{"Month", "Income", "Expense", "Net"},
		Rows:    rows,
	})
}
