package cmd

import (
	"fmt"
	"time"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/pipeline"

	"github.com/spf13/cobra"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Month-by-month income and expense table",
	RunE:  runMonthly,
}

func init() {
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
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
	if len(r.Trend.Months) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY  %s", windowLabel(r))))
	fmt.Println()

	tr := r.Trend
	peak := 0.0
	for i := range tr.Months {
		peak = max(peak, tr.Income[i].InexactFloat64(), tr.Expense[i].InexactFloat64())
	}

	rows := make([][]string, 0, len(tr.Months))
	for i := range tr.Months {
		net := tr.Income[i].Sub(tr.Expense[i])
		rows = append(rows, []string{
			tr.Labels[i],
			cli.RenderSigned(cli.FormatAmount(tr.Income[i], loc), true),
			cli.RenderSigned(cli.FormatAmount(tr.Expense[i], loc), false),
			cli.RenderSigned(cli.FormatDelta(net, loc), !net.IsNegative()),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Income", "Expense", "Net"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Println(cli.RenderNote("Expense per month"))
	for i := range tr.Months {
		label := fmt.Sprintf("%-9s", tr.Labels[i])
		fmt.Println(cli.RenderHorizontalBar(label, tr.Expense[i].InexactFloat64(), peak, 40))
	}

	if note := cli.MixedNote(r.Income, r.Expense); note != "" {
		fmt.Println()
		fmt.Println(cli.RenderNote(note))
	}
	fmt.Println()
	return nil
}
