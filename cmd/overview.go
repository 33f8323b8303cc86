package cmd

import (
	"fmt"
	"time"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/pipeline"

	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "All-time dashboard: totals, categories, recent entries, budgets and goals",
	RunE:  runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(_ *cobra.Command, _ []string) error {
	snap, err := loadData()
	if err != nil {
		return err
	}
	if emptyLedger(snap) {
		return nil
	}

	loc := locale()
	ov := pipeline.Overview(snap, cfg.General.RecentCount)

	fmt.Println()
	fmt.Println(cli.RenderTitle("OVERVIEW  All time"))
	fmt.Println()

	var latest time.Time
	if len(ov.Recent) > 0 {
		latest = ov.Recent[0].Date
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

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Entries", cli.FormatNumber(int64(ov.EntryCount))},
						{"---"},
			{"Income", cli.RenderSigned(cli.FormatMoney(ov.Income, loc), true)},
			{"Expense", cli.RenderSigned(cli.FormatMoney(ov.Expense, loc), false)},
			{"Balance", cli.FormatDelta(ov.Balance, loc)},
			{"---"},
			{"Budgets exceeded", fmt.Sprintf("%d / %d", exceeded, len(ov.Budgets))},
			{"Goals reached", fmt.Sprintf("%d / %d", reached, len(ov.Goals))},
			{"Latest entry", cli.FormatAge(latest)},
		},
	}))

	if len(ov.Categories) > 0 {
		top := ov.Categories[:min(5, len(ov.Categories))]
		fmt.Print(renderBreakdown("Top Expense Categories", top, true, loc))
	}

	if len(ov.Recent) > 0 {
		fmt.Print(renderEntries("Recent Entries", ov.Recent, snap, loc))
	}

	if note := cli.MixedNote(ov.Income, ov.Expense); note != "" {
		fmt.Println(cli.RenderNote(note))
	}
	fmt.Println()
	return nil
}
