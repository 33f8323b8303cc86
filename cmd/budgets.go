package cmd

import (
	"fmt"
	"strings"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/common"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/source"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagBudgetName     string
	flagBudgetAmount   string
	flagBudgetCategory string
	flagBudgetPeriod   string
	flagBudgetStart    string
	flagBudgetEnd      string
)

var budgetsCmd = &cobra.Command{
	Use:     "budgets",
	Aliases: []string{"budget"},
	Short:   "Budget consumption per category",
	RunE:    runBudgets,
}

var budgetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a budget to the journal",
	RunE:  runBudgetAdd,
}

func init() {
	f := budgetAddCmd.Flags()
	f.StringVar(&flagBudgetName, "name", "", "Budget name (required)")
	f.StringVar(&flagBudgetAmount, "amount", "", "Spend ceiling (required)")
	f.StringVar(&flagBudgetCategory, "for", "", "Category id the budget tracks")
	f.StringVar(&flagBudgetPeriod, "period", "monthly", "Period label")
	f.StringVar(&flagBudgetStart, "start", "", "First day counted (YYYY-MM-DD)")
	f.StringVar(&flagBudgetEnd, "end", "", "Last day counted (YYYY-MM-DD)")
	_ = budgetAddCmd.MarkFlagRequired("name")
	_ = budgetAddCmd.MarkFlagRequired("amount")

	budgetsCmd.AddCommand(budgetAddCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgets(_ *cobra.Command, _ []string) error {
	snap, err := loadData()
	if err != nil {
		return err
	}

	stats := pipeline.EvaluateBudgets(snap)
	if len(stats) == 0 {
		fmt.Println("\n  No budgets defined.")
		fmt.Println("  Create one with `noralyzer budgets add --name Food --amount 5000 --for <category>`.")
		return nil
	}

	loc := locale()
	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGETS"))
	fmt.Println()

	rows := make([][]string, 0, len(stats))
	spent := make([]model.Money, 0, len(stats))
	exceeded := 0
	for _, bs := range stats {
		b := bs.Budget
		window := cli.FormatOptionalDate(b.StartDate, "…") + " → " + cli.FormatOptionalDate(b.EndDate, "…")
		remaining := cli.FormatAmount(bs.Remaining, loc)
		if bs.Exceeded {
			exceeded++
			remaining = cli.RenderSigned(remaining, false)
		}
		rows = append(rows, []string{
			cli.Truncate(b.Name, 20),
			categoryLabel(snap, b.CategoryID, loc),
			window,
			cli.FormatAmount(b.Amount, loc),
			cli.FormatMoney(bs.Spent, loc),
			remaining,
			cli.RenderProgressBar(bs.Percentage, 12),
		})
		spent = append(spent, bs.Spent)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Budget", "Category", "Window", "Limit", "Spent", "Remaining", "Used"},
		Rows:    rows,
	}))

	if exceeded > 0 {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("%d of %d budgets exceeded", exceeded, len(stats))))
	}
	if note := cli.MixedNote(spent...); note != "" {
		fmt.Println(cli.RenderNote(note))
	}
	fmt.Println()
	return nil
}

func runBudgetAdd(_ *cobra.Command, _ []string) error {
	amount, err := parseAmount("amount", flagBudgetAmount)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(flagBudgetName)
	if name == "" {
		return common.NewValidationError("name", flagBudgetName, errEmpty)
	}

	b := source.RawBudget{
		ID:         model.ID(uuid.New().String()),
		Name:       name,
		Amount:     &amount,
		Period:     flagBudgetPeriod,
		CategoryID: pipeline.CategoryRef(flagBudgetCategory),
		StartDate:  flagBudgetStart,
		EndDate:    flagBudgetEnd,
	}
	if _, err := source.AppendRecord(journalPath(), source.TypeBudget, b); err != nil {
		return err
	}
	fmt.Printf("  Added budget %s (%s)\n", b.Name, b.ID)
	return nil
}

// parseAmount parses a non-negative decimal amount from user input.
func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, common.NewValidationError(field, s, common.ErrInvalidAmount)
	}
	if d.IsNegative() {
		return decimal.Zero, common.NewValidationError(field, s,
			fmt.Errorf("%w: must not be negative", common.ErrInvalidAmount))
	}
	return d, nil
}
