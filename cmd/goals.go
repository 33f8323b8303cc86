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
	"github.com/spf13/cobra"
)

var (
	flagGoalName     string
	flagGoalTarget   string
	flagGoalCurrent  string
	flagGoalDeadline string
	flagGoalCategory string
)

var goalsCmd = &cobra.Command{
	Use:     "goals",
	Aliases: []string{"goal"},
	Short:   "Savings goal progress",
	RunE:    runGoals,
}

var goalAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a savings goal to the journal",
	RunE:  runGoalAdd,
}

func init() {
	f := goalAddCmd.Flags()
	f.StringVar(&flagGoalName, "name", "", "Goal name (required)")
	f.StringVar(&flagGoalTarget, "target", "", "Target amount (required)")
	f.StringVar(&flagGoalCurrent, "current", "0", "Amount already saved outside the ledger")
	f.StringVar(&flagGoalDeadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	f.StringVar(&flagGoalCategory, "for", "", "Category whose income counts toward the goal")
	_ = goalAddCmd.MarkFlagRequired("name")
	_ = goalAddCmd.MarkFlagRequired("target")

	goalsCmd.AddCommand(goalAddCmd)
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(_ *cobra.Command, _ []string) error {
	snap, err := loadData()
	if err != nil {
		return err
	}

	stats := pipeline.EvaluateGoals(snap)
	if len(stats) == 0 {
		fmt.Println("\n  No savings goals defined.")
		fmt.Println("  Create one with `noralyzer goals add --name Car --target 100000`.")
		return nil
	}

	loc := locale()
	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS GOALS"))
	fmt.Println()

	rows := make([][]string, 0, len(stats))
	linked := make([]model.Money, 0, len(stats))
	for _, gs := range stats {
		g := gs.Goal
		status := cli.FormatAmount(gs.Remaining, loc) + " to go"
		if gs.Reached {
			status = cli.RenderSigned("reached", true)
		}
		rows = append(rows, []string{
			cli.Truncate(g.Name, 20),
			categoryLabel(snap, g.CategoryID, loc),
			cli.FormatOptionalDate(g.Deadline, "-"),
			cli.FormatAmount(g.TargetAmount, loc),
			cli.FormatAmount(gs.Current, loc),
			status,
			cli.RenderProgressBar(gs.Percentage, 12),
		})
		linked = append(linked, gs.Linked)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Goal", "Category", "Deadline", "Target", "Saved", "Status", "Progress"},
		Rows:    rows,
	}))

	if note := cli.MixedNote(linked...); note != "" {
		fmt.Println(cli.RenderNote(note))
	}
	fmt.Println()
	return nil
}

func runGoalAdd(_ *cobra.Command, _ []string) error {
	target, err := parseAmount("target", flagGoalTarget)
	if err != nil {
		return err
	}
	current, err := parseAmount("current", flagGoalCurrent)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(flagGoalName)
	if name == "" {
		return common.NewValidationError("name", flagGoalName, errEmpty)
	}

	g := source.RawGoal{
		ID:            model.ID(uuid.New().String()),
		Name:          name,
		TargetAmount:  &target,
		CurrentAmount: current,
		Deadline:      flagGoalDeadline,
		CategoryID:    pipeline.CategoryRef(flagGoalCategory),
	}
	if _, err := source.AppendRecord(journalPath(), source.TypeGoal, g); err != nil {
		return err
	}
	fmt.Printf("  Added goal %s (%s)\n", g.Name, g.ID)
	return nil
}
