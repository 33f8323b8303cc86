package cmd

import (
	"errors"
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

var errEmpty = errors.New("must not be empty")

var (
	flagCategoryName  string
	flagCategoryIcon  string
	flagCategoryColor string
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category"},
	Short:   "All-time totals for every category",
	RunE:    runCategories,
}

var categoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a category to the journal",
	RunE:  runCategoryAdd,
}

func init() {
	categoryAddCmd.Flags().StringVar(&flagCategoryName, "name", "", "Category name (required)")
	categoryAddCmd.Flags().StringVar(&flagCategoryIcon, "icon", "", "Display icon")
	categoryAddCmd.Flags().StringVar(&flagCategoryColor, "color", "", "Display color, e.g. #DA702C")
	_ = categoryAddCmd.MarkFlagRequired("name")

	categoriesCmd.AddCommand(categoryAddCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	snap, err := loadData()
	if err != nil {
		return err
	}

	stats := pipeline.CategoryStats(snap)
	if len(stats) == 0 {
		fmt.Println("\n  No categories defined.")
		fmt.Println("  Create one with `noralyzer categories add --name Food`.")
		return nil
	}

	loc := locale()
	fmt.Println()
	fmt.Println(cli.RenderTitle("CATEGORIES  All time"))
	fmt.Println()

	rows := make([][]string, 0, len(stats))
	totals := make([]model.Money, 0, len(stats))
	for _, ct := range stats {
		name := ct.Name
		if ct.Uncategorized {
			name = loc.Uncategorized()
		}
		if ct.Icon != "" {
			name = ct.Icon + " " + name
		}
		rows = append(rows, []string{
			string(ct.CategoryID),
			cli.Truncate(name, 24),
			cli.FormatNumber(int64(ct.Count)),
			cli.FormatMoney(ct.Amount, loc),
		})
		totals = append(totals, ct.Amount)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Category", "Entries", "Total"},
		Rows:    rows,
	}))

	if note := cli.MixedNote(totals...); note != "" {
		fmt.Println(cli.RenderNote(note))
	}
	fmt.Println()
	return nil
}

func runCategoryAdd(_ *cobra.Command, _ []string) error {
	name := strings.TrimSpace(flagCategoryName)
	if name == "" {
		return common.NewValidationError("name", flagCategoryName, errEmpty)
	}

	c := model.Category{
		ID:    model.ID(uuid.New().String()),
		Name:  name,
		Icon:  flagCategoryIcon,
		Color: flagCategoryColor,
	}
	if _, err := source.AppendRecord(journalPath(), source.TypeCategory, c); err != nil {
		return err
	}
	fmt.Printf("  Added category %s (%s)\n", c.Name, c.ID)
	return nil
}
