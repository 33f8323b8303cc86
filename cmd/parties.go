package cmd

import (
	"fmt"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"

	"github.com/spf13/cobra"
)

var personCmd = &cobra.Command{
	Use:   "person <id>",
	Short: "Money sent to and received from one counterparty",
	Args:  cobra.ExactArgs(1),
	RunE:  runPerson,
}

var ownerCmd = &cobra.Command{
	Use:   "owner <id>",
	Short: "Income, expense and categories for entries one person performed",
	Args:  cobra.ExactArgs(1),
	RunE:  runOwner,
}

var placeCmd = &cobra.Command{
	Use:   "place <id>",
	Short: "Everything recorded at one place",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlace,
}

func init() {
	rootCmd.AddCommand(personCmd)
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(placeCmd)
}

func runPerson(_ *cobra.Command, args []string) error {
	snap, err := loadData()
	if err != nil {
		return err
	}

	loc := locale()
	r := pipeline.PersonReport(snap, model.ID(args[0]))

	fmt.Println()
	fmt.Println(cli.RenderTitle("PERSON  " + r.Person.Name))
	fmt.Println()
	if len(r.Entries) == 0 {
		fmt.Println("  No entries with this person.")
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Entries", cli.FormatNumber(int64(len(r.Entries)))},
			{"Sent", cli.RenderSigned(cli.FormatMoney(r.Sent, loc), false)},
			{"Received", cli.RenderSigned(cli.FormatMoney(r.Received, loc), true)},
			{"---"},
			{"Net", cli.FormatDelta(r.Net, loc)},
		},
	}))
	fmt.Print(renderEntries("Entries", r.Entries, snap, loc))

	if note := cli.MixedNote(r.Sent, r.Received); note != "" {
		fmt.Println(cli.RenderNote(note))
	}
	fmt.Println()
	return nil
}

func runOwner(_ *cobra.Command, args []string) error {
	snap, err := loadData()
	if err != nil {
		return err
	}

	loc := locale()
	r := pipeline.OwnerReport(snap, model.ID(args[0]))

	fmt.Println()
	fmt.Println(cli.RenderTitle("OWNER  " + r.Owner.Name))
	fmt.Println()
	if len(r.Entries) == 0 {
		fmt.Println("  No entries recorded by this person.")
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Entries", cli.FormatNumber(int64(len(r.Entries)))},
			{"Income", cli.RenderSigned(cli.FormatMoney(r.Income, loc), true)},
			{"Expense", cli.RenderSigned(cli.FormatMoney(r.Expense, loc), false)},
			{"---"},
			{"Balance", cli.FormatDelta(r.Balance, loc)},
		},
	}))
	if len(r.Breakdown) > 0 {
		fmt.Print(renderBreakdown("By Category", r.Breakdown, false, loc))
	}

	if note := cli.MixedNote(r.Income, r.Expense); note != "" {
		fmt.Println(cli.RenderNote(note))
	}
	fmt.Println()
	return nil
}

func runPlace(_ *cobra.Command, args []string) error {
	snap, err := loadData()
	if err != nil {
		return err
	}

	loc := locale()
	r := pipeline.PlaceReport(snap, model.ID(args[0]))

	title := "PLACE  " + r.Place.Name
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	if len(r.Entries) == 0 {
		fmt.Println("  No entries at this place.")
		return nil
	}
	if r.Place.Address != "" {
		fmt.Println(cli.RenderNote(r.Place.Address))
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Entries", cli.FormatNumber(int64(len(r.Entries)))},
			{"Total", cli.FormatMoney(r.Total, loc)},
		},
	}))
	if len(r.Breakdown) > 0 {
		fmt.Print(renderBreakdown("By Category", r.Breakdown, false, loc))
	}
	fmt.Print(renderEntries("Entries", r.Entries, snap, loc))

	if note := cli.MixedNote(r.Total); note != "" {
		fmt.Println(cli.RenderNote(note))
	}
	fmt.Println()
	return nil
}
