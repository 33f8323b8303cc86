package cmd

import (
	"fmt"

	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/source"

	"github.com/spf13/cobra"
)

var flagDeleteType string

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a record by appending a tombstone to its journal",
	Long: "Remove a record by appending a tombstone to the journal holding its\n" +
		"latest version. Earlier lines are never rewritten; a later record with the\n" +
		"same id restores it.",
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVarP(&flagDeleteType, "type", "t", string(source.TypeEntry),
		"Record type: entry, category, bank, card, person, place, tag, budget or goal")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
	d := source.RawDelete{
		Target: source.RecordType(flagDeleteType),
		ID:     model.ID(args[0]),
	}
	path, err := pipeline.Locate(flagDataDir, source.RecordKey{Type: d.Target, ID: d.ID})
	if err != nil {
		return err
	}
	if _, err := source.AppendRecord(path, source.TypeDelete, d); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s %s\n", d.Target, d.ID)
	return nil
}
