package cmd

import (
	"encoding/json"
	"os"
	"time"

	"github.com/noralyzer/noralyzer/internal/pipeline"

	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Print the monthly and category expense series as JSON",
	RunE:  runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)
}

func runChart(_ *cobra.Command, _ []string) error {
	snap, err := loadData()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pipeline.ChartSummary(snap, time.Now()))
}
