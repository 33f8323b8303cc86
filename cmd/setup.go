package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// A quick uncached count for the welcome note; failures only drop it.
	entries := 0
	if result, err := pipeline.Load(flagDataDir, nil); err == nil {
		entries = len(result.Snapshot.Entries)
	} else {
		slog.Debug("counting entries for setup", "error", err)
	}

	vals := tui.SetupValuesFrom(cfg)
	form := tui.NewSetupForm(entries, flagDataDir, &vals)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	vals.Apply(&cfg)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `noralyzer setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
