// Package cmd implements the noralyzer CLI commands.
package cmd

import (
	"fmt"
	"net/url"

	"github.com/noralyzer/noralyzer/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory: %s\n", cfg.ResolvedDataDir())
	if flagDataDir != cfg.ResolvedDataDir() {
		fmt.Printf("    Overridden by:  %s\n", flagDataDir)
	}
	fmt.Printf("    Default range:  %s\n", cfg.General.DefaultRange)
	fmt.Printf("    Locale:         %s\n", cfg.ResolvedLocale())
	fmt.Printf("    Recent entries: %d\n", cfg.General.RecentCount)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v (every %ds)\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:      %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Events]")
	if cfg.Events.AMQPURL != "" {
		fmt.Printf("    AMQP URL:    %s\n", maskURL(cfg.Events.AMQPURL))
	} else {
		fmt.Println("    AMQP URL:    not configured")
	}
	fmt.Printf("    Exchange:    %s\n", cfg.Events.Exchange)
	fmt.Printf("    Routing key: %s.<event type>\n", cfg.Events.RoutingKey)
	fmt.Println()

	fmt.Println("  Run `noralyzer setup` to reconfigure.")
	return nil
}

// maskURL hides the password of a broker URL.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}
	return u.Redacted()
}
