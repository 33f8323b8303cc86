package cmd

import (
	"fmt"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/store"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show the journal parse cache",
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached record so the next load reparses all journals",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStatus(_ *cobra.Command, _ []string) error {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return err
	}
	records, err := cache.RecordCount()
	if err != nil {
		return err
	}

	fmt.Printf("  Cache:    %s\n", pipeline.CachePath())
	fmt.Printf("  Files:    %s\n", cli.FormatNumber(int64(len(tracked))))
	fmt.Printf("  Records:  %s\n", cli.FormatNumber(int64(records)))
	return nil
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	if err := cache.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Println("  Cache cleared.")
	return nil
}
