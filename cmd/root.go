package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/common"
	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/source"
	"github.com/noralyzer/noralyzer/internal/store"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	flagDataDir   string
	flagRange     string
	flagSince     string
	flagCategory  string
	flagLocale    string
	flagNoCache   bool
	flagQuiet     bool
	flagLogLevel  string
	flagLogFormat string
)

// cfg is the loaded configuration with flag overrides applied.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:               "noralyzer",
	Short:             "Personal multi-account finance reports",
	Long:              "Analyze your ledger: balances, category breakdowns, monthly trends, budgets and savings goals.",
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	RunE:              runReport,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding *.jsonl journals")
	pf.StringVarP(&flagRange, "range", "r", "", "Time window: 6m, 12m, custom or all")
	pf.StringVar(&flagSince, "since", "", "Start date for --range custom (YYYY-MM-DD)")
	pf.StringVarP(&flagCategory, "category", "c", "", "Restrict to a category id, or \"uncategorized\"")
	pf.StringVar(&flagLocale, "locale", "", "Display locale: en or tr")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse every journal")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	pf.StringVar(&flagLogFormat, "log-format", "text", "Log format: text or json")
}

// prepare loads .env and the config file, then resolves flag defaults from it.
func prepare(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	level, err := common.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	common.SetupLogger(level, flagLogFormat)

	cfg, err = config.Load()
	if err != nil {
		return err
	}

	if flagDataDir == "" {
		flagDataDir = cfg.ResolvedDataDir()
	}
	if !cmd.Flags().Changed("range") {
		flagRange = cfg.General.DefaultRange
	}
	if flagSince != "" && !cmd.Flags().Changed("range") {
		flagRange = string(pipeline.RangeCustom)
	}
	if flagLocale == "" {
		flagLocale = cfg.General.Locale
	}
	if _, err := config.ParseLocale(flagLocale); err != nil {
		return common.NewValidationError("locale", flagLocale, err)
	}
	return nil
}

// locale returns the display locale selected by flags or config.
func locale() config.Locale {
	l, err := config.ParseLocale(flagLocale)
	if err != nil {
		return config.LocaleEnglish
	}
	return l
}

// reportRequest builds the report selection from the persistent flags.
func reportRequest() (pipeline.ReportRequest, error) {
	return pipeline.ParseReportRequest(flagRange, flagSince, flagCategory)
}

// journalPath is where add and delete append records.
func journalPath() string {
	return filepath.Join(flagDataDir, source.DefaultJournal)
}

// newProgress returns a ProgressFunc drawing a bar on stderr, or nil when
// quiet. The bar is created on the first callback once the total is known.
func newProgress() (pipeline.ProgressFunc, func()) {
	if flagQuiet {
		return nil, func() {}
	}
	var bar *progressbar.ProgressBar
	fn := func(current, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetDescription("  Parsing journals"),
			)
		}
		if err := bar.Set(current); err != nil {
			slog.Debug("progress bar update", "error", err)
		}
	}
	done := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	return fn, done
}

// loadData is the shared data loading path used by all commands.
// Uses the SQLite cache when available for fast subsequent runs.
func loadData() (*pipeline.Snapshot, error) {
	progressFn, done := newProgress()
	defer done()

	start := time.Now()

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			slog.Warn("journal cache unavailable, doing full parse", "error", err)
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(flagDataDir, cache, progressFn)
			if err != nil {
				slog.Warn("cached load failed, falling back to full parse", "error", err)
			} else {
				reportLoad(&cr.LoadResult)
				slog.Info("ledger loaded",
					"files", cr.TotalFiles,
					"cache_hits", cr.CacheHits,
					"reparsed", cr.Reparsed,
					"pruned", cr.Pruned,
					"duration", time.Since(start))
				return cr.Snapshot, nil
			}
		}
	}

	result, err := pipeline.Load(flagDataDir, progressFn)
	if err != nil {
		return nil, err
	}
	reportLoad(result)
	slog.Info("ledger loaded",
		"files", result.TotalFiles,
		"parsed", result.ParsedFiles,
		"duration", time.Since(start))
	return result.Snapshot, nil
}

// reportLoad prints rejected lines to stderr.
func reportLoad(r *pipeline.LoadResult) {
	if flagQuiet || r.ParseErrors == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s malformed lines skipped\n", cli.FormatNumber(int64(r.ParseErrors)))
	for _, le := range r.LineErrors {
		fmt.Fprintf(os.Stderr, "    %s:%d: %v\n", le.Path, le.Line, le.Err)
	}
}

// emptyLedger prints a hint and reports whether snap holds no entries.
func emptyLedger(snap *pipeline.Snapshot) bool {
	if len(snap.Entries) > 0 {
		return false
	}
	fmt.Println()
	fmt.Printf("  No entries found in %s.\n", flagDataDir)
	fmt.Println("  Record one with `noralyzer add`, then come back!")
	return true
}
