package tui

import (
	"fmt"

	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the choices made in the setup form.
type SetupValues struct {
	Locale       string
	DefaultRange string
	Theme        string
	AutoRefresh  bool
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Locale:       string(cfg.ResolvedLocale()),
		DefaultRange: cfg.General.DefaultRange,
		Theme:        theme.ByName(cfg.Appearance.Theme).Name,
		AutoRefresh:  cfg.TUI.AutoRefresh,
	}
}

// Apply writes the chosen values into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.Locale = v.Locale
	cfg.General.DefaultRange = v.DefaultRange
	cfg.Appearance.Theme = v.Theme
	cfg.TUI.AutoRefresh = v.AutoRefresh
}

// NewSetupForm builds the huh form used both on first run and by the setup
// command. entryCount and dataDir only feed the welcome note.
func NewSetupForm(entryCount int, dataDir string, vals *SetupValues) *huh.Form {
	welcome := "Let's set up a few things."
	if entryCount > 0 {
		welcome = fmt.Sprintf("Found %d entries in %s.\n%s", entryCount, dataDir, welcome)
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to noralyzer").
				Description(welcome),
			huh.NewSelect[string]().
				Title("Display language").
				Options(
					huh.NewOption("English", string(config.LocaleEnglish)),
					huh.NewOption("Türkçe", string(config.LocaleTurkish)),
				).
				Value(&vals.Locale),
			huh.NewSelect[string]().
				Title("Default time window").
				Options(
					huh.NewOption("Last 6 months", string(pipeline.Range6M)),
					huh.NewOption("Last 12 months", string(pipeline.Range12M)),
					huh.NewOption("All time", string(pipeline.RangeAll)),
				).
				Value(&vals.DefaultRange),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewConfirm().
				Title("Refresh the dashboard automatically?").
				Value(&vals.AutoRefresh),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
}

// saveSetupConfig persists the form result and applies it to the running app.
func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	a.setupVals.Apply(&cfg)

	theme.SetActive(cfg.Appearance.Theme)
	a.loc = cfg.ResolvedLocale()
	a.autoRefresh = cfg.TUI.AutoRefresh
	if req, err := pipeline.ParseReportRequest(cfg.General.DefaultRange, "", a.categorySelector()); err == nil {
		a.windows = windowCycle(req)
		a.window = 0
	}
	return config.Save(cfg)
}
