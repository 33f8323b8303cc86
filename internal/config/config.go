// Package config loads and saves the TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds all noralyzer configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Events     EventsConfig     `toml:"events"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir      string `toml:"data_dir,omitempty"`
	DefaultRange string `toml:"default_range"`
	Locale       string `toml:"locale"`
	RecentCount  int    `toml:"recent_count"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds settings for the background HTTP service.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// EventsConfig holds the optional AMQP event sink settings.
type EventsConfig struct {
	AMQPURL    string `toml:"amqp_url,omitempty"`
	Exchange   string `toml:"exchange"`
	RoutingKey string `toml:"routing_key"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultRange: "6m",
			Locale:       string(LocaleEnglish),
			RecentCount:  10,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8788",
			IntervalSec:  10,
			EventsBuffer: 200,
		},
		Events: EventsConfig{
			Exchange:   "noralyzer",
			RoutingKey: "snapshot",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 30,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "noralyzer")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "noralyzer")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultDataDir returns the XDG data directory holding ledger journals.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "noralyzer")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "noralyzer")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)

	if _, err := ParseLocale(cfg.General.Locale); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays NORALYZER_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("NORALYZER_DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv("NORALYZER_LOCALE"); v != "" {
		cfg.General.Locale = v
	}
	if v := os.Getenv("NORALYZER_AMQP_URL"); v != "" {
		cfg.Events.AMQPURL = v
	}
	if v := os.Getenv("NORALYZER_DAEMON_ADDR"); v != "" {
		cfg.Daemon.Addr = v
	}
	if v := os.Getenv("NORALYZER_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Daemon.IntervalSec = n
		}
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// ResolvedDataDir returns the configured data dir or the XDG default.
func (c Config) ResolvedDataDir() string {
	if c.General.DataDir != "" {
		return c.General.DataDir
	}
	return DefaultDataDir()
}

// ResolvedLocale returns the configured locale, falling back to English.
func (c Config) ResolvedLocale() Locale {
	l, err := ParseLocale(c.General.Locale)
	if err != nil {
		return LocaleEnglish
	}
	return l
}
