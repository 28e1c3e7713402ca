// Package config provides configuration types and defaults for roster.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/roster/internal/tracing"
)

// Config holds all configuration options for roster.
type Config struct {
	// DatasetPath points at a produce.yaml file. Empty uses the embedded
	// dataset.
	DatasetPath string `mapstructure:"dataset_path"`

	// DBPath is the SQLite database location for the server strategy.
	DBPath string `mapstructure:"db_path"`

	// AutoRefresh reloads the dataset when the file changes on disk.
	AutoRefresh bool `mapstructure:"auto_refresh"`

	// AutoRefreshDebounce coalesces rapid file events, in milliseconds.
	AutoRefreshDebounce int `mapstructure:"auto_refresh_debounce"`

	UI      UIConfig      `mapstructure:"ui"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// DebounceDur returns the auto refresh debounce as a duration.
func (c Config) DebounceDur() time.Duration {
	return time.Duration(c.AutoRefreshDebounce) * time.Millisecond
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	// PerPage is the table page size.
	PerPage int `mapstructure:"per_page"`

	// ToastTimeout is how long a toast stays visible, in milliseconds.
	ToastTimeout int `mapstructure:"toast_timeout"`

	// ShowStatusBar toggles the bottom status bar.
	ShowStatusBar bool `mapstructure:"show_status_bar"`
}

// ToastTimeoutDur returns the toast timeout as a duration.
func (u UIConfig) ToastTimeoutDur() time.Duration {
	return time.Duration(u.ToastTimeout) * time.Millisecond
}

// CacheConfig holds page cache configuration for the SQLite source.
type CacheConfig struct {
	// Enabled controls whether fetched pages are cached.
	Enabled bool `mapstructure:"enabled"`

	// TTLSeconds is how long cached pages stay fresh.
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/roster/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// 1.0 = all traces, 0.1 = 10% of traces
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ProviderConfig maps the user configuration onto the tracing subsystem.
func (t TracingConfig) ProviderConfig() tracing.Config {
	filePath := t.FilePath
	if filePath == "" {
		filePath = DefaultTracesFilePath()
	}
	return tracing.Config{
		Enabled:      t.Enabled,
		Exporter:     t.Exporter,
		FilePath:     filePath,
		OTLPEndpoint: t.OTLPEndpoint,
		SampleRate:   t.SampleRate,
	}
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		DatasetPath:         "",
		DBPath:              DefaultDBPath(),
		AutoRefresh:         true,
		AutoRefreshDebounce: 1000,
		UI: UIConfig{
			PerPage:       10,
			ToastTimeout:  5000,
			ShowStatusBar: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 60,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "file",
			SampleRate: 1.0,
		},
	}
}

// DefaultDBPath returns the default SQLite database location.
// Returns ~/.config/roster/produce.db or empty string if home dir unavailable.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "roster", "produce.db")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/roster/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "roster", "traces", "traces.jsonl")
}

// Validate checks the configuration for errors.
// Empty values fall back to defaults and are valid.
func Validate(cfg Config) error {
	if cfg.UI.PerPage < 0 {
		return fmt.Errorf("ui.per_page must not be negative, got %d", cfg.UI.PerPage)
	}
	if cfg.UI.ToastTimeout < 0 {
		return fmt.Errorf("ui.toast_timeout must not be negative, got %d", cfg.UI.ToastTimeout)
	}
	if cfg.AutoRefreshDebounce < 0 {
		return fmt.Errorf("auto_refresh_debounce must not be negative, got %d", cfg.AutoRefreshDebounce)
	}
	if cfg.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must not be negative, got %d", cfg.Cache.TTLSeconds)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	// Validate SampleRate is in range [0.0, 1.0]
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	// Validate Exporter is a valid option
	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}
