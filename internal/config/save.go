package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/roster/internal/log"
)

// DefaultConfigTemplate returns the commented starter config written on
// first run.
func DefaultConfigTemplate() string {
	return `# Roster Configuration

# Path to a produce dataset file (default: built-in dataset)
# dataset_path: /path/to/produce.yaml

# SQLite database location for the server strategy
# db_path: ~/.config/roster/produce.db

# Reload the dataset when the file changes on disk
auto_refresh: true
auto_refresh_debounce: 1000   # milliseconds

# UI settings
ui:
  per_page: 10          # Table rows per page
  toast_timeout: 5000   # Toast lifetime in milliseconds
  show_status_bar: true # Show status bar at bottom

# Page cache for the SQLite source
cache:
  enabled: true
  ttl_seconds: 60

# Tracing (spans for fetches and pipeline runs)
tracing:
  enabled: false
  # exporter: file            # "none", "file", "stdout", or "otlp"
  # file_path: ~/.config/roster/traces/traces.jsonl
  # otlp_endpoint: localhost:4317
  # sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file with defaults at the given path.
// Creates parent directories as needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
