package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/roster/dataset"
	"github.com/zjrosen/roster/dataset/sqlite"
	"github.com/zjrosen/roster/internal/config"
	"github.com/zjrosen/roster/internal/log"
	"github.com/zjrosen/roster/internal/tracing"
	"github.com/zjrosen/roster/internal/ui/app"
	"github.com/zjrosen/roster/internal/ui/browser"
	"github.com/zjrosen/roster/pipeline"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "roster",
	Short:   "A terminal ui for browsing the produce dataset",
	Long:    `A terminal user interface for browsing, filtering and sorting the produce dataset, with marks, filter history and an optional SQLite-backed server strategy.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/roster/config.yaml)")
	rootCmd.Flags().StringP("dataset", "d", "",
		"path to a produce yaml file (default: embedded dataset)")
	rootCmd.Flags().Bool("server", false,
		"run over the SQLite-backed data source instead of in memory")
	rootCmd.Flags().Bool("no-auto-refresh", false,
		"disable dataset reload when the file changes")
	rootCmd.Flags().String("log", "",
		"write debug logs to this file")

	_ = viper.BindPFlag("dataset_path", rootCmd.Flags().Lookup("dataset"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("db_path", defaults.DBPath)
	viper.SetDefault("auto_refresh", defaults.AutoRefresh)
	viper.SetDefault("auto_refresh_debounce", defaults.AutoRefreshDebounce)
	viper.SetDefault("ui.per_page", defaults.UI.PerPage)
	viper.SetDefault("ui.toast_timeout", defaults.UI.ToastTimeout)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl_seconds", defaults.Cache.TTLSeconds)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .roster/config.yaml (current directory)
		// 2. ~/.config/roster/config.yaml (user config)
		if _, err := os.Stat(".roster/config.yaml"); err == nil {
			viper.SetConfigFile(".roster/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "roster"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .roster/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".roster/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if logPath, _ := cmd.Flags().GetString("log"); logPath != "" {
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()
	}

	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		cfg.AutoRefresh = false
	}

	items, err := loadItems(cfg)
	if err != nil {
		return err
	}

	opts := app.Options{Config: cfg}

	useServer, _ := cmd.Flags().GetBool("server")
	if useServer {
		server, closeSource, err := newServerAdapter(cfg, items)
		if err != nil {
			return err
		}
		defer closeSource()
		opts.Browser = browser.NewRemote(server)
	} else {
		client := pipeline.NewClient(items, dataset.Accessor(), cfg.UI.PerPage)
		opts.Browser = browser.New(client)
		opts.Client = client
	}

	p := tea.NewProgram(
		app.New(opts),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// loadItems reads the configured dataset file, falling back to the
// embedded dataset when no path is set.
func loadItems(cfg config.Config) ([]dataset.Item, error) {
	if cfg.DatasetPath == "" {
		return dataset.Default(), nil
	}
	items, err := dataset.LoadFile(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return items, nil
}

// newServerAdapter opens the SQLite database, seeds it with the dataset
// and wraps it in a server-strategy adapter.
func newServerAdapter(cfg config.Config, items []dataset.Item) (*pipeline.Server[dataset.Item], func(), error) {
	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Seed(context.Background(), items); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("seeding database: %w", err)
	}

	provider, err := tracing.NewProvider(cfg.Tracing.ProviderConfig())
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}

	srcOpts := []sqlite.Option{sqlite.WithTracer(provider.Tracer())}
	if cfg.Cache.Enabled {
		srcOpts = append(srcOpts, sqlite.WithCacheTTL(cfg.Cache.TTL()))
	} else {
		srcOpts = append(srcOpts, sqlite.WithoutCache())
	}
	source := sqlite.NewSource(db, srcOpts...)

	closer := func() {
		_ = provider.Shutdown(context.Background())
		_ = db.Close()
	}
	return pipeline.NewServer[dataset.Item](source, cfg.UI.PerPage), closer, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
