package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/roster/dataset/sqlite"
	"github.com/zjrosen/roster/internal/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the SQLite database from the dataset",
	Long:  `Loads the configured produce dataset and replaces the contents of the SQLite database with it. The server strategy reads from this database.`,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	items, err := loadItems(cfg)
	if err != nil {
		return err
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Seed(context.Background(), items); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d items into %s\n", len(items), cfg.DBPath)
	return nil
}
