package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-tracker/internal/db"
)

var migrateDatabaseURL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the candidates schema to the database",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "database-url", "", "Database to migrate (default from DATABASE_URL)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	databaseURL := migrateDatabaseURL
	if databaseURL == "" {
		databaseURL = cfg.DatabaseURL
	}
	if databaseURL == "" {
		return fmt.Errorf("--database-url or DATABASE_URL is required")
	}

	repo, err := db.Open(cmd.Context(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = repo.Close() }()

	if err := repo.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
	return nil
}
