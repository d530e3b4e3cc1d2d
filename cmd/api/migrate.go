package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"recipebox/internal/database"
	"recipebox/internal/logging"
	"recipebox/internal/recipe"
)

func migrateCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runMigrate(ctx context.Context, envFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := recipe.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logging.Info().Str("dialect", string(database.DialectOf(db))).Msg("schema up to date")
	return nil
}
