// Package main is the entry point for the recipebox server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recipebox/internal/config"
	"recipebox/internal/logging"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "recipebox",
		Short:         "Recipe catalog with ingredient matching",
		Long:          `recipebox stores recipes and their ingredients and ranks recipes by how many of their ingredients you have on hand.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(migrateCmd())

	return cmd
}

// loadConfig loads configuration from the .env file and environment, then
// points the global logger at it.
func loadConfig(envFile string) (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, nil
}
