package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"recipebox/internal/api"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/logging"
	"recipebox/internal/recipe"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  RECIPEBOX_HOST            Server host to bind to (default: 127.0.0.1)
  RECIPEBOX_PORT            Server port to listen on (default: 9898)
  RECIPEBOX_DATABASE_URL    sqlite:///path or postgres://... (default: sqlite:///main.db)
  RECIPEBOX_LOG_LEVEL       debug, info, warn, error (default: info)
  RECIPEBOX_LOG_FORMAT      console, json (default: console)
  RECIPEBOX_AUTH_USER       Basic auth user, auth is off when empty
  RECIPEBOX_AUTH_PASSWORD   Basic auth password
  RECIPEBOX_CORS_ORIGINS    Comma-separated allowed origins`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 9898)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, closeDB, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info().Str("addr", srv.Addr).Bool("auth", cfg.AuthEnabled()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newServer opens the store and builds the HTTP server around it. The
// returned func closes the database.
func newServer(ctx context.Context, cfg config.Config) (*http.Server, func(), error) {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logging.Err(err).Msg("failed to close database")
		}
	}

	store, err := recipe.NewStore(ctx, db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	opts := api.RouterOptions{CORSOrigins: cfg.CORSOrigins}
	if cfg.AuthEnabled() {
		opts.Accounts = gin.Accounts{cfg.AuthUser: cfg.AuthPassword}
	}
	router, err := api.NewRouter(api.NewHandler(store, recipe.NewMatchRanker(store)), opts)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, closeDB, nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.Config, host string, port int) config.Config {
	if host != "" {
		cfg.Host = host
	}
	if port != 0 {
		cfg.Port = port
	}
	return cfg
}
