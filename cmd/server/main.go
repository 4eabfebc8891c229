// Package main is the entry point for the SGD NEER tracking service.
//
// Subcommands:
//   - serve (default): load the datasets, fit the models and serve the API
//   - report: print tracking errors and regression summaries
//   - import: copy the spreadsheet datasets into a SQLite file
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/neertrack/internal/config"
	"github.com/aristath/neertrack/internal/di"
	"github.com/aristath/neertrack/internal/scheduler"
	"github.com/aristath/neertrack/internal/server"
	"github.com/aristath/neertrack/pkg/logger"
)

const (
	appName = "neertrack"
	version = "1.0.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "SGD NEER tracking analysis service",
		Version: version,
		Long: `neertrack compares two custom SGD NEER replications (CTSGSGD, GSSGSGD)
against the official index: weekly deviations, tracking errors and an OLS
regression of the deviations on a currency basket.

Runs the HTTP API when called without a subcommand.`,
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addSourceFlags(rootCmd)
	rootCmd.Flags().Int("port", 0, "HTTP port (overrides NEER_PORT)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracking API",
		RunE:  runServe,
	}
	addSourceFlags(serveCmd)
	serveCmd.Flags().Int("port", 0, "HTTP port (overrides NEER_PORT)")

	rootCmd.AddCommand(serveCmd, newReportCmd(), newImportCmd())

	if err := rootCmd.Execute(); err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true, Output: os.Stderr})
		fallbackLog.Fatal().Err(err).Msg("Command failed")
	}
}

// addSourceFlags registers the flags shared by every command that loads data.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("weekly", "", "weekly dataset path or s3:// URI (overrides NEER_WEEKLY_SOURCE)")
	cmd.Flags().String("levels", "", "index level dataset path or s3:// URI (overrides NEER_LEVELS_SOURCE)")
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("weekly"); v != "" {
		cfg.WeeklySource = v
	}
	if v, _ := cmd.Flags().GetString("levels"); v != "" {
		cfg.LevelsSource = v
	}
	if cmd.Flags().Lookup("port") != nil {
		if v, _ := cmd.Flags().GetInt("port"); v != 0 {
			cfg.Port = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	log.Info().Str("version", version).Msg("Starting neertrack")

	// Wire all dependencies; the first snapshot is built here and any data
	// problem stops startup
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		return err
	}

	sched := scheduler.New(log)
	if _, err := di.RegisterJobs(sched, container, cfg, log); err != nil {
		return err
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:             log,
		Port:            cfg.Port,
		DevMode:         cfg.DevMode,
		Holder:          container.Holder,
		Reloader:        container.Reloader,
		Metrics:         container.Metrics,
		TrackingHandler: container.TrackingHandler,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err, ok := <-serverErr:
		if ok {
			sched.Stop()
			return err
		}
	}

	log.Info().Msg("Shutting down server...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
	return nil
}
