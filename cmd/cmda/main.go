package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/cmda-chisinau/site/internal/config"
	"github.com/cmda-chisinau/site/internal/dependencies"
	"github.com/cmda-chisinau/site/internal/logging"
	"github.com/cmda-chisinau/site/internal/scraper"
	"github.com/cmda-chisinau/site/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	deps, err := dependencies.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()
	logger := deps.Logger

	logger.Info("Starting CMDA site...")

	if err := deps.DB.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Database schema is up to date")

	// Scheduled imports
	if cfg.ImportSchedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.ImportSchedule, func() {
			result, err := deps.Importer.ImportNews(ctx)
			switch {
			case errors.Is(err, scraper.ErrImportRunning):
				logger.Warn("Scheduled import skipped, another run is active")
			case err != nil:
				logging.LogError(logger, "Scheduled import failed", err)
			default:
				logger.WithField("run_id", result.RunID).Infof("Scheduled import created %d news articles", result.Created)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid import schedule %q: %w", cfg.ImportSchedule, err)
		}
		c.Start()
		defer c.Stop()
		logger.Infof("News import scheduled: %s", cfg.ImportSchedule)
	}

	// Create server
	srv, err := server.New(deps.DB, deps.Importer, deps.Storage, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	logger.Info("Initialized server")

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Infof("Server starting on http://localhost%s", addr)
	return srv.Start(ctx, addr)
}
