// Command import-news runs one import of press releases from the source site.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmda-chisinau/site/internal/config"
	"github.com/cmda-chisinau/site/internal/dependencies"
)

func main() {
	maxPages := flag.Int("pages", 0, "Number of listing pages to walk (overrides IMPORT_MAX_PAGES)")
	browser := flag.Bool("browser", false, "Fetch pages with a headless browser (overrides IMPORT_BROWSER)")
	flag.Parse()

	if err := run(*maxPages, *browser); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
}

func run(maxPages int, browser bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if maxPages > 0 {
		cfg.ImportMaxPages = maxPages
	}
	if browser {
		cfg.ImportBrowser = true
	}

	deps, err := dependencies.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	if err := deps.DB.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	result, err := deps.Importer.ImportNews(ctx)
	if err != nil {
		return err
	}

	deps.Logger.WithField("run_id", result.RunID).Infof(
		"Pages: %d, found: %d, created: %d, skipped: %d, failed: %d",
		result.Pages, result.Discovered, result.Created, result.Skipped, result.Failed,
	)
	return nil
}
