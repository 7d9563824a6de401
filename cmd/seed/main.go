// Command seed loads the curated catalog content. It can be run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cmda-chisinau/site/internal/config"
	"github.com/cmda-chisinau/site/internal/database"
	"github.com/cmda-chisinau/site/internal/dependencies"
	"github.com/cmda-chisinau/site/internal/logging"
	"github.com/cmda-chisinau/site/internal/seed"
)

func main() {
	contentFile := flag.String("content", "", "Path to a YAML content file (defaults to the built-in content)")
	flag.Parse()

	if err := run(*contentFile); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
}

func run(contentFile string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	content, err := loadContent(contentFile)
	if err != nil {
		return err
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	files, err := dependencies.NewStorage(ctx, cfg)
	if err != nil {
		return err
	}

	return seed.NewLoader(db, files, cfg.StaticDir, logger).Load(ctx, content)
}

func loadContent(path string) (*seed.Content, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return seed.Parse(data)
}
