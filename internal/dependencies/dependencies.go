package dependencies

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cmda-chisinau/site/internal/config"
	"github.com/cmda-chisinau/site/internal/database"
	"github.com/cmda-chisinau/site/internal/logging"
	"github.com/cmda-chisinau/site/internal/scraper"
	"github.com/cmda-chisinau/site/internal/storage"
)

type Dependencies struct {
	Config   *config.Config
	Logger   *logrus.Logger
	DB       *database.DB
	Storage  storage.Storage
	Importer *scraper.Scraper

	browser *scraper.BrowserFetcher
}

// New connects to the database and builds the shared services from cfg
func New(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logging.New(cfg.LogLevel, cfg.LogFormat),
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.DB = db
	deps.Logger.Info("Connected to database")

	files, err := NewStorage(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	deps.Storage = files
	deps.Logger.WithField("backend", cfg.StorageBackend).Info("Initialized media storage")

	if err := deps.initImporter(); err != nil {
		deps.Close()
		return nil, err
	}

	return deps, nil
}

// NewStorage builds the media storage backend selected in cfg
func NewStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		s3, err := storage.NewS3(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return s3, nil
	default:
		local, err := storage.NewLocal(cfg.MediaRoot, cfg.MediaURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return local, nil
	}
}

// ImportConfig translates the application configuration for the importer
func ImportConfig(cfg *config.Config) scraper.Config {
	sc := scraper.DefaultConfig()
	sc.BaseURL = cfg.ImportBaseURL
	sc.ListingURL = cfg.ImportListingURL
	sc.MaxPages = cfg.ImportMaxPages
	sc.Timeout = cfg.ImportTimeout
	sc.Headers["User-Agent"] = cfg.ImportUserAgent
	return sc
}

func (d *Dependencies) initImporter() error {
	sc := ImportConfig(d.Config)

	var pages scraper.Fetcher
	images := scraper.NewHTTPFetcher(sc.Timeout, sc.Headers)
	if d.Config.ImportBrowser {
		d.browser = scraper.NewBrowserFetcher(d.Config.ScraperHeadless, d.Config.ImportUserAgent, sc.Timeout)
		pages = d.browser
		d.Logger.Info("Listing and article pages are fetched with a headless browser")
	} else {
		pages = images
	}

	importer, err := scraper.New(sc, scraper.Deps{
		Pages:  pages,
		Images: images,
		Store:  d.DB,
		Files:  d.Storage,
		Logger: d.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize importer: %w", err)
	}
	d.Importer = importer
	return nil
}

// Close releases the browser and the database pool
func (d *Dependencies) Close() {
	if d.browser != nil {
		if err := d.browser.Close(); err != nil {
			logging.LogError(d.Logger, "Failed to close browser", err)
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
