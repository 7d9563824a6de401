package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port    int
	SiteURL string

	// Logging
	LogLevel  string
	LogFormat string

	// RSS Feed
	FeedTitle       string
	FeedDescription string
	FeedAuthor      string

	// Media and static files
	MediaRoot string
	MediaURL  string
	StaticDir string

	// Storage
	StorageBackend string
	S3Bucket       string
	S3Prefix       string
	S3Region       string
	S3Endpoint     string
	S3PublicURL    string

	// News import
	ImportBaseURL    string
	ImportListingURL string
	ImportMaxPages   int
	ImportTimeout    time.Duration
	ImportUserAgent  string
	ImportSchedule   string
	ImportToken      string
	ImportBrowser    bool

	// Scraper
	ScraperHeadless bool
}

// Load reads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	// A missing .env is fine, the environment alone may be enough
	_ = godotenv.Load()

	importBase := strings.TrimRight(getEnv("IMPORT_BASE_URL", "https://startup.chisinau.md"), "/")

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Port:             getEnvAsInt("PORT", 8080),
		SiteURL:          strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		FeedTitle:        getEnv("FEED_TITLE", "CMDA - Comunicate de presă"),
		FeedDescription:  getEnv("FEED_DESCRIPTION", "Comunicate de presă CMDA Chișinău"),
		FeedAuthor:       getEnv("FEED_AUTHOR", "CMDA"),
		MediaRoot:        getEnv("MEDIA_ROOT", "media"),
		MediaURL:         getEnv("MEDIA_URL", "/media/"),
		StaticDir:        getEnv("STATIC_DIR", "static"),
		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", "media"),
		S3Region:         getEnv("S3_REGION", "eu-central-1"),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3PublicURL:      getEnv("S3_PUBLIC_URL", ""),
		ImportBaseURL:    importBase,
		ImportListingURL: getEnv("IMPORT_LISTING_URL", importBase+"/category/comunicate-de-presa/"),
		ImportMaxPages:   getEnvAsInt("IMPORT_MAX_PAGES", 9),
		ImportTimeout:    getEnvAsDuration("IMPORT_TIMEOUT", 30*time.Second),
		ImportUserAgent:  getEnv("IMPORT_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"),
		ImportSchedule:   getEnv("IMPORT_SCHEDULE", ""),
		ImportToken:      getEnv("IMPORT_TOKEN", ""),
		ImportBrowser:    getEnvAsBool("IMPORT_BROWSER", false),
		ScraperHeadless:  getEnvAsBool("SCRAPER_HEADLESS", true),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	switch cfg.StorageBackend {
	case StorageLocal:
	case StorageS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.ImportMaxPages < 1 {
		return nil, fmt.Errorf("IMPORT_MAX_PAGES must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
