package scraper

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the fixed parameters of a news import run
type Config struct {
	// BaseURL resolves relative links found on listing pages
	BaseURL string
	// ListingURL is page 1 of the paginated press release index
	ListingURL string
	// MaxPages bounds the number of listing pages attempted
	MaxPages int

	// Timeout applies to every request
	Timeout time.Duration
	// Headers are sent with every request
	Headers map[string]string

	// DefaultDate replaces dates that cannot be parsed
	DefaultDate time.Time

	SlugMaxLen     int
	FilenameMaxLen int
	ExcerptMaxLen  int
}

// DefaultConfig returns the configuration for startup.chisinau.md
func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://startup.chisinau.md",
		ListingURL: "https://startup.chisinau.md/category/comunicate-de-presa/",
		MaxPages:   9,
		Timeout:    30 * time.Second,
		Headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
			"Accept-Encoding": "gzip, deflate",
		},
		DefaultDate:    time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		SlugMaxLen:     500,
		FilenameMaxLen: 80,
		ExcerptMaxLen:  500,
	}
}

// pageURL returns the listing URL of page n (1-based)
func (c Config) pageURL(n int) string {
	if n <= 1 {
		return c.ListingURL
	}
	base := c.ListingURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%spage/%d/", base, n)
}
