package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserFetcher renders pages in a headless Chromium before returning their
// markup. The browser does not expose the document status, so every page
// that loads is reported as 200.
type BrowserFetcher struct {
	headless  bool
	userAgent string
	timeout   time.Duration

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserFetcher creates a fetcher; the browser is launched on first use
func NewBrowserFetcher(headless bool, userAgent string, timeout time.Duration) *BrowserFetcher {
	return &BrowserFetcher{
		headless:  headless,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// initBrowser initializes the Rod browser instance
func (b *BrowserFetcher) initBrowser() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	path, _ := launcher.LookPath()
	u, err := launcher.New().
		Bin(path).
		Headless(b.headless).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	b.browser = browser
	return browser, nil
}

// Fetch opens url in a new tab, waits for the load event and returns the DOM
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	browser, err := b.initBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Timeout(b.timeout).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	if b.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.userAgent}); err != nil {
			return nil, fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("page did not load: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page HTML: %w", err)
	}

	return &Response{
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}, nil
}

// Close closes the browser and cleans up resources
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}
