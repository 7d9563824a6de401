package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cmda-chisinau/site/internal/database"
	"github.com/cmda-chisinau/site/internal/slug"
	"github.com/cmda-chisinau/site/internal/storage"
)

// ErrImportRunning is returned when an import is started while another one
// is still in progress
var ErrImportRunning = errors.New("an import is already running")

// Store is the part of the record store used by the importer
type Store interface {
	NewsExists(ctx context.Context, slug string) (bool, error)
	// CreateNews inserts the record and reports false if its slug is taken
	CreateNews(ctx context.Context, n *database.News) (bool, error)
}

// Deps are the collaborators of a Scraper. Pages, Store and Files are required.
type Deps struct {
	// Pages fetches listing and article pages
	Pages Fetcher
	// Images fetches image files; defaults to Pages
	Images    Fetcher
	Extractor Extractor
	Store     Store
	Files     storage.Storage
	Logger    logrus.FieldLogger
	Progress  *ProgressTracker
}

// Scraper imports press releases from the source site into the record store
type Scraper struct {
	cfg       Config
	pages     Fetcher
	images    Fetcher
	extractor Extractor
	store     Store
	files     storage.Storage
	log       logrus.FieldLogger
	progress  *ProgressTracker
}

// Result summarizes one import run
type Result struct {
	RunID      string
	Pages      int
	Discovered int
	Created    int
	Skipped    int
	Failed     int
}

// New creates a new scraper instance
func New(cfg Config, deps Deps) (*Scraper, error) {
	if deps.Pages == nil || deps.Store == nil || deps.Files == nil {
		return nil, fmt.Errorf("scraper needs a page fetcher, a store and file storage")
	}
	if cfg.MaxPages < 1 {
		return nil, fmt.Errorf("max pages must be at least 1")
	}

	s := &Scraper{
		cfg:       cfg,
		pages:     deps.Pages,
		images:    deps.Images,
		extractor: deps.Extractor,
		store:     deps.Store,
		files:     deps.Files,
		log:       deps.Logger,
		progress:  deps.Progress,
	}
	if s.images == nil {
		s.images = s.pages
	}
	if s.extractor == nil {
		s.extractor = NewMarkup()
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.progress == nil {
		s.progress = NewProgressTracker()
	}

	return s, nil
}

// Progress returns the tracker the scraper reports to
func (s *Scraper) Progress() *ProgressTracker {
	return s.progress
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeSkipped
	outcomeFailed
)

// ImportNews walks the listing pages, then creates a news record for every
// entry whose slug is not yet taken. Per-item failures are logged and
// skipped; only cancellation of ctx ends the run early with an error.
func (s *Scraper) ImportNews(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	if !s.progress.Begin(result.RunID) {
		return nil, ErrImportRunning
	}
	log := s.log.WithField("run_id", result.RunID)

	entries, pages := s.collectEntries(ctx, log)
	result.Pages = pages
	result.Discovered = len(entries)
	log.Infof("Total articles found: %d", len(entries))

	s.progress.UpdateStatus(StatusImporting, fmt.Sprintf("Found %d articles", len(entries)))

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			s.progress.Finish(StatusCancelled, "Import cancelled")
			return result, err
		}

		switch s.importEntry(ctx, log, i+1, entry) {
		case outcomeCreated:
			result.Created++
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
		}
		s.progress.UpdateProgress(i+1, len(entries), fmt.Sprintf("Processed %d/%d", i+1, len(entries)))
	}

	if err := ctx.Err(); err != nil {
		s.progress.Finish(StatusCancelled, "Import cancelled")
		return result, err
	}

	summary := fmt.Sprintf("Done! Created %d news articles.", result.Created)
	log.Info(summary)
	s.progress.Finish(StatusCompleted, summary)
	return result, nil
}

// collectEntries accumulates listing entries page by page. It stops at the
// first page that fails, is not 200 or has no entries, and after MaxPages.
func (s *Scraper) collectEntries(ctx context.Context, log logrus.FieldLogger) ([]ListingEntry, int) {
	var entries []ListingEntry
	pages := 0

	for page := 1; page <= s.cfg.MaxPages; page++ {
		pageURL := s.cfg.pageURL(page)
		log.Infof("Fetching list page %d: %s", page, pageURL)

		resp, err := s.pages.Fetch(ctx, pageURL)
		if err != nil {
			log.Warnf("Page %d fetch error: %v, stopping", page, err)
			break
		}
		if resp.StatusCode != http.StatusOK {
			log.Warnf("Page %d returned %d, stopping", page, resp.StatusCode)
			break
		}

		found, err := s.extractor.ParseListing(resp.Body, s.cfg.BaseURL)
		if err != nil {
			log.Warnf("Page %d could not be parsed: %v, stopping", page, err)
			break
		}
		if len(found) == 0 {
			log.Infof("No articles found on page %d, stopping", page)
			break
		}

		entries = append(entries, found...)
		pages++
		log.Infof("Found %d articles on page %d", len(found), page)
	}

	return entries, pages
}

func (s *Scraper) importEntry(ctx context.Context, log logrus.FieldLogger, n int, entry ListingEntry) outcome {
	if entry.Title == "" {
		log.Infof("[%d] Skipping article with no title: %s", n, entry.URL)
		return outcomeSkipped
	}

	newsSlug := slug.Truncate(slug.Make(entry.Title), s.cfg.SlugMaxLen)
	short := truncateRunes(entry.Title, 60)
	if newsSlug == "" {
		log.Infof("[%d] Skipping article without a usable slug: %s", n, short)
		return outcomeSkipped
	}

	exists, err := s.store.NewsExists(ctx, newsSlug)
	if err != nil {
		log.Errorf("[%d] Error checking existence of %s: %v", n, newsSlug, err)
		return outcomeFailed
	}
	if exists {
		log.Infof("[%d] Already exists: %s", n, short)
		return outcomeSkipped
	}

	log.Infof("[%d] Processing: %s...", n, short)

	published, err := ParseDate(entry.DateText, s.cfg.DefaultDate)
	if err != nil {
		log.Warnf("    %v, using default %s", err, s.cfg.DefaultDate.Format("2006-01-02"))
	}

	content := s.fetchArticle(ctx, log, entry.URL)

	news := &database.News{
		Title:         entry.Title,
		Slug:          newsSlug,
		Excerpt:       truncateRunes(entry.Excerpt, s.cfg.ExcerptMaxLen),
		Content:       content.Content,
		PublishedDate: published,
		SourceURL:     entry.URL,
	}

	// Listing thumbnails are distinct per article, while the article's own
	// featured image is often the site-wide default
	imageURL := entry.ThumbURL
	if imageURL == "" {
		imageURL = content.FeaturedImage
	}
	if imageURL != "" {
		ref, err := s.materializeImage(ctx, newsSlug, imageURL)
		if err != nil {
			log.Warnf("    Image download failed: %v", err)
		} else {
			news.Image = ref
		}
	}

	created, err := s.store.CreateNews(ctx, news)
	if err != nil {
		log.Errorf("    Error saving %s: %v", short, err)
		return outcomeFailed
	}
	if !created {
		log.Infof("    Already exists: %s", short)
		return outcomeSkipped
	}

	s.progress.RecordCreated(newsSlug)
	log.Infof("    Created: %s", short)
	return outcomeCreated
}

// fetchArticle never fails: a page that cannot be fetched or parsed
// contributes empty content and no featured image
func (s *Scraper) fetchArticle(ctx context.Context, log logrus.FieldLogger, articleURL string) *ArticleContent {
	empty := &ArticleContent{}
	if articleURL == "" {
		return empty
	}

	resp, err := s.pages.Fetch(ctx, articleURL)
	if err != nil {
		log.Warnf("    Error fetching article: %v", err)
		return empty
	}
	if resp.StatusCode != http.StatusOK {
		log.Warnf("    Article returned %d", resp.StatusCode)
		return empty
	}

	content, err := s.extractor.ParseArticle(resp.Body, articleURL)
	if err != nil {
		log.Warnf("    Error parsing article: %v", err)
		return empty
	}
	return content
}

// materializeImage downloads imageURL and stores it as a news image
func (s *Scraper) materializeImage(ctx context.Context, newsSlug, imageURL string) (string, error) {
	imageURL = resolveURL(s.cfg.BaseURL, imageURL)

	resp, err := s.images.Fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned %d", imageURL, resp.StatusCode)
	}

	ext := ImageExtension(imageURL, resp.ContentType)
	name := ImageFilename(newsSlug, ext, s.cfg.FilenameMaxLen)

	ref, err := s.files.Save(ctx, storage.CategoryNews, name, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return ref, nil
}
