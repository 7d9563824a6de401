package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cmda-chisinau/site/internal/database"
	"github.com/cmda-chisinau/site/internal/storage"
)

type memStore struct {
	mu      sync.Mutex
	news    map[string]*database.News
	failOn  string
	created int
}

func newMemStore() *memStore {
	return &memStore{news: make(map[string]*database.News)}
}

func (s *memStore) NewsExists(ctx context.Context, slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.news[slug]
	return ok, nil
}

func (s *memStore) CreateNews(ctx context.Context, n *database.News) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.Slug == s.failOn {
		return false, errors.New("insert failed")
	}
	if _, ok := s.news[n.Slug]; ok {
		return false, nil
	}
	copied := *n
	s.news[n.Slug] = &copied
	s.created++
	return true, nil
}

func (s *memStore) get(slug string) *database.News {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.news[slug]
}

// site serves a fake press release index
type site struct {
	pages    map[int]string
	dropped  map[int]bool // close the connection without a response
	articles map[string]string
	images   map[string]string
}

func (st *site) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/category/comunicate-de-presa/", func(w http.ResponseWriter, r *http.Request) {
		page := 1
		rest := strings.TrimPrefix(r.URL.Path, "/category/comunicate-de-presa/")
		if rest != "" {
			if _, err := fmt.Sscanf(rest, "page/%d/", &page); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		if st.dropped[page] {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		body, ok := st.pages[page]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
	})
	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := st.articles[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		contentType, ok := st.images[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte("image:" + r.URL.Path))
	})
	return mux
}

func item(href, thumb, date, title, excerpt string) string {
	var b strings.Builder
	b.WriteString(`<div class="item">`)
	fmt.Fprintf(&b, `<a href="%s">`, href)
	if thumb != "" {
		fmt.Fprintf(&b, `<img src="%s">`, thumb)
	}
	b.WriteString(`</a>`)
	if date != "" {
		fmt.Fprintf(&b, `<span class="date">%s</span>`, date)
	}
	if title != "" {
		fmt.Fprintf(&b, `<h4>%s</h4>`, title)
	}
	if excerpt != "" {
		fmt.Fprintf(&b, `<p>%s</p>`, excerpt)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func listing(items ...string) string {
	return `<html><body><div class="blog-posts">` + strings.Join(items, "") + `</div></body></html>`
}

func article(featured, body string) string {
	meta := ""
	if featured != "" {
		meta = fmt.Sprintf(`<meta property="og:image" content="%s">`, featured)
	}
	return `<html><head>` + meta + `</head><body><section class="section-blog"><div class="container">` +
		body + `</div></section></body></html>`
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fixture struct {
	srv      *httptest.Server
	store    *memStore
	files    *storage.Local
	scraper  *Scraper
	mediaDir string
}

func newFixture(t *testing.T, st *site, maxPages int) *fixture {
	t.Helper()

	srv := httptest.NewServer(st.handler())
	t.Cleanup(srv.Close)

	mediaDir := t.TempDir()
	files, err := storage.NewLocal(mediaDir, "/media/")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.ListingURL = srv.URL + "/category/comunicate-de-presa/"
	cfg.MaxPages = maxPages
	cfg.Timeout = 5 * time.Second

	store := newMemStore()
	s, err := New(cfg, Deps{
		Pages:  NewHTTPFetcher(cfg.Timeout, cfg.Headers),
		Store:  store,
		Files:  files,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	return &fixture{srv: srv, store: store, files: files, scraper: s, mediaDir: mediaDir}
}

func TestImportNews_CreatesRecords(t *testing.T) {
	st := &site{
		pages: map[int]string{
			1: listing(
				item("/article/one/", "/img/one-thumb.png", "07/13/2025", "Primul anunț", "Rezumat unu"),
				item("/article/two/", "", "garbage", "Al doilea anunț", ""),
			),
			2: listing(
				item("/article/three/", "", "05.03.2024", "Al treilea", ""),
			),
		},
		articles: map[string]string{
			"/article/one/":   article("/img/one-featured.jpg", "<p>Unu</p>"),
			"/article/two/":   article("/img/two-featured", "<p>Doi</p><h3>Alte noutati</h3><p>x</p>"),
			"/article/three/": article("", "<p>Trei</p>"),
		},
		images: map[string]string{
			"/img/one-thumb.png":    "image/png",
			"/img/one-featured.jpg": "image/jpeg",
			"/img/two-featured":     "image/webp",
		},
	}
	f := newFixture(t, st, 9)

	result, err := f.scraper.ImportNews(context.Background())
	if err != nil {
		t.Fatalf("ImportNews failed: %v", err)
	}

	if result.Pages != 2 || result.Discovered != 3 || result.Created != 3 {
		t.Errorf("Unexpected result %+v", result)
	}
	if result.RunID == "" {
		t.Error("Expected a run id")
	}

	one := f.store.get("primul-anunt")
	if one == nil {
		t.Fatal("Expected primul-anunt to be created")
	}
	if one.Image != "news/primul-anunt.png" {
		t.Errorf("Expected the listing thumbnail to win, got %q", one.Image)
	}
	if !one.PublishedDate.Equal(time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date %s", one.PublishedDate)
	}
	if one.Excerpt != "Rezumat unu" || one.Content != "<p>Unu</p>" {
		t.Errorf("Unexpected excerpt/content %q / %q", one.Excerpt, one.Content)
	}
	if one.SourceURL != f.srv.URL+"/article/one/" {
		t.Errorf("Unexpected source URL %q", one.SourceURL)
	}

	data, err := os.ReadFile(filepath.Join(f.mediaDir, "news", "primul-anunt.png"))
	if err != nil {
		t.Fatalf("Expected stored image: %v", err)
	}
	if string(data) != "image:/img/one-thumb.png" {
		t.Errorf("Unexpected image content %q", data)
	}

	two := f.store.get("al-doilea-anunt")
	if two == nil {
		t.Fatal("Expected al-doilea-anunt to be created")
	}
	if !two.PublishedDate.Equal(DefaultConfig().DefaultDate) {
		t.Errorf("Expected default date, got %s", two.PublishedDate)
	}
	if two.Image != "news/al-doilea-anunt.webp" {
		t.Errorf("Expected featured image with content-type extension, got %q", two.Image)
	}
	if two.Content != "<p>Doi</p>" {
		t.Errorf("Expected related section to be cut, got %q", two.Content)
	}

	three := f.store.get("al-treilea")
	if three == nil || three.Image != "" {
		t.Errorf("Expected al-treilea without image, got %+v", three)
	}

	progress := f.scraper.Progress().GetCurrent()
	if progress.Status != StatusCompleted || progress.ArticlesAdded != 3 {
		t.Errorf("Unexpected final progress %+v", progress)
	}
	if f.scraper.Progress().IsActive() {
		t.Error("Tracker must be inactive after the run")
	}
}

func TestImportNews_Idempotent(t *testing.T) {
	st := &site{
		pages: map[int]string{
			1: listing(item("/article/one/", "", "07/13/2025", "Primul", "")),
		},
		articles: map[string]string{"/article/one/": article("", "<p>Unu</p>")},
	}
	f := newFixture(t, st, 9)

	if _, err := f.scraper.ImportNews(context.Background()); err != nil {
		t.Fatalf("First import failed: %v", err)
	}
	result, err := f.scraper.ImportNews(context.Background())
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}

	if result.Created != 0 || result.Skipped != 1 {
		t.Errorf("Expected the second run to skip everything, got %+v", result)
	}
	if f.store.created != 1 {
		t.Errorf("Expected one record in total, got %d", f.store.created)
	}
}

func TestImportNews_StopsPagination(t *testing.T) {
	tests := []struct {
		name      string
		pages     map[int]string
		dropped   map[int]bool
		maxPages  int
		wantPages int
	}{
		{
			name: "missing page",
			pages: map[int]string{
				1: listing(item("/article/a/", "", "", "A", "")),
				3: listing(item("/article/c/", "", "", "C", "")),
			},
			maxPages:  9,
			wantPages: 1,
		},
		{
			name: "page without entries",
			pages: map[int]string{
				1: listing(item("/article/a/", "", "", "A", "")),
				2: listing(),
				3: listing(item("/article/c/", "", "", "C", "")),
			},
			maxPages:  9,
			wantPages: 1,
		},
		{
			name: "connection dropped",
			pages: map[int]string{
				1: listing(item("/article/a/", "", "", "A", "")),
				3: listing(item("/article/c/", "", "", "C", "")),
			},
			dropped:   map[int]bool{2: true},
			maxPages:  9,
			wantPages: 1,
		},
		{
			name: "page limit",
			pages: map[int]string{
				1: listing(item("/article/a/", "", "", "A", "")),
				2: listing(item("/article/b/", "", "", "B", "")),
				3: listing(item("/article/c/", "", "", "C", "")),
			},
			maxPages:  2,
			wantPages: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &site{pages: tt.pages, dropped: tt.dropped}, tt.maxPages)

			result, err := f.scraper.ImportNews(context.Background())
			if err != nil {
				t.Fatalf("ImportNews failed: %v", err)
			}
			if result.Pages != tt.wantPages || result.Created != tt.wantPages {
				t.Errorf("Expected %d pages and records, got %+v", tt.wantPages, result)
			}
			if f.store.get("c") != nil {
				t.Error("Entries past the stop point must not be imported")
			}
		})
	}
}

func TestImportNews_FirstPageUnreachable(t *testing.T) {
	f := newFixture(t, &site{}, 9)
	f.srv.Close()

	result, err := f.scraper.ImportNews(context.Background())
	if err != nil {
		t.Fatalf("A transport error must not fail the run: %v", err)
	}
	if result.Discovered != 0 || result.Created != 0 {
		t.Errorf("Expected an empty run, got %+v", result)
	}
	if f.scraper.Progress().GetCurrent().Status != StatusCompleted {
		t.Error("Expected the run to complete")
	}
}

func TestImportNews_ItemFailuresAreIsolated(t *testing.T) {
	st := &site{
		pages: map[int]string{
			1: listing(
				item("/article/untitled/", "", "", "", ""),
				item("/article/missing/", "/img/missing.jpg", "", "Articol lipsa", ""),
				item("/article/broken/", "", "", "Stricat", ""),
				item("/article/ok/", "", "", "Bun", ""),
			),
		},
		articles: map[string]string{
			"/article/broken/": article("", "<p>x</p>"),
			"/article/ok/":     article("", "<p>ok</p>"),
		},
	}
	f := newFixture(t, st, 1)
	f.store.failOn = "stricat"

	result, err := f.scraper.ImportNews(context.Background())
	if err != nil {
		t.Fatalf("ImportNews failed: %v", err)
	}

	if result.Created != 2 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("Unexpected result %+v", result)
	}

	missing := f.store.get("articol-lipsa")
	if missing == nil {
		t.Fatal("A missing article page and image must still create the record")
	}
	if missing.Content != "" || missing.Image != "" {
		t.Errorf("Expected empty content and image, got %+v", missing)
	}
	if f.store.get("bun") == nil {
		t.Error("Expected bun to be created after the failed insert")
	}
}

func TestImportNews_RejectsConcurrentRun(t *testing.T) {
	f := newFixture(t, &site{}, 1)

	if !f.scraper.Progress().Begin("other") {
		t.Fatal("Begin failed on an idle tracker")
	}
	if _, err := f.scraper.ImportNews(context.Background()); !errors.Is(err, ErrImportRunning) {
		t.Errorf("Expected ErrImportRunning, got %v", err)
	}
	f.scraper.Progress().Finish(StatusCompleted, "")

	if _, err := f.scraper.ImportNews(context.Background()); err != nil {
		t.Errorf("Expected a run after the other finished, got %v", err)
	}
}

func TestImportNews_Cancelled(t *testing.T) {
	st := &site{
		pages: map[int]string{1: listing(item("/article/a/", "", "", "A", ""))},
	}
	f := newFixture(t, st, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.scraper.ImportNews(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if f.scraper.Progress().GetCurrent().Status != StatusCancelled {
		t.Error("Expected cancelled status")
	}
	if f.scraper.Progress().IsActive() {
		t.Error("Tracker must be released after cancellation")
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(DefaultConfig(), Deps{}); err == nil {
		t.Error("Expected an error without dependencies")
	}
}

func TestPageURL(t *testing.T) {
	cfg := Config{ListingURL: "https://x.test/category/news"}
	if got := cfg.pageURL(1); got != "https://x.test/category/news" {
		t.Errorf("Unexpected page 1 URL %q", got)
	}
	if got := cfg.pageURL(3); got != "https://x.test/category/news/page/3/" {
		t.Errorf("Unexpected page 3 URL %q", got)
	}
}
