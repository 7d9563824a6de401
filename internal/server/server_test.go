package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"github.com/cmda-chisinau/site/internal/config"
	"github.com/cmda-chisinau/site/internal/database"
	"github.com/cmda-chisinau/site/internal/scraper"
	"github.com/cmda-chisinau/site/internal/storage"
)

type fakeStore struct {
	mu       sync.Mutex
	stories  []*database.SuccessStory
	partners []*database.Partner
	projects []*database.EUProject
	photos   []*database.GalleryPhoto
	programs []*database.Program
	stats    []*database.Statistic
	mentors  []*database.Mentor
	news     []*database.News
	contacts []*database.ContactSubmission
}

func (f *fakeStore) CreateContactSubmission(ctx context.Context, c *database.ContactSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = len(f.contacts) + 1
	f.contacts = append(f.contacts, c)
	return nil
}

func (f *fakeStore) ListStories(ctx context.Context) ([]*database.SuccessStory, error) {
	return f.stories, nil
}

func (f *fakeStore) ListFeaturedStories(ctx context.Context) ([]*database.SuccessStory, error) {
	var out []*database.SuccessStory
	for _, s := range f.stories {
		if s.IsFeatured {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetStoryBySlug(ctx context.Context, slug string) (*database.SuccessStory, error) {
	for _, s := range f.stories {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) ListActivePartners(ctx context.Context) ([]*database.Partner, error) {
	return f.partners, nil
}

func (f *fakeStore) ListEUProjects(ctx context.Context) ([]*database.EUProject, error) {
	return f.projects, nil
}

func (f *fakeStore) ListGalleryPhotos(ctx context.Context) ([]*database.GalleryPhoto, error) {
	return f.photos, nil
}

func (f *fakeStore) ListPrograms(ctx context.Context) ([]*database.Program, error) {
	return f.programs, nil
}

func (f *fakeStore) ListStatistics(ctx context.Context, category string) (map[string]*database.Statistic, error) {
	out := make(map[string]*database.Statistic)
	for _, s := range f.stats {
		if category == "" || s.Category == category {
			out[s.Key] = s
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveMentors(ctx context.Context) ([]*database.Mentor, error) {
	return f.mentors, nil
}

func (f *fakeStore) ListNews(ctx context.Context, limit int) ([]*database.News, error) {
	if limit > 0 && limit < len(f.news) {
		return f.news[:limit], nil
	}
	return f.news, nil
}

func (f *fakeStore) GetNewsBySlug(ctx context.Context, slug string) (*database.News, error) {
	for _, n := range f.news {
		if n.Slug == slug {
			return n, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) GetRecentNews(ctx context.Context, since time.Time, limit int) ([]*database.News, error) {
	var out []*database.News
	for _, n := range f.news {
		if !n.PublishedDate.Before(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeImporter struct {
	progress *scraper.ProgressTracker
	calls    chan struct{}
}

func (f *fakeImporter) ImportNews(ctx context.Context) (*scraper.Result, error) {
	f.calls <- struct{}{}
	return &scraper.Result{RunID: "run"}, nil
}

func (f *fakeImporter) Progress() *scraper.ProgressTracker {
	return f.progress
}

func testStore() *fakeStore {
	now := time.Now()
	return &fakeStore{
		stories: []*database.SuccessStory{
			{Slug: "naka-boo", CompanyName: "NAKA BOO", Title: "Industria textila", Content: "<p>Atelier <strong>modern</strong></p>", IsFeatured: true, Image: "stories/story5.webp"},
			{Slug: "ai-skills-srl", CompanyName: "AI SKILLS SRL", Title: "Denis Zacon"},
		},
		partners: []*database.Partner{{Name: "TIKA", Logo: "partners/tika.webp", IsActive: true}},
		projects: []*database.EUProject{{Title: "DIGICROSS", Status: database.ProjectActive}},
		photos:   []*database.GalleryPhoto{{Image: "gallery/photo_1.webp", Order: 1}},
		programs: []*database.Program{{Title: "Consultanta", Slug: "consultanta", Content: "<p>Consultatii</p>"}},
		stats: []*database.Statistic{
			{Key: "consultations", Value: "4215", Suffix: "+", Category: database.StatImpact, Label: "consultatii"},
			{Key: "ima_residents", Value: "11", Category: database.StatIMA, Label: "Rezidenti activi"},
		},
		news: []*database.News{
			{Slug: "apel-nou", Title: "Apel nou de proiecte", Excerpt: "Rezumat", Content: "<p>Text <em>complet</em></p>", Image: "news/apel-nou.jpg", PublishedDate: now.AddDate(0, 0, -2)},
			{Slug: "vechi", Title: "Comunicat vechi", Content: "<p>Vechi</p>", PublishedDate: now.AddDate(0, -3, 0)},
		},
	}
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		SiteURL:         "https://cmda.md",
		FeedTitle:       "CMDA",
		FeedDescription: "Comunicate",
		FeedAuthor:      "CMDA",
		MediaRoot:       t.TempDir(),
		MediaURL:        "/media/",
		ImportToken:     "secret",
	}
}

func newTestServer(t *testing.T, store *fakeStore, importer Importer) (*Server, *storage.Local) {
	t.Helper()

	cfg := testConfig(t)
	files, err := storage.NewLocal(cfg.MediaRoot, cfg.MediaURL)
	if err != nil {
		t.Fatal(err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	s, err := New(store, importer, files, cfg, log)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, files
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPages(t *testing.T) {
	s, _ := newTestServer(t, testStore(), nil)

	tests := []struct {
		path     string
		contains []string
	}{
		{"/", []string{"NAKA BOO", "Apel nou de proiecte", "4215&#43;", `/media/partners/tika.webp`, `href="/" class="active"`}},
		{"/despre/", []string{"Despre CMDA", `href="/despre/" class="active"`}},
		{"/programe/", []string{"Consultanta", "<p>Consultatii</p>"}},
		{"/ima/", []string{"Rezidenti activi"}},
		{"/contacte/", []string{`action="/contact/submit/"`, `value="incubator"`}},
		{"/galerie/", []string{"/media/gallery/photo_1.webp"}},
		{"/istorii-de-succes/", []string{"NAKA BOO", "AI SKILLS SRL"}},
		{"/istorii-de-succes/naka-boo/", []string{"<strong>modern</strong>", "/media/stories/story5.webp"}},
		{"/parteneri/", []string{"TIKA", "DIGICROSS"}},
		{"/comunicate/", []string{"Apel nou de proiecte", "Comunicat vechi"}},
		{"/comunicate/apel-nou/", []string{"<em>complet</em>", "/media/news/apel-nou.jpg"}},
		{"/buget/", []string{"<h1>Buget</h1>", `href="/buget/"`}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			body := rec.Body.String()
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("Expected %q in body", want)
				}
			}
		})
	}
}

func TestPages_StaticRoutes(t *testing.T) {
	s, _ := newTestServer(t, testStore(), nil)

	for key := range staticPages {
		if rec := get(t, s, "/"+key+"/"); rec.Code != http.StatusOK {
			t.Errorf("Expected 200 for /%s/, got %d", key, rec.Code)
		}
	}
}

func TestPages_NotFound(t *testing.T) {
	s, _ := newTestServer(t, testStore(), nil)

	for _, path := range []string{"/comunicate/missing/", "/istorii-de-succes/missing/", "/nope"} {
		rec := get(t, s, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404 for %s, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Pagina nu a fost găsită") {
			t.Errorf("Expected the not found page for %s", path)
		}
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testStore(), nil)
	rec := get(t, s, "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("Unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestMedia(t *testing.T) {
	s, files := newTestServer(t, testStore(), nil)

	ref, err := files.Save(context.Background(), storage.CategoryNews, "apel-nou.jpg", []byte("jpeg"))
	if err != nil {
		t.Fatal(err)
	}

	rec := get(t, s, "/media/"+ref)
	if rec.Code != http.StatusOK || rec.Body.String() != "jpeg" {
		t.Errorf("Expected stored media, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestContactSubmit(t *testing.T) {
	store := testStore()
	s, _ := newTestServer(t, store, nil)

	form := url.Values{"name": {"Ion"}, "email": {"ion@example.md"}, "message": {"Salut"}}
	req := httptest.NewRequest(http.MethodPost, "/contact/submit/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.contacts) != 1 {
		t.Errorf("Expected a stored submission, got %d", len(store.contacts))
	}
}

func TestRSS(t *testing.T) {
	s, _ := newTestServer(t, testStore(), nil)

	rec := get(t, s, "/rss.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Unexpected content type %q", ct)
	}

	feed, err := gofeed.NewParser().ParseString(rec.Body.String())
	if err != nil {
		t.Fatalf("Generated feed does not parse: %v", err)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("Expected only the recent item, got %d", len(feed.Items))
	}

	item := feed.Items[0]
	if item.Title != "Apel nou de proiecte" {
		t.Errorf("Unexpected title %q", item.Title)
	}
	if item.Link != "https://cmda.md/comunicate/apel-nou/" {
		t.Errorf("Unexpected link %q", item.Link)
	}
	if len(item.Enclosures) != 1 || item.Enclosures[0].URL != "https://cmda.md/media/news/apel-nou.jpg" {
		t.Errorf("Unexpected enclosures %+v", item.Enclosures)
	}
}

func TestImportTrigger(t *testing.T) {
	importer := &fakeImporter{progress: scraper.NewProgressTracker(), calls: make(chan struct{}, 1)}
	s, _ := newTestServer(t, testStore(), importer)

	post := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/import", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		return rec
	}

	if rec := post(""); rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without token, got %d", rec.Code)
	}
	if rec := post("wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 with a wrong token, got %d", rec.Code)
	}

	if rec := post("secret"); rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}
	select {
	case <-importer.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the import to start")
	}

	importer.progress.Begin("busy")
	defer importer.progress.Finish(scraper.StatusCompleted, "")
	if rec := post("secret"); rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 while a run is active, got %d", rec.Code)
	}
}

func TestImportStatus(t *testing.T) {
	importer := &fakeImporter{progress: scraper.NewProgressTracker(), calls: make(chan struct{}, 1)}
	s, _ := newTestServer(t, testStore(), importer)

	importer.progress.Begin("run-7")
	rec := get(t, s, "/import/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var got scraper.ProgressUpdate
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if got.RunID != "run-7" || got.Status != scraper.StatusListing {
		t.Errorf("Unexpected status %+v", got)
	}
}

func TestImportDisabled(t *testing.T) {
	s, _ := newTestServer(t, testStore(), nil)
	if rec := get(t, s, "/import/status"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without an importer, got %d", rec.Code)
	}
}

func TestImportEvents(t *testing.T) {
	importer := &fakeImporter{progress: scraper.NewProgressTracker(), calls: make(chan struct{}, 1)}
	s, _ := newTestServer(t, testStore(), importer)

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/import/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Unexpected content type %q", ct)
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	readData := func() scraper.ProgressUpdate {
		t.Helper()
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatal("Stream closed early")
				}
				if data, found := strings.CutPrefix(line, "data: "); found {
					var u scraper.ProgressUpdate
					if err := json.Unmarshal([]byte(data), &u); err != nil {
						t.Fatalf("Invalid event data: %v", err)
					}
					return u
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Timed out waiting for an event")
			}
		}
	}

	if first := readData(); first.Status != scraper.StatusIdle {
		t.Errorf("Expected the current state first, got %s", first.Status)
	}

	importer.progress.Begin("run-9")
	if next := readData(); next.RunID != "run-9" {
		t.Errorf("Expected the broadcast update, got %+v", next)
	}
}

// blockingImporter runs until its context is cancelled
type blockingImporter struct {
	progress *scraper.ProgressTracker
	started  chan struct{}
	stopped  chan error
}

func (b *blockingImporter) ImportNews(ctx context.Context) (*scraper.Result, error) {
	close(b.started)
	<-ctx.Done()
	b.stopped <- ctx.Err()
	return nil, ctx.Err()
}

func (b *blockingImporter) Progress() *scraper.ProgressTracker {
	return b.progress
}

func TestImportTrigger_CancelledOnShutdown(t *testing.T) {
	importer := &blockingImporter{
		progress: scraper.NewProgressTracker(),
		started:  make(chan struct{}),
		stopped:  make(chan error, 1),
	}
	s, _ := newTestServer(t, testStore(), importer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, "127.0.0.1:0") }()

	req := httptest.NewRequest(http.MethodPost, "/import", nil)
	req.Header.Set("X-Import-Token", "secret")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}

	select {
	case <-importer.started:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the import to start")
	}

	cancel()

	select {
	case err := <-importer.stopped:
		if err != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected the import to be cancelled on shutdown")
	}

	if err := <-done; err != nil {
		t.Errorf("Start returned %v", err)
	}
}

func TestNavMenu(t *testing.T) {
	html, err := navHTML("parteneri")
	if err != nil {
		t.Fatalf("navHTML failed: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, `<a href="/parteneri/" class="active">Parteneri</a>`) {
		t.Errorf("Expected the active entry, got %s", got)
	}
	if strings.Count(got, `class="active"`) != 1 {
		t.Errorf("Expected exactly one active entry, got %s", got)
	}
	if !strings.HasPrefix(got, "<ul>") || !strings.HasSuffix(got, "</ul>") {
		t.Errorf("Unexpected markup %s", got)
	}
}

func TestImageMIMEType(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"news/a.png", "image/png"},
		{"news/a.webp", "image/webp"},
		{"news/a.GIF", "image/gif"},
		{"news/a.jpg", "image/jpeg"},
		{"news/a", "image/jpeg"},
		{"news/a.txt", "image/jpeg"},
	}

	for _, tt := range tests {
		if got := imageMIMEType(tt.ref); got != tt.want {
			t.Errorf("imageMIMEType(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
