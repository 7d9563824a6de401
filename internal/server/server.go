package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/cmda-chisinau/site/internal/config"
	"github.com/cmda-chisinau/site/internal/contact"
	"github.com/cmda-chisinau/site/internal/database"
	"github.com/cmda-chisinau/site/internal/scraper"
	"github.com/cmda-chisinau/site/internal/storage"
)

// Store is the read side of the record store used by the site pages
type Store interface {
	contact.Store

	ListStories(ctx context.Context) ([]*database.SuccessStory, error)
	ListFeaturedStories(ctx context.Context) ([]*database.SuccessStory, error)
	GetStoryBySlug(ctx context.Context, slug string) (*database.SuccessStory, error)
	ListActivePartners(ctx context.Context) ([]*database.Partner, error)
	ListEUProjects(ctx context.Context) ([]*database.EUProject, error)
	ListGalleryPhotos(ctx context.Context) ([]*database.GalleryPhoto, error)
	ListPrograms(ctx context.Context) ([]*database.Program, error)
	ListStatistics(ctx context.Context, category string) (map[string]*database.Statistic, error)
	ListActiveMentors(ctx context.Context) ([]*database.Mentor, error)
	ListNews(ctx context.Context, limit int) ([]*database.News, error)
	GetNewsBySlug(ctx context.Context, slug string) (*database.News, error)
	GetRecentNews(ctx context.Context, since time.Time, limit int) ([]*database.News, error)
}

// Importer runs news imports
type Importer interface {
	ImportNews(ctx context.Context) (*scraper.Result, error)
	Progress() *scraper.ProgressTracker
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	store    Store
	importer Importer
	files    storage.Storage
	config   *config.Config
	log      logrus.FieldLogger
	pages    pages

	// ctx lives as long as the server and bounds background imports
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server instance. importer may be nil, which disables
// the import endpoints.
func New(store Store, importer Importer, files storage.Storage, cfg *config.Config, log logrus.FieldLogger) (*Server, error) {
	s := &Server{
		router:   chi.NewRouter(),
		store:    store,
		importer: importer,
		files:    files,
		config:   cfg,
		log:      log,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	p, err := parsePages(s.templateFuncs())
	if err != nil {
		return nil, err
	}
	s.pages = p

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.log, NoColor: true}))
	s.router.Use(middleware.Recoverer)
	s.router.NotFound(s.handleNotFound)

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Import control, outside the page timeout so the event stream stays open
	s.router.Post("/import", s.handleImport)
	s.router.Get("/import/status", s.handleImportStatus)
	s.router.Get("/import/events", s.handleImportEvents)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/", s.handleIndex)
		r.Get("/despre/", s.handleDespre)
		r.Get("/programe/", s.handleProgramme)
		r.Get("/ima/", s.handleIMA)
		r.Get("/contacte/", s.handleContacte)
		r.Get("/galerie/", s.handleGalerie)
		r.Get("/istorii-de-succes/", s.handleStories)
		r.Get("/istorii-de-succes/{slug}/", s.handleStoryDetail)
		r.Get("/parteneri/", s.handleParteneri)
		r.Get("/comunicate/", s.handleNewsList)
		r.Get("/comunicate/{slug}/", s.handleNewsDetail)
		for key := range staticPages {
			r.Get("/"+key+"/", s.handleStaticPage(key))
		}

		r.Method(http.MethodPost, "/contact/submit/", contact.NewHandler(s.store, s.log))
		r.Get("/rss.xml", s.handleRSS)
	})

	s.mountFiles()
}

// mountFiles serves static assets and, for local storage, uploaded media
func (s *Server) mountFiles() {
	if s.config.StaticDir != "" {
		s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.config.StaticDir))))
	}

	local, ok := s.files.(*storage.Local)
	if !ok {
		return
	}
	prefix := "/" + strings.Trim(s.config.MediaURL, "/") + "/"
	if prefix == "//" || strings.Contains(s.config.MediaURL, "://") {
		return
	}
	s.router.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root()))))
}

// Router returns the Chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	defer s.cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down gracefully...")
	s.cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.log.Errorf("%s: %v", msg, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
