package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmda-chisinau/site/internal/contact"
	"github.com/cmda-chisinau/site/internal/database"
)

// latestNewsCount is the number of news items shown on the home page
const latestNewsCount = 4

// handleIndex renders the home page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stories, err := s.store.ListFeaturedStories(ctx)
	if err != nil {
		s.serverError(w, "Failed to fetch stories", err)
		return
	}
	partners, err := s.store.ListActivePartners(ctx)
	if err != nil {
		s.serverError(w, "Failed to fetch partners", err)
		return
	}
	programs, err := s.store.ListPrograms(ctx)
	if err != nil {
		s.serverError(w, "Failed to fetch programs", err)
		return
	}
	stats, err := s.store.ListStatistics(ctx, "")
	if err != nil {
		s.serverError(w, "Failed to fetch statistics", err)
		return
	}
	news, err := s.store.ListNews(ctx, latestNewsCount)
	if err != nil {
		s.serverError(w, "Failed to fetch news", err)
		return
	}

	s.render(w, r, http.StatusOK, "index", view{
		ActivePage: "index",
		Data: map[string]any{
			"FeaturedStories": stories,
			"Partners":        partners,
			"Programs":        programs,
			"Stats":           stats,
			"LatestNews":      news,
		},
	})
}

func (s *Server) handleDespre(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "despre", view{ActivePage: "despre", Title: "Despre"})
}

func (s *Server) handleProgramme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	programs, err := s.store.ListPrograms(ctx)
	if err != nil {
		s.serverError(w, "Failed to fetch programs", err)
		return
	}
	stats, err := s.store.ListStatistics(ctx, database.StatPrograms)
	if err != nil {
		s.serverError(w, "Failed to fetch statistics", err)
		return
	}
	mentors, err := s.store.ListActiveMentors(ctx)
	if err != nil {
		s.serverError(w, "Failed to fetch mentors", err)
		return
	}

	s.render(w, r, http.StatusOK, "programe", view{
		ActivePage: "programe",
		Title:      "Programe",
		Data: map[string]any{
			"Programs": programs,
			"Stats":    stats,
			"Mentors":  mentors,
		},
	})
}

func (s *Server) handleIMA(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.ListStatistics(r.Context(), database.StatIMA)
	if err != nil {
		s.serverError(w, "Failed to fetch statistics", err)
		return
	}

	s.render(w, r, http.StatusOK, "ima", view{
		ActivePage: "ima",
		Title:      "IMA",
		Data:       map[string]any{"Stats": stats},
	})
}

func (s *Server) handleContacte(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "contacte", view{
		ActivePage: "contacte",
		Title:      "Contacte",
		Data:       map[string]any{"RequestTypes": contact.RequestTypes},
	})
}

func (s *Server) handleGalerie(w http.ResponseWriter, r *http.Request) {
	photos, err := s.store.ListGalleryPhotos(r.Context())
	if err != nil {
		s.serverError(w, "Failed to fetch photos", err)
		return
	}

	s.render(w, r, http.StatusOK, "galerie", view{
		ActivePage: "galerie",
		Title:      "Galerie",
		Data:       map[string]any{"Photos": photos},
	})
}

func (s *Server) handleStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.store.ListStories(r.Context())
	if err != nil {
		s.serverError(w, "Failed to fetch stories", err)
		return
	}

	s.render(w, r, http.StatusOK, "stories", view{
		ActivePage: "istorii-de-succes",
		Title:      "Istorii de succes",
		Data:       map[string]any{"Stories": stories},
	})
}

func (s *Server) handleStoryDetail(w http.ResponseWriter, r *http.Request) {
	story, err := s.store.GetStoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, database.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, "Failed to fetch story", err)
		return
	}

	s.render(w, r, http.StatusOK, "story", view{
		ActivePage: "istorii-de-succes",
		Title:      story.CompanyName,
		Data:       map[string]any{"Story": story},
	})
}

func (s *Server) handleParteneri(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	partners, err := s.store.ListActivePartners(ctx)
	if err != nil {
		s.serverError(w, "Failed to fetch partners", err)
		return
	}
	projects, err := s.store.ListEUProjects(ctx)
	if err != nil {
		s.serverError(w, "Failed to fetch EU projects", err)
		return
	}
	stats, err := s.store.ListStatistics(ctx, database.StatPartners)
	if err != nil {
		s.serverError(w, "Failed to fetch statistics", err)
		return
	}

	s.render(w, r, http.StatusOK, "parteneri", view{
		ActivePage: "parteneri",
		Title:      "Parteneri",
		Data: map[string]any{
			"Partners":   partners,
			"EUProjects": projects,
			"Stats":      stats,
		},
	})
}

func (s *Server) handleNewsList(w http.ResponseWriter, r *http.Request) {
	news, err := s.store.ListNews(r.Context(), 0)
	if err != nil {
		s.serverError(w, "Failed to fetch news", err)
		return
	}

	s.render(w, r, http.StatusOK, "news_list", view{
		ActivePage: "comunicate",
		Title:      "Comunicate",
		Data:       map[string]any{"News": news},
	})
}

func (s *Server) handleNewsDetail(w http.ResponseWriter, r *http.Request) {
	article, err := s.store.GetNewsBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, database.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, "Failed to fetch news", err)
		return
	}

	s.render(w, r, http.StatusOK, "news_detail", view{
		ActivePage: "comunicate",
		Title:      article.Title,
		Data:       map[string]any{"Article": article},
	})
}

func (s *Server) handleStaticPage(key string) http.HandlerFunc {
	title := staticPages[key]
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "static", view{ActivePage: key, Title: title})
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found", view{Title: "Pagina nu a fost găsită"})
}
