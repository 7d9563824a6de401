package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cmda-chisinau/site/internal/scraper"
)

// keepAliveInterval is how often an idle event stream gets a comment line
const keepAliveInterval = 25 * time.Second

// authorized checks the import token. An empty configured token disables
// the trigger.
func (s *Server) authorized(r *http.Request) bool {
	if s.config.ImportToken == "" {
		return false
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		token = r.Header.Get("X-Import-Token")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.config.ImportToken)) == 1
}

// handleImport starts a news import in the background
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		http.Error(w, "Import is not configured", http.StatusServiceUnavailable)
		return
	}
	if !s.authorized(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if s.importer.Progress().IsActive() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": scraper.ErrImportRunning.Error()})
		return
	}

	s.log.Info("Starting manual import...")
	go func() {
		result, err := s.importer.ImportNews(s.ctx)
		if errors.Is(err, scraper.ErrImportRunning) {
			s.log.Warn("Manual import skipped, another run is active")
			return
		}
		if err != nil {
			s.log.Errorf("Manual import failed: %v", err)
			return
		}
		s.log.WithField("run_id", result.RunID).Infof("Manual import created %d news articles", result.Created)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// handleImportStatus returns the current import progress
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		http.Error(w, "Import is not configured", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.importer.Progress().GetCurrent())
}

// handleImportEvents streams progress updates as server-sent events
func (s *Server) handleImportEvents(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		http.Error(w, "Import is not configured", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	tracker := s.importer.Progress()
	updates := tracker.Subscribe()
	defer tracker.Unsubscribe(updates)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case update, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(update)
			if err != nil {
				s.log.Errorf("Failed to encode progress update: %v", err)
				return
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
