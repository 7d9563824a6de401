package server

import (
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/cmda-chisinau/site/internal/config"
	"github.com/cmda-chisinau/site/internal/database"
	"github.com/cmda-chisinau/site/internal/storage"
)

const (
	feedWindowDays = 30
	feedMaxItems   = 50
)

// GenerateRSSFeed creates an RSS feed from news records
func GenerateRSSFeed(news []*database.News, files storage.Storage, cfg *config.Config) (string, error) {
	now := time.Now()
	siteURL := strings.TrimRight(cfg.SiteURL, "/")

	feed := &feeds.Feed{
		Title:       cfg.FeedTitle,
		Link:        &feeds.Link{Href: siteURL + "/comunicate/"},
		Description: cfg.FeedDescription,
		Author:      &feeds.Author{Name: cfg.FeedAuthor},
		Created:     now,
	}

	// Convert news to feed items
	feed.Items = make([]*feeds.Item, 0, len(news))
	for _, n := range news {
		link := fmt.Sprintf("%s/comunicate/%s/", siteURL, n.Slug)
		item := &feeds.Item{
			Title:       n.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: n.Excerpt,
			Created:     n.PublishedDate,
		}
		if item.Description == "" {
			item.Description = n.Content
		}

		if n.Image != "" {
			imageURL := files.URL(n.Image)
			if strings.HasPrefix(imageURL, "/") {
				imageURL = siteURL + imageURL
			}
			item.Enclosure = &feeds.Enclosure{Url: imageURL, Type: imageMIMEType(n.Image), Length: "0"}
		}

		feed.Items = append(feed.Items, item)
	}

	// Generate RSS 2.0 format
	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to generate RSS: %w", err)
	}

	return rss, nil
}

// imageMIMEType guesses the enclosure type from the stored file extension
func imageMIMEType(ref string) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(ref))); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}

// handleRSS generates and serves the RSS feed
func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	since := time.Now().AddDate(0, 0, -feedWindowDays)
	news, err := s.store.GetRecentNews(ctx, since, feedMaxItems)
	if err != nil {
		s.serverError(w, "Failed to fetch news", err)
		return
	}

	feed, err := GenerateRSSFeed(news, s.files, s.config)
	if err != nil {
		s.serverError(w, "Failed to generate feed", err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(feed))
}
