package scraper

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ListingEntry is one article summary found on a listing page
type ListingEntry struct {
	URL      string
	ThumbURL string
	DateText string
	Title    string
	Excerpt  string
}

// ParseListing extracts article summaries from a listing page. Items without
// a link are dropped; any other missing part is left empty.
func (m *Markup) ParseListing(body []byte, baseURL string) ([]ListingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	var items *goquery.Selection
	for _, selector := range m.ListingSelectors {
		items = doc.Find(selector)
		if items.Length() > 0 {
			break
		}
	}
	if items == nil {
		return nil, nil
	}

	var entries []ListingEntry
	items.Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a[href]").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")

		entry := ListingEntry{
			URL:      resolveURL(baseURL, href),
			DateText: strippedText(item.Find(m.DateSelector).First()),
			Excerpt:  strippedText(item.Find("p").First()),
		}

		// Lazy-loaded thumbnails keep the real source in data-src
		if img := item.Find("img").First(); img.Length() > 0 {
			entry.ThumbURL = img.AttrOr("src", "")
			if entry.ThumbURL == "" {
				entry.ThumbURL = img.AttrOr("data-src", "")
			}
		}

		for _, tag := range m.TitleTags {
			if heading := item.Find(tag).First(); heading.Length() > 0 {
				entry.Title = strippedText(heading)
				break
			}
		}

		entries = append(entries, entry)
	})

	return entries, nil
}
