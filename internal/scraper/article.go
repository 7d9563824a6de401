package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// ArticleContent is what an article page contributes to a news record
type ArticleContent struct {
	// Content is the cleaned body markup
	Content string
	// FeaturedImage is the og:image or first uploaded image, possibly empty
	FeaturedImage string
}

// ParseArticle extracts the cleaned content fragment and the featured image
func (m *Markup) ParseArticle(body []byte, pageURL string) (*ArticleContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article: %w", err)
	}

	result := &ArticleContent{}

	container := doc.Find(m.ContentSelector).First()
	if container.Length() > 0 {
		result.Content = m.cleanContent(container)
	} else {
		result.Content = readableContent(body, pageURL)
	}

	result.FeaturedImage = m.featuredImage(doc)
	return result, nil
}

// cleanContent strips every non-article part from the container and
// serializes what is left
func (m *Markup) cleanContent(container *goquery.Selection) string {
	// The related section goes first: the filters below would otherwise
	// remove its cards but leave its heading and trailing blocks behind.
	// A marker heading may sit at top level and again inside a wrapper, so
	// keep cutting until none is left.
	for m.cutRelatedSection(container) {
	}

	container.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		for _, class := range strings.Fields(s.AttrOr("class", "")) {
			if m.RelatedClass.MatchString(class) {
				return true
			}
		}
		return false
	}).Remove()

	container.ChildrenFiltered("a").FilterFunction(m.isCard).Remove()

	var parts []string
	container.Children().Each(func(_ int, el *goquery.Selection) {
		switch tag := goquery.NodeName(el); {
		case tag == "h1", tag == "a":
			return
		case tag == "img" && el.HasClass(m.HeroClass):
			return
		case !m.KeepTags[tag]:
			return
		}

		el.Find("a").FilterFunction(m.isCard).Remove()

		markup, err := goquery.OuterHtml(el)
		if err != nil {
			return
		}
		if markup = strings.TrimSpace(markup); markup != "" {
			parts = append(parts, markup)
		}
	})

	return strings.Join(parts, "\n")
}

// cutRelatedSection removes the first marker heading under scope together
// with its following siblings. It reports whether anything was removed.
func (m *Markup) cutRelatedSection(scope *goquery.Selection) bool {
	marker := strings.ToLower(m.RelatedMarker)
	cut := false

	scope.Find("h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), marker) {
			return true
		}
		h.NextAll().Remove()
		h.Remove()
		cut = true
		return false
	})

	return cut
}

// isCard reports whether s is a related-post card link
func (m *Markup) isCard(_ int, s *goquery.Selection) bool {
	return s.Find(m.CardSelector).Length() > 0
}

func (m *Markup) featuredImage(doc *goquery.Document) string {
	if og := doc.Find(`meta[property="og:image"]`).First(); og.Length() > 0 {
		if content := strings.TrimSpace(og.AttrOr("content", "")); content != "" {
			return content
		}
	}

	var featured string
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := img.AttrOr("src", "")
		if src != "" && strings.Contains(src, m.UploadMarker) {
			featured = src
			return false
		}
		return true
	})
	return featured
}

// readableContent is the fallback for pages without the expected container
func readableContent(body []byte, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Content)
}
