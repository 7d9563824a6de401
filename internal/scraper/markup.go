package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Extractor turns raw listing and article markup into candidate fields.
// Everything that depends on the source site's HTML lives behind it.
type Extractor interface {
	ParseListing(body []byte, baseURL string) ([]ListingEntry, error)
	ParseArticle(body []byte, pageURL string) (*ArticleContent, error)
}

// Markup is the Extractor for the WordPress theme of startup.chisinau.md
type Markup struct {
	// ListingSelectors are tried in order; the first with matches wins
	ListingSelectors []string
	// TitleTags are tried in order within a listing item
	TitleTags []string
	DateSelector string

	// ContentSelector locates the article body container
	ContentSelector string
	// RelatedMarker is matched case-insensitively against h3 headings that
	// open the trailing "related news" section
	RelatedMarker string
	// RelatedClass matches class names of related-post and carousel widgets
	RelatedClass *regexp.Regexp
	// CardSelector finds the date/info blocks of related-post cards
	CardSelector string
	// HeroClass marks the page header image repeated from the listing
	HeroClass string
	// KeepTags are the top-level element kinds kept in the content fragment
	KeepTags map[string]bool
	// UploadMarker identifies content images as opposed to theme assets
	UploadMarker string
}

// NewMarkup returns the Markup matching the current source site
func NewMarkup() *Markup {
	return &Markup{
		ListingSelectors: []string{".blog-posts .item", "article", ".post"},
		TitleTags:        []string{"h4", "h3", "h2"},
		DateSelector:     ".date",
		ContentSelector:  ".section-blog .container",
		RelatedMarker:    "nout",
		RelatedClass:     regexp.MustCompile(`(?i)related|swiper`),
		CardSelector:     ".info, .date",
		HeroClass:        "page-header-image",
		KeepTags: map[string]bool{
			"p": true, "ul": true, "ol": true, "blockquote": true,
			"figure": true, "img": true, "div": true,
		},
		UploadMarker: "wp-content/uploads",
	}
}

// strippedText concatenates the trimmed text nodes under the first node of s
func strippedText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	collectText(&b, s.Nodes[0])
	return b.String()
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

// resolveURL makes href absolute against base unless it already is
func resolveURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
