package scraper

import (
	"mime"
	"strings"

	"github.com/cmda-chisinau/site/internal/slug"
)

const defaultImageExtension = ".jpg"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

var contentTypeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension picks a file extension for a downloaded image: from the
// URL's last path segment when it is a known image type, else from the
// content type, else ".jpg"
func ImageExtension(rawURL, contentType string) string {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	segment := p[strings.LastIndex(p, "/")+1:]
	if i := strings.LastIndex(segment, "."); i >= 0 {
		if ext := strings.ToLower(segment[i:]); imageExtensions[ext] {
			return ext
		}
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := contentTypeExtensions[strings.ToLower(mediaType)]; ok {
			return ext
		}
	}

	return defaultImageExtension
}

// ImageFilename builds the stored file name from the record slug
func ImageFilename(recordSlug, ext string, maxLen int) string {
	return slug.Truncate(recordSlug, maxLen) + ext
}
