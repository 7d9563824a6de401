// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	invalid   = regexp.MustCompile(`[^\w\s-]`)
	separator = regexp.MustCompile(`[-\s]+`)
)

// Make folds diacritics to ASCII ("Noutăți" -> "noutati"), drops other
// non-ASCII characters, removes punctuation and collapses runs of spaces and
// hyphens to one hyphen.
func Make(title string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(title) {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}

	s := invalid.ReplaceAllString(strings.ToLower(b.String()), "")
	s = separator.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}

// Truncate shortens a slug to at most n bytes. Slugs are ASCII so this never
// splits a character.
func Truncate(s string, n int) string {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
