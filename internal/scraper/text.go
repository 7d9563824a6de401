package scraper

import "unicode/utf8"

// truncateRunes shortens s to at most n characters
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
