package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrEmptyDate is returned for a blank date label
var ErrEmptyDate = errors.New("empty date label")

// dateNoise matches everything that cannot be part of a date, such as the
// text of the calendar icon rendered next to it
var dateNoise = regexp.MustCompile(`[^\d/.\-]`)

// dateLayouts are tried in order; the listing cards use month/day/year
var dateLayouts = []string{
	"1/2/2006",
	"2/1/2006",
	"2006-1-2",
	"2.1.2006",
}

// ParseDate converts a listing date label into a calendar date. On failure
// it returns fallback together with an error describing why, so the caller
// can use the date either way.
func ParseDate(label string, fallback time.Time) (time.Time, error) {
	if label == "" {
		return fallback, ErrEmptyDate
	}

	cleaned := dateNoise.ReplaceAllString(label, "")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}

	return fallback, fmt.Errorf("could not parse date %q", cleaned)
}
