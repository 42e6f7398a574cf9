// Package normalize turns raw bank export cells into canonical values:
// ISO dates, signed decimal amounts and payment methods.
package normalize

import (
	"errors"
	"strings"
	"time"

	"github.com/cleared-dev/tally/internal/model"
)

// ErrInvalidDate is returned when no layout accepts a date string.
var ErrInvalidDate = errors.New("invalid date")

// fallbackLayouts are tried after a profile's own layouts fail.
var fallbackLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"2006/01/02",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"02-Jan-2006",
	"Mon Jan 2 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
}

// ParseDate parses raw with the first layout that yields a valid calendar
// date, falling back to a broad set of common layouts. The result is
// midnight UTC of the parsed day.
func ParseDate(raw string, layouts []string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), nil
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ISODate parses raw like ParseDate and formats it as yyyy-mm-dd.
func ISODate(raw string, layouts []string) (string, error) {
	t, err := ParseDate(raw, layouts)
	if err != nil {
		return "", err
	}
	return t.Format(model.DateFormat), nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
