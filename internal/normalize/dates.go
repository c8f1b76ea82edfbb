package normalize

import (
	"strconv"
	"strings"
	"time"
)

// Date formats seen across claim exports. Day-first before month-first to
// match the source data, which is predominantly Australian.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate attempts to parse a date string in multiple common formats.
// Bare numbers are treated as unix seconds. Returns nil if the input is
// empty or unparseable; callers treat nil as "cannot determine, do not block".
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, fmt := range dateFormats {
		if t, err := time.Parse(fmt, s); err == nil {
			return &t
		}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		t := time.Unix(int64(secs), 0).UTC()
		return &t
	}
	return nil
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
