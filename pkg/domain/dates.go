package domain

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing broadcast dates. Feeds are
// not guaranteed to emit valid ISO 8601; RSS pubDate is usually RFC 1123.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a broadcast date string. Returns the zero time and
// false when none of the known layouts match.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompareDates orders two broadcast date strings. When both sides parse,
// the timestamps are compared; otherwise the comparison falls back to the
// raw strings, which is correct for ISO 8601 and at least stable for
// everything else. Returns <0, 0, >0 like strings.Compare.
func CompareDates(a, b string) int {
	ta, okA := ParseDate(a)
	tb, okB := ParseDate(b)
	if okA && okB {
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// Year returns the calendar year of a broadcast date, or 0 when the date
// does not parse.
func Year(value string) int {
	t, ok := ParseDate(value)
	if !ok {
		return 0
	}
	return t.Year()
}
