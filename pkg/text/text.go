// Package text normalizes free-form event text for display: headline
// extraction, whitespace-safe truncation, date formatting and markup removal.
package text

import (
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// datePlaceholder is returned when a timestamp cannot be parsed
const datePlaceholder = "—"

// ruMonths holds short Russian month names, the stdlib has no locale support
// and the example corpus carries no i18n library
var ruMonths = [...]string{
	"янв", "фев", "мар", "апр", "мая", "июн",
	"июл", "авг", "сен", "окт", "ноя", "дек",
}

var stripPolicy = bluemonday.StrictPolicy()

// FirstLine returns the first line whose trimmed form is non-empty,
// or empty string when the input is blank
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Collapse folds whitespace runs into single spaces and trims the result
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate collapses whitespace and cuts the result to at most maxLen runes,
// ellipsis included. Under the limit it is a no-op beyond the collapse.
func Truncate(s string, maxLen int) string {
	cleaned := Collapse(s)
	runes := []rune(cleaned)
	if len(runes) <= maxLen {
		return cleaned
	}
	if maxLen < 1 {
		return ""
	}
	cut := strings.TrimRight(string(runes[:maxLen-1]), " ")
	return cut + "…"
}

// FormatDate renders an ISO-8601 timestamp as a short Russian date,
// e.g. "2 янв 2026". Empty input renders empty, unparseable input renders
// a fixed placeholder, never an error.
func FormatDate(iso string) string {
	if iso == "" {
		return ""
	}
	ts, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		ts, err = time.Parse("2006-01-02T15:04:05", iso)
	}
	if err != nil {
		return datePlaceholder
	}
	return fmt.Sprintf("%d %s %d", ts.Day(), ruMonths[ts.Month()-1], ts.Year())
}

// Sanitize strips any markup from server-supplied text
func Sanitize(s string) string {
	return stripPolicy.Sanitize(s)
}
