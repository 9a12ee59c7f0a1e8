// Package filter classifies events against keyword-based topic filters.
// Matching is deliberately simple: case-insensitive substring search over
// title, description and channel. False positives are acceptable, no
// stemming or tokenization is attempted.
package filter

import (
	"strings"

	"github.com/azhavoronkov/eventscope/pkg/domain"
)

// Default is the compiled-in taxonomy, used when the config supplies none.
// Keyword lists are hand-tuned sample data, kept injectable on purpose.
var Default = []domain.Filter{
	{Key: "all", Label: "Все", Keywords: nil},
	{Key: "concerts", Label: "Концерты", Keywords: []string{"концерт", "gig", "live", "выступ", "музы"}},
	{Key: "theatre", Label: "Театр", Keywords: []string{"театр", "спектакл", "пьеса", "постановк"}},
	{Key: "party", Label: "Вечеринки", Keywords: []string{"вечерин", "rave", "dj", "техно", "house"}},
	{Key: "exhibition", Label: "Выставки", Keywords: []string{"выстав", "экспоз", "галере", "арт", "art"}},
	{Key: "lecture", Label: "Лекции", Keywords: []string{"лекц", "talk", "meetup", "воркшоп", "workshop"}},
}

// haystack builds the lowercase search text for an event, missing
// fields contribute empty strings
func haystack(ev *domain.EventCard) string {
	return strings.ToLower(ev.Title + "\n" + ev.DescriptionText() + "\n" + ev.Channel)
}

// Matches reports whether the event belongs to the filter. The universal
// filter (empty keyword list) matches every event.
func Matches(ev *domain.EventCard, f domain.Filter) bool {
	if f.All() {
		return true
	}
	text := haystack(ev)
	for _, kw := range f.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// MatchedCategories returns every category of the taxonomy with at least one
// keyword hit. An event may belong to zero, one or many categories; the
// universal filter is never reported as a category.
func MatchedCategories(ev *domain.EventCard, taxonomy []domain.Filter) []domain.Filter {
	var matched []domain.Filter
	text := haystack(ev)
	for _, f := range taxonomy {
		if f.All() {
			continue
		}
		for _, kw := range f.Keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, f)
				break
			}
		}
	}
	return matched
}

// ByKey finds a filter in the taxonomy, falling back to the first entry
// when the key is unknown
func ByKey(taxonomy []domain.Filter, key string) domain.Filter {
	for _, f := range taxonomy {
		if f.Key == key {
			return f
		}
	}
	if len(taxonomy) > 0 {
		return taxonomy[0]
	}
	return domain.Filter{Key: "all"}
}
