package domain

import "time"

// EventCard represents a single event record as served by the backend.
// The backend owns the schema; the client treats every field as read-only.
// All optional fields may be null or absent and decoding must tolerate both.
type EventCard struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Channel     string   `json:"channel"`
	MessageID   int64    `json:"message_id"`
	EventTime   *string  `json:"event_time,omitempty"`
	MediaURLs   []string `json:"media_urls,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Price       *string  `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	SourceLink  *string  `json:"source_link,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// DescriptionText returns the description or empty string when absent
func (e *EventCard) DescriptionText() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// When returns the temporal anchor of the event: event_time when present and
// parseable, created_at otherwise. The zero time is returned only when both
// fail to parse, which violates the backend contract for created_at.
func (e *EventCard) When() time.Time {
	if e.EventTime != nil {
		if ts, err := parseISO(*e.EventTime); err == nil {
			return ts
		}
	}
	ts, _ := parseISO(e.CreatedAt)
	return ts
}

// parseISO accepts the timestamp shapes the backend emits
func parseISO(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}
