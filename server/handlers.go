package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/azhavoronkov/eventscope/pkg/domain"
	"github.com/azhavoronkov/eventscope/pkg/feed"
	"github.com/azhavoronkov/eventscope/pkg/filter"
)

// feedResponse is the JSON shape of the current feed view
type feedResponse struct {
	Phase    string             `json:"phase"`
	Filter   string             `json:"filter"`
	Events   []domain.EventCard `json:"events"`
	Hero     string             `json:"hero,omitempty"`
	Carousel []string           `json:"carousel,omitempty"`
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	var phase feed.Phase
	var count int
	s.feed.Snapshot(func(st *feed.State) {
		phase = st.Phase()
		count = len(st.Events())
	})

	status := map[string]interface{}{
		"status":        "ok",
		"version":       s.version,
		"time":          time.Now().UTC(),
		"phase":         string(phase),
		"events":        count,
		"last_fetch_ok": phase == feed.PhaseReady,
	}
	renderJSON(w, r, http.StatusOK, status)
}

// feedHandler returns the current feed view, optionally switching the
// active filter first. Nothing is re-fetched, derived views recompute
// from the loaded list.
func (s *Server) feedHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			renderError(w, r, fmt.Errorf("invalid limit"), http.StatusBadRequest)
			return
		}
		limit = n
	}

	filterKey := r.URL.Query().Get("filter")

	var resp feedResponse
	s.feed.Update(func(st *feed.State) {
		if filterKey != "" {
			st.SetFilter(filterKey)
		}
		resp = buildFeedResponse(st, limit)
	})

	renderJSON(w, r, http.StatusOK, resp)
}

// channelsHandler returns the last fetched channel listing
func (s *Server) channelsHandler(w http.ResponseWriter, r *http.Request) {
	channels := s.feed.Channels()
	if channels == nil {
		channels = []domain.Channel{}
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"channels": channels})
}

// refreshHandler re-fetches the feed and the channel listing on demand
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	limit := s.config.GetFullConfig().Feed.Limit

	if err := s.feed.RefreshAll(r.Context(), limit); err != nil {
		s.metrics.refreshTotal.WithLabelValues("error").Inc()
		log.Printf("[ERROR] refresh failed: %v", err)
		renderError(w, r, err, http.StatusBadGateway)
		return
	}
	s.metrics.refreshTotal.WithLabelValues("ok").Inc()

	var resp feedResponse
	s.feed.Snapshot(func(st *feed.State) {
		s.metrics.eventsLoaded.Set(float64(len(st.Events())))
		resp = buildFeedResponse(st, 0)
	})
	renderJSON(w, r, http.StatusOK, resp)
}

// ingestHandler asks the backend to pull fresh posts, then re-fetches
func (s *Server) ingestHandler(w http.ResponseWriter, r *http.Request) {
	cfg := s.config.GetFullConfig()

	err := s.feed.Ingest(r.Context(), cfg.Ingest.PerChannelLimit, cfg.Feed.Limit, cfg.Ingest.EventOnly())
	if err != nil {
		s.metrics.ingestTotal.WithLabelValues("error").Inc()
		log.Printf("[ERROR] ingest failed: %v", err)
		renderError(w, r, err, http.StatusBadGateway)
		return
	}
	s.metrics.ingestTotal.WithLabelValues("ok").Inc()

	var resp feedResponse
	s.feed.Snapshot(func(st *feed.State) {
		s.metrics.eventsLoaded.Set(float64(len(st.Events())))
		resp = buildFeedResponse(st, 0)
	})
	renderJSON(w, r, http.StatusOK, resp)
}

// rssHandler serves an RSS rendering of the loaded feed for one filter.
// Supports both /rss/{filter} and /rss?filter=... patterns.
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("filter")
	if key == "" {
		key = r.URL.Query().Get("filter")
	}
	if key == "" {
		key = "all"
	}

	cfg := s.config.GetFullConfig()

	var taxonomy []domain.Filter
	var events []domain.EventCard
	s.feed.Snapshot(func(st *feed.State) {
		taxonomy = st.Taxonomy()
		events = st.Events()
	})

	f := filter.ByKey(taxonomy, key)
	matched := make([]domain.EventCard, 0, len(events))
	for i := range events {
		if filter.Matches(&events[i], f) {
			matched = append(matched, events[i])
		}
	}

	generator := feed.NewGenerator(cfg.Server.BaseURL, cfg.API.BaseURL)
	rss, err := generator.GenerateRSS(matched, f, taxonomy)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}

// buildFeedResponse assembles the JSON view of one state snapshot
func buildFeedResponse(st *feed.State, limit int) feedResponse {
	events := st.Display()
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	if events == nil {
		events = []domain.EventCard{}
	}
	return feedResponse{
		Phase:    string(st.Phase()),
		Filter:   st.ActiveFilter(),
		Events:   events,
		Hero:     st.Hero(),
		Carousel: st.CarouselImages(),
	}
}
