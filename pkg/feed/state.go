// Package feed holds the presentation state for an event feed: the fetch
// lifecycle, derived filtered views, hero image selection and per-record
// image failure tracking. The state is independent of any rendering layer
// and is driven by an explicit begin/apply protocol so stale fetch results
// can never overwrite newer state.
package feed

import (
	"github.com/azhavoronkov/eventscope/pkg/domain"
	"github.com/azhavoronkov/eventscope/pkg/filter"
	"github.com/azhavoronkov/eventscope/pkg/media"
)

// Phase is the fetch lifecycle state of one feed instance
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed" // failed-empty: list treated as empty until re-fetch
)

// Config holds the static parameters of a feed state
type Config struct {
	APIBase       string
	Taxonomy      []domain.Filter // injectable, falls back to filter.Default
	FallbackCount int             // records shown when personalization narrows to empty
	CarouselCap   int             // max deduplicated carousel images
}

// State is the feed state machine for a single screen instance.
// Not safe for concurrent use, Manager provides the locked wrapper.
type State struct {
	cfg          Config
	phase        Phase
	events       []domain.EventCard
	activeFilter string
	selection    []string
	failedImages map[string]bool
	seq          int // in-flight fetch token, stale completions are dropped
}

const (
	defaultFallbackCount = 12
	defaultCarouselCap   = 8
)

// NewState creates an idle feed state
func NewState(cfg Config) *State {
	if len(cfg.Taxonomy) == 0 {
		cfg.Taxonomy = filter.Default
	}
	if cfg.FallbackCount == 0 {
		cfg.FallbackCount = defaultFallbackCount
	}
	if cfg.CarouselCap == 0 {
		cfg.CarouselCap = defaultCarouselCap
	}
	return &State{
		cfg:          cfg,
		phase:        PhaseIdle,
		activeFilter: "all",
		failedImages: make(map[string]bool),
	}
}

// Begin enters the loading phase and returns the token the eventual
// completion must present. Starting a new fetch invalidates any fetch
// still in flight.
func (s *State) Begin() int {
	s.seq++
	s.phase = PhaseLoading
	return s.seq
}

// Apply completes the fetch identified by token. A completion whose token
// does not match the latest Begin is stale and is discarded; the return
// value reports whether the state was updated. On error the list is
// replaced with an empty one and the failed phase records the distinction
// from a successful empty fetch.
func (s *State) Apply(token int, events []domain.EventCard, err error) bool {
	if token != s.seq || s.phase != PhaseLoading {
		return false
	}
	if err != nil {
		s.phase = PhaseFailed
		s.events = nil
		return true
	}
	s.phase = PhaseReady
	s.events = events
	return true
}

// Phase returns the current lifecycle phase
func (s *State) Phase() Phase { return s.phase }

// LastFetchOK distinguishes an empty successful fetch from a failed one
func (s *State) LastFetchOK() bool { return s.phase == PhaseReady }

// Events returns the full unfiltered list, empty while loading or failed
func (s *State) Events() []domain.EventCard {
	if s.phase != PhaseReady {
		return nil
	}
	return s.events
}

// SetFilter activates a named filter; derived views recompute on read,
// nothing is re-fetched
func (s *State) SetFilter(key string) { s.activeFilter = key }

// ActiveFilter returns the active filter key
func (s *State) ActiveFilter() string { return s.activeFilter }

// SetSelection replaces the personalization selection wholesale
func (s *State) SetSelection(keys []string) {
	s.selection = append([]string(nil), keys...)
}

// Selection returns the active personalization keys
func (s *State) Selection() []string { return s.selection }

// Filtered returns the events matching the active filter
func (s *State) Filtered() []domain.EventCard {
	f := filter.ByKey(s.cfg.Taxonomy, s.activeFilter)
	events := s.Events()
	out := make([]domain.EventCard, 0, len(events))
	for i := range events {
		if filter.Matches(&events[i], f) {
			out = append(out, events[i])
		}
	}
	return out
}

// Display returns the personalized view: events matching any selected
// category. When the selection narrows the feed to nothing while data
// exists, the first few unfiltered records are shown instead, the user
// never sees a blank feed over a non-empty list.
func (s *State) Display() []domain.EventCard {
	events := s.Events()
	if len(s.selection) == 0 {
		return s.Filtered()
	}

	selected := make(map[string]bool, len(s.selection))
	for _, k := range s.selection {
		selected[k] = true
	}

	var out []domain.EventCard
	for i := range events {
		for _, cat := range filter.MatchedCategories(&events[i], s.cfg.Taxonomy) {
			if selected[cat.Key] {
				out = append(out, events[i])
				break
			}
		}
	}

	if len(out) == 0 && len(events) > 0 {
		n := min(s.cfg.FallbackCount, len(events))
		return events[:n]
	}
	return out
}

// Hero returns the resolved image URL of the first record, in list order,
// that carries at least one displayable image; empty when none does or the
// feed is not ready
func (s *State) Hero() string {
	for _, ev := range s.Events() {
		for _, m := range ev.MediaURLs {
			resolved := media.Resolve(m, s.cfg.APIBase)
			if resolved != "" && media.IsLikelyImage(resolved) {
				return resolved
			}
		}
	}
	return ""
}

// CardImage returns the display image for one record: the first image-likely
// media URL, resolved, unless the record's image already failed to render
func (s *State) CardImage(ev *domain.EventCard) string {
	if s.failedImages[ev.ID] {
		return ""
	}
	for _, m := range ev.MediaURLs {
		resolved := media.Resolve(m, s.cfg.APIBase)
		if resolved != "" && media.IsLikelyImage(resolved) {
			return resolved
		}
	}
	return ""
}

// CarouselImages gathers every media URL across the loaded set, resolves
// them, keeps images only, deduplicates preserving first-seen order and
// caps the result
func (s *State) CarouselImages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, ev := range s.Events() {
		for _, m := range ev.MediaURLs {
			resolved := media.Resolve(m, s.cfg.APIBase)
			if resolved == "" || !media.IsLikelyImage(resolved) || seen[resolved] {
				continue
			}
			seen[resolved] = true
			out = append(out, resolved)
			if len(out) >= s.cfg.CarouselCap {
				return out
			}
		}
	}
	return out
}

// MarkImageFailed records a render-time image failure for one record.
// The flag is sticky for the lifetime of the state, the image is never
// retried automatically.
func (s *State) MarkImageFailed(id string) { s.failedImages[id] = true }

// ImageFailed reports whether the record's image already failed
func (s *State) ImageFailed(id string) bool { return s.failedImages[id] }

// Taxonomy returns the category taxonomy in effect
func (s *State) Taxonomy() []domain.Filter { return s.cfg.Taxonomy }
