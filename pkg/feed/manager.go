package feed

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/azhavoronkov/eventscope/pkg/domain"
)

//go:generate moq -out mocks/events_client.go -pkg mocks -skip-ensure -fmt goimports . EventsClient

// EventsClient retrieves events and channel listings from the backend
type EventsClient interface {
	ListEvents(ctx context.Context, limit int) ([]domain.EventCard, error)
	EcoChannels(ctx context.Context) ([]domain.Channel, error)
	TriggerIngest(ctx context.Context, perChannelLimit int, eventOnly bool) error
}

// Manager owns one feed state and drives its fetch lifecycle. All methods
// are safe for concurrent use; a context cancelled mid-fetch means the
// owning screen went away and the completion is dropped without touching
// state.
type Manager struct {
	client EventsClient
	state  *State

	mu       sync.RWMutex
	channels []domain.Channel
}

// NewManager creates a manager around an idle state
func NewManager(client EventsClient, cfg Config) *Manager {
	return &Manager{
		client: client,
		state:  NewState(cfg),
	}
}

// Refresh fetches the feed. Failures land the state in the failed phase;
// there is no automatic retry, recovery is an explicit re-trigger.
func (m *Manager) Refresh(ctx context.Context, limit int) error {
	m.mu.Lock()
	token := m.state.Begin()
	m.mu.Unlock()

	events, err := m.client.ListEvents(ctx, limit)

	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx.Err() != nil {
		// owner is gone, leave state alone
		return ctx.Err()
	}

	if !m.state.Apply(token, events, err) {
		log.Printf("[DEBUG] dropped stale fetch completion, token %d", token)
		return nil
	}
	if err != nil {
		log.Printf("[WARN] feed fetch failed: %v", err)
		return fmt.Errorf("refresh feed: %w", err)
	}
	log.Printf("[INFO] feed refreshed, %d events", len(events))
	return nil
}

// RefreshAll fetches events and the channel listing concurrently. The feed
// result follows the Refresh contract; a channel listing failure is logged
// and the previous listing kept, channels are decoration.
func (m *Manager) RefreshAll(ctx context.Context, limit int) error {
	var channels []domain.Channel

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Refresh(gctx, limit) })
	g.Go(func() error {
		list, err := m.client.EcoChannels(gctx)
		if err != nil {
			log.Printf("[WARN] channel listing failed: %v", err)
			return nil
		}
		channels = list
		return nil
	})

	err := g.Wait()

	if channels != nil && ctx.Err() == nil {
		m.mu.Lock()
		m.channels = channels
		m.mu.Unlock()
	}
	return err
}

// Ingest asks the backend to pull fresh posts and re-fetches the feed once
// the ingestion completes
func (m *Manager) Ingest(ctx context.Context, perChannelLimit, limit int, eventOnly bool) error {
	if err := m.client.TriggerIngest(ctx, perChannelLimit, eventOnly); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	return m.Refresh(ctx, limit)
}

// Channels returns the last successfully fetched channel listing
func (m *Manager) Channels() []domain.Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Channel, len(m.channels))
	copy(out, m.channels)
	return out
}

// Snapshot runs fn under the read lock with the current state. The state
// must not escape fn.
func (m *Manager) Snapshot(fn func(s *State)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.state)
}

// Update runs fn under the write lock, for filter and selection changes
func (m *Manager) Update(fn func(s *State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.state)
}
