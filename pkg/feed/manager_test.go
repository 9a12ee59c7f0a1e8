package feed_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhavoronkov/eventscope/pkg/domain"
	"github.com/azhavoronkov/eventscope/pkg/feed"
	"github.com/azhavoronkov/eventscope/pkg/feed/mocks"
)

func TestManager_Refresh(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		client := &mocks.EventsClientMock{
			ListEventsFunc: func(ctx context.Context, limit int) ([]domain.EventCard, error) {
				return []domain.EventCard{
					{ID: "1", Title: "Концерт", Channel: "c", MediaURLs: []string{"https://x/a.jpg"}},
					{ID: "2", Title: "Кино", Channel: "c", MediaURLs: []string{"https://x/b.mp4"}},
				}, nil
			},
		}
		m := feed.NewManager(client, feed.Config{APIBase: "https://api.example.com"})

		require.NoError(t, m.Refresh(context.Background(), 20))
		require.Len(t, client.ListEventsCalls(), 1)
		assert.Equal(t, 20, client.ListEventsCalls()[0].Limit)

		m.Snapshot(func(s *feed.State) {
			assert.Equal(t, feed.PhaseReady, s.Phase())
			assert.Len(t, s.Events(), 2)
			assert.Equal(t, "https://x/a.jpg", s.Hero(), "mp4 record skipped for hero")
		})
	})

	t.Run("failure lands in failed phase", func(t *testing.T) {
		client := &mocks.EventsClientMock{
			ListEventsFunc: func(ctx context.Context, limit int) ([]domain.EventCard, error) {
				return nil, errors.New("status 500")
			},
		}
		m := feed.NewManager(client, feed.Config{APIBase: "https://api.example.com"})

		err := m.Refresh(context.Background(), 30)
		require.Error(t, err)

		m.Snapshot(func(s *feed.State) {
			assert.Equal(t, feed.PhaseFailed, s.Phase())
			assert.False(t, s.LastFetchOK())
			assert.Empty(t, s.Events())
		})
	})

	t.Run("cancelled context does not touch state", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		client := &mocks.EventsClientMock{
			ListEventsFunc: func(ctx context.Context, limit int) ([]domain.EventCard, error) {
				cancel() // screen unmounts while the request is in flight
				return []domain.EventCard{{ID: "late", Channel: "c"}}, nil
			},
		}
		m := feed.NewManager(client, feed.Config{APIBase: "https://api.example.com"})

		err := m.Refresh(ctx, 10)
		require.ErrorIs(t, err, context.Canceled)

		m.Snapshot(func(s *feed.State) {
			assert.Equal(t, feed.PhaseLoading, s.Phase(), "no stale update applied after teardown")
			assert.Empty(t, s.Events())
		})
	})

	t.Run("concurrent refreshes keep one winner", func(t *testing.T) {
		client := &mocks.EventsClientMock{
			ListEventsFunc: func(ctx context.Context, limit int) ([]domain.EventCard, error) {
				return []domain.EventCard{{ID: "1", Channel: "c"}}, nil
			},
		}
		m := feed.NewManager(client, feed.Config{APIBase: "https://api.example.com"})

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = m.Refresh(context.Background(), 5)
			}()
		}
		wg.Wait()

		m.Snapshot(func(s *feed.State) {
			assert.Equal(t, feed.PhaseReady, s.Phase())
			assert.Len(t, s.Events(), 1)
		})
	})
}

func TestManager_RefreshAll(t *testing.T) {
	t.Run("events and channels fetched concurrently", func(t *testing.T) {
		avatar := "/media/eco.png"
		client := &mocks.EventsClientMock{
			ListEventsFunc: func(ctx context.Context, limit int) ([]domain.EventCard, error) {
				return []domain.EventCard{{ID: "1", Channel: "c"}}, nil
			},
			EcoChannelsFunc: func(ctx context.Context) ([]domain.Channel, error) {
				return []domain.Channel{{Name: "@eco", Subs: 1200, Avatar: &avatar}}, nil
			},
		}
		m := feed.NewManager(client, feed.Config{APIBase: "https://api.example.com"})

		require.NoError(t, m.RefreshAll(context.Background(), 30))
		assert.Len(t, client.ListEventsCalls(), 1)
		assert.Len(t, client.EcoChannelsCalls(), 1)

		channels := m.Channels()
		require.Len(t, channels, 1)
		assert.Equal(t, "@eco", channels[0].Name)
	})

	t.Run("channel failure keeps previous listing", func(t *testing.T) {
		calls := 0
		client := &mocks.EventsClientMock{
			ListEventsFunc: func(ctx context.Context, limit int) ([]domain.EventCard, error) {
				return []domain.EventCard{}, nil
			},
			EcoChannelsFunc: func(ctx context.Context) ([]domain.Channel, error) {
				calls++
				if calls == 1 {
					return []domain.Channel{{Name: "@kept", Subs: 1}}, nil
				}
				return nil, errors.New("channel listing down")
			},
		}
		m := feed.NewManager(client, feed.Config{APIBase: "https://api.example.com"})

		require.NoError(t, m.RefreshAll(context.Background(), 30))
		require.NoError(t, m.RefreshAll(context.Background(), 30), "channels are decoration, failure is soft")

		channels := m.Channels()
		require.Len(t, channels, 1)
		assert.Equal(t, "@kept", channels[0].Name)
	})
}

func TestManager_Ingest(t *testing.T) {
	t.Run("triggers then refetches", func(t *testing.T) {
		var order []string
		client := &mocks.EventsClientMock{
			TriggerIngestFunc: func(ctx context.Context, perChannelLimit int, eventOnly bool) error {
				order = append(order, "ingest")
				return nil
			},
			ListEventsFunc: func(ctx context.Context, limit int) ([]domain.EventCard, error) {
				order = append(order, "list")
				return []domain.EventCard{{ID: "1", Channel: "c"}}, nil
			},
		}
		m := feed.NewManager(client, feed.Config{APIBase: "https://api.example.com"})

		require.NoError(t, m.Ingest(context.Background(), 5, 30, true))
		assert.Equal(t, []string{"ingest", "list"}, order, "re-query waits for ingestion")

		require.Len(t, client.TriggerIngestCalls(), 1)
		assert.Equal(t, 5, client.TriggerIngestCalls()[0].PerChannelLimit)
		assert.True(t, client.TriggerIngestCalls()[0].EventOnly)
	})

	t.Run("ingest failure skips refetch", func(t *testing.T) {
		client := &mocks.EventsClientMock{
			TriggerIngestFunc: func(ctx context.Context, perChannelLimit int, eventOnly bool) error {
				return errors.New("ingestion busy")
			},
			ListEventsFunc: func(ctx context.Context, limit int) ([]domain.EventCard, error) {
				t.Fatal("must not refetch after failed ingest")
				return nil, nil
			},
		}
		m := feed.NewManager(client, feed.Config{APIBase: "https://api.example.com"})
		require.Error(t, m.Ingest(context.Background(), 5, 30, false))
		assert.Empty(t, client.ListEventsCalls())
	})
}

func TestManager_FilterUpdates(t *testing.T) {
	client := &mocks.EventsClientMock{
		ListEventsFunc: func(ctx context.Context, limit int) ([]domain.EventCard, error) {
			return []domain.EventCard{
				{ID: "1", Title: "Концерт", Channel: "c"},
				{ID: "2", Title: "Выставка", Channel: "c"},
			}, nil
		},
	}
	m := feed.NewManager(client, feed.Config{APIBase: "https://api.example.com"})
	require.NoError(t, m.Refresh(context.Background(), 30))

	m.Update(func(s *feed.State) { s.SetFilter("concerts") })
	m.Snapshot(func(s *feed.State) {
		require.Len(t, s.Filtered(), 1)
		assert.Equal(t, "1", s.Filtered()[0].ID)
	})

	// derived view recomputes without another fetch
	assert.Len(t, client.ListEventsCalls(), 1)
}
