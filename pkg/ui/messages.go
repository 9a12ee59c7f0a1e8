// Package ui provides the terminal feed browser built on Bubble Tea.
package ui

import "github.com/azhavoronkov/eventscope/pkg/domain"

// FeedLoaded is sent when a feed fetch completes. Seq carries the token
// issued when the fetch started so stale completions can be discarded.
type FeedLoaded struct {
	Seq    int
	Events []domain.EventCard
	Err    error
}

// ChannelsLoaded is sent when the channel listing arrives. A failure keeps
// the previous listing, channels are decoration.
type ChannelsLoaded struct {
	Channels []domain.Channel
	Err      error
}

// IngestDone is sent when a backend ingestion round finishes.
type IngestDone struct{ Err error }

// SelectionSaved is sent after the personalization selection is persisted.
type SelectionSaved struct{ Err error }
