package textback

import (
	"context"
	"time"
)

// Direction is the order in which a store scans messages
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// MessageFilter restricts which messages can be chosen as an anchor. Zero values do not filter.
type MessageFilter struct {
	Platform    Platform
	MinWords    int
	HasReaction bool
}

// Matches reports whether the message satisfies the filter
func (f MessageFilter) Matches(m Message) bool {
	if f.Platform != "" && m.Platform != f.Platform {
		return false
	}
	if f.MinWords > 0 && m.Words < f.MinWords {
		return false
	}
	if f.HasReaction && len(m.Reactions) == 0 {
		return false
	}
	return true
}

// MessageRange is the aggregate id and timestamp range of all stored messages
type MessageRange struct {
	Count        int64
	MinID, MaxID int64
	MinTimestamp time.Time
	MaxTimestamp time.Time
}

// Store is the read-only query surface the engine needs from a message store
type Store interface {
	// FindAnchor returns the first message matching filter with id >= idBound when scanning
	// ascending, or id <= idBound when scanning descending.
	FindAnchor(ctx context.Context, dir Direction, idBound int64, filter MessageFilter) (Message, bool, error)

	// FindWindow returns up to limit messages ordered by (timestamp, id) in the given direction,
	// starting from and including the anchor.
	FindWindow(ctx context.Context, dir Direction, anchor Message, limit int) ([]Message, error)

	AggregateMessageRange(ctx context.Context) (MessageRange, error)
	DistinctPlatforms(ctx context.Context) ([]Platform, error)
	DistinctParticipantNames(ctx context.Context) ([]string, error)
	DistinctReactions(ctx context.Context) ([]string, error)
}
