package textback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrEmptyCorpus      = errors.New("no messages to generate questions")
	ErrParticipantCount = errors.New("exactly two participants are supported")
	ErrNoReactions      = errors.New("no reactions to generate questions")
)

// Metadata is an immutable snapshot of corpus-wide facts used to bound random draws. It is
// computed once at startup and shared read-only by every request.
type Metadata struct {
	MessageCount int64      `json:"message_count"`
	MinMessageID int64      `json:"min_message_id"`
	MaxMessageID int64      `json:"max_message_id"`
	MinTimestamp time.Time  `json:"min_timestamp"`
	MaxTimestamp time.Time  `json:"max_timestamp"`
	Platforms    []Platform `json:"platforms"`
	Participants []string   `json:"participants"`
	Reactions    []string   `json:"reactions"`
}

// ComputeMetadata reads the aggregate facts from the store. When requireReactions is set a
// corpus without reactions is rejected.
func ComputeMetadata(ctx context.Context, store Store, requireReactions bool) (*Metadata, error) {
	rng, err := store.AggregateMessageRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate messages: %w", err)
	}
	if rng.Count == 0 {
		return nil, ErrEmptyCorpus
	}

	platforms, err := store.DistinctPlatforms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get platforms: %w", err)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })

	names, err := store.DistinctParticipantNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	if len(names) != 2 {
		return nil, fmt.Errorf("%w: found %d", ErrParticipantCount, len(names))
	}
	sort.Strings(names)

	reactions, err := store.DistinctReactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}
	if len(reactions) == 0 && requireReactions {
		return nil, ErrNoReactions
	}
	sort.Strings(reactions)

	return &Metadata{
		MessageCount: rng.Count,
		MinMessageID: rng.MinID,
		MaxMessageID: rng.MaxID,
		MinTimestamp: rng.MinTimestamp,
		MaxTimestamp: rng.MaxTimestamp,
		Platforms:    platforms,
		Participants: names,
		Reactions:    reactions,
	}, nil
}
