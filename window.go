package textback

import (
	"context"
	"fmt"
)

// WindowMode says which end of a window the anchor sits at
type WindowMode int

const (
	// EndingAt builds the window from the messages at or before the anchor
	EndingAt WindowMode = iota
	// StartingAt builds the window from the messages at or after the anchor
	StartingAt
)

// Repository draws anchors and windows from the store using the corpus metadata
type Repository struct {
	store Store
	meta  *Metadata
}

// NewRepository creates a repository over the given store
func NewRepository(store Store, meta *Metadata) *Repository {
	return &Repository{store: store, meta: meta}
}

// Metadata returns the corpus snapshot the repository draws against
func (r *Repository) Metadata() *Metadata {
	return r.meta
}

// RandomAnchor picks a random id and a random scan direction, then returns the first message
// from there that matches filter. The random direction avoids favoring messages near the start
// of the id range when the filter is selective. ok is false when nothing matches in that
// direction.
func (r *Repository) RandomAnchor(ctx context.Context, rng *Random, filter MessageFilter) (Message, bool, error) {
	id := int64(rng.Range(int(r.meta.MinMessageID), int(r.meta.MaxMessageID)+1))
	dir := Descending
	if rng.Bool() {
		dir = Ascending
	}

	msg, ok, err := r.store.FindAnchor(ctx, dir, id, filter)
	if err != nil {
		return Message{}, false, fmt.Errorf("failed to find anchor message: %w", err)
	}
	return msg, ok, nil
}

// Window returns length messages anchored at the given message, always oldest first. ok is
// false when fewer than length messages exist on that side of the anchor.
func (r *Repository) Window(ctx context.Context, anchor Message, mode WindowMode, length int) ([]Message, bool, error) {
	dir := Ascending
	if mode == EndingAt {
		dir = Descending
	}

	messages, err := r.store.FindWindow(ctx, dir, anchor, length)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find message window: %w", err)
	}
	if len(messages) < length {
		return nil, false, nil
	}
	messages = messages[:length]

	if dir == Descending {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}
	return messages, true, nil
}
