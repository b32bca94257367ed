package textback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, store Store) *Repository {
	t.Helper()
	meta, err := ComputeMetadata(context.Background(), store, false)
	require.NoError(t, err)
	return NewRepository(store, meta)
}

func ids(messages []Message) []int64 {
	out := make([]int64, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	return out
}

func TestWindowEndingAt(t *testing.T) {
	messages := chatFixture()
	repo := newTestRepository(t, newMemStore(messages...))
	ctx := context.Background()

	window, ok, err := repo.Window(ctx, messages[3], EndingAt, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int64{2, 3, 4}, ids(window))

	_, ok, err = repo.Window(ctx, messages[1], EndingAt, 3)
	require.NoError(t, err)
	assert.False(t, ok, "only two messages end at message 2")
}

func TestWindowStartingAt(t *testing.T) {
	messages := chatFixture()
	repo := newTestRepository(t, newMemStore(messages...))
	ctx := context.Background()

	window, ok, err := repo.Window(ctx, messages[2], StartingAt, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int64{3, 4, 5}, ids(window))

	_, ok, err = repo.Window(ctx, messages[3], StartingAt, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWindowOrdersByTimestampThenID(t *testing.T) {
	// ids are not in timestamp order and 3 and 4 share a timestamp
	messages := []Message{
		msg(1, 0, "A", "first"),
		msg(2, 10, "B", "late import"),
		msg(3, 5, "A", "tie one"),
		msg(4, 5, "B", "tie two"),
		msg(5, 20, "A", "last"),
	}
	repo := newTestRepository(t, newMemStore(messages...))

	window, ok, err := repo.Window(context.Background(), messages[1], EndingAt, 4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 3, 4, 2}, ids(window))

	window, ok, err = repo.Window(context.Background(), messages[2], StartingAt, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int64{3, 4, 2}, ids(window))
}

func TestRandomAnchorRespectsFilter(t *testing.T) {
	repo := newTestRepository(t, newMemStore(chatFixture()...))
	rng := NewRandom("anchor")

	found := 0
	for i := 0; i < 50; i++ {
		anchor, ok, err := repo.RandomAnchor(context.Background(), rng, MessageFilter{MinWords: 3})
		require.NoError(t, err)
		if ok {
			found++
			assert.Equal(t, int64(4), anchor.ID)
		}
	}
	assert.Positive(t, found)
}

func TestRepositoryPropagatesStoreErrors(t *testing.T) {
	store := newMemStore(chatFixture()...)
	repo := newTestRepository(t, store)
	store.err = errors.New("locked")

	_, _, err := repo.RandomAnchor(context.Background(), NewRandom("x"), MessageFilter{})
	assert.ErrorIs(t, err, store.err)

	_, _, err = repo.Window(context.Background(), chatFixture()[0], StartingAt, 2)
	assert.ErrorIs(t, err, store.err)
}
