package textback

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.CreateTables())
	t.Cleanup(func() { db.CloseDB() })
	return db
}

func seedTestDB(t *testing.T, db *DB, messages ...Message) {
	t.Helper()
	for _, m := range messages {
		_, err := db.CreateMessage(context.Background(), m)
		require.NoError(t, err)
	}
}

func TestCreateMessage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	m := msg(0, 0, "Anna", "look at this")
	m.Words = 0
	m.Medias = []string{"photos/1.jpg", "photos/2.jpg"}
	m.Reactions = []Reaction{{Reaction: "😂", Participant: "Ben"}, {Reaction: "❤️", Participant: "Anna"}}

	id, err := db.CreateMessage(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, ok, err := db.FindAnchor(ctx, Ascending, 1, MessageFilter{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Anna", got.Participant)
	assert.Equal(t, 3, got.Words, "words are counted when missing")
	assert.True(t, got.Timestamp.Equal(baseTime))
	assert.Equal(t, m.Medias, got.Medias)
	assert.Equal(t, m.Reactions, got.Reactions)

	names, err := db.DistinctParticipantNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna", "Ben"}, names)
}

func TestCreateMessageRejectsEmpty(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.CreateMessage(context.Background(), msg(0, 0, "A", ""))
	assert.ErrorIs(t, err, ErrEmptyMessage)

	media := msg(0, 0, "A", "")
	media.Medias = []string{"video.mp4"}
	_, err = db.CreateMessage(context.Background(), media)
	assert.NoError(t, err, "a media message needs no text")
}

func TestFindAnchor(t *testing.T) {
	db := setupTestDB(t)
	messages := chatFixture()
	messages[1].Platform = PlatformInstagram
	messages[3].Reactions = []Reaction{{Reaction: "👍", Participant: "A"}}
	seedTestDB(t, db, messages...)
	ctx := context.Background()

	tests := []struct {
		name   string
		dir    Direction
		bound  int64
		filter MessageFilter
		want   int64 // 0 means no match
	}{
		{"ascending from bound", Ascending, 2, MessageFilter{}, 2},
		{"descending from bound", Descending, 3, MessageFilter{}, 3},
		{"ascending words", Ascending, 1, MessageFilter{MinWords: 2}, 3},
		{"descending words", Descending, 2, MessageFilter{MinWords: 2}, 0},
		{"platform", Ascending, 1, MessageFilter{Platform: PlatformInstagram}, 2},
		{"platform past match", Ascending, 3, MessageFilter{Platform: PlatformInstagram}, 0},
		{"reaction", Descending, 5, MessageFilter{HasReaction: true}, 4},
		{"combined", Ascending, 1, MessageFilter{MinWords: 2, HasReaction: true}, 4},
		{"beyond range", Ascending, 6, MessageFilter{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := db.FindAnchor(ctx, tt.dir, tt.bound, tt.filter)
			require.NoError(t, err)
			if tt.want == 0 {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestFindWindowTiesBrokenByID(t *testing.T) {
	db := setupTestDB(t)
	seedTestDB(t, db,
		msg(1, 0, "A", "first"),
		msg(2, 10, "B", "late import"),
		msg(3, 5, "A", "tie one"),
		msg(4, 5, "B", "tie two"),
		msg(5, 20, "A", "last"),
	)
	ctx := context.Background()

	anchor, ok, err := db.FindAnchor(ctx, Ascending, 4, MessageFilter{})
	require.NoError(t, err)
	require.True(t, ok)

	forward, err := db.FindWindow(ctx, Ascending, anchor, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2, 5}, ids(forward))

	backward, err := db.FindWindow(ctx, Descending, anchor, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 1}, ids(backward))
}

func TestSQLiteMatchesMemStore(t *testing.T) {
	db := setupTestDB(t)
	messages := reactionChat()
	seedTestDB(t, db, messages...)
	mem := newMemStore(messages...)
	ctx := context.Background()

	for _, dir := range []Direction{Ascending, Descending} {
		for _, anchor := range []Message{messages[0], messages[7], messages[19]} {
			want, err := mem.FindWindow(ctx, dir, anchor, 5)
			require.NoError(t, err)
			got, err := db.FindWindow(ctx, dir, anchor, 5)
			require.NoError(t, err)
			assert.Equal(t, ids(want), ids(got))
		}
	}
}

func TestAggregateAndDistinct(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.AggregateMessageRange(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)

	messages := chatFixture()
	messages[4].Platform = PlatformInstagram
	messages[2].Reactions = []Reaction{{Reaction: "😮", Participant: "B"}, {Reaction: "😂", Participant: "A"}}
	seedTestDB(t, db, messages...)

	r, err := db.AggregateMessageRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), r.Count)
	assert.Equal(t, int64(1), r.MinID)
	assert.Equal(t, int64(5), r.MaxID)
	assert.True(t, r.MinTimestamp.Equal(baseTime))
	assert.True(t, r.MaxTimestamp.Equal(messages[4].Timestamp))

	platforms, err := db.DistinctPlatforms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Platform{PlatformInstagram, PlatformMessenger}, platforms)

	reactions, err := db.DistinctReactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"😂", "😮"}, reactions)

	meta, err := ComputeMetadata(ctx, db, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, meta.Participants)
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   "))
	assert.Equal(t, 3, CountWords(" see  you\tsoon\n"))
}
