package textback

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var baseTime = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

// msg builds a message sent minutes after baseTime
func msg(id int64, minutes float64, participant, text string) Message {
	return Message{
		ID:          id,
		Timestamp:   baseTime.Add(time.Duration(minutes * float64(time.Minute))),
		Participant: participant,
		Platform:    PlatformMessenger,
		Text:        text,
		Words:       CountWords(text),
	}
}

// memStore is an in-memory Store with the same ordering rules as the SQLite store
type memStore struct {
	messages []Message // ascending id
	err      error
	calls    int
}

var _ Store = (*memStore)(nil)

func newMemStore(messages ...Message) *memStore {
	s := &memStore{messages: append([]Message(nil), messages...)}
	sort.Slice(s.messages, func(i, j int) bool { return s.messages[i].ID < s.messages[j].ID })
	return s
}

func (s *memStore) FindAnchor(ctx context.Context, dir Direction, idBound int64, filter MessageFilter) (Message, bool, error) {
	s.calls++
	if s.err != nil {
		return Message{}, false, s.err
	}
	if dir == Ascending {
		for _, m := range s.messages {
			if m.ID >= idBound && filter.Matches(m) {
				return m, true, nil
			}
		}
		return Message{}, false, nil
	}
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.ID <= idBound && filter.Matches(m) {
			return m, true, nil
		}
	}
	return Message{}, false, nil
}

func before(a, b Message) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}

func (s *memStore) FindWindow(ctx context.Context, dir Direction, anchor Message, limit int) ([]Message, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	sorted := append([]Message(nil), s.messages...)
	sort.Slice(sorted, func(i, j int) bool { return before(sorted[i], sorted[j]) })
	if dir == Descending {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}

	var out []Message
	for _, m := range sorted {
		onSide := !before(m, anchor)
		if dir == Descending {
			onSide = !before(anchor, m)
		}
		if onSide {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) AggregateMessageRange(ctx context.Context) (MessageRange, error) {
	if s.err != nil {
		return MessageRange{}, s.err
	}
	if len(s.messages) == 0 {
		return MessageRange{}, nil
	}
	r := MessageRange{
		Count:        int64(len(s.messages)),
		MinID:        s.messages[0].ID,
		MaxID:        s.messages[len(s.messages)-1].ID,
		MinTimestamp: s.messages[0].Timestamp,
		MaxTimestamp: s.messages[0].Timestamp,
	}
	for _, m := range s.messages {
		if m.Timestamp.Before(r.MinTimestamp) {
			r.MinTimestamp = m.Timestamp
		}
		if m.Timestamp.After(r.MaxTimestamp) {
			r.MaxTimestamp = m.Timestamp
		}
	}
	return r, nil
}

func distinct(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func (s *memStore) DistinctPlatforms(ctx context.Context) ([]Platform, error) {
	var names []string
	for _, m := range s.messages {
		names = append(names, string(m.Platform))
	}
	var out []Platform
	for _, n := range distinct(names) {
		out = append(out, Platform(n))
	}
	return out, s.err
}

func (s *memStore) DistinctParticipantNames(ctx context.Context) ([]string, error) {
	var names []string
	for _, m := range s.messages {
		names = append(names, m.Participant)
		for _, r := range m.Reactions {
			names = append(names, r.Participant)
		}
	}
	return distinct(names), s.err
}

func (s *memStore) DistinctReactions(ctx context.Context) ([]string, error) {
	var reactions []string
	for _, m := range s.messages {
		for _, r := range m.Reactions {
			reactions = append(reactions, r.Reaction)
		}
	}
	return distinct(reactions), s.err
}

// chatFixture is the five message conversation used throughout the tests. Message 4 is the
// only message with three or more words.
func chatFixture() []Message {
	messages := []Message{
		msg(1, 0, "A", "hi"),
		msg(2, 1, "B", "hey"),
		msg(3, 5, "A", "what's up"),
		msg(4, 6, "B", "not much"),
		msg(5, 60, "A", "bye"),
	}
	messages[3].Words = 3
	return messages
}

func TestMessageFilterMatches(t *testing.T) {
	m := msg(1, 0, "A", "one two three")
	m.Platform = PlatformInstagram

	assert.True(t, MessageFilter{}.Matches(m))
	assert.True(t, MessageFilter{Platform: PlatformInstagram, MinWords: 3}.Matches(m))
	assert.False(t, MessageFilter{Platform: PlatformMessenger}.Matches(m))
	assert.False(t, MessageFilter{MinWords: 4}.Matches(m))
	assert.False(t, MessageFilter{HasReaction: true}.Matches(m))

	m.Reactions = []Reaction{{Reaction: "❤️", Participant: "B"}}
	assert.True(t, MessageFilter{HasReaction: true}.Matches(m))
}
