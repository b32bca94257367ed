package textback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validQuestion() Question {
	window := convertMessages(chatFixture()[1:4])
	return Question{
		Variant:  VariantWho,
		Answer:   "B",
		Choices:  []string{"B", "A"},
		Messages: window,
	}
}

func TestCheckQuestion(t *testing.T) {
	checker := NewQuestionChecker(&Metadata{Participants: []string{"A", "B"}})
	bounds := WindowConfig{MinMessages: 3, MaxMessages: 10}

	tests := []struct {
		name   string
		modify func(q *Question)
		action ValidationAction
	}{
		{"valid", func(q *Question) {}, ActionAccept},
		{"one choice", func(q *Question) { q.Choices = []string{"B"} }, ActionReject},
		{"duplicate choices", func(q *Question) { q.Choices = []string{"B", "A", "A"} }, ActionReject},
		{"answer missing", func(q *Question) { q.Answer = "C" }, ActionReject},
		{"short window", func(q *Question) { q.Messages = q.Messages[:2] }, ActionReject},
		{"out of order", func(q *Question) {
			q.Messages[0], q.Messages[2] = q.Messages[2], q.Messages[0]
		}, ActionReject},
		{"tie broken by id", func(q *Question) {
			q.Messages[1].Date = q.Messages[0].Date
		}, ActionAccept},
		{"tie out of id order", func(q *Question) {
			q.Messages[1].Date = q.Messages[0].Date
			q.Messages[0].ID, q.Messages[1].ID = q.Messages[1].ID, q.Messages[0].ID
		}, ActionReject},
		{"who choices are not the participants", func(q *Question) {
			q.Choices = []string{"B", "C"}
		}, ActionReject},
		{"other variants may use any choices", func(q *Question) {
			q.Variant = VariantContinue
			q.Answer = "not much"
			q.Choices = []string{"not much", "so much"}
		}, ActionAccept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.modify(&q)
			result := checker.CheckQuestion(q, bounds)
			assert.Equal(t, tt.action, result.Action, result.Reason)
		})
	}
}

func TestSameChoice(t *testing.T) {
	assert.True(t, SameChoice("See you soon!", "see you  soon"))
	assert.True(t, SameChoice("  ok ", "OK."))
	assert.False(t, SameChoice("see you soon", "see you later"))
	assert.False(t, SameChoice("it's", "its"))
}

func TestCleanAlternative(t *testing.T) {
	assert.Equal(t, "hello there", cleanAlternative(`  "hello there" `))
	assert.Equal(t, "hello there", cleanAlternative("'hello there'"))
	assert.Equal(t, "hello there", cleanAlternative("“hello there”"))
	assert.Equal(t, `he said "hi"`, cleanAlternative(`he said "hi"`))
	assert.Equal(t, `"`, cleanAlternative(`"`))
}

func TestHasDuplicateChoice(t *testing.T) {
	assert.False(t, hasDuplicateChoice([]string{"Anna", "anna"}))
	assert.True(t, hasDuplicateChoice([]string{"2 days", "1 day", "2 days"}))
	assert.False(t, hasDuplicateChoice(nil))
}

func TestIsSingleEmoji(t *testing.T) {
	for _, s := range []string{"👍", "❤️", "😂", " 😮 ", "👍🏽", "👨‍👩‍👧"} {
		assert.True(t, isSingleEmoji(s), s)
	}
	for _, s := range []string{"", "👍👍", "ok", "a", ":)", "👍 nice"} {
		assert.False(t, isSingleEmoji(s), s)
	}
}
