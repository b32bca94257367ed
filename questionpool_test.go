package textback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionCacheEvictsOldest(t *testing.T) {
	cache := NewQuestionCache(2)

	cache.Add("one", "", Question{Answer: "1"})
	cache.Add("two", "", Question{Answer: "2"})
	cache.Add("two", "", Question{Answer: "2 again"})
	assert.Equal(t, 2, cache.Size())

	cache.Add("three", "", Question{Answer: "3"})
	assert.Equal(t, 2, cache.Size())

	_, ok := cache.Get("one", "")
	assert.False(t, ok)
	q, ok := cache.Get("two", "")
	require.True(t, ok)
	assert.Equal(t, "2 again", q.Answer)
}

func TestQuestionCacheKeysByVariant(t *testing.T) {
	cache := NewQuestionCache(10)
	cache.Add("seed", "", Question{Variant: VariantWho})
	cache.Add("seed", VariantWhen, Question{Variant: VariantWhen})

	q, ok := cache.Get("seed", VariantWhen)
	require.True(t, ok)
	assert.Equal(t, VariantWhen, q.Variant)

	_, ok = cache.Get("seed", VariantWho)
	assert.False(t, ok)
}

func TestQuestionCacheReturnsCopies(t *testing.T) {
	cache := NewQuestionCache(1)
	original := Question{Choices: []string{"A", "B"}, Messages: []QuestionMessage{{ID: 1}}}
	cache.Add("seed", "", original)
	original.Choices[0] = "mutated"

	q, ok := cache.Get("seed", "")
	require.True(t, ok)
	q.Messages[0].ID = 99

	again, _ := cache.Get("seed", "")
	assert.Equal(t, []string{"A", "B"}, again.Choices)
	assert.Equal(t, int64(1), again.Messages[0].ID)
}

func TestQuestionCacheDisabled(t *testing.T) {
	cache := NewQuestionCache(0)
	cache.Add("seed", "", Question{})
	_, ok := cache.Get("seed", "")
	assert.False(t, ok)
	assert.Zero(t, cache.Size())
}
