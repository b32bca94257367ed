package textback

import (
	"sync"
)

// QuestionCache keeps recently generated questions by seed and variant. Generation is
// deterministic for an unchanged store, so a cached question is the one that would be
// generated again. The oldest entry is evicted first.
type QuestionCache struct {
	mu        sync.RWMutex
	capacity  int
	questions map[string]Question
	queue     []string // FIFO queue of cache keys
}

// NewQuestionCache creates a cache holding at most capacity questions. A capacity of zero or
// less disables caching.
func NewQuestionCache(capacity int) *QuestionCache {
	return &QuestionCache{
		capacity:  capacity,
		questions: make(map[string]Question),
		queue:     make([]string, 0),
	}
}

func cacheKey(seed string, variant Variant) string {
	return seed + "|" + string(variant)
}

// Add stores a question under its seed and the requested variant. variant is empty when the
// variant was drawn from the seed.
func (qc *QuestionCache) Add(seed string, variant Variant, q Question) {
	if qc.capacity <= 0 {
		return
	}
	qc.mu.Lock()
	defer qc.mu.Unlock()

	key := cacheKey(seed, variant)
	if _, ok := qc.questions[key]; !ok {
		qc.queue = append(qc.queue, key)
	}
	qc.questions[key] = cloneQuestion(q)

	for len(qc.queue) > qc.capacity {
		delete(qc.questions, qc.queue[0])
		qc.queue = qc.queue[1:]
	}
}

// Get returns the cached question for seed and variant
func (qc *QuestionCache) Get(seed string, variant Variant) (Question, bool) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	q, ok := qc.questions[cacheKey(seed, variant)]
	if !ok {
		return Question{}, false
	}
	return cloneQuestion(q), true
}

// Size returns the number of cached questions
func (qc *QuestionCache) Size() int {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	return len(qc.queue)
}

// cloneQuestion copies the slices so callers cannot mutate cached entries
func cloneQuestion(q Question) Question {
	q.Choices = append([]string(nil), q.Choices...)
	q.Messages = append([]QuestionMessage(nil), q.Messages...)
	return q
}
