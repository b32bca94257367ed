package textback

import (
	"fmt"
	"slices"
)

// ValidationAction represents the checker's decision on a generated question
type ValidationAction string

const (
	ActionAccept ValidationAction = "accept"
	ActionReject ValidationAction = "reject"
)

// ValidationResult represents the result of checking a question
type ValidationResult struct {
	Action ValidationAction
	Reason string
}

func accept() ValidationResult {
	return ValidationResult{Action: ActionAccept, Reason: "ok"}
}

func reject(format string, args ...interface{}) ValidationResult {
	return ValidationResult{Action: ActionReject, Reason: fmt.Sprintf(format, args...)}
}

// QuestionChecker verifies the structural guarantees every served question must meet
type QuestionChecker struct {
	meta *Metadata
}

// NewQuestionChecker creates a checker against the corpus metadata
func NewQuestionChecker(meta *Metadata) *QuestionChecker {
	return &QuestionChecker{meta: meta}
}

// CheckQuestion validates a question produced with the given window bounds
func (qc *QuestionChecker) CheckQuestion(q Question, bounds WindowConfig) ValidationResult {
	if len(q.Choices) < 2 {
		return reject("only %d choices", len(q.Choices))
	}
	if hasDuplicateChoice(q.Choices) {
		return reject("duplicate choices %q", q.Choices)
	}

	count := 0
	for _, c := range q.Choices {
		if c == q.Answer {
			count++
		}
	}
	if count != 1 {
		return reject("answer %q appears %d times in choices", q.Answer, count)
	}

	if n := len(q.Messages); n < bounds.MinMessages || n > bounds.MaxMessages {
		return reject("window of %d messages outside [%d, %d]", n, bounds.MinMessages, bounds.MaxMessages)
	}
	for i := 1; i < len(q.Messages); i++ {
		prev, cur := q.Messages[i-1], q.Messages[i]
		if cur.Date.Before(prev.Date) || (cur.Date.Equal(prev.Date) && cur.ID < prev.ID) {
			return reject("messages out of order at %d", i)
		}
	}

	if q.Variant == VariantWho && qc.meta != nil {
		choices := slices.Clone(q.Choices)
		slices.Sort(choices)
		if !slices.Equal(choices, qc.meta.Participants) {
			return reject("who choices %q are not the participants", q.Choices)
		}
	}

	return accept()
}
