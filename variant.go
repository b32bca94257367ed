package textback

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces candidate questions for one variant
type Generator interface {
	Variant() Variant

	// Bounds returns the window length limits of the questions this generator produces
	Bounds() WindowConfig

	// Generate draws one sample from rng. A Retry result asks the caller to try again with
	// fresh randomness; an error is fatal for the request.
	Generate(ctx context.Context, rng *Random) (Result, error)
}

// Result is the outcome of one generation attempt: either a question or a retry
type Result struct {
	question *Question
	reason   string
}

// Done wraps a finished question
func Done(q Question) Result {
	return Result{question: &q}
}

// Retry reports that the random draw did not yield a usable sample
func Retry(reason string) Result {
	return Result{reason: reason}
}

// Question returns the generated question, or false for a retry
func (r Result) Question() (Question, bool) {
	if r.question == nil {
		return Question{}, false
	}
	return *r.question, true
}

// Reason explains a retry
func (r Result) Reason() string {
	return r.reason
}

// WindowConfig bounds the number of messages shown in a question
type WindowConfig struct {
	MinMessages int `yaml:"min_messages"`
	MaxMessages int `yaml:"max_messages"`
}

func (c WindowConfig) drawSize(rng *Random) int {
	return rng.Range(c.MinMessages, c.MaxMessages+1)
}

func (c WindowConfig) validate(v Variant) error {
	if c.MinMessages < 2 {
		return fmt.Errorf("%s: min_messages must be at least 2, got %d", v, c.MinMessages)
	}
	if c.MaxMessages < c.MinMessages {
		return fmt.Errorf("%s: max_messages %d is below min_messages %d", v, c.MaxMessages, c.MinMessages)
	}
	return nil
}

// anchoredWindow draws an anchor matching filter and a window of random size around it
func anchoredWindow(ctx context.Context, repo *Repository, rng *Random, filter MessageFilter, bounds WindowConfig, mode WindowMode) (Message, []Message, bool, error) {
	anchor, ok, err := repo.RandomAnchor(ctx, rng, filter)
	if err != nil || !ok {
		return Message{}, nil, false, err
	}
	window, ok, err := repo.Window(ctx, anchor, mode, bounds.drawSize(rng))
	if err != nil || !ok {
		return Message{}, nil, false, err
	}
	return anchor, window, true, nil
}

// promptMessages renders a window one message per line as "name: text"
func promptMessages(window []Message) string {
	lines := make([]string, len(window))
	for i, m := range window {
		text := m.Text
		if text == "" {
			text = "<media/>"
		}
		lines[i] = fmt.Sprintf("%s: %s", m.Participant, text)
	}
	return strings.Join(lines, "\n")
}
