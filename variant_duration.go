package textback

import (
	"context"
	"fmt"
	"math"
)

// DurationConfig configures the duration variant
type DurationConfig struct {
	WindowConfig `yaml:",inline"`

	// BufferMessages is how many extra messages are fetched so that a participant change can be
	// found near the anchor.
	BufferMessages int `yaml:"buffer_messages"`

	// MinDurationMs and MaxDurationMs bound the answer floor and every alternative.
	MinDurationMs float64 `yaml:"min_duration_ms"`
	MaxDurationMs float64 `yaml:"max_duration_ms"`

	// MinScaleFactor and MaxScaleFactor bound the factor applied to the answer when scaling it up
	// or down into an alternative.
	MinScaleFactor float64 `yaml:"min_scale_factor"`
	MaxScaleFactor float64 `yaml:"max_scale_factor"`

	// MaxAlternativeAttempts bounds the redraws of an alternative that renders like the answer.
	MaxAlternativeAttempts int `yaml:"max_alternative_attempts"`
}

// DefaultDurationConfig returns the default duration variant config
func DefaultDurationConfig() DurationConfig {
	return DurationConfig{
		WindowConfig:           WindowConfig{MinMessages: 3, MaxMessages: 10},
		BufferMessages:         10,
		MinDurationMs:          1000,
		MaxDurationMs:          7 * 24 * 3600 * 1000,
		MinScaleFactor:         1,
		MaxScaleFactor:         100,
		MaxAlternativeAttempts: 100,
	}
}

func (c DurationConfig) validate() error {
	if err := c.WindowConfig.validate(VariantDuration); err != nil {
		return err
	}
	if c.BufferMessages < 0 {
		return fmt.Errorf("duration: buffer_messages must not be negative")
	}
	if c.MinDurationMs <= 0 || c.MaxDurationMs <= c.MinDurationMs {
		return fmt.Errorf("duration: need 0 < min_duration_ms < max_duration_ms")
	}
	if c.MinScaleFactor < 1 || c.MaxScaleFactor <= c.MinScaleFactor {
		return fmt.Errorf("duration: need 1 <= min_scale_factor < max_scale_factor")
	}
	if c.MaxAlternativeAttempts <= 0 {
		return fmt.Errorf("duration: max_alternative_attempts must be positive")
	}
	return nil
}

// DurationGenerator asks how long it took for the last message of a window to arrive
type DurationGenerator struct {
	repo   *Repository
	config DurationConfig
}

// NewDurationGenerator creates a duration variant generator
func NewDurationGenerator(repo *Repository, config DurationConfig) *DurationGenerator {
	return &DurationGenerator{repo: repo, config: config}
}

func (g *DurationGenerator) Variant() Variant     { return VariantDuration }
func (g *DurationGenerator) Bounds() WindowConfig { return g.config.WindowConfig }

// Generate fetches a buffered window forward from a random anchor and slides a fixed size
// window over it until its last two messages are from different participants.
func (g *DurationGenerator) Generate(ctx context.Context, rng *Random) (Result, error) {
	anchor, ok, err := g.repo.RandomAnchor(ctx, rng, MessageFilter{})
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Retry("no anchor message"), nil
	}

	size := g.config.drawSize(rng)
	buffered, ok, err := g.repo.Window(ctx, anchor, StartingAt, size+g.config.BufferMessages)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Retry("not enough messages after anchor"), nil
	}

	start := -1
	for i := 0; i+size <= len(buffered); i++ {
		if buffered[i+size-1].Participant != buffered[i+size-2].Participant {
			start = i
			break
		}
	}
	if start < 0 {
		return Retry("no participant change in buffered window"), nil
	}
	window := buffered[start : start+size]

	last, prev := window[size-1], window[size-2]
	answer := math.Max(float64(last.Timestamp.Sub(prev.Timestamp).Milliseconds()), g.config.MinDurationMs)
	alternative, ok := g.alternative(rng, answer)
	if !ok {
		return Retry("no distinct duration alternative"), nil
	}

	durations := Shuffle(rng, []float64{answer, alternative})
	choices := make([]string, len(durations))
	for i, d := range durations {
		choices[i] = HumanizeDuration(d)
	}

	return Done(Question{
		Variant:   VariantDuration,
		Answer:    HumanizeDuration(answer),
		Choices:   choices,
		Messages:  convertMessages(window),
		Recipient: last.Participant,
	}), nil
}

// alternative scales the answer up or down by a random factor, clamped so the result stays
// within the configured duration range, until its rendering differs from the answer.
func (g *DurationGenerator) alternative(rng *Random, answer float64) (float64, bool) {
	downMax := math.Min(g.config.MaxScaleFactor, answer/g.config.MinDurationMs)
	downMin := math.Min(g.config.MinScaleFactor, downMax)
	upMax := math.Min(g.config.MaxScaleFactor, g.config.MaxDurationMs/answer)
	upMin := math.Min(g.config.MinScaleFactor, upMax)

	rendered := HumanizeDuration(answer)
	for attempt := 0; attempt < g.config.MaxAlternativeAttempts; attempt++ {
		var alternative float64
		if rng.Bool() {
			alternative = answer / rng.Uniform(downMin, downMax)
		} else {
			alternative = answer * rng.Uniform(upMin, upMax)
		}
		if HumanizeDuration(alternative) != rendered {
			return alternative, true
		}
	}
	return 0, false
}
