package textback

import (
	"context"
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// WhenConfig configures the when variant
type WhenConfig struct {
	WindowConfig `yaml:",inline"`

	// MinDeltaDays and MaxDeltaDays bound how far the alternative date moves from the answer
	MinDeltaDays int `yaml:"min_delta_days"`
	MaxDeltaDays int `yaml:"max_delta_days"`
}

// DefaultWhenConfig returns the default when variant config
func DefaultWhenConfig() WhenConfig {
	return WhenConfig{
		WindowConfig: WindowConfig{MinMessages: 3, MaxMessages: 10},
		MinDeltaDays: 1,
		MaxDeltaDays: 365,
	}
}

func (c WhenConfig) validate() error {
	if err := c.WindowConfig.validate(VariantWhen); err != nil {
		return err
	}
	if c.MinDeltaDays < 1 || c.MaxDeltaDays < c.MinDeltaDays {
		return fmt.Errorf("when: need 1 <= min_delta_days <= max_delta_days")
	}
	return nil
}

// WhenGenerator asks on which date the last message of a window was sent. It is the only
// variant whose window runs forward from the anchor.
type WhenGenerator struct {
	repo     *Repository
	config   WhenConfig
	location *time.Location
}

// NewWhenGenerator creates a when variant generator rendering dates in loc
func NewWhenGenerator(repo *Repository, config WhenConfig, loc *time.Location) *WhenGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &WhenGenerator{repo: repo, config: config, location: loc}
}

func (g *WhenGenerator) Variant() Variant     { return VariantWhen }
func (g *WhenGenerator) Bounds() WindowConfig { return g.config.WindowConfig }

func (g *WhenGenerator) Generate(ctx context.Context, rng *Random) (Result, error) {
	_, window, ok, err := anchoredWindow(ctx, g.repo, rng, MessageFilter{}, g.config.WindowConfig, StartingAt)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Retry("no when window"), nil
	}

	answer := window[len(window)-1].Timestamp
	alternative, ok := g.alternative(rng, answer)
	if !ok {
		return Retry("corpus too short for a date alternative"), nil
	}

	rendered := FormatDate(answer, g.location)
	dates := Shuffle(rng, []time.Time{answer, alternative})
	choices := make([]string, len(dates))
	for i, d := range dates {
		choices[i] = FormatDate(d, g.location)
	}
	if choices[0] == choices[1] {
		return Retry("date alternative renders like the answer"), nil
	}

	return Done(Question{
		Variant:  VariantWhen,
		Answer:   rendered,
		Choices:  choices,
		Messages: convertMessages(window),
	}), nil
}

// alternative shifts the answer by a whole number of days, forward or backward, keeping the
// result inside the corpus time range. The feasible shifts shrink as the answer nears either
// end of the corpus.
func (g *WhenGenerator) alternative(rng *Random, answer time.Time) (time.Time, bool) {
	meta := g.repo.Metadata()
	daysBack := int(math.Floor(float64(answer.Sub(meta.MinTimestamp)) / float64(day)))
	daysForward := int(math.Floor(float64(meta.MaxTimestamp.Sub(answer)) / float64(day)))

	backMax := min(g.config.MaxDeltaDays, daysBack)
	forwardMax := min(g.config.MaxDeltaDays, daysForward)
	canBack := backMax >= g.config.MinDeltaDays
	canForward := forwardMax >= g.config.MinDeltaDays

	var forward bool
	switch {
	case canBack && canForward:
		forward = rng.Bool()
	case canForward:
		forward = true
	case canBack:
		forward = false
	default:
		return time.Time{}, false
	}

	if forward {
		delta := rng.Range(g.config.MinDeltaDays, forwardMax+1)
		return answer.Add(time.Duration(delta) * day), true
	}
	delta := rng.Range(g.config.MinDeltaDays, backMax+1)
	return answer.Add(-time.Duration(delta) * day), true
}
