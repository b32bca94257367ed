package textback

import (
	"context"
)

// WhoConfig configures the who variant
type WhoConfig struct {
	WindowConfig `yaml:",inline"`

	// MinWords excludes anchors too short to attribute fairly
	MinWords int `yaml:"min_words"`
}

// DefaultWhoConfig returns the default who variant config
func DefaultWhoConfig() WhoConfig {
	return WhoConfig{
		WindowConfig: WindowConfig{MinMessages: 3, MaxMessages: 10},
		MinWords:     3,
	}
}

// WhoGenerator asks who sent the last message of a window
type WhoGenerator struct {
	repo   *Repository
	config WhoConfig
}

// NewWhoGenerator creates a who variant generator
func NewWhoGenerator(repo *Repository, config WhoConfig) *WhoGenerator {
	return &WhoGenerator{repo: repo, config: config}
}

func (g *WhoGenerator) Variant() Variant     { return VariantWho }
func (g *WhoGenerator) Bounds() WindowConfig { return g.config.WindowConfig }

func (g *WhoGenerator) Generate(ctx context.Context, rng *Random) (Result, error) {
	filter := MessageFilter{MinWords: g.config.MinWords}
	anchor, window, ok, err := anchoredWindow(ctx, g.repo, rng, filter, g.config.WindowConfig, EndingAt)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Retry("no who window"), nil
	}

	last := window[len(window)-1]
	if last.Text != anchor.Text {
		return Retry("window does not end at anchor"), nil
	}

	participants := append([]string(nil), g.repo.Metadata().Participants...)
	return Done(Question{
		Variant:  VariantWho,
		Answer:   last.Participant,
		Choices:  Shuffle(rng, participants),
		Messages: convertMessages(window),
	}), nil
}
