package textback

import (
	"context"
)

// PlatformConfig configures the platform variant
type PlatformConfig struct {
	WindowConfig `yaml:",inline"`

	// MinWords excludes short anchors such as bare links
	MinWords int `yaml:"min_words"`
}

// DefaultPlatformConfig returns the default platform variant config
func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		WindowConfig: WindowConfig{MinMessages: 3, MaxMessages: 10},
		MinWords:     2,
	}
}

// PlatformGenerator asks which platform the last message of a window was sent on
type PlatformGenerator struct {
	repo   *Repository
	config PlatformConfig
}

// NewPlatformGenerator creates a platform variant generator
func NewPlatformGenerator(repo *Repository, config PlatformConfig) *PlatformGenerator {
	return &PlatformGenerator{repo: repo, config: config}
}

func (g *PlatformGenerator) Variant() Variant     { return VariantPlatform }
func (g *PlatformGenerator) Bounds() WindowConfig { return g.config.WindowConfig }

// Generate first picks a platform so every platform is asked about equally often, then an
// anchor with enough words from that platform.
func (g *PlatformGenerator) Generate(ctx context.Context, rng *Random) (Result, error) {
	platforms := g.repo.Metadata().Platforms
	if len(platforms) < 2 {
		return Retry("fewer than two platforms"), nil
	}

	platform, err := Choice(rng, platforms)
	if err != nil {
		return Result{}, err
	}
	filter := MessageFilter{Platform: platform, MinWords: g.config.MinWords}
	_, window, ok, err := anchoredWindow(ctx, g.repo, rng, filter, g.config.WindowConfig, EndingAt)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Retry("no platform window"), nil
	}

	answer := window[len(window)-1].Platform
	others := make([]Platform, 0, len(platforms)-1)
	for _, p := range platforms {
		if p != answer {
			others = append(others, p)
		}
	}
	alternative, err := Choice(rng, others)
	if err != nil {
		return Result{}, err
	}

	options := Shuffle(rng, []Platform{answer, alternative})
	choices := make([]string, len(options))
	for i, p := range options {
		choices[i] = FormatPlatform(p)
	}

	return Done(Question{
		Variant:  VariantPlatform,
		Answer:   FormatPlatform(answer),
		Choices:  choices,
		Messages: convertMessages(window),
	}), nil
}
