package textback

import (
	"context"
	"fmt"
	"strings"
)

// ReactConfig configures the react variant
type ReactConfig struct {
	WindowConfig `yaml:",inline"`
}

// DefaultReactConfig returns the default react variant config
func DefaultReactConfig() ReactConfig {
	return ReactConfig{WindowConfig: WindowConfig{MinMessages: 3, MaxMessages: 10}}
}

// ReactGenerator asks which reaction the last message of a window received
type ReactGenerator struct {
	repo     *Repository
	provider AlternativeProvider
	config   ReactConfig
}

// NewReactGenerator creates a react variant generator
func NewReactGenerator(repo *Repository, provider AlternativeProvider, config ReactConfig) *ReactGenerator {
	return &ReactGenerator{repo: repo, provider: provider, config: config}
}

func (g *ReactGenerator) Variant() Variant     { return VariantReact }
func (g *ReactGenerator) Bounds() WindowConfig { return g.config.WindowConfig }

func (g *ReactGenerator) Generate(ctx context.Context, rng *Random) (Result, error) {
	filter := MessageFilter{HasReaction: true}
	_, window, ok, err := anchoredWindow(ctx, g.repo, rng, filter, g.config.WindowConfig, EndingAt)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Retry("no react window"), nil
	}

	last := window[len(window)-1]
	if len(last.Reactions) == 0 {
		return Retry("last message has no reaction"), nil
	}
	answer := last.Reactions[0].Reaction

	response, err := g.provider.Alternative(ctx, rng.ModelSeed(), g.prompt(window, answer))
	if err != nil {
		return Result{}, fmt.Errorf("failed to get reaction alternative: %w", err)
	}
	alternative := cleanAlternative(response)
	if !isSingleEmoji(alternative) || alternative == answer {
		VerboseLog("react: rejected alternative %q for answer %q", response, answer)
		return Retry("invalid reaction alternative"), nil
	}

	return Done(Question{
		Variant:   VariantReact,
		Answer:    answer,
		Choices:   Shuffle(rng, []string{answer, alternative}),
		Messages:  convertMessages(window),
		Recipient: last.Reactions[0].Participant,
	}), nil
}

func (g *ReactGenerator) prompt(window []Message, answer string) string {
	var sb strings.Builder

	sb.WriteString("You will be given a sequence of messages in <messages></messages>. ")
	sb.WriteString("Each line begins with the participant name, followed by the message. ")
	sb.WriteString("The message may contain the <media/> tag to indicate that it is a media message. ")
	sb.WriteString("You will be given a reaction to the last message in <reaction></reaction>. ")
	sb.WriteString("You will be given a set of commonly used reactions in <reactions></reactions>.\n\n")

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Provide one alternative reaction to the last message\n")
	sb.WriteString("- The alternative must be a single emoji and nothing else\n")
	sb.WriteString("- The alternative must be different from the existing reaction\n")
	sb.WriteString("- Prefer the given reactions and take the conversation into account\n\n")

	sb.WriteString("<messages>\n")
	sb.WriteString(promptMessages(window))
	sb.WriteString("\n</messages>\n\n")
	sb.WriteString("<reaction>\n" + answer + "\n</reaction>\n\n")
	sb.WriteString("<reactions>\n")
	sb.WriteString(strings.Join(g.repo.Metadata().Reactions, "\n"))
	sb.WriteString("\n</reactions>\n")

	return sb.String()
}
