package textback

import (
	"context"
	"fmt"
	"strings"
)

// TextConfig configures the continue and next variants
type TextConfig struct {
	WindowConfig `yaml:",inline"`

	// MinWords is exclusive: the anchor needs more words than this
	MinWords int `yaml:"min_words"`
}

// DefaultContinueConfig returns the default continue variant config
func DefaultContinueConfig() TextConfig {
	return TextConfig{WindowConfig: WindowConfig{MinMessages: 3, MaxMessages: 10}, MinWords: 1}
}

// DefaultNextConfig returns the default next variant config
func DefaultNextConfig() TextConfig {
	return TextConfig{WindowConfig: WindowConfig{MinMessages: 3, MaxMessages: 10}, MinWords: 0}
}

// TextGenerator asks which text is the real last message of a window. It backs both the
// continue variant and the looser next variant.
type TextGenerator struct {
	variant  Variant
	repo     *Repository
	provider AlternativeProvider
	config   TextConfig
}

// NewContinueGenerator creates a continue variant generator
func NewContinueGenerator(repo *Repository, provider AlternativeProvider, config TextConfig) *TextGenerator {
	return &TextGenerator{variant: VariantContinue, repo: repo, provider: provider, config: config}
}

// NewNextGenerator creates a next variant generator
func NewNextGenerator(repo *Repository, provider AlternativeProvider, config TextConfig) *TextGenerator {
	return &TextGenerator{variant: VariantNext, repo: repo, provider: provider, config: config}
}

func (g *TextGenerator) Variant() Variant     { return g.variant }
func (g *TextGenerator) Bounds() WindowConfig { return g.config.WindowConfig }

func (g *TextGenerator) Generate(ctx context.Context, rng *Random) (Result, error) {
	filter := MessageFilter{MinWords: g.config.MinWords + 1}
	_, window, ok, err := anchoredWindow(ctx, g.repo, rng, filter, g.config.WindowConfig, EndingAt)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Retry("no text window"), nil
	}

	last := window[len(window)-1]
	answer := last.Text
	if answer == "" {
		return Retry("last message has no text"), nil
	}

	response, err := g.provider.Alternative(ctx, rng.ModelSeed(), g.prompt(window))
	if err != nil {
		return Result{}, fmt.Errorf("failed to get %s alternative: %w", g.variant, err)
	}
	alternative := cleanAlternative(response)
	if reason := g.rejectAlternative(alternative, answer); reason != "" {
		VerboseLog("%s: rejected alternative %q: %s", g.variant, response, reason)
		return Retry(reason), nil
	}

	return Done(Question{
		Variant:   g.variant,
		Answer:    answer,
		Choices:   Shuffle(rng, []string{answer, alternative}),
		Messages:  convertMessages(window),
		Recipient: last.Participant,
	}), nil
}

// rejectAlternative returns why a model response cannot be used, or "" when it can
func (g *TextGenerator) rejectAlternative(alternative, answer string) string {
	switch {
	case alternative == "":
		return "empty alternative"
	case strings.ContainsAny(alternative, "\r\n"):
		return "multi-line alternative"
	case strings.Contains(alternative, "<media/>"):
		return "alternative contains media tag"
	case SameChoice(alternative, answer):
		return "alternative equals answer"
	}
	for _, name := range g.repo.Metadata().Participants {
		if strings.HasPrefix(alternative, name+":") {
			return "alternative has participant prefix"
		}
	}
	return ""
}

func (g *TextGenerator) prompt(window []Message) string {
	var sb strings.Builder

	sb.WriteString("You will be given a sequence of messages in <messages></messages>. ")
	sb.WriteString("Each line begins with the participant name, followed by the message. ")
	sb.WriteString("The message may contain the <media/> tag to indicate that it is a media message.\n\n")

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Provide an alternative to the last message, matching the surrounding style and tone\n")
	if g.variant == VariantContinue {
		sb.WriteString("- The alternative must be similar in length and content to the last message\n")
		sb.WriteString("- You are not responding to the last message, only giving an alternative to it\n")
	} else {
		sb.WriteString("- The last message is on the line before </messages>\n")
		sb.WriteString("- Assume the alternative is from the same participant as the last message\n")
	}
	sb.WriteString("- The alternative must only consist of text on a single line\n")
	sb.WriteString("- Do not include links or the <media/> tag\n")
	sb.WriteString("- Do not include the participant name\n")
	sb.WriteString("- The alternative must be different from the last message\n")
	sb.WriteString("- Keep the alternative informal, potentially omitting punctuation as necessary\n\n")

	sb.WriteString("<messages>\n")
	sb.WriteString(promptMessages(window))
	sb.WriteString("\n</messages>\n")

	return sb.String()
}
