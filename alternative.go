package textback

import (
	"context"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// AlternativeProvider produces a plausible but wrong choice from a prompt. The seed is derived
// from the question's random stream so a deterministic provider keeps questions reproducible.
type AlternativeProvider interface {
	Alternative(ctx context.Context, seed int64, prompt string) (string, error)
}

// AlternativeProviderFunc adapts a function to AlternativeProvider
type AlternativeProviderFunc func(ctx context.Context, seed int64, prompt string) (string, error)

func (f AlternativeProviderFunc) Alternative(ctx context.Context, seed int64, prompt string) (string, error) {
	return f(ctx, seed, prompt)
}

// isSingleEmoji reports whether s is exactly one grapheme cluster that starts with a pictographic
// symbol. Variation selectors and skin tone modifiers stay inside the single cluster.
func isSingleEmoji(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || uniseg.GraphemeClusterCount(s) != 1 {
		return false
	}
	r := []rune(s)[0]
	return unicode.Is(unicode.So, r) || (r >= 0x1F000 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x27BF)
}
