package textback

import (
	"strings"
	"unicode"
)

// SameChoice reports whether two rendered choices would look the same to a player. Case,
// surrounding punctuation and runs of whitespace are ignored.
func SameChoice(a, b string) bool {
	return normalizeChoice(a) == normalizeChoice(b)
}

func normalizeChoice(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	return strings.ToLower(s)
}

// cleanAlternative strips whitespace and a pair of wrapping quotes that models like to add
func cleanAlternative(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, "'", "“"} {
		closing := q
		if q == "“" {
			closing = "”"
		}
		if len(s) >= len(q)+len(closing) && strings.HasPrefix(s, q) && strings.HasSuffix(s, closing) {
			s = strings.TrimSpace(s[len(q) : len(s)-len(closing)])
			break
		}
	}
	return s
}

// hasDuplicateChoice reports whether two choices render to the same string
func hasDuplicateChoice(choices []string) bool {
	seen := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		if _, ok := seen[c]; ok {
			return true
		}
		seen[c] = struct{}{}
	}
	return false
}
