package normalize

import (
	"strings"
	"unicode"
)

// CleanText collapses whitespace runs into single spaces and strips control
// characters. Idempotent.
func CleanText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	space := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
