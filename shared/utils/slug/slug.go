// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases the name, turns spaces into dashes and strips any other
// punctuation: "Acme Corp." becomes "acme-corp".
func Make(name string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(ch) || unicode.IsDigit(ch):
			b.WriteRune(ch)
		case unicode.IsSpace(ch) || ch == '-':
			b.WriteRune('-')
		}
	}

	// Collapse runs of dashes left by consecutive spaces
	result := b.String()
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	return strings.Trim(result, "-")
}
