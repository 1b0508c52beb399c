package clips

import (
	"strings"
	"unicode"
)

// PreviewLength is the maximum preview length in runes.
const PreviewLength = 80

// Preview returns a single-line display title for clip text: the first
// non-blank line, sanitized and truncated to PreviewLength.
func Preview(text string) string {
	return TruncateTitle(GenerateTitle(text), PreviewLength)
}

// GenerateTitle returns the first non-blank line of text, sanitized.
// Text with no visible content yields "[empty]".
func GenerateTitle(text string) string {
	for line := range strings.Lines(text) {
		if cleaned := SanitizeTitle(line); cleaned != "" {
			return cleaned
		}
	}
	return "[empty]"
}

// TruncateTitle ensures title is at most maxLen runes, ending in "..."
// when it was cut.
func TruncateTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)

	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	if maxLen < 3 {
		return strings.Repeat(".", max(maxLen, 0))
	}
	return string(runes[:maxLen-3]) + "..."
}

// SanitizeTitle replaces control characters with spaces and collapses
// whitespace, so titles are safe to print in a terminal.
func SanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, title)
	return strings.Join(strings.Fields(title), " ")
}
