package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeID reduces an externally supplied identifier to characters safe for
// filenames and artifact keys. Letters, digits, hyphens, and underscores are
// kept; everything else is dropped. Returns "" when nothing survives.
func SanitizeID(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeScript prepares raw script text for synthesis: NFC normalization,
// whitespace collapsing, and trimming. Speech engines and the prompt model both
// receive the same normalized form so segment offsets stay consistent.
func NormalizeScript(text string) string {
	text = norm.NFC.String(text)
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

// Segments splits text into count roughly equal chunks by byte offset on rune
// boundaries. count < 1 is treated as 1. The final segment absorbs the
// remainder so no text is lost.
func Segments(text string, count int) []string {
	if count < 1 {
		count = 1
	}
	runes := []rune(text)
	if count == 1 || len(runes) == 0 {
		return []string{text}
	}
	if count > len(runes) {
		count = len(runes)
	}
	size := len(runes) / count
	segments := make([]string, 0, count)
	for i := 0; i < count; i++ {
		start := i * size
		end := start + size
		if i == count-1 {
			end = len(runes)
		}
		segments = append(segments, strings.TrimSpace(string(runes[start:end])))
	}
	return segments
}
