package pipeline

import (
	"strings"
	"unicode"
)

// sanitizeCaption strips every rune that is not a letter, digit or space.
// The assembler renders captions onto the video and expects them cleaned of
// punctuation.
func sanitizeCaption(caption string) string {
	var b strings.Builder
	b.Grow(len(caption))
	for _, r := range caption {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sanitizeCaptions(captions []string) []string {
	cleaned := make([]string, len(captions))
	for i, caption := range captions {
		cleaned[i] = sanitizeCaption(caption)
	}
	return cleaned
}
