package topics

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	readability "github.com/go-shiori/go-readability"
)

const (
	extractorTimeout = 30 * time.Second

	// maxBackgroundRunes caps extracted article text before it is handed
	// to the script generator as background material.
	maxBackgroundRunes = 2000
)

// Enrich fetches the article behind a suggestion and returns its readable
// text, truncated to a size suitable as script background material.
func Enrich(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("article URL is empty")
	}

	article, err := readability.FromURL(url, extractorTimeout)
	if err != nil {
		return "", fmt.Errorf("readability extraction failed: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable text at %s", url)
	}

	log.Printf("✓ Extracted: %s", article.Title)
	return truncateAtWord(text, maxBackgroundRunes), nil
}

// truncateAtWord cuts text to at most limit runes, backing up to the last
// word boundary so the result never ends mid-word.
func truncateAtWord(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := limit
	for cut > 0 && !unicode.IsSpace(runes[cut-1]) {
		cut--
	}
	if cut == 0 {
		cut = limit
	}

	return strings.TrimSpace(string(runes[:cut]))
}
