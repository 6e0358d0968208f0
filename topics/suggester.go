package topics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
)

// Suggestion is one feed headline offered as a video topic.
type Suggestion struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary,omitempty"`
	Published time.Time `json:"published,omitempty"`
}

// Suggester turns RSS/Atom feed headlines into topic suggestions.
type Suggester struct {
	parser *gofeed.Parser
}

// NewSuggester creates a Suggester.
func NewSuggester() *Suggester {
	return &Suggester{parser: gofeed.NewParser()}
}

// Suggest fetches a feed and returns up to maxCount suggestions in feed
// order. feedInput is a preset name or a direct URL.
func (s *Suggester) Suggest(ctx context.Context, feedInput string, maxCount int) ([]Suggestion, error) {
	feedURL := config.ResolveFeedURL(feedInput)

	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := min(len(feed.Items), maxCount)
	suggestions := make([]Suggestion, 0, count)

	for i := 0; i < count; i++ {
		item := feed.Items[i]

		id := item.GUID
		if id == "" && item.Link != "" {
			id = GenerateID(item.Link)
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		suggestions = append(suggestions, Suggestion{
			ID:        id,
			Title:     item.Title,
			URL:       item.Link,
			Summary:   summary,
			Published: published,
		})
	}

	return suggestions, nil
}

// GenerateID creates a short, stable ID by hashing the provided string.
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
