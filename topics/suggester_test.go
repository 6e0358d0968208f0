package topics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Ocean Science Daily</title>
    <link>https://example.com</link>
    <item>
      <title>Bioluminescent squid filmed at record depth</title>
      <link>https://example.com/squid</link>
      <guid>squid-001</guid>
      <description>A camera trap captured a squid glowing five miles down.</description>
      <pubDate>Mon, 24 Aug 2026 09:30:00 +0000</pubDate>
    </item>
    <item>
      <title>New hydrothermal vent field discovered</title>
      <link>https://example.com/vents</link>
      <description>Researchers mapped a vent field the size of a football pitch.</description>
    </item>
    <item>
      <title>Third headline that should be cut off</title>
      <link>https://example.com/third</link>
    </item>
  </channel>
</rss>`

func TestSuggestMapsFeedItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	got, err := NewSuggester().Suggest(context.Background(), srv.URL, 2)
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(got))
	}

	first := got[0]
	if first.ID != "squid-001" {
		t.Errorf("expected GUID as ID, got %q", first.ID)
	}
	if first.Title != "Bioluminescent squid filmed at record depth" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.URL != "https://example.com/squid" {
		t.Errorf("unexpected URL %q", first.URL)
	}
	if !strings.Contains(first.Summary, "camera trap") {
		t.Errorf("unexpected summary %q", first.Summary)
	}
	if first.Published.IsZero() {
		t.Error("expected published time to be parsed")
	}

	second := got[1]
	if second.ID != GenerateID("https://example.com/vents") {
		t.Errorf("expected link-derived ID, got %q", second.ID)
	}
	if !second.Published.IsZero() {
		t.Errorf("expected zero published time, got %v", second.Published)
	}
}

func TestSuggestFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewSuggester().Suggest(context.Background(), srv.URL, 5); err == nil {
		t.Fatal("expected error for missing feed")
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID("https://example.com/article")
	if len(id) != 16 {
		t.Errorf("expected 16 character ID, got %d characters", len(id))
	}
	if id != GenerateID("https://example.com/article") {
		t.Error("expected stable IDs for identical input")
	}
	if id == GenerateID("https://example.com/other") {
		t.Error("expected different IDs for different input")
	}
}
