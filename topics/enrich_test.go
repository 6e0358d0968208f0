package topics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>The Hidden Rivers Beneath Antarctica</title></head>
<body>
<article>
<h1>The Hidden Rivers Beneath Antarctica</h1>
<p>Beneath the Antarctic ice sheet, a network of rivers and lakes moves
meltwater across distances longer than the Thames. Radar surveys flown over
three decades have mapped more than four hundred subglacial lakes, some of
them sealed off from the atmosphere for millions of years, and the channels
that connect them pulse with water on timescales of months rather than
millennia.</p>
<p>The flow matters far beyond the ice. Where subglacial water reaches the
grounding line, it lubricates the contact between ice and bedrock and can
double the speed at which glaciers slide toward the ocean. Models that
ignore this plumbing consistently underestimate how quickly the ice sheet
responds to warming, which is why field teams keep drilling kilometre-deep
boreholes to reach it.</p>
<p>Sampling expeditions have returned with microbial communities that
survive on crushed rock chemistry instead of sunlight. Every borehole so
far has found life, and each new lake behaves like an island with its own
castaways, which makes the hidden river system one of the largest
unexplored habitats left on the planet.</p>
</article>
</body>
</html>`

func TestEnrichExtractsArticleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	text, err := Enrich(srv.URL)
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if !strings.Contains(text, "subglacial lakes") {
		t.Errorf("expected article text, got %q", text)
	}
	if strings.Contains(text, "<p>") {
		t.Error("expected markup to be stripped")
	}
	if len([]rune(text)) > maxBackgroundRunes {
		t.Errorf("expected at most %d runes, got %d", maxBackgroundRunes, len([]rune(text)))
	}
}

func TestEnrichEmptyURL(t *testing.T) {
	if _, err := Enrich(""); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestTruncateAtWord(t *testing.T) {
	if got := truncateAtWord("short text", 100); got != "short text" {
		t.Errorf("expected text under limit unchanged, got %q", got)
	}

	got := truncateAtWord("the quick brown fox jumps over the lazy dog", 19)
	if got != "the quick brown" {
		t.Errorf("expected cut at word boundary, got %q", got)
	}

	// A single unbroken word longer than the limit is cut hard.
	if got := truncateAtWord("abcdefghij", 4); got != "abcd" {
		t.Errorf("expected hard cut for unbroken word, got %q", got)
	}

	long := strings.Repeat("word ", 1000)
	got = truncateAtWord(long, maxBackgroundRunes)
	if len([]rune(got)) > maxBackgroundRunes {
		t.Errorf("expected at most %d runes, got %d", maxBackgroundRunes, len([]rune(got)))
	}
	if unicode.IsSpace(rune(got[len(got)-1])) {
		t.Error("expected trailing whitespace to be trimmed")
	}
}
