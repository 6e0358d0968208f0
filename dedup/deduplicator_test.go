package dedup

import (
	"context"
	"math"
	"testing"
	"time"
)

// fakeEmbeddings maps known texts to fixed vectors so similarity outcomes
// are deterministic.
type fakeEmbeddings struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbeddings) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbeddings) ModelName() string { return "fake-test-model" }

type memoryStore struct {
	topics []StoredTopic
}

func (m *memoryStore) Recent(ctx context.Context) ([]StoredTopic, error) {
	return m.topics, nil
}

func (m *memoryStore) Add(ctx context.Context, topic StoredTopic) error {
	m.topics = append([]StoredTopic{topic}, m.topics...)
	return nil
}

func (m *memoryStore) Close() error { return nil }

func TestProcessDetectsNearDuplicate(t *testing.T) {
	embeddings := &fakeEmbeddings{vectors: map[string][]float32{
		"quantum computing basics":     {1, 0, 0},
		"intro to quantum computing":   {0.99, 0.14, 0},
		"the history of cheese making": {0, 1, 0},
	}}
	store := &memoryStore{}
	dedup := New(embeddings, store, nil, 0)

	first, err := dedup.Process(context.Background(), Candidate{ID: "a", Topic: "quantum computing basics"})
	if err != nil {
		t.Fatalf("process first topic: %v", err)
	}
	if first.IsDuplicate {
		t.Fatal("first topic must not be a duplicate")
	}
	if len(store.topics) != 1 {
		t.Fatalf("store entries: got %d want 1", len(store.topics))
	}

	second, err := dedup.Process(context.Background(), Candidate{ID: "b", Topic: "intro to quantum computing"})
	if err != nil {
		t.Fatalf("process near-duplicate: %v", err)
	}
	if !second.IsDuplicate {
		t.Fatal("expected near-duplicate detection")
	}
	if second.MatchingID != "a" {
		t.Errorf("matching ID: got %q want %q", second.MatchingID, "a")
	}
	if second.SimilarityScore < 0.95 {
		t.Errorf("similarity: got %.3f want >= 0.95", second.SimilarityScore)
	}
	// Duplicates are not remembered.
	if len(store.topics) != 1 {
		t.Errorf("store entries after duplicate: got %d want 1", len(store.topics))
	}

	third, err := dedup.Process(context.Background(), Candidate{ID: "c", Topic: "the history of cheese making"})
	if err != nil {
		t.Fatalf("process unrelated topic: %v", err)
	}
	if third.IsDuplicate {
		t.Error("unrelated topic flagged as duplicate")
	}
	if len(store.topics) != 2 {
		t.Errorf("store entries after new topic: got %d want 2", len(store.topics))
	}
}

func TestCheckDoesNotRemember(t *testing.T) {
	embeddings := &fakeEmbeddings{vectors: map[string][]float32{}}
	store := &memoryStore{}
	dedup := New(embeddings, store, nil, 0)

	result, err := dedup.Check(context.Background(), Candidate{Topic: "anything"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.IsDuplicate {
		t.Error("empty window should never report a duplicate")
	}
	if result.CheckedAt.IsZero() {
		t.Error("checked_at not set")
	}
	if len(store.topics) != 0 {
		t.Errorf("Check must not write to the store, found %d entries", len(store.topics))
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"mismatched lengths", []float32{1, 0}, []float32{1}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}
	for _, c := range cases {
		got := float64(cosineSimilarity(c.a, c.b))
		if math.Abs(got-c.want) > 1e-6 {
			t.Errorf("%s: got %.6f want %.6f", c.name, got, c.want)
		}
	}
}

func TestNormalizeAndHash(t *testing.T) {
	a := Candidate{Topic: "  Quantum   Computing ", SourceURL: "https://Example.com/story/?utm_source=x#frag"}
	b := Candidate{Topic: "quantum computing", SourceURL: "https://example.com/story"}
	if NormalizeAndHash(a) != NormalizeAndHash(b) {
		t.Error("normalization should make tracking params, case and whitespace irrelevant")
	}

	c := Candidate{Topic: "quantum computing", SourceURL: "https://example.com/other"}
	if NormalizeAndHash(a) == NormalizeAndHash(c) {
		t.Error("different source URLs must hash differently")
	}
}

func TestStoredTopicWindowOrder(t *testing.T) {
	store := &memoryStore{}
	for _, id := range []string{"one", "two", "three"} {
		if err := store.Add(context.Background(), StoredTopic{ID: id, AddedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	recent, err := store.Recent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if recent[0].ID != "three" {
		t.Errorf("window should be newest first, got %q", recent[0].ID)
	}
}

func TestRememberStoresWithoutChecking(t *testing.T) {
	store := &memoryStore{}
	emb := &fakeEmbeddings{}
	d := New(emb, store, nil, 0.95)

	if err := d.Remember(context.Background(), Candidate{Topic: "vertical farms"}); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}
	if len(store.topics) != 1 || store.topics[0].Topic != "vertical farms" {
		t.Fatalf("expected topic to be stored, got %+v", store.topics)
	}
	if store.topics[0].ID == "" {
		t.Error("expected a generated ID")
	}
	// Remember embeds exactly once and never reads the window.
	if emb.calls != 1 {
		t.Errorf("expected 1 embedding call, got %d", emb.calls)
	}
}
