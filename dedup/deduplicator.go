package dedup

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
)

// Candidate is a topic about to enter the pipeline, with the article URL it
// was suggested from (empty when submitted by hand).
type Candidate struct {
	ID        string
	Topic     string
	SourceURL string
}

// Result reports the outcome of a duplicate check.
type Result struct {
	IsDuplicate     bool      `json:"is_duplicate"`
	MatchingID      string    `json:"matching_id,omitempty"`
	MatchingTopic   string    `json:"matching_topic,omitempty"`
	SimilarityScore float32   `json:"similarity_score,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
}

// Deduplicator rejects topics too similar to ones recently turned into
// videos, so scheduled feed ingestion does not produce the same short twice.
type Deduplicator struct {
	embeddings EmbeddingsProvider
	store      TopicStore
	bloom      *Bloom // optional fast path, may be nil
	threshold  float32
}

// New creates a Deduplicator. bloom may be nil to disable the exact-repeat
// fast path; threshold <= 0 selects the default.
func New(embeddings EmbeddingsProvider, store TopicStore, bloom *Bloom, threshold float32) *Deduplicator {
	if threshold <= 0 {
		threshold = config.SimilarityThreshold
	}
	return &Deduplicator{
		embeddings: embeddings,
		store:      store,
		bloom:      bloom,
		threshold:  threshold,
	}
}

// Check reports whether the candidate duplicates a recent topic.
func (d *Deduplicator) Check(ctx context.Context, cand Candidate) (*Result, error) {
	result, _, err := d.check(ctx, cand)
	return result, err
}

// Remember stores a candidate without checking it first. Runs call this
// only after finishing successfully, so a failed run does not block its own
// topic from being retried.
func (d *Deduplicator) Remember(ctx context.Context, cand Candidate) error {
	vectors, err := d.embeddings.EmbedTexts(ctx, []string{cand.Topic})
	if err != nil {
		return fmt.Errorf("failed to embed topic: %w", err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("embeddings provider returned no vectors")
	}
	return d.remember(ctx, cand, vectors[0])
}

// Process checks the candidate and, when it is new, remembers it so later
// candidates are compared against it.
func (d *Deduplicator) Process(ctx context.Context, cand Candidate) (*Result, error) {
	result, embedding, err := d.check(ctx, cand)
	if err != nil {
		return nil, err
	}
	if result.IsDuplicate {
		return result, nil
	}
	if err := d.remember(ctx, cand, embedding); err != nil {
		return nil, fmt.Errorf("failed to remember new topic: %w", err)
	}
	return result, nil
}

func (d *Deduplicator) check(ctx context.Context, cand Candidate) (*Result, []float32, error) {
	checkTime := time.Now()

	// Fast path: probabilistic exact-repeat filter on the URL+topic hash.
	if d.bloom != nil {
		exists, err := d.bloom.Exists(ctx, NormalizeAndHash(cand))
		if err != nil {
			log.Printf("[dedup] warning: bloom check failed: %v", err)
		} else if exists {
			// An exact repeat of a previously stored candidate.
			return &Result{
				IsDuplicate:     true,
				MatchingTopic:   cand.Topic,
				SimilarityScore: 1,
				CheckedAt:       checkTime,
			}, nil, nil
		}
	}

	embeddings, err := d.embeddings.EmbedTexts(ctx, []string{cand.Topic})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed topic: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, nil, fmt.Errorf("embeddings provider returned no vectors")
	}
	embedding := embeddings[0]

	recent, err := d.store.Recent(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load recent topics: %w", err)
	}

	var best *Result
	var bestSimilarity float32
	for _, stored := range recent {
		similarity := cosineSimilarity(embedding, stored.Embedding)
		if similarity < d.threshold || similarity <= bestSimilarity {
			continue
		}
		bestSimilarity = similarity
		best = &Result{
			IsDuplicate:     true,
			MatchingID:      stored.ID,
			MatchingTopic:   stored.Topic,
			SimilarityScore: similarity,
			CheckedAt:       checkTime,
		}
	}

	if best != nil {
		log.Printf("[dedup] duplicate topic: %q matches %q with %.2f%% similarity",
			cand.Topic, best.MatchingTopic, best.SimilarityScore*100)
		return best, embedding, nil
	}

	return &Result{IsDuplicate: false, CheckedAt: checkTime}, embedding, nil
}

// remember stores the topic's embedding in the recency window and its hash
// in the bloom filter.
func (d *Deduplicator) remember(ctx context.Context, cand Candidate, embedding []float32) error {
	id := cand.ID
	if id == "" {
		id = uuid.NewString()
	}
	err := d.store.Add(ctx, StoredTopic{
		ID:        id,
		Topic:     cand.Topic,
		Embedding: embedding,
		AddedAt:   time.Now(),
	})
	if err != nil {
		return err
	}

	if d.bloom != nil {
		if err := d.bloom.Add(ctx, NormalizeAndHash(cand)); err != nil {
			log.Printf("[dedup] warning: failed to add topic to bloom filter: %v", err)
		}
	}
	return nil
}

// Close releases the store and filter connections.
func (d *Deduplicator) Close() error {
	var firstErr error
	if d.store != nil {
		firstErr = d.store.Close()
	}
	if d.bloom != nil {
		if err := d.bloom.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// cosineSimilarity compares two embedding vectors. Mismatched or zero-norm
// vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
