package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StoredTopic is one previously produced topic kept in the recency window.
type StoredTopic struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Embedding []float32 `json:"embedding"`
	AddedAt   time.Time `json:"added_at"`
}

// TopicStore keeps the embeddings of recently produced topics.
type TopicStore interface {
	Recent(ctx context.Context) ([]StoredTopic, error)
	Add(ctx context.Context, topic StoredTopic) error
	Close() error
}

// RedisStoreConfig configures the Redis-backed topic store.
type RedisStoreConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string        // list key holding the window
	TTL      time.Duration // window expiry, refreshed on every add
	MaxSize  int           // window length cap
}

// RedisTopicStore holds the recency window in a Redis list of JSON entries,
// trimmed to MaxSize and expiring TTL after the most recent insertion.
type RedisTopicStore struct {
	client  *redis.Client
	key     string
	ttl     time.Duration
	maxSize int
}

// NewRedisTopicStore creates the store and verifies connectivity.
func NewRedisTopicStore(cfg RedisStoreConfig) (*RedisTopicStore, error) {
	if cfg.Key == "" {
		cfg.Key = "shorts:topics:recent"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 200
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisTopicStore{
		client:  client,
		key:     cfg.Key,
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
	}, nil
}

// Recent returns the whole window, newest first. Entries that fail to decode
// are skipped with a warning rather than failing the read.
func (s *RedisTopicStore) Recent(ctx context.Context) ([]StoredTopic, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read topic window: %w", err)
	}

	topics := make([]StoredTopic, 0, len(raw))
	for _, entry := range raw {
		var t StoredTopic
		if err := json.Unmarshal([]byte(entry), &t); err != nil {
			log.Printf("[dedup] skipping malformed window entry: %v", err)
			continue
		}
		topics = append(topics, t)
	}
	return topics, nil
}

// Add pushes a topic onto the window, trims it to the size cap and refreshes
// the expiry so the window stays alive for TTL after the newest insertion.
func (s *RedisTopicStore) Add(ctx context.Context, topic StoredTopic) error {
	payload, err := json.Marshal(topic)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, payload)
	pipe.LTrim(ctx, s.key, 0, int64(s.maxSize-1))
	pipe.Expire(ctx, s.key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store topic: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisTopicStore) Close() error {
	return s.client.Close()
}
