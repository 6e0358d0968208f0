package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// BloomConfig configures the RedisBloom connection and key.
type BloomConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
	// Capacity sets the initial BF.RESERVE capacity (number of items).
	Capacity int
	// ErrorRate sets the desired false positive probability.
	ErrorRate float64
}

// Bloom is a minimal Redis-backed Bloom wrapper using RedisBloom commands.
// It gives the deduplicator a cheap exact-repeat fast path before any
// embedding call is spent.
type Bloom struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewBloom creates the wrapper and verifies connectivity.
func NewBloom(cfg BloomConfig) (*Bloom, error) {
	if cfg.Key == "" {
		cfg.Key = "shorts:topics:bloom"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100000
	}
	if cfg.ErrorRate <= 0 {
		cfg.ErrorRate = 0.001
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

	b := &Bloom{client: client, key: cfg.Key, ttl: cfg.TTL}

	// Reserve the filter when the key does not exist yet. BF.RESERVE failing
	// is non-fatal: BF.ADD auto-creates a filter with module defaults.
	exists, err := client.Exists(ctx, cfg.Key).Result()
	if err == nil && exists == 0 {
		err := client.Do(ctx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity).Err()
		if err != nil {
			log.Printf("[dedup] BF.RESERVE failed (continuing, BF.ADD may auto-create): %v", err)
		}
	}

	return b, nil
}

// Close closes the underlying Redis client.
func (b *Bloom) Close() error {
	return b.client.Close()
}

// Exists checks whether the hash is probably in the filter.
func (b *Bloom) Exists(ctx context.Context, hash string) (bool, error) {
	res, err := b.client.Do(ctx, "BF.EXISTS", b.key, hash).Result()
	if err != nil {
		return false, err
	}

	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Add inserts the hash and refreshes the key expiry, so the filter remains
// active for TTL after the most recent insertion.
func (b *Bloom) Add(ctx context.Context, hash string) error {
	if err := b.client.Do(ctx, "BF.ADD", b.key, hash).Err(); err != nil {
		return err
	}
	return b.client.Expire(ctx, b.key, b.ttl).Err()
}

// NormalizeAndHash returns a SHA-256 hex hash over the candidate's
// normalized source URL and topic text. Topics submitted by hand carry no
// URL; the hash then covers the topic text alone.
func NormalizeAndHash(cand Candidate) string {
	combined := normalizeURL(cand.SourceURL) + "|" + normalizeTitle(cand.Topic)
	h := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(h[:])
}

func normalizeTitle(t string) string {
	t = strings.TrimSpace(t)
	t = strings.ToLower(t)
	fields := strings.Fields(t)
	return strings.Join(fields, " ")
}

// normalizeURL lowercases scheme and host, drops the fragment and common
// tracking parameters, and trims any trailing slash.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	out := u.String()
	return strings.TrimRight(out, "/")
}
