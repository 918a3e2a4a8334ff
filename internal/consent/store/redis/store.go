// Package redis is the shared consent memory backend for multi-instance deployments.
package redis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"consentd/internal/consent/models"
	"consentd/pkg/platform/sentinel"
)

var lookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "consentd_memory_redis_lookup_duration_ms",
	Help:    "Latency of consent memory lookups against Redis in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const keyPrefix = "consent:memory:"

// Clock returns the current time.
type Clock func() time.Time

// Store keeps remembered decisions in Redis. Keys are a BLAKE2b digest of the
// (subject, client) pair so subject identifiers never appear in key names.
// Redis TTLs do the expiry; lookups re-check the stored expiry.
type Store struct {
	client *redis.Client
	clock  Clock
}

type Option func(*Store)

func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Key returns the Redis key for a (subject, client) pair.
func Key(subject, clientID string) string {
	sum := blake2b.Sum256([]byte(subject + "\x00" + clientID))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (s *Store) Lookup(ctx context.Context, subject, clientID string) (*models.MemoryRecord, error) {
	start := time.Now()
	defer func() {
		lookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	raw, err := s.client.Get(ctx, Key(subject, clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup consent memory: %w", err)
	}

	var rec models.MemoryRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode consent memory: %w", err)
	}
	if rec.IsExpired(s.clock()) {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

// Upsert overwrites any existing record for the pair. A zero ttl never expires.
func (s *Store) Upsert(ctx context.Context, subject, clientID string, scope, audience []string, ttl time.Duration) error {
	if err := models.CheckTTL(ttl); err != nil {
		return err
	}
	rec := models.NewMemoryRecord(subject, clientID, scope, audience, ttl, s.clock())
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode consent memory: %w", err)
	}
	if err := s.client.Set(ctx, Key(subject, clientID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("upsert consent memory: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, subject, clientID string) error {
	n, err := s.client.Del(ctx, Key(subject, clientID)).Result()
	if err != nil {
		return fmt.Errorf("delete consent memory: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Purge is a no-op: Redis expires keys itself.
func (s *Store) Purge(context.Context) (int, error) {
	return 0, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
