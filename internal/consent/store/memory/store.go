// Package memory is the in-process consent memory backend built on go-cache.
package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"consentd/internal/consent/models"
	"consentd/pkg/platform/sentinel"
)

// Clock returns the current time.
type Clock func() time.Time

// Store keeps remembered decisions in process memory. Expiry is checked
// against the injected clock on every lookup. Lookups never delete; expired
// records are reclaimed by Purge or go-cache's janitor.
type Store struct {
	// mu serializes writers so Purge never removes a record replaced after
	// it was found expired.
	mu    sync.Mutex
	cache *gocache.Cache
	clock Clock
}

type Option func(*Store)

func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a store whose janitor runs every cleanupInterval (0 disables it).
func New(cleanupInterval time.Duration, opts ...Option) *Store {
	s := &Store{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(subject, clientID string) string {
	return subject + "\x00" + clientID
}

func (s *Store) Lookup(_ context.Context, subject, clientID string) (*models.MemoryRecord, error) {
	v, ok := s.cache.Get(key(subject, clientID))
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	rec := v.(models.MemoryRecord)
	if rec.IsExpired(s.clock()) {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

// Upsert overwrites any existing record for the pair. A zero ttl never expires.
func (s *Store) Upsert(_ context.Context, subject, clientID string, scope, audience []string, ttl time.Duration) error {
	if err := models.CheckTTL(ttl); err != nil {
		return err
	}
	rec := models.NewMemoryRecord(subject, clientID, scope, audience, ttl, s.clock())
	expiration := gocache.NoExpiration
	if ttl > 0 {
		expiration = ttl
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(key(subject, clientID), rec, expiration)
	return nil
}

func (s *Store) Delete(_ context.Context, subject, clientID string) error {
	k := key(subject, clientID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache.Get(k); !ok {
		return sentinel.ErrNotFound
	}
	s.cache.Delete(k)
	return nil
}

// Purge removes records that are logically expired and returns how many.
func (s *Store) Purge(_ context.Context) (int, error) {
	now := s.clock()
	purged := 0
	for k, item := range s.cache.Items() {
		if rec, ok := item.Object.(models.MemoryRecord); ok && rec.IsExpired(now) {
			if s.deleteIfExpired(k, now) {
				purged++
			}
		}
	}
	s.cache.DeleteExpired()
	return purged, nil
}

// deleteIfExpired re-reads k under the writer lock and deletes it only if the
// current record is still expired.
func (s *Store) deleteIfExpired(k string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(k)
	if !ok {
		return false
	}
	if rec, ok := v.(models.MemoryRecord); !ok || !rec.IsExpired(now) {
		return false
	}
	s.cache.Delete(k)
	return true
}

// Ping always succeeds for the in-process backend.
func (s *Store) Ping(context.Context) error {
	return nil
}
