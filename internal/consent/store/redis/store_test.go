//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"consentd/internal/consent/models"
	"consentd/pkg/platform/sentinel"
	"consentd/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *containers.RedisContainer
	now       time.Time
	store     *Store
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.container = containers.NewRedisContainer(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.container.FlushAll(s.ctx))
	s.now = time.Now()
	s.store = New(s.container.Client, WithClock(func() time.Time { return s.now }))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "client-a", []string{"openid"}, []string{"api"}, time.Hour))

	rec, err := s.store.Lookup(s.ctx, "user-1", "client-a")
	s.Require().NoError(err)
	s.Equal([]string{"openid"}, rec.GrantedScope)
	s.Equal([]string{"api"}, rec.GrantedAudience)

	ttl, err := s.container.Client.TTL(s.ctx, Key("user-1", "client-a")).Result()
	s.Require().NoError(err)
	s.InDelta(time.Hour.Seconds(), ttl.Seconds(), 5)
}

func (s *RedisStoreSuite) TestZeroTTLHasNoRedisExpiry() {
	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "client-a", []string{"openid"}, nil, 0))

	ttl, err := s.container.Client.TTL(s.ctx, Key("user-1", "client-a")).Result()
	s.Require().NoError(err)
	s.Equal(time.Duration(-1), ttl, "-1 means the key has no expiry")

	s.now = s.now.Add(50 * 365 * 24 * time.Hour)
	_, err = s.store.Lookup(s.ctx, "user-1", "client-a")
	s.NoError(err)
}

func (s *RedisStoreSuite) TestLogicalExpiry() {
	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "client-a", []string{"openid"}, nil, time.Hour))
	s.now = s.now.Add(time.Hour)
	_, err := s.store.Lookup(s.ctx, "user-1", "client-a")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestKeysDoNotLeakSubjects() {
	s.Require().NoError(s.store.Upsert(s.ctx, "alice@example.com", "client-a", []string{"openid"}, nil, 0))
	keys, err := s.container.Client.Keys(s.ctx, keyPrefix+"*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)
	s.NotContains(keys[0], "alice")
}

func (s *RedisStoreSuite) TestDelete() {
	s.ErrorIs(s.store.Delete(s.ctx, "user-1", "client-a"), sentinel.ErrNotFound)
	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "client-a", []string{"openid"}, nil, 0))
	s.Require().NoError(s.store.Delete(s.ctx, "user-1", "client-a"))
	_, err := s.store.Lookup(s.ctx, "user-1", "client-a")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestRejectsNegativeTTL() {
	err := s.store.Upsert(s.ctx, "user-1", "client-a", []string{"openid"}, nil, -time.Second)
	s.ErrorIs(err, models.ErrNegativeTTL)

	_, err = s.store.Lookup(s.ctx, "user-1", "client-a")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
