//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"consentd/internal/consent/models"
	"consentd/pkg/platform/sentinel"
	"consentd/pkg/platform/tx"
	"consentd/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *containers.PostgresContainer
	now       time.Time
	store     *Store
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.container = containers.NewPostgresContainer(s.T())
	s.Require().NoError(Migrate(s.ctx, s.container.DB))
	s.Require().NoError(Migrate(s.ctx, s.container.DB), "migrate is idempotent")
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.container.DB.ExecContext(s.ctx, `TRUNCATE consent_memory`)
	s.Require().NoError(err)
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.store = New(s.container.DB, WithClock(func() time.Time { return s.now }))
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "client-a", []string{"openid", "email"}, []string{"api"}, time.Hour))

	rec, err := s.store.Lookup(s.ctx, "user-1", "client-a")
	s.Require().NoError(err)
	s.Equal([]string{"openid", "email"}, rec.GrantedScope)
	s.Equal([]string{"api"}, rec.GrantedAudience)
	s.True(rec.IssuedAt.Equal(s.now))
	s.True(rec.ExpiresAt.Equal(s.now.Add(time.Hour)))
}

func (s *PostgresStoreSuite) TestTTLLaw() {
	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "forever", []string{"openid"}, nil, 0))
	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "hour", []string{"openid"}, nil, time.Hour))

	s.now = s.now.Add(time.Hour)
	_, err := s.store.Lookup(s.ctx, "user-1", "hour")
	s.ErrorIs(err, sentinel.ErrNotFound)

	rec, err := s.store.Lookup(s.ctx, "user-1", "forever")
	s.Require().NoError(err)
	s.True(rec.ExpiresAt.IsZero())
}

func (s *PostgresStoreSuite) TestUpsertOverwrites() {
	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "client-a", []string{"openid", "email"}, nil, 0))
	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "client-a", []string{"openid"}, nil, time.Minute))

	rec, err := s.store.Lookup(s.ctx, "user-1", "client-a")
	s.Require().NoError(err)
	s.Equal([]string{"openid"}, rec.GrantedScope)
}

func (s *PostgresStoreSuite) TestDeleteAndPurge() {
	s.ErrorIs(s.store.Delete(s.ctx, "nobody", "client-a"), sentinel.ErrNotFound)

	s.Require().NoError(s.store.Upsert(s.ctx, "user-1", "a", []string{"openid"}, nil, time.Minute))
	s.Require().NoError(s.store.Upsert(s.ctx, "user-2", "a", []string{"openid"}, nil, 0))
	s.Require().NoError(s.store.Upsert(s.ctx, "user-3", "a", []string{"openid"}, nil, 0))
	s.Require().NoError(s.store.Delete(s.ctx, "user-3", "a"))

	s.now = s.now.Add(time.Minute)
	n, err := s.store.Purge(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	var remaining int
	s.Require().NoError(s.container.DB.QueryRowContext(s.ctx, `SELECT count(*) FROM consent_memory`).Scan(&remaining))
	s.Equal(1, remaining)
}

func (s *PostgresStoreSuite) TestJoinsContextTransaction() {
	boom := errors.New("boom")
	err := tx.Run(s.ctx, s.container.DB, func(ctx context.Context) error {
		s.Require().NoError(s.store.Upsert(ctx, "user-1", "client-a", []string{"openid"}, nil, 0))
		_, err := s.store.Lookup(ctx, "user-1", "client-a")
		s.Require().NoError(err, "write is visible inside the transaction")
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.Lookup(s.ctx, "user-1", "client-a")
	s.ErrorIs(err, sentinel.ErrNotFound, "rolled back with the transaction")

	s.Require().NoError(tx.Run(s.ctx, s.container.DB, func(ctx context.Context) error {
		return s.store.Upsert(ctx, "user-1", "client-a", []string{"openid"}, nil, 0)
	}))
	_, err = s.store.Lookup(s.ctx, "user-1", "client-a")
	s.NoError(err)
}

func (s *PostgresStoreSuite) TestRejectsNegativeTTL() {
	err := s.store.Upsert(s.ctx, "user-1", "client-a", []string{"openid"}, nil, -time.Second)
	s.ErrorIs(err, models.ErrNegativeTTL)

	_, err = s.store.Lookup(s.ctx, "user-1", "client-a")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
