// Package postgres is the durable consent memory backend.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"consentd/internal/consent/models"
	"consentd/pkg/platform/sentinel"
	"consentd/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Clock returns the current time.
type Clock func() time.Time

// Store persists remembered decisions in the consent_memory table.
type Store struct {
	db    *sql.DB
	clock Clock
}

type Option func(*Store)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Migrate applies the schema in one transaction. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	return tx.Run(ctx, db, func(ctx context.Context) error {
		if _, err := tx.Use(ctx, db).ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("apply consent_memory schema: %w", err)
		}
		return nil
	})
}

func (s *Store) Lookup(ctx context.Context, subject, clientID string) (*models.MemoryRecord, error) {
	var (
		rec       models.MemoryRecord
		scope     pq.StringArray
		audience  pq.StringArray
		expiresAt sql.NullTime
	)
	err := tx.Use(ctx, s.db).QueryRowContext(ctx, `
		SELECT subject_id, client_id, granted_scope, granted_audience, issued_at, expires_at
		FROM consent_memory
		WHERE subject_id = $1 AND client_id = $2
		  AND (expires_at IS NULL OR expires_at > $3)
	`, subject, clientID, s.clock()).Scan(&rec.Subject, &rec.ClientID, &scope, &audience, &rec.IssuedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup consent memory: %w", err)
	}
	rec.GrantedScope = []string(scope)
	rec.GrantedAudience = []string(audience)
	if expiresAt.Valid {
		rec.ExpiresAt = expiresAt.Time
	}
	return &rec, nil
}

// Upsert overwrites any existing record for the pair. A zero ttl stores a
// NULL expiry.
func (s *Store) Upsert(ctx context.Context, subject, clientID string, scope, audience []string, ttl time.Duration) error {
	if err := models.CheckTTL(ttl); err != nil {
		return err
	}
	rec := models.NewMemoryRecord(subject, clientID, scope, audience, ttl, s.clock())
	var expiresAt sql.NullTime
	if !rec.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: rec.ExpiresAt, Valid: true}
	}
	_, err := tx.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO consent_memory (subject_id, client_id, granted_scope, granted_audience, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject_id, client_id) DO UPDATE SET
			granted_scope = EXCLUDED.granted_scope,
			granted_audience = EXCLUDED.granted_audience,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at
	`, subject, clientID, pq.Array(rec.GrantedScope), pq.Array(rec.GrantedAudience), rec.IssuedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("upsert consent memory: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, subject, clientID string) error {
	res, err := tx.Use(ctx, s.db).ExecContext(ctx, `DELETE FROM consent_memory WHERE subject_id = $1 AND client_id = $2`, subject, clientID)
	if err != nil {
		return fmt.Errorf("delete consent memory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete consent memory: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int, error) {
	res, err := tx.Use(ctx, s.db).ExecContext(ctx, `DELETE FROM consent_memory WHERE expires_at IS NOT NULL AND expires_at <= $1`, s.clock())
	if err != nil {
		return 0, fmt.Errorf("purge consent memory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge consent memory: %w", err)
	}
	return int(n), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
