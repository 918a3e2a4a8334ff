package service

import (
	"context"
	"time"

	"consentd/internal/consent/models"
	"consentd/pkg/platform/audit"
)

// AdminClient is the authorization server's consent admin API. Errors wrap
// the pkg/platform/sentinel values.
type AdminClient interface {
	// GetConsentRequest fetches a challenge without consuming it.
	GetConsentRequest(ctx context.Context, challenge string) (*models.Challenge, error)

	// AcceptConsentRequest consumes the challenge with a grant and returns the redirect.
	AcceptConsentRequest(ctx context.Context, challenge string, decision models.Decision) (string, error)

	// RejectConsentRequest consumes the challenge with a refusal and returns the redirect.
	RejectConsentRequest(ctx context.Context, challenge string, code models.RejectCode, description string) (string, error)
}

// MemoryStore persists remembered decisions keyed by (subject, client).
// Lookup returns sentinel.ErrNotFound for absent and expired records.
type MemoryStore interface {
	Lookup(ctx context.Context, subject, clientID string) (*models.MemoryRecord, error)

	// Upsert overwrites any existing record. A zero ttl never expires.
	Upsert(ctx context.Context, subject, clientID string, grantedScope, grantedAudience []string, ttl time.Duration) error

	// Delete removes a record; sentinel.ErrNotFound when there is none.
	Delete(ctx context.Context, subject, clientID string) error

	// Purge removes expired records and returns how many it removed.
	Purge(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
}

// AuditPublisher records audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
