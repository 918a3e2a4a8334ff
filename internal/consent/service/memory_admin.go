package service

import (
	"context"
	"errors"

	"consentd/internal/consent/models"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/audit"
	"consentd/pkg/platform/sentinel"
	"consentd/pkg/requestcontext"
)

// MemoryAdmin lets operators inspect and revoke remembered decisions.
type MemoryAdmin struct {
	store MemoryStore
	audit AuditPublisher
	options
}

func NewMemoryAdmin(store MemoryStore, publisher AuditPublisher, opts ...Option) *MemoryAdmin {
	return &MemoryAdmin{store: store, audit: publisher, options: newOptions(opts)}
}

func (a *MemoryAdmin) Get(ctx context.Context, q models.MemoryQuery) (*models.MemoryRecord, error) {
	record, err := a.store.Lookup(ctx, q.Subject, q.ClientID)
	if err != nil {
		return nil, memoryError(err)
	}
	return record, nil
}

// Revoke forgets a remembered decision. The next flow for this pair prompts
// unless the authorization server itself signals skip.
func (a *MemoryAdmin) Revoke(ctx context.Context, q models.MemoryQuery) error {
	if err := a.store.Delete(ctx, q.Subject, q.ClientID); err != nil {
		return memoryError(err)
	}
	emitAudit(ctx, a.audit, a.logger, audit.EventConsentMemoryRevoked, audit.Event{
		Subject:  q.Subject,
		ClientID: q.ClientID,
	})
	a.logger.InfoContext(ctx, "consent memory revoked",
		"request_id", requestcontext.RequestID(ctx),
		"operator", requestcontext.Operator(ctx),
		"client_id", q.ClientID,
	)
	return nil
}

// Purge removes expired records now instead of waiting for the sweeper.
func (a *MemoryAdmin) Purge(ctx context.Context) (int, error) {
	n, err := a.store.Purge(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge consent memory")
	}
	if a.metrics != nil {
		a.metrics.AddPurged(n)
	}
	emitAudit(ctx, a.audit, a.logger, audit.EventConsentMemoryPurged, audit.Event{})
	return n, nil
}

// Health reports whether the memory backend is reachable.
func (a *MemoryAdmin) Health(ctx context.Context) error {
	return a.store.Ping(ctx)
}

func memoryError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "no remembered consent for subject and client")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "consent memory unavailable")
}
