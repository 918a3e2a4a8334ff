package service

import (
	"context"
	"errors"

	"consentd/internal/consent/models"
	"consentd/internal/consent/scope"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/audit"
	"consentd/pkg/platform/sentinel"
	"consentd/pkg/requestcontext"
)

const deniedDescription = "The resource owner denied the request"

// Submitter consumes challenges. Submissions are never retried: the
// authorization server's one-shot answer is authoritative.
type Submitter struct {
	admin  AdminClient
	memory MemoryStore
	audit  AuditPublisher
	options
}

// NewSubmitter wires the submitter. memory and publisher may be nil.
func NewSubmitter(admin AdminClient, memory MemoryStore, publisher AuditPublisher, opts ...Option) *Submitter {
	return &Submitter{
		admin:   admin,
		memory:  memory,
		audit:   publisher,
		options: newOptions(opts),
	}
}

// Submit posts a human decision and returns the redirect.
func (s *Submitter) Submit(ctx context.Context, ch *models.Challenge, decision models.Decision) (string, error) {
	return s.submit(ctx, ch, decision, models.SourceInteractive)
}

// SubmitCached posts a decision synthesized by the resolver.
func (s *Submitter) SubmitCached(ctx context.Context, res *models.ResolveResult) (string, error) {
	if res == nil || res.CachedDecision == nil {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "no cached decision to submit")
	}
	return s.submit(ctx, res.Challenge, *res.CachedDecision, res.Source)
}

func (s *Submitter) submit(ctx context.Context, ch *models.Challenge, decision models.Decision, source models.Source) (string, error) {
	if err := scope.Verify(ch, decision); err != nil {
		s.logger.WarnContext(ctx, "refusing to submit invalid decision",
			"request_id", requestcontext.RequestID(ctx),
			"client_id", ch.Client.ID,
			"error", err,
		)
		return "", err
	}
	if !decision.Granted() {
		return s.Reject(ctx, ch, models.RejectAccessDenied, deniedDescription)
	}

	redirect, err := s.admin.AcceptConsentRequest(ctx, ch.ID, decision)
	if err != nil {
		return "", s.failed(ctx, ch, "accept", err)
	}

	if decision.Remember {
		s.remember(ctx, ch, decision)
	}

	action := audit.EventConsentGranted
	if source != models.SourceInteractive {
		action = audit.EventConsentSkipped
	}
	emitAudit(ctx, s.audit, s.logger, action, audit.Event{
		Subject:      ch.Subject,
		ClientID:     ch.Client.ID,
		Decision:     string(models.OutcomeGranted),
		Reason:       string(source),
		GrantedScope: decision.GrantedScope,
		Remembered:   decision.Remember,
	})
	if s.metrics != nil {
		s.metrics.ObserveDecision(string(models.OutcomeGranted), string(source))
	}
	s.logger.InfoContext(ctx, "consent granted",
		"request_id", requestcontext.RequestID(ctx),
		"client_id", ch.Client.ID,
		"source", source,
		"granted_scope", decision.GrantedScope,
		"remember", decision.Remember,
	)
	return redirect, nil
}

// Reject refuses the challenge with a structured OAuth2 error code. The
// consent memory is never touched.
func (s *Submitter) Reject(ctx context.Context, ch *models.Challenge, code models.RejectCode, description string) (string, error) {
	if !code.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidDecision, "unknown rejection code")
	}

	redirect, err := s.admin.RejectConsentRequest(ctx, ch.ID, code, description)
	if err != nil {
		return "", s.failed(ctx, ch, "reject", err)
	}

	emitAudit(ctx, s.audit, s.logger, audit.EventConsentRejected, audit.Event{
		Subject:  ch.Subject,
		ClientID: ch.Client.ID,
		Decision: string(models.OutcomeDenied),
		Reason:   string(code),
	})
	if s.metrics != nil {
		s.metrics.ObserveDecision(string(models.OutcomeDenied), string(models.SourceInteractive))
	}
	s.logger.InfoContext(ctx, "consent rejected",
		"request_id", requestcontext.RequestID(ctx),
		"client_id", ch.Client.ID,
		"reason", code,
	)
	return redirect, nil
}

// remember stores the grant after a successful accept. The challenge is
// already consumed, so a store failure is only logged.
func (s *Submitter) remember(ctx context.Context, ch *models.Challenge, decision models.Decision) {
	if s.memory == nil {
		return
	}
	err := s.memory.Upsert(ctx, ch.Subject, ch.Client.ID, decision.GrantedScope, decision.GrantedAudience, decision.RememberFor)
	if s.metrics != nil {
		s.metrics.ObserveMemoryWrite(err)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to remember consent decision",
			"request_id", requestcontext.RequestID(ctx),
			"client_id", ch.Client.ID,
			"error", err,
		)
	}
}

func (s *Submitter) failed(ctx context.Context, ch *models.Challenge, op string, err error) error {
	level := s.logger.WarnContext
	if errors.Is(err, sentinel.ErrAmbiguous) {
		level = s.logger.ErrorContext
	}
	level(ctx, "consent submission failed",
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"client_id", ch.Client.ID,
		"error", err,
	)
	return translate(err)
}
