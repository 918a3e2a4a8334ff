package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"consentd/internal/consent/claims"
	"consentd/internal/consent/models"
	"consentd/internal/consent/scope"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/sentinel"
	"consentd/pkg/requestcontext"
)

// Resolver turns a challenge ID into either a cached decision or a prompt.
// It never consumes the challenge.
type Resolver struct {
	admin  AdminClient
	memory MemoryStore
	claims *claims.Builder
	group  singleflight.Group
	options
}

// NewResolver wires the resolver. memory may be nil when no local store is configured.
func NewResolver(admin AdminClient, memory MemoryStore, builder *claims.Builder, opts ...Option) *Resolver {
	if builder == nil {
		builder = claims.NewBuilder(nil)
	}
	return &Resolver{
		admin:   admin,
		memory:  memory,
		claims:  builder,
		options: newOptions(opts),
	}
}

// Resolve fetches the challenge and decides whether the subject must be asked.
// A skip signal from the authorization server is authoritative; the local
// store is only consulted when it is absent and local remember is enabled.
func (r *Resolver) Resolve(ctx context.Context, challengeID string) (*models.ResolveResult, error) {
	ch, err := r.Fetch(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if ch.Skip {
		decision := grantRequested(r.claims, ch)
		return &models.ResolveResult{Challenge: ch, CachedDecision: &decision, Source: models.SourceAuthServer}, nil
	}
	if r.rememberedLocally(ctx, ch) {
		decision := grantRequested(r.claims, ch)
		return &models.ResolveResult{Challenge: ch, CachedDecision: &decision, Source: models.SourceRemembered}, nil
	}
	return &models.ResolveResult{Challenge: ch, Source: models.SourceInteractive}, nil
}

// Fetch returns the challenge, retrying transient failures. Concurrent fetches
// of one ID share a single upstream call.
func (r *Resolver) Fetch(ctx context.Context, challengeID string) (*models.Challenge, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "consent_challenge is required")
	}

	// The shared fetch outlives any single caller; the client timeout and the
	// backoff policy bound it. Each caller still stops waiting on its own ctx.
	shared := context.WithoutCancel(ctx)
	var res singleflight.Result
	select {
	case res = <-r.group.DoChan(challengeID, func() (any, error) {
		return r.fetchWithRetry(shared, challengeID)
	}):
	case <-ctx.Done():
		return nil, translate(ctx.Err())
	}
	v, err := res.Val, res.Err
	if err != nil {
		r.logger.WarnContext(ctx, "failed to fetch consent challenge",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, translate(err)
	}
	return cloneChallenge(v.(*models.Challenge)), nil
}

func (r *Resolver) fetchWithRetry(ctx context.Context, challengeID string) (*models.Challenge, error) {
	attempt := 0
	op := func() (*models.Challenge, error) {
		attempt++
		if attempt > 1 && r.metrics != nil {
			r.metrics.IncrementFetchRetries()
		}
		ch, err := r.admin.GetConsentRequest(ctx, challengeID)
		if err == nil {
			return ch, nil
		}
		if errors.Is(err, sentinel.ErrUnavailable) {
			r.logger.DebugContext(ctx, "challenge fetch failed, will retry",
				"request_id", requestcontext.RequestID(ctx),
				"attempt", attempt,
				"error", err,
			)
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(r.newBackOff(), uint64(r.fetchAttempts-1)),
		ctx,
	)
	return backoff.RetryWithData(op, policy)
}

func (r *Resolver) rememberedLocally(ctx context.Context, ch *models.Challenge) bool {
	if !r.localRemember || r.memory == nil {
		return false
	}
	record, err := r.memory.Lookup(ctx, ch.Subject, ch.Client.ID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			r.logger.WarnContext(ctx, "consent memory lookup failed, prompting",
				"request_id", requestcontext.RequestID(ctx),
				"client_id", ch.Client.ID,
				"error", err,
			)
		}
		return false
	}
	return scope.Covers(record, ch)
}

// grantRequested grants exactly the requested sets. Used when a prompt is skipped.
func grantRequested(builder *claims.Builder, ch *models.Challenge) models.Decision {
	grantedScope, grantedAudience := scope.Reconcile(ch.RequestedScope, ch.RequestedAudience, ch.RequestedScope)
	return grant(builder, ch, grantedScope, grantedAudience, false, 0)
}

func grant(builder *claims.Builder, ch *models.Challenge, grantedScope, grantedAudience []string, remember bool, rememberFor time.Duration) models.Decision {
	subject := claims.Subject{ID: ch.Subject, Attributes: ch.Context}
	return models.Decision{
		Outcome:         models.OutcomeGranted,
		GrantedScope:    grantedScope,
		GrantedAudience: grantedAudience,
		SessionClaims:   builder.Build(subject, ch.Client, grantedScope),
		Remember:        remember,
		RememberFor:     rememberFor,
	}
}

// cloneChallenge gives each caller its own copy of a shared fetch result.
func cloneChallenge(ch *models.Challenge) *models.Challenge {
	out := *ch
	out.RequestedScope = slices.Clone(ch.RequestedScope)
	out.RequestedAudience = slices.Clone(ch.RequestedAudience)
	out.Context = maps.Clone(ch.Context)
	return &out
}
