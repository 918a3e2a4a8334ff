package service

import (
	"context"

	"consentd/internal/consent/claims"
	"consentd/internal/consent/models"
	"consentd/internal/consent/scope"
	dErrors "consentd/pkg/domain-errors"
)

// Engine runs one consent flow per call: resolve, then either submit a cached
// decision or hand the challenge to the UI and later submit the subject's answer.
type Engine struct {
	resolver  *Resolver
	submitter *Submitter
	claims    *claims.Builder
}

func NewEngine(resolver *Resolver, submitter *Submitter, builder *claims.Builder) *Engine {
	if builder == nil {
		builder = claims.NewBuilder(nil)
	}
	return &Engine{resolver: resolver, submitter: submitter, claims: builder}
}

// Begin resolves a challenge. When the prompt can be skipped the decision is
// submitted immediately and only the redirect is returned.
func (e *Engine) Begin(ctx context.Context, challengeID string) (*models.BeginResult, error) {
	res, err := e.resolver.Resolve(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if res.Interactive() {
		return &models.BeginResult{Challenge: res.Challenge}, nil
	}
	redirect, err := e.submitter.SubmitCached(ctx, res)
	if err != nil {
		return nil, err
	}
	return &models.BeginResult{RedirectTo: redirect}, nil
}

// Decide submits the subject's answer. The challenge is always fetched first
// so the grant is reconciled against the authorization server's copy.
func (e *Engine) Decide(ctx context.Context, req models.DecideRequest) (string, error) {
	ch, err := e.resolver.Fetch(ctx, req.Challenge)
	if err != nil {
		return "", err
	}

	switch req.Action {
	case models.ActionDeny:
		return e.submitter.Reject(ctx, ch, models.RejectAccessDenied, deniedDescription)
	case models.ActionAllow:
		grantedScope, grantedAudience := scope.Reconcile(ch.RequestedScope, ch.RequestedAudience, req.GrantScope)
		decision := grant(e.claims, ch, grantedScope, grantedAudience, req.Remember, req.RememberFor())
		return e.submitter.Submit(ctx, ch, decision)
	default:
		return "", dErrors.New(dErrors.CodeInvalidDecision, "action must be allow or deny")
	}
}
