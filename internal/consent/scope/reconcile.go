// Package scope narrows requested scope and audience to what the subject
// actually granted. Everything here is pure.
package scope

import (
	"consentd/internal/consent/models"
	dErrors "consentd/pkg/domain-errors"
	strutil "consentd/pkg/platform/strings"
)

// Reconcile returns the granted scope (requested ∩ user grant, in requested
// order) and the granted audience (the requested audience, never synthesized).
func Reconcile(requestedScope, requestedAudience, userGrantedScope []string) (grantedScope, grantedAudience []string) {
	grantedScope = strutil.Intersect(requestedScope, userGrantedScope)
	grantedAudience = strutil.DedupeAndTrim(requestedAudience)
	if grantedAudience == nil {
		grantedAudience = []string{}
	}
	return grantedScope, grantedAudience
}

// Verify re-checks that decision does not exceed what challenge requested.
// Denied decisions carry no grants and always pass.
func Verify(challenge *models.Challenge, decision models.Decision) error {
	if !decision.Granted() {
		if decision.Outcome != models.OutcomeDenied {
			return dErrors.New(dErrors.CodeInvalidDecision, "unknown decision outcome")
		}
		return nil
	}
	if !strutil.ContainsAll(challenge.RequestedScope, decision.GrantedScope) {
		return dErrors.New(dErrors.CodeInvalidDecision, "granted scope exceeds requested scope")
	}
	if !strutil.ContainsAll(challenge.RequestedAudience, decision.GrantedAudience) {
		return dErrors.New(dErrors.CodeInvalidDecision, "granted audience exceeds requested audience")
	}
	if decision.RememberFor < 0 {
		return dErrors.New(dErrors.CodeInvalidDecision, "remember duration must not be negative")
	}
	return nil
}

// Covers reports whether a remembered record grants at least everything the
// challenge requests.
func Covers(record *models.MemoryRecord, challenge *models.Challenge) bool {
	return strutil.ContainsAll(record.GrantedScope, challenge.RequestedScope) &&
		strutil.ContainsAll(record.GrantedAudience, challenge.RequestedAudience)
}
