package models

import (
	"errors"
	"time"
)

// ErrNegativeTTL is returned by memory stores asked to remember for a
// negative duration.
var ErrNegativeTTL = errors.New("remember ttl must not be negative")

// Client is the OAuth2 client asking for consent.
type Client struct {
	ID          string `json:"client_id"`
	DisplayName string `json:"client_name,omitempty"`
	// Trusted marks first-party clients; trusted_only claim mappings are
	// emitted only for them.
	Trusted bool `json:"trusted,omitempty"`
}

// Challenge is the authorization server's view of a pending consent request.
// A challenge is one-shot: once accepted or rejected, it cannot be resolved again.
type Challenge struct {
	ID                string
	Subject           string
	Client            Client
	RequestedScope    []string
	RequestedAudience []string
	// Skip is set by the authorization server when the subject already
	// consented to this client and scope set.
	Skip bool

	// Context carries subject attributes forwarded by the login step; the
	// claims builder reads from it.
	Context        map[string]any
	RequestURL     string
	LoginSessionID string
}

// Outcome is the terminal state of a decided challenge.
type Outcome string

const (
	OutcomeGranted Outcome = "granted"
	OutcomeDenied  Outcome = "denied"
)

// SessionClaims are the claims handed to the authorization server for the
// tokens it mints after an accept.
type SessionClaims struct {
	IDToken     map[string]any `json:"id_token,omitempty"`
	AccessToken map[string]any `json:"access_token,omitempty"`
}

// Decision is the resolved answer to a challenge. It is built once and passed
// by value.
type Decision struct {
	Outcome         Outcome
	GrantedScope    []string
	GrantedAudience []string
	SessionClaims   SessionClaims
	Remember        bool
	// RememberFor bounds a remembered decision; zero means it never expires.
	RememberFor time.Duration
}

// Granted reports whether the decision allows the request.
func (d Decision) Granted() bool {
	return d.Outcome == OutcomeGranted
}

// Source records why a prompt was skipped.
type Source string

const (
	SourceInteractive Source = "interactive"
	SourceAuthServer  Source = "authserver_skip"
	SourceRemembered  Source = "local_memory"
)

// ResolveResult is the outcome of fetching a challenge. CachedDecision is set
// when the prompt can be skipped; nil means the subject must be asked.
type ResolveResult struct {
	Challenge      *Challenge
	CachedDecision *Decision
	Source         Source
}

// Interactive reports whether a human decision is needed.
func (r ResolveResult) Interactive() bool {
	return r.CachedDecision == nil
}

// BeginResult is either a redirect (the prompt was skipped) or the challenge
// to show the subject.
type BeginResult struct {
	RedirectTo string
	Challenge  *Challenge
}

// MemoryRecord is a remembered grant for a (subject, client) pair.
type MemoryRecord struct {
	Subject         string    `json:"subject"`
	ClientID        string    `json:"client_id"`
	GrantedScope    []string  `json:"granted_scope"`
	GrantedAudience []string  `json:"granted_audience"`
	IssuedAt        time.Time `json:"issued_at"`
	// ExpiresAt is the zero time when the record never expires.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// IsExpired is true once now reaches ExpiresAt. Records without an expiry never expire.
func (r MemoryRecord) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// CheckTTL rejects ttls no store can represent.
func CheckTTL(ttl time.Duration) error {
	if ttl < 0 {
		return ErrNegativeTTL
	}
	return nil
}

// NewMemoryRecord builds a record issued at now. A zero ttl never expires.
func NewMemoryRecord(subject, clientID string, scope, audience []string, ttl time.Duration, now time.Time) MemoryRecord {
	rec := MemoryRecord{
		Subject:         subject,
		ClientID:        clientID,
		GrantedScope:    append([]string{}, scope...),
		GrantedAudience: append([]string{}, audience...),
		IssuedAt:        now,
	}
	if ttl > 0 {
		rec.ExpiresAt = now.Add(ttl)
	}
	return rec
}

// RejectCode is the OAuth2 error code sent when a challenge is rejected.
type RejectCode string

const (
	RejectAccessDenied           RejectCode = "access_denied"
	RejectConsentRequired        RejectCode = "consent_required"
	RejectInteractionRequired    RejectCode = "interaction_required"
	RejectServerError            RejectCode = "server_error"
	RejectTemporarilyUnavailable RejectCode = "temporarily_unavailable"
)

var validRejectCodes = map[RejectCode]bool{
	RejectAccessDenied:           true,
	RejectConsentRequired:        true,
	RejectInteractionRequired:    true,
	RejectServerError:            true,
	RejectTemporarilyUnavailable: true,
}

func (c RejectCode) IsValid() bool {
	return validRejectCodes[c]
}
