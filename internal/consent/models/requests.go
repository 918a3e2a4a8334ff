package models

import (
	"strings"
	"time"

	dErrors "consentd/pkg/domain-errors"
	strutil "consentd/pkg/platform/strings"
)

// Action is the subject's answer on the consent form.
type Action string

const (
	ActionAllow Action = "allow"
	ActionDeny  Action = "deny"
)

// maxRememberFor caps how long a remembered decision may live.
const maxRememberFor = 365 * 24 * time.Hour

// DecideRequest is the body of POST /consent.
type DecideRequest struct {
	Challenge  string   `json:"challenge"`
	GrantScope []string `json:"grant_scope"`
	Remember   bool     `json:"remember"`
	// RememberForSeconds of 0 remembers without expiry.
	RememberForSeconds int64  `json:"remember_for,omitempty"`
	Action             Action `json:"action"`
}

// Validate normalizes the request in place and checks it. An absent
// grant_scope is the empty set.
func (r *DecideRequest) Validate() error {
	sanitize(r)
	r.Action = Action(strings.ToLower(string(r.Action)))
	r.GrantScope = strutil.DedupeAndTrim(r.GrantScope)
	if r.GrantScope == nil {
		r.GrantScope = []string{}
	}

	if r.Challenge == "" {
		return dErrors.New(dErrors.CodeValidation, "challenge is required")
	}
	switch r.Action {
	case ActionAllow, ActionDeny:
	case "":
		return dErrors.New(dErrors.CodeValidation, "action is required")
	default:
		return dErrors.New(dErrors.CodeValidation, "action must be allow or deny")
	}
	if r.RememberForSeconds < 0 {
		return dErrors.New(dErrors.CodeValidation, "remember_for must not be negative")
	}
	if r.RememberForSeconds > int64(maxRememberFor/time.Second) {
		return dErrors.New(dErrors.CodeValidation, "remember_for exceeds one year")
	}
	return nil
}

// RememberFor converts the wire value to a duration.
func (r *DecideRequest) RememberFor() time.Duration {
	return time.Duration(r.RememberForSeconds) * time.Second
}

// MemoryQuery identifies a remembered decision on the admin API.
type MemoryQuery struct {
	Subject  string
	ClientID string
}

func (q *MemoryQuery) Validate() error {
	sanitize(q)
	if q.Subject == "" {
		return dErrors.New(dErrors.CodeValidation, "subject is required")
	}
	if q.ClientID == "" {
		return dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	return nil
}
