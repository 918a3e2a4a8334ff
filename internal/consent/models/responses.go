package models

import "time"

// RedirectResponse sends the browser back into the OAuth2 flow.
type RedirectResponse struct {
	RedirectTo string `json:"redirect_to"`
}

// ChallengeView is what the consent UI needs to render the prompt.
type ChallengeView struct {
	Challenge         string         `json:"challenge"`
	Subject           string         `json:"subject"`
	Client            Client         `json:"client"`
	RequestedScope    []string       `json:"requested_scope"`
	RequestedAudience []string       `json:"requested_audience"`
	Context           map[string]any `json:"context,omitempty"`
}

func NewChallengeView(c *Challenge) ChallengeView {
	return ChallengeView{
		Challenge:         c.ID,
		Subject:           c.Subject,
		Client:            c.Client,
		RequestedScope:    nonNil(c.RequestedScope),
		RequestedAudience: nonNil(c.RequestedAudience),
		Context:           c.Context,
	}
}

// MemoryRecordResponse is the admin view of a remembered decision.
type MemoryRecordResponse struct {
	Subject         string     `json:"subject"`
	ClientID        string     `json:"client_id"`
	GrantedScope    []string   `json:"granted_scope"`
	GrantedAudience []string   `json:"granted_audience"`
	IssuedAt        time.Time  `json:"issued_at"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

func NewMemoryRecordResponse(r *MemoryRecord) MemoryRecordResponse {
	resp := MemoryRecordResponse{
		Subject:         r.Subject,
		ClientID:        r.ClientID,
		GrantedScope:    nonNil(r.GrantedScope),
		GrantedAudience: nonNil(r.GrantedAudience),
		IssuedAt:        r.IssuedAt,
	}
	if !r.ExpiresAt.IsZero() {
		exp := r.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}

// PurgeResponse reports how many expired records a sweep removed.
type PurgeResponse struct {
	Purged int `json:"purged"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
