package authserver

import "consentd/internal/consent/models"

// Wire shapes of the Hydra-compatible admin API.

type wireClient struct {
	ClientID   string         `json:"client_id"`
	ClientName string         `json:"client_name,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type consentRequest struct {
	Challenge                    string         `json:"challenge"`
	Subject                      string         `json:"subject"`
	Client                       wireClient     `json:"client"`
	RequestedScope               []string       `json:"requested_scope"`
	RequestedAccessTokenAudience []string       `json:"requested_access_token_audience"`
	Skip                         bool           `json:"skip"`
	Context                      map[string]any `json:"context,omitempty"`
	RequestURL                   string         `json:"request_url,omitempty"`
	LoginSessionID               string         `json:"login_session_id,omitempty"`
}

func (r consentRequest) toModel() *models.Challenge {
	trusted, _ := r.Client.Metadata["trusted"].(bool)
	return &models.Challenge{
		ID:      r.Challenge,
		Subject: r.Subject,
		Client: models.Client{
			ID:          r.Client.ClientID,
			DisplayName: r.Client.ClientName,
			Trusted:     trusted,
		},
		RequestedScope:    nonNil(r.RequestedScope),
		RequestedAudience: nonNil(r.RequestedAccessTokenAudience),
		Skip:              r.Skip,
		Context:           r.Context,
		RequestURL:        r.RequestURL,
		LoginSessionID:    r.LoginSessionID,
	}
}

// AcceptBody is sent to accept a consent challenge.
type AcceptBody struct {
	GrantScope               []string             `json:"grant_scope"`
	GrantAccessTokenAudience []string             `json:"grant_access_token_audience"`
	Remember                 bool                 `json:"remember"`
	RememberFor              int64                `json:"remember_for"`
	Session                  models.SessionClaims `json:"session"`
}

// RejectBody is sent to reject a consent challenge.
type RejectBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	StatusCode       int    `json:"status_code,omitempty"`
}

type redirectResponse struct {
	RedirectTo string `json:"redirect_to"`
}

type genericError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// NewAcceptBody maps a granted decision onto the wire.
func NewAcceptBody(d models.Decision) AcceptBody {
	return AcceptBody{
		GrantScope:               nonNil(d.GrantedScope),
		GrantAccessTokenAudience: nonNil(d.GrantedAudience),
		Remember:                 d.Remember,
		RememberFor:              int64(d.RememberFor.Seconds()),
		Session:                  d.SessionClaims,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
