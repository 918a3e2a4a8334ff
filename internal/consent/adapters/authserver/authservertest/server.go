// Package authservertest provides an in-process authorization server admin
// API for tests. Challenges are one-shot: the first accept or reject wins.
package authservertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"consentd/internal/consent/adapters/authserver"
	"consentd/internal/consent/models"
)

const (
	statePending = iota
	stateAccepted
	stateRejected
	stateExpired
)

type challenge struct {
	model  models.Challenge
	state  int
	accept *authserver.AcceptBody
	reject *authserver.RejectBody
}

// Fault describes an injected failure for the next matching call.
type Fault struct {
	// Status is written instead of handling the call. Defaults to 500.
	Status int
	// ApplyFirst handles the call and then fails, simulating a lost response.
	ApplyFirst bool
	// Drop closes the connection without a response.
	Drop bool
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	challenges map[string]*challenge
	faults     map[string][]Fault
	calls      map[string]int
}

func NewServer() *Server {
	s := &Server{
		challenges: map[string]*challenge{},
		faults:     map[string][]Fault{},
		calls:      map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/oauth2/auth/requests/consent", s.handleGet)
	mux.HandleFunc("PUT /admin/oauth2/auth/requests/consent/accept", s.handleAccept)
	mux.HandleFunc("PUT /admin/oauth2/auth/requests/consent/reject", s.handleReject)
	s.Server = httptest.NewServer(mux)
	return s
}

// AddChallenge registers a pending challenge.
func (s *Server) AddChallenge(c models.Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.ID] = &challenge{model: c}
}

// Expire marks a pending challenge as stale without deciding it.
func (s *Server) Expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.challenges[id]; ok && c.state == statePending {
		c.state = stateExpired
	}
}

// FailNext queues faults for an operation (authserver.OpGet, OpAccept, OpReject).
func (s *Server) FailNext(op string, faults ...Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], faults...)
}

// Calls returns how many requests reached an operation.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Accepted returns the body that consumed the challenge, if it was accepted.
func (s *Server) Accepted(id string) (authserver.AcceptBody, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[id]
	if !ok || c.accept == nil {
		return authserver.AcceptBody{}, false
	}
	return *c.accept, true
}

// Rejected returns the body that consumed the challenge, if it was rejected.
func (s *Server) Rejected(id string) (authserver.RejectBody, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[id]
	if !ok || c.reject == nil {
		return authserver.RejectBody{}, false
	}
	return *c.reject, true
}

// RedirectFor is the redirect the server hands out for a consumed challenge.
func (s *Server) RedirectFor(id string) string {
	return s.URL + "/oauth2/auth?consent_verifier=" + id
}

func (s *Server) nextFault(op string) (Fault, bool) {
	s.calls[op]++
	queue := s.faults[op]
	if len(queue) == 0 {
		return Fault{}, false
	}
	s.faults[op] = queue[1:]
	return queue[0], true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.nextFault(authserver.OpGet); ok && !f.ApplyFirst {
		fail(w, f)
		return
	}
	c, ok := s.challenges[r.URL.Query().Get("consent_challenge")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
		return
	}
	switch c.state {
	case statePending:
	case stateExpired:
		writeExpired(w)
		return
	default:
		writeJSON(w, http.StatusGone, map[string]string{
			"error":       "request_was_handled",
			"redirect_to": s.RedirectFor(c.model.ID),
		})
		return
	}
	writeJSON(w, http.StatusOK, wireChallenge(c.model))
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	var body authserver.AcceptBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	s.consume(w, r, authserver.OpAccept, func(c *challenge) {
		c.state = stateAccepted
		c.accept = &body
	})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var body authserver.RejectBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	s.consume(w, r, authserver.OpReject, func(c *challenge) {
		c.state = stateRejected
		c.reject = &body
	})
}

func (s *Server) consume(w http.ResponseWriter, r *http.Request, op string, apply func(*challenge)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, faulted := s.nextFault(op)
	if faulted && !f.ApplyFirst {
		fail(w, f)
		return
	}
	c, ok := s.challenges[r.URL.Query().Get("consent_challenge")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
		return
	}
	if c.state == stateExpired {
		writeExpired(w)
		return
	}
	if c.state != statePending {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":             "request_was_handled",
			"error_description": "the consent request was already handled",
		})
		return
	}
	apply(c)
	if faulted {
		fail(w, f)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect_to": s.RedirectFor(c.model.ID)})
}

func writeExpired(w http.ResponseWriter) {
	writeJSON(w, http.StatusGone, map[string]string{
		"error":             "request_expired",
		"error_description": "the consent request has expired",
	})
}

func fail(w http.ResponseWriter, f Fault) {
	if f.Drop {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
				return
			}
		}
	}
	status := f.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
}

func wireChallenge(c models.Challenge) map[string]any {
	return map[string]any{
		"challenge": c.ID,
		"subject":   c.Subject,
		"client": map[string]any{
			"client_id":   c.Client.ID,
			"client_name": c.Client.DisplayName,
			"metadata":    map[string]any{"trusted": c.Client.Trusted},
		},
		"requested_scope":                 c.RequestedScope,
		"requested_access_token_audience": c.RequestedAudience,
		"skip":                            c.Skip,
		"context":                         c.Context,
		"request_url":                     c.RequestURL,
		"login_session_id":                c.LoginSessionID,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
