// Package e2e drives consentd through its public HTTP surface against an
// in-process authorization server. Scenarios live in features/.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"consentd/internal/consent/adapters/authserver"
	"consentd/internal/consent/adapters/authserver/authservertest"
	"consentd/internal/consent/claims"
	"consentd/internal/consent/models"
	"consentd/internal/consent/service"
	memorystore "consentd/internal/consent/store/memory"
	jwttoken "consentd/internal/jwt_token"
	httptransport "consentd/internal/transport/http"
	"consentd/pkg/platform/audit/publisher"
	auditmemory "consentd/pkg/platform/audit/store/memory"
)

const (
	jwtKey      = "e2e-signing-key-0123456789"
	jwtIssuer   = "consentd"
	jwtAudience = "consentd-admin"
)

// TestContext is the per-scenario world: one fake authorization server, one
// consentd instance and the last HTTP exchange.
type TestContext struct {
	AS     *authservertest.Server
	Server *httptest.Server
	Memory *memorystore.Store
	Events *auditmemory.InMemoryStore

	jwt         *jwttoken.JWTService
	accessToken string

	lastStatus int
	lastBody   []byte
}

func NewTestContext() (*TestContext, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	as := authservertest.NewServer()
	admin, err := authserver.New(as.URL, authserver.WithLogger(logger), authserver.WithTimeout(2*time.Second))
	if err != nil {
		as.Close()
		return nil, err
	}

	memory := memorystore.New(time.Minute)
	events := auditmemory.NewInMemoryStore()
	pub := publisher.NewPublisher(events)
	builder := claims.NewBuilder(claims.Default())
	opts := []service.Option{service.WithLogger(logger)}

	engine := service.NewEngine(
		service.NewResolver(admin, memory, builder, opts...),
		service.NewSubmitter(admin, memory, pub, opts...),
		builder,
	)
	memoryAdmin := service.NewMemoryAdmin(memory, pub, opts...)
	jwt := jwttoken.NewJWTService(jwtKey, jwtIssuer, jwtAudience)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    logger,
		Consent:   engine,
		Memory:    memoryAdmin,
		Health:    memoryAdmin,
		Validator: jwttoken.NewJWTServiceAdapter(jwt),
	})
	return &TestContext{
		AS:     as,
		Server: httptest.NewServer(router),
		Memory: memory,
		Events: events,
		jwt:    jwt,
	}, nil
}

func (tc *TestContext) Close() {
	tc.Server.Close()
	tc.AS.Close()
}

// AddChallenge registers a pending challenge on the fake authorization server.
func (tc *TestContext) AddChallenge(id, subject, clientID string, scope []string, skip bool) {
	tc.AS.AddChallenge(models.Challenge{
		ID:                id,
		Subject:           subject,
		Client:            models.Client{ID: clientID, DisplayName: clientID},
		RequestedScope:    scope,
		RequestedAudience: []string{},
		Skip:              skip,
		Context:           map[string]any{"email": subject + "@example.com", "email_verified": true},
	})
}

func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }
func (tc *TestContext) GetAccessToken() string      { return tc.accessToken }

// IssueOperatorToken mints an admin token the way `consentd token` does.
func (tc *TestContext) IssueOperatorToken(operator string, scopes []string) (string, error) {
	return tc.jwt.GenerateOperatorToken(operator, scopes, time.Hour)
}

func (tc *TestContext) POST(path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(raw), nil)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	return tc.do(http.MethodDelete, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequest(method, tc.Server.URL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := tc.Server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetResponseStatus() int { return tc.lastStatus }

// GetResponseField reads a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", strings.TrimSpace(string(tc.lastBody)))
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q: %s", field, strings.TrimSpace(string(tc.lastBody)))
	}
	return v, nil
}

func (tc *TestContext) ResponseContains(field string) bool {
	_, err := tc.GetResponseField(field)
	return err == nil
}

func (tc *TestContext) FakeAS() *authservertest.Server  { return tc.AS }
func (tc *TestContext) MemoryStore() *memorystore.Store { return tc.Memory }
