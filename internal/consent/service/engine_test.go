package service_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"consentd/internal/consent/adapters/authserver"
	"consentd/internal/consent/adapters/authserver/authservertest"
	"consentd/internal/consent/claims"
	"consentd/internal/consent/models"
	"consentd/internal/consent/service"
	memorystore "consentd/internal/consent/store/memory"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/audit"
	"consentd/pkg/platform/audit/publisher"
	auditmemory "consentd/pkg/platform/audit/store/memory"
	"consentd/pkg/platform/sentinel"
)

// EngineSuite drives full flows against an in-process authorization server.
type EngineSuite struct {
	suite.Suite
	ctx    context.Context
	fake   *authservertest.Server
	memory *memorystore.Store
	events *auditmemory.InMemoryStore
	engine *service.Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.fake = authservertest.NewServer()
	s.memory = memorystore.New(time.Minute)
	s.events = auditmemory.NewInMemoryStore()
	s.engine = s.newEngine(false)
}

func (s *EngineSuite) TearDownTest() {
	s.fake.Close()
}

func (s *EngineSuite) newEngine(localRemember bool) *service.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := authserver.New(s.fake.URL, authserver.WithLogger(logger))
	s.Require().NoError(err)

	builder := claims.NewBuilder(claims.Default())
	opts := []service.Option{service.WithLogger(logger), service.WithLocalRemember(localRemember)}
	resolver := service.NewResolver(client, s.memory, builder, opts...)
	submitter := service.NewSubmitter(client, s.memory, publisher.NewPublisher(s.events), opts...)
	return service.NewEngine(resolver, submitter, builder)
}

func (s *EngineSuite) addChallenge(id string, scope []string, skip bool) {
	s.fake.AddChallenge(models.Challenge{
		ID:                id,
		Subject:           "alice",
		Client:            models.Client{ID: "app", DisplayName: "App"},
		RequestedScope:    scope,
		RequestedAudience: []string{"api"},
		Skip:              skip,
		Context: map[string]any{
			"email":          "alice@example.com",
			"email_verified": true,
		},
	})
}

func (s *EngineSuite) eventActions() []string {
	events, err := s.events.ListBySubject(s.ctx, "alice")
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, ev := range events {
		actions = append(actions, ev.Action)
	}
	return actions
}

func (s *EngineSuite) TestPartialGrantIsRemembered() {
	s.addChallenge("ch-a", []string{"openid", "offline"}, false)

	begin, err := s.engine.Begin(s.ctx, "ch-a")
	s.Require().NoError(err)
	s.Require().NotNil(begin.Challenge)
	s.Empty(begin.RedirectTo)
	s.Equal(0, s.fake.Calls(authserver.OpAccept))

	req := models.DecideRequest{Challenge: "ch-a", GrantScope: []string{"openid"}, Remember: true, Action: models.ActionAllow}
	s.Require().NoError(req.Validate())
	redirect, err := s.engine.Decide(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(s.fake.RedirectFor("ch-a"), redirect)

	body, ok := s.fake.Accepted("ch-a")
	s.Require().True(ok)
	s.Equal([]string{"openid"}, body.GrantScope)
	s.Equal([]string{"api"}, body.GrantAccessTokenAudience)

	record, err := s.memory.Lookup(s.ctx, "alice", "app")
	s.Require().NoError(err)
	s.Equal([]string{"openid"}, record.GrantedScope)
	s.True(record.ExpiresAt.IsZero())
	s.Equal([]string{string(audit.EventConsentGranted)}, s.eventActions())
}

func (s *EngineSuite) TestDenyRejectsWithoutTouchingMemory() {
	s.addChallenge("ch-b", []string{"openid", "email"}, false)

	redirect, err := s.engine.Decide(s.ctx, models.DecideRequest{Challenge: "ch-b", Action: models.ActionDeny, Remember: true})
	s.Require().NoError(err)
	s.Equal(s.fake.RedirectFor("ch-b"), redirect)

	body, ok := s.fake.Rejected("ch-b")
	s.Require().True(ok)
	s.Equal("access_denied", body.Error)

	_, err = s.memory.Lookup(s.ctx, "alice", "app")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Equal([]string{string(audit.EventConsentRejected)}, s.eventActions())
}

func (s *EngineSuite) TestSkipSubmitsOnceWithoutPrompt() {
	s.addChallenge("ch-c", []string{"openid", "email"}, true)

	begin, err := s.engine.Begin(s.ctx, "ch-c")
	s.Require().NoError(err)
	s.Nil(begin.Challenge)
	s.Equal(s.fake.RedirectFor("ch-c"), begin.RedirectTo)
	s.Equal(1, s.fake.Calls(authserver.OpAccept))

	body, ok := s.fake.Accepted("ch-c")
	s.Require().True(ok)
	s.Equal([]string{"openid", "email"}, body.GrantScope)
	s.Equal("alice@example.com", body.Session.IDToken["email"])
	s.False(body.Remember)
	s.Equal([]string{string(audit.EventConsentSkipped)}, s.eventActions())
}

func (s *EngineSuite) TestSecondDecisionIsAlreadyUsed() {
	s.addChallenge("ch-d", []string{"openid"}, false)
	allow := models.DecideRequest{Challenge: "ch-d", GrantScope: []string{"openid"}, Action: models.ActionAllow}

	_, err := s.engine.Decide(s.ctx, allow)
	s.Require().NoError(err)

	_, err = s.engine.Decide(s.ctx, allow)
	s.True(dErrors.HasCode(err, dErrors.CodeChallengeAlreadyUsed), "got %v", err)

	_, err = s.engine.Decide(s.ctx, models.DecideRequest{Challenge: "ch-d", Action: models.ActionDeny})
	s.True(dErrors.HasCode(err, dErrors.CodeChallengeAlreadyUsed), "got %v", err)

	_, err = s.engine.Begin(s.ctx, "ch-d")
	s.True(dErrors.HasCode(err, dErrors.CodeChallengeAlreadyUsed), "got %v", err)

	s.Equal(1, s.fake.Calls(authserver.OpAccept))
	s.Equal(0, s.fake.Calls(authserver.OpReject))
	s.Len(s.eventActions(), 1)
}

func (s *EngineSuite) TestStaleChallengeIsExpired() {
	s.addChallenge("ch-stale", []string{"openid"}, false)
	s.fake.Expire("ch-stale")

	_, err := s.engine.Decide(s.ctx, models.DecideRequest{Challenge: "ch-stale", GrantScope: []string{"openid"}, Action: models.ActionAllow})
	s.True(dErrors.HasCode(err, dErrors.CodeChallengeExpired), "got %v", err)
	s.Equal(0, s.fake.Calls(authserver.OpAccept))
	s.Empty(s.eventActions())
}

func (s *EngineSuite) TestConcurrentDecisionsConsumeOnce() {
	s.addChallenge("ch-race", []string{"openid"}, false)
	allow := models.DecideRequest{Challenge: "ch-race", GrantScope: []string{"openid"}, Action: models.ActionAllow}

	const workers = 6
	errs := make(chan error, workers)
	for range workers {
		go func() {
			_, err := s.engine.Decide(s.ctx, allow)
			errs <- err
		}()
	}

	succeeded := 0
	for range workers {
		err := <-errs
		if err == nil {
			succeeded++
			continue
		}
		s.True(dErrors.HasCode(err, dErrors.CodeChallengeAlreadyUsed), "got %v", err)
	}
	s.Equal(1, succeeded)
}

func (s *EngineSuite) TestLocalRememberSkipsCoveredRequests() {
	engine := s.newEngine(true)
	s.Require().NoError(s.memory.Upsert(s.ctx, "alice", "app", []string{"openid", "email"}, []string{"api"}, time.Hour))

	s.addChallenge("ch-covered", []string{"openid"}, false)
	begin, err := engine.Begin(s.ctx, "ch-covered")
	s.Require().NoError(err)
	s.NotEmpty(begin.RedirectTo)

	body, ok := s.fake.Accepted("ch-covered")
	s.Require().True(ok)
	s.Equal([]string{"openid"}, body.GrantScope)

	s.addChallenge("ch-wider", []string{"openid", "phone"}, false)
	begin, err = engine.Begin(s.ctx, "ch-wider")
	s.Require().NoError(err)
	s.NotNil(begin.Challenge)
}

func (s *EngineSuite) TestUpstreamFailures() {
	s.Run("unknown challenge", func() {
		_, err := s.engine.Begin(s.ctx, "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeChallengeNotFound))
	})

	s.Run("ambiguous accept is surfaced and not retried", func() {
		s.addChallenge("ch-amb", []string{"openid"}, false)
		s.fake.FailNext(authserver.OpAccept, authservertest.Fault{Status: http.StatusBadGateway})

		_, err := s.engine.Decide(s.ctx, models.DecideRequest{Challenge: "ch-amb", GrantScope: []string{"openid"}, Action: models.ActionAllow})
		s.True(dErrors.HasCode(err, dErrors.CodeAmbiguousSubmission))
		s.Equal(1, s.fake.Calls(authserver.OpAccept))
	})
}
