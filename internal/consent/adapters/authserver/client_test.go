package authserver_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"consentd/internal/consent/adapters/authserver"
	"consentd/internal/consent/adapters/authserver/authservertest"
	"consentd/internal/consent/models"
	"consentd/pkg/platform/circuit"
	"consentd/pkg/platform/sentinel"
)

type ClientSuite struct {
	suite.Suite
	fake    *authservertest.Server
	client  *authserver.Client
	breaker *circuit.Breaker
	ctx     context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.fake = authservertest.NewServer()
	s.breaker = circuit.New("authserver-admin")
	client, err := authserver.New(s.fake.URL,
		authserver.WithTimeout(2*time.Second),
		authserver.WithBreaker(s.breaker),
	)
	s.Require().NoError(err)
	s.client = client
	s.ctx = context.Background()
	s.fake.AddChallenge(models.Challenge{
		ID:                "ch-1",
		Subject:           "alice",
		Client:            models.Client{ID: "app", DisplayName: "App", Trusted: true},
		RequestedScope:    []string{"openid", "email"},
		RequestedAudience: []string{"api"},
		Context:           map[string]any{"acr": "1"},
	})
}

func (s *ClientSuite) TearDownTest() {
	s.fake.Close()
}

func (s *ClientSuite) TestNew() {
	s.Run("rejects non-http urls", func() {
		_, err := authserver.New("ftp://example.com")
		s.Require().Error(err)
	})
}

func (s *ClientSuite) TestGetConsentRequest() {
	s.Run("decodes the challenge", func() {
		ch, err := s.client.GetConsentRequest(s.ctx, "ch-1")
		s.Require().NoError(err)
		s.Equal("ch-1", ch.ID)
		s.Equal("alice", ch.Subject)
		s.Equal("app", ch.Client.ID)
		s.True(ch.Client.Trusted)
		s.Equal([]string{"openid", "email"}, ch.RequestedScope)
		s.Equal([]string{"api"}, ch.RequestedAudience)
		s.Equal("1", ch.Context["acr"])
	})

	s.Run("unknown challenge is not found", func() {
		_, err := s.client.GetConsentRequest(s.ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("handled challenge is already used", func() {
		_, err := s.client.AcceptConsentRequest(s.ctx, "ch-1", models.Decision{Outcome: models.OutcomeGranted})
		s.Require().NoError(err)

		_, err = s.client.GetConsentRequest(s.ctx, "ch-1")
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
		s.NotErrorIs(err, sentinel.ErrExpired)
	})

	s.Run("stale challenge is expired", func() {
		s.fake.AddChallenge(models.Challenge{ID: "ch-stale", Subject: "alice", Client: models.Client{ID: "app"}})
		s.fake.Expire("ch-stale")

		_, err := s.client.GetConsentRequest(s.ctx, "ch-stale")
		s.ErrorIs(err, sentinel.ErrExpired)

		_, err = s.client.AcceptConsentRequest(s.ctx, "ch-stale", models.Decision{Outcome: models.OutcomeGranted})
		s.ErrorIs(err, sentinel.ErrExpired)
	})

	s.Run("server errors are unavailable", func() {
		s.fake.FailNext(authserver.OpGet, authservertest.Fault{Status: http.StatusBadGateway})
		_, err := s.client.GetConsentRequest(s.ctx, "ch-1")
		s.ErrorIs(err, sentinel.ErrUnavailable)
	})
}

func (s *ClientSuite) TestAcceptConsentRequest() {
	s.Run("sends the grant and returns the redirect", func() {
		redirect, err := s.client.AcceptConsentRequest(s.ctx, "ch-1", models.Decision{
			Outcome:         models.OutcomeGranted,
			GrantedScope:    []string{"openid"},
			GrantedAudience: []string{"api"},
			SessionClaims: models.SessionClaims{
				IDToken:     map[string]any{"email": "alice@example.com"},
				AccessToken: map[string]any{},
			},
			Remember:    true,
			RememberFor: time.Hour,
		})
		s.Require().NoError(err)
		s.Equal(s.fake.RedirectFor("ch-1"), redirect)

		body, ok := s.fake.Accepted("ch-1")
		s.Require().True(ok)
		s.Equal([]string{"openid"}, body.GrantScope)
		s.Equal([]string{"api"}, body.GrantAccessTokenAudience)
		s.True(body.Remember)
		s.EqualValues(3600, body.RememberFor)
		s.Equal("alice@example.com", body.Session.IDToken["email"])
	})

	s.Run("second submission is already used", func() {
		_, err := s.client.AcceptConsentRequest(s.ctx, "ch-1", models.Decision{Outcome: models.OutcomeGranted})
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		_, err = s.client.RejectConsentRequest(s.ctx, "ch-1", models.RejectAccessDenied, "")
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("unknown challenge is not found", func() {
		_, err := s.client.AcceptConsentRequest(s.ctx, "missing", models.Decision{Outcome: models.OutcomeGranted})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ClientSuite) TestAmbiguousSubmission() {
	s.Run("server error on submit is ambiguous", func() {
		s.fake.FailNext(authserver.OpAccept, authservertest.Fault{Status: http.StatusInternalServerError})
		_, err := s.client.AcceptConsentRequest(s.ctx, "ch-1", models.Decision{Outcome: models.OutcomeGranted})
		s.ErrorIs(err, sentinel.ErrAmbiguous)
		s.NotErrorIs(err, sentinel.ErrUnavailable)
	})

	s.Run("throttled submit was not processed", func() {
		s.fake.FailNext(authserver.OpReject, authservertest.Fault{Status: http.StatusTooManyRequests})
		_, err := s.client.RejectConsentRequest(s.ctx, "ch-1", models.RejectAccessDenied, "")
		s.ErrorIs(err, sentinel.ErrUnavailable)
		s.NotErrorIs(err, sentinel.ErrAmbiguous)

		_, rejected := s.fake.Rejected("ch-1")
		s.False(rejected)
	})

	s.Run("lost response after apply is ambiguous and the challenge is consumed", func() {
		s.fake.FailNext(authserver.OpAccept, authservertest.Fault{ApplyFirst: true, Drop: true})
		_, err := s.client.AcceptConsentRequest(s.ctx, "ch-1", models.Decision{Outcome: models.OutcomeGranted, GrantedScope: []string{"openid"}})
		s.ErrorIs(err, sentinel.ErrAmbiguous)

		_, accepted := s.fake.Accepted("ch-1")
		s.True(accepted)
	})
}

func (s *ClientSuite) TestUnreachableServer() {
	client, err := authserver.New("http://127.0.0.1:1", authserver.WithTimeout(time.Second))
	s.Require().NoError(err)

	s.Run("fetch is unavailable", func() {
		_, err := client.GetConsentRequest(s.ctx, "ch-1")
		s.ErrorIs(err, sentinel.ErrUnavailable)
	})

	s.Run("submit that never left is unavailable", func() {
		_, err := client.RejectConsentRequest(s.ctx, "ch-1", models.RejectAccessDenied, "")
		s.ErrorIs(err, sentinel.ErrUnavailable)
	})
}

func (s *ClientSuite) TestBreakerTracksUpstreamHealth() {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	breaker := circuit.New("authserver-admin",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	client, err := authserver.New(s.fake.URL, authserver.WithTimeout(2*time.Second), authserver.WithBreaker(breaker))
	s.Require().NoError(err)

	s.fake.FailNext(authserver.OpGet,
		authservertest.Fault{Status: http.StatusServiceUnavailable},
		authservertest.Fault{Status: http.StatusServiceUnavailable},
	)
	_, _ = client.GetConsentRequest(s.ctx, "ch-1")
	_, _ = client.GetConsentRequest(s.ctx, "ch-1")
	s.True(breaker.IsOpen())

	s.Run("open breaker fails fast without calling upstream", func() {
		_, err := client.GetConsentRequest(s.ctx, "ch-1")
		s.ErrorIs(err, sentinel.ErrUnavailable)

		_, err = client.AcceptConsentRequest(s.ctx, "ch-1", models.Decision{Outcome: models.OutcomeGranted})
		s.ErrorIs(err, sentinel.ErrUnavailable)
		s.NotErrorIs(err, sentinel.ErrAmbiguous)

		s.Equal(2, s.fake.Calls(authserver.OpGet))
		s.Equal(0, s.fake.Calls(authserver.OpAccept))
	})

	s.Run("trial call after cooldown closes the breaker", func() {
		now = now.Add(time.Minute)
		_, err := client.GetConsentRequest(s.ctx, "ch-1")
		s.Require().NoError(err)
		s.False(breaker.IsOpen())
	})

	s.Run("a not found answer is healthy", func() {
		_, err := client.GetConsentRequest(s.ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.False(breaker.IsOpen())
	})
}

func (s *ClientSuite) TestRejectConsentRequest() {
	redirect, err := s.client.RejectConsentRequest(s.ctx, "ch-1", models.RejectAccessDenied, "The resource owner denied the request")
	s.Require().NoError(err)
	s.Equal(s.fake.RedirectFor("ch-1"), redirect)

	body, ok := s.fake.Rejected("ch-1")
	s.Require().True(ok)
	s.Equal("access_denied", body.Error)
	s.Equal("The resource owner denied the request", body.ErrorDescription)

	_, accepted := s.fake.Accepted("ch-1")
	s.False(accepted)
}
