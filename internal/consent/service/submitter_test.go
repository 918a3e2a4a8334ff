package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"consentd/internal/consent/models"
	"consentd/internal/consent/service/mocks"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/audit"
	"consentd/pkg/platform/sentinel"
	"consentd/pkg/requestcontext"
)

type SubmitterSuite struct {
	suite.Suite
	ctx       context.Context
	admin     *mocks.MockAdminClient
	memory    *mocks.MockMemoryStore
	audit     *mocks.MockAuditPublisher
	submitter *Submitter
}

func TestSubmitterSuite(t *testing.T) {
	suite.Run(t, new(SubmitterSuite))
}

func (s *SubmitterSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.admin = mocks.NewMockAdminClient(ctrl)
	s.memory = mocks.NewMockMemoryStore(ctrl)
	s.audit = mocks.NewMockAuditPublisher(ctrl)
	s.submitter = NewSubmitter(s.admin, s.memory, s.audit, WithLogger(discardLogger()))

	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "curl/8.0")
	s.ctx = requestcontext.WithDeviceSummary(ctx, "Firefox 121.0 on Linux")
}

func grantedDecision(scope ...string) models.Decision {
	return models.Decision{
		Outcome:         models.OutcomeGranted,
		GrantedScope:    scope,
		GrantedAudience: []string{"api"},
	}
}

func (s *SubmitterSuite) TestSubmit() {
	s.Run("accepts, remembers and audits", func() {
		decision := grantedDecision("openid")
		decision.Remember = true
		decision.RememberFor = time.Hour

		s.admin.EXPECT().AcceptConsentRequest(gomock.Any(), "ch-1", decision).Return("https://as/cb", nil)
		s.memory.EXPECT().Upsert(gomock.Any(), "alice", "app", []string{"openid"}, []string{"api"}, time.Hour).Return(nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
			s.Equal(string(audit.EventConsentGranted), ev.Action)
			s.Equal(audit.CategoryCompliance, ev.Category)
			s.Equal("alice", ev.Subject)
			s.Equal("app", ev.ClientID)
			s.Equal([]string{"openid"}, ev.GrantedScope)
			s.True(ev.Remembered)
			s.Equal("req-1", ev.RequestID)
			s.Equal("203.0.113.7", ev.ClientIP)
			s.Equal("Firefox 121.0 on Linux", ev.UserAgent)
			return nil
		})

		redirect, err := s.submitter.Submit(s.ctx, testChallenge(), decision)
		s.Require().NoError(err)
		s.Equal("https://as/cb", redirect)
	})

	s.Run("a failed memory write does not fail the submission", func() {
		decision := grantedDecision("openid")
		decision.Remember = true

		s.admin.EXPECT().AcceptConsentRequest(gomock.Any(), "ch-1", decision).Return("https://as/cb", nil)
		s.memory.EXPECT().Upsert(gomock.Any(), "alice", "app", gomock.Any(), gomock.Any(), time.Duration(0)).
			Return(errors.New("redis: connection refused"))
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		redirect, err := s.submitter.Submit(s.ctx, testChallenge(), decision)
		s.Require().NoError(err)
		s.Equal("https://as/cb", redirect)
	})

	s.Run("a failed audit write does not fail the submission", func() {
		s.admin.EXPECT().AcceptConsentRequest(gomock.Any(), "ch-1", gomock.Any()).Return("https://as/cb", nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit buffer full"))

		_, err := s.submitter.Submit(s.ctx, testChallenge(), grantedDecision("openid"))
		s.Require().NoError(err)
	})

	s.Run("a widened scope is refused before any call", func() {
		_, err := s.submitter.Submit(s.ctx, testChallenge(), grantedDecision("openid", "admin"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDecision))
	})

	s.Run("a widened audience is refused before any call", func() {
		decision := grantedDecision("openid")
		decision.GrantedAudience = []string{"api", "billing"}
		_, err := s.submitter.Submit(s.ctx, testChallenge(), decision)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDecision))
	})

	s.Run("a denied decision rejects", func() {
		s.admin.EXPECT().RejectConsentRequest(gomock.Any(), "ch-1", models.RejectAccessDenied, gomock.Any()).Return("https://as/denied", nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		redirect, err := s.submitter.Submit(s.ctx, testChallenge(), models.Decision{Outcome: models.OutcomeDenied, Remember: true})
		s.Require().NoError(err)
		s.Equal("https://as/denied", redirect)
	})
}

func (s *SubmitterSuite) TestSubmitFailures() {
	cases := []struct {
		name string
		err  error
		code dErrors.Code
	}{
		{"already used", sentinel.ErrAlreadyUsed, dErrors.CodeChallengeAlreadyUsed},
		{"not found", sentinel.ErrNotFound, dErrors.CodeChallengeNotFound},
		{"ambiguous", sentinel.ErrAmbiguous, dErrors.CodeAmbiguousSubmission},
		{"never sent", sentinel.ErrUnavailable, dErrors.CodeUpstreamUnavailable},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			decision := grantedDecision("openid")
			decision.Remember = true
			s.admin.EXPECT().AcceptConsentRequest(gomock.Any(), "ch-1", decision).Return("", tc.err).Times(1)

			redirect, err := s.submitter.Submit(s.ctx, testChallenge(), decision)
			s.Empty(redirect)
			s.True(dErrors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (s *SubmitterSuite) TestSubmitCached() {
	s.Run("audits a skipped prompt", func() {
		decision := grantedDecision("openid")
		s.admin.EXPECT().AcceptConsentRequest(gomock.Any(), "ch-1", decision).Return("https://as/cb", nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
			s.Equal(string(audit.EventConsentSkipped), ev.Action)
			s.Equal(string(models.SourceAuthServer), ev.Reason)
			return nil
		})

		_, err := s.submitter.SubmitCached(s.ctx, &models.ResolveResult{
			Challenge:      testChallenge(),
			CachedDecision: &decision,
			Source:         models.SourceAuthServer,
		})
		s.Require().NoError(err)
	})

	s.Run("refuses a result without a decision", func() {
		_, err := s.submitter.SubmitCached(s.ctx, &models.ResolveResult{Challenge: testChallenge()})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *SubmitterSuite) TestReject() {
	s.Run("passes the code and description", func() {
		s.admin.EXPECT().RejectConsentRequest(gomock.Any(), "ch-1", models.RejectConsentRequired, "").Return("https://as/denied", nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
			s.Equal(string(audit.EventConsentRejected), ev.Action)
			s.Equal("consent_required", ev.Reason)
			s.Empty(ev.GrantedScope)
			return nil
		})

		redirect, err := s.submitter.Reject(s.ctx, testChallenge(), models.RejectConsentRequired, "")
		s.Require().NoError(err)
		s.Equal("https://as/denied", redirect)
	})

	s.Run("unknown codes are refused", func() {
		_, err := s.submitter.Reject(s.ctx, testChallenge(), models.RejectCode("nope"), "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDecision))
	})

	s.Run("a second rejection is already used", func() {
		s.admin.EXPECT().RejectConsentRequest(gomock.Any(), "ch-1", models.RejectAccessDenied, "").Return("", sentinel.ErrAlreadyUsed)

		_, err := s.submitter.Reject(s.ctx, testChallenge(), models.RejectAccessDenied, "")
		s.True(dErrors.HasCode(err, dErrors.CodeChallengeAlreadyUsed))
	})
}
