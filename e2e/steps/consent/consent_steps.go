package consent

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/cucumber/godog"

	"consentd/internal/consent/adapters/authserver"
	"consentd/internal/consent/adapters/authserver/authservertest"
	memorystore "consentd/internal/consent/store/memory"
	"consentd/pkg/platform/sentinel"
)

// TestContext defines the methods needed from the main test context.
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	AddChallenge(id, subject, clientID string, scope []string, skip bool)
}

// World exposes the collaborators consent assertions inspect directly.
type World interface {
	TestContext
	FakeAS() *authservertest.Server
	MemoryStore() *memorystore.Store
}

// RegisterSteps registers consent flow step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc World) {
	steps := &consentSteps{tc: tc}

	ctx.Step(`^a pending consent challenge "([^"]*)" for "([^"]*)" on client "([^"]*)" requesting "([^"]*)"$`, steps.pendingChallenge)
	ctx.Step(`^a consent challenge "([^"]*)" the authorization server will skip for "([^"]*)" on client "([^"]*)" requesting "([^"]*)"$`, steps.skippedChallenge)
	ctx.Step(`^the authorization server expired challenge "([^"]*)"$`, steps.expiredChallenge)
	ctx.Step(`^I open the consent prompt for "([^"]*)"$`, steps.openPrompt)
	ctx.Step(`^I allow "([^"]*)" on challenge "([^"]*)"$`, steps.allow)
	ctx.Step(`^I allow "([^"]*)" on challenge "([^"]*)" and remember it$`, steps.allowAndRemember)
	ctx.Step(`^I deny challenge "([^"]*)"$`, steps.deny)

	ctx.Step(`^the authorization server should have accepted "([^"]*)" with scope "([^"]*)"$`, steps.acceptedWithScope)
	ctx.Step(`^the authorization server should have rejected "([^"]*)" with "([^"]*)"$`, steps.rejectedWith)
	ctx.Step(`^the authorization server should have received (\d+) accept calls?$`, steps.acceptCalls)
	ctx.Step(`^"([^"]*)" should have a remembered grant for client "([^"]*)" with scope "([^"]*)"$`, steps.rememberedGrant)
	ctx.Step(`^"([^"]*)" should have no remembered grant for client "([^"]*)"$`, steps.noRememberedGrant)
}

type consentSteps struct {
	tc World
}

func splitScope(scope string) []string {
	if strings.TrimSpace(scope) == "" {
		return []string{}
	}
	return strings.Split(scope, " ")
}

func (s *consentSteps) pendingChallenge(_ context.Context, id, subject, clientID, scope string) error {
	s.tc.AddChallenge(id, subject, clientID, splitScope(scope), false)
	return nil
}

func (s *consentSteps) skippedChallenge(_ context.Context, id, subject, clientID, scope string) error {
	s.tc.AddChallenge(id, subject, clientID, splitScope(scope), true)
	return nil
}

func (s *consentSteps) expiredChallenge(_ context.Context, id string) error {
	s.tc.FakeAS().Expire(id)
	return nil
}

func (s *consentSteps) openPrompt(_ context.Context, id string) error {
	return s.tc.GET("/consent?consent_challenge="+url.QueryEscape(id), nil)
}

func (s *consentSteps) allow(_ context.Context, scope, id string) error {
	return s.tc.POST("/consent", map[string]any{
		"challenge":   id,
		"grant_scope": splitScope(scope),
		"action":      "allow",
	})
}

func (s *consentSteps) allowAndRemember(_ context.Context, scope, id string) error {
	return s.tc.POST("/consent", map[string]any{
		"challenge":   id,
		"grant_scope": splitScope(scope),
		"remember":    true,
		"action":      "allow",
	})
}

func (s *consentSteps) deny(_ context.Context, id string) error {
	return s.tc.POST("/consent", map[string]any{
		"challenge": id,
		"action":    "deny",
	})
}

func (s *consentSteps) acceptedWithScope(_ context.Context, id, scope string) error {
	body, ok := s.tc.FakeAS().Accepted(id)
	if !ok {
		return fmt.Errorf("challenge %s was not accepted", id)
	}
	if want := splitScope(scope); !slices.Equal(body.GrantScope, want) {
		return fmt.Errorf("expected grant_scope %v, got %v", want, body.GrantScope)
	}
	return nil
}

func (s *consentSteps) rejectedWith(_ context.Context, id, code string) error {
	body, ok := s.tc.FakeAS().Rejected(id)
	if !ok {
		return fmt.Errorf("challenge %s was not rejected", id)
	}
	if body.Error != code {
		return fmt.Errorf("expected rejection %q, got %q", code, body.Error)
	}
	return nil
}

func (s *consentSteps) acceptCalls(_ context.Context, n int) error {
	if got := s.tc.FakeAS().Calls(authserver.OpAccept); got != n {
		return fmt.Errorf("expected %d accept calls, got %d", n, got)
	}
	return nil
}

func (s *consentSteps) rememberedGrant(ctx context.Context, subject, clientID, scope string) error {
	record, err := s.tc.MemoryStore().Lookup(ctx, subject, clientID)
	if err != nil {
		return fmt.Errorf("lookup remembered grant: %w", err)
	}
	if want := splitScope(scope); !slices.Equal(record.GrantedScope, want) {
		return fmt.Errorf("expected remembered scope %v, got %v", want, record.GrantedScope)
	}
	return nil
}

func (s *consentSteps) noRememberedGrant(ctx context.Context, subject, clientID string) error {
	_, err := s.tc.MemoryStore().Lookup(ctx, subject, clientID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("unexpected remembered grant for %s on %s", subject, clientID)
}
