package admin

import (
	"context"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext defines the methods needed from the main test context.
type TestContext interface {
	GET(path string, headers map[string]string) error
	DELETE(path string, headers map[string]string) error
	IssueOperatorToken(operator string, scopes []string) (string, error)
	GetAccessToken() string
	SetAccessToken(token string)
}

// RegisterSteps registers operator admin step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^I am operator "([^"]*)" with scopes "([^"]*)"$`, steps.operatorWithScopes)
	ctx.Step(`^I look up the remembered grant of "([^"]*)" for client "([^"]*)"$`, steps.lookup)
	ctx.Step(`^I revoke the remembered grant of "([^"]*)" for client "([^"]*)"$`, steps.revoke)
}

type adminSteps struct {
	tc TestContext
}

func (s *adminSteps) operatorWithScopes(_ context.Context, operator, scopes string) error {
	token, err := s.tc.IssueOperatorToken(operator, strings.Fields(scopes))
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(token)
	return nil
}

func (s *adminSteps) lookup(_ context.Context, subject, clientID string) error {
	return s.tc.GET(memoryPath(subject, clientID), s.authHeader())
}

func (s *adminSteps) revoke(_ context.Context, subject, clientID string) error {
	return s.tc.DELETE(memoryPath(subject, clientID), s.authHeader())
}

func (s *adminSteps) authHeader() map[string]string {
	if s.tc.GetAccessToken() == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + s.tc.GetAccessToken()}
}

func memoryPath(subject, clientID string) string {
	q := url.Values{"subject": {subject}, "client_id": {clientID}}
	return "/admin/consent-memory?" + q.Encode()
}
