package e2e

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"consentd/e2e/steps/admin"
	"consentd/e2e/steps/consent"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	registerCommonSteps(ctx, tc)
	consent.RegisterSteps(ctx, tc)
	admin.RegisterSteps(ctx, tc)
}

func registerCommonSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^the response status should be (\d+)$`, func(_ context.Context, status int) error {
		if got := tc.GetResponseStatus(); got != status {
			return fmt.Errorf("expected status %d, got %d", status, got)
		}
		return nil
	})
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, func(_ context.Context, field, want string) error {
		got, err := tc.GetResponseField(field)
		if err != nil {
			return err
		}
		if fmt.Sprint(got) != want {
			return fmt.Errorf("expected %s=%q, got %q", field, want, fmt.Sprint(got))
		}
		return nil
	})
	ctx.Step(`^the response should contain "([^"]*)"$`, func(_ context.Context, field string) error {
		if !tc.ResponseContains(field) {
			return fmt.Errorf("response has no field %q", field)
		}
		return nil
	})
	ctx.Step(`^the response should not contain "([^"]*)"$`, func(_ context.Context, field string) error {
		if tc.ResponseContains(field) {
			return fmt.Errorf("response unexpectedly has field %q", field)
		}
		return nil
	})
}
