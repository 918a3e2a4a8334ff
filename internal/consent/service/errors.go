package service

import (
	"context"
	"errors"

	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/sentinel"
)

// translate maps adapter and store facts onto domain codes. Domain errors
// pass through untouched.
func translate(err error) error {
	var de *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeChallengeNotFound, "consent challenge not found")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeChallengeExpired, "consent challenge expired")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeChallengeAlreadyUsed, "consent challenge already used")
	case errors.Is(err, sentinel.ErrAmbiguous):
		return dErrors.Wrap(err, dErrors.CodeAmbiguousSubmission, "submission outcome unknown; restart the authorization flow")
	case errors.Is(err, sentinel.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "authorization server unavailable; try again")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "consent processing failed")
	}
}
