// Package auth authenticates operator bearer tokens on admin routes.
package auth

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"consentd/pkg/platform/httputil"
	"consentd/pkg/requestcontext"

	dErrors "consentd/pkg/domain-errors"
)

// JWTValidator defines the interface for validating operator tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims the middleware needs from a validated token.
type JWTClaims struct {
	Operator string
	Scopes   []string
}

// RequireAuth rejects requests without a valid bearer token and stores the
// operator on the context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			ctx = requestcontext.WithOperator(ctx, claims.Operator)
			ctx = withScopes(ctx, claims.Scopes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope rejects authenticated operators whose token lacks scope.
// It must run after RequireAuth.
func RequireScope(scope string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !slices.Contains(scopes(ctx), scope) {
				logger.WarnContext(ctx, "operator lacks required scope",
					"request_id", requestcontext.RequestID(ctx),
					"operator", requestcontext.Operator(ctx),
					"scope", scope,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient scope"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
