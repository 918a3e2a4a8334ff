// Package requesttime pins a single "now" per request so memory-record
// issue and expiry times agree with audit timestamps.
package requesttime

import (
	"net/http"
	"time"

	"consentd/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
