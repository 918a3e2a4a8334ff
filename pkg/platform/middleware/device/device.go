// Package device summarizes the caller's browser and OS from the User-Agent
// header so audit records describe the device without storing the raw string.
package device

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"consentd/pkg/requestcontext"
)

// Summarize returns a short "Browser Version on OS" description, or "" for an
// empty header. Bots are labelled as such.
func Summarize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		name, _ := ua.Browser()
		return "bot " + name
	}

	name, version := ua.Browser()
	var b strings.Builder
	b.WriteString(name)
	if version != "" {
		b.WriteString(" ")
		b.WriteString(version)
	}
	if os := ua.OS(); os != "" {
		b.WriteString(" on ")
		b.WriteString(os)
	}
	if ua.Mobile() {
		b.WriteString(" (mobile)")
	}
	return b.String()
}

// Middleware stores the device summary on the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithDeviceSummary(r.Context(), Summarize(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
