// Package httptransport assembles the public router: shared middleware, the
// consent routes, the operator admin routes and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"consentd/internal/consent/handler"
	authmw "consentd/pkg/platform/middleware/auth"
	"consentd/pkg/platform/middleware/device"
	"consentd/pkg/platform/middleware/metadata"
	"consentd/pkg/platform/middleware/request"
	"consentd/pkg/platform/middleware/requesttime"
)

// Deps are the collaborators the router mounts. Metrics is optional.
type Deps struct {
	Logger    *slog.Logger
	Consent   handler.Service
	Memory    handler.MemoryService
	Health    handler.HealthChecker
	Validator authmw.JWTValidator
	Metrics   http.Handler
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Logger(d.Logger))
	r.Use(request.Recovery(d.Logger))
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)
	r.Use(requesttime.Middleware)

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}
	handler.NewHealth(d.Health, d.Logger).Register(r)
	handler.New(d.Consent, d.Logger).Register(r)
	handler.NewAdmin(d.Memory, d.Validator, d.Logger).Register(r)
	return r
}
