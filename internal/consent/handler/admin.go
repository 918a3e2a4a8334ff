package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"consentd/internal/consent/models"
	"consentd/pkg/platform/httputil"
	authmw "consentd/pkg/platform/middleware/auth"
	"consentd/pkg/requestcontext"
)

// ScopeAdmin is the operator token scope required on admin routes.
const ScopeAdmin = "consent:admin"

// MemoryService manages remembered decisions.
type MemoryService interface {
	Get(ctx context.Context, q models.MemoryQuery) (*models.MemoryRecord, error)
	Revoke(ctx context.Context, q models.MemoryQuery) error
	Purge(ctx context.Context) (int, error)
}

// AdminHandler exposes consent memory to operators.
type AdminHandler struct {
	logger    *slog.Logger
	memory    MemoryService
	validator authmw.JWTValidator
}

func NewAdmin(memory MemoryService, validator authmw.JWTValidator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{logger: logger, memory: memory, validator: validator}
}

// Register mounts the admin routes behind operator authentication.
func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin/consent-memory", func(r chi.Router) {
		r.Use(authmw.RequireAuth(h.validator, h.logger))
		r.Use(authmw.RequireScope(ScopeAdmin, h.logger))
		r.Get("/", h.handleGet)
		r.Delete("/", h.handleRevoke)
		r.Post("/purge", h.handlePurge)
	})
}

func (h *AdminHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	record, err := h.memory.Get(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewMemoryRecordResponse(record))
}

func (h *AdminHandler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	if err := h.memory.Revoke(r.Context(), q); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handlePurge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := h.memory.Purge(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to purge consent memory",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.PurgeResponse{Purged: n})
}

func (h *AdminHandler) query(w http.ResponseWriter, r *http.Request) (models.MemoryQuery, bool) {
	q := models.MemoryQuery{
		Subject:  r.URL.Query().Get("subject"),
		ClientID: r.URL.Query().Get("client_id"),
	}
	if err := q.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "invalid consent memory query",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return q, false
	}
	return q, true
}
