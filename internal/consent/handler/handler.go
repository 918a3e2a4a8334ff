package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"consentd/internal/consent/models"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/httputil"
	"consentd/pkg/requestcontext"
)

// Service runs consent flows.
type Service interface {
	Begin(ctx context.Context, challengeID string) (*models.BeginResult, error)
	Decide(ctx context.Context, req models.DecideRequest) (string, error)
}

// Handler serves the consent UI backend.
type Handler struct {
	logger  *slog.Logger
	consent Service
}

func New(consent Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, consent: consent}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/consent", h.handleBegin)
	r.Post("/consent", h.handleDecide)
}

// handleBegin resolves a challenge. A skipped prompt answers with the
// redirect; otherwise the UI gets what it needs to render the prompt.
func (h *Handler) handleBegin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	challenge := r.URL.Query().Get("consent_challenge")
	if challenge == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "consent_challenge is required"))
		return
	}

	res, err := h.consent.Begin(ctx, challenge)
	if err != nil {
		h.writeFailure(ctx, w, requestID, "begin", err)
		return
	}
	if res.RedirectTo != "" {
		httputil.WriteJSON(w, http.StatusOK, models.RedirectResponse{RedirectTo: res.RedirectTo})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewChallengeView(res.Challenge))
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.DecideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	redirect, err := h.consent.Decide(ctx, *req)
	if err != nil {
		h.writeFailure(ctx, w, requestID, "decide", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.RedirectResponse{RedirectTo: redirect})
}

// writeFailure logs at a level matching who is at fault and writes the error.
func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, requestID, op string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeAmbiguousSubmission:
		h.logger.ErrorContext(ctx, "consent request failed",
			"request_id", requestID,
			"operation", op,
			"error", err,
		)
	default:
		h.logger.WarnContext(ctx, "consent request refused",
			"request_id", requestID,
			"operation", op,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
