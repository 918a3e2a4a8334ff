package service

import (
	"context"
	"log/slog"

	"consentd/pkg/platform/audit"
	"consentd/pkg/requestcontext"
)

// emitAudit stamps request metadata onto ev and publishes it. Failures are
// logged; the decision they describe has already happened.
func emitAudit(ctx context.Context, publisher AuditPublisher, logger *slog.Logger, action audit.AuditEvent, ev audit.Event) {
	if publisher == nil {
		return
	}
	ev.Action = string(action)
	ev.Category = action.Category()
	ev.RequestID = requestcontext.RequestID(ctx)
	ev.ClientIP = requestcontext.ClientIP(ctx)
	ev.UserAgent = requestcontext.DeviceSummary(ctx)
	if ev.UserAgent == "" {
		ev.UserAgent = requestcontext.UserAgent(ctx)
	}
	if ev.ActorID == "" {
		ev.ActorID = requestcontext.Operator(ctx)
	}
	if err := publisher.Emit(ctx, ev); err != nil {
		logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", ev.RequestID,
			"action", ev.Action,
			"error", err,
		)
	}
}
