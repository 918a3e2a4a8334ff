// Package logstore writes audit events to a structured logger. It retains
// nothing, so it is the default sink for long-running processes without Kafka.
package logstore

import (
	"context"
	"log/slog"

	audit "consentd/pkg/platform/audit"
)

const message = "audit event"

type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger.With("component", "audit")}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	attrs := []slog.Attr{
		slog.String("category", string(event.Category)),
		slog.String("action", event.Action),
		slog.String("subject", event.Subject),
		slog.Time("timestamp", event.Timestamp),
	}
	optional := []struct{ key, value string }{
		{"client_id", event.ClientID},
		{"decision", event.Decision},
		{"reason", event.Reason},
		{"request_id", event.RequestID},
		{"actor_id", event.ActorID},
		{"client_ip", event.ClientIP},
		{"user_agent", event.UserAgent},
	}
	for _, kv := range optional {
		if kv.value != "" {
			attrs = append(attrs, slog.String(kv.key, kv.value))
		}
	}
	if len(event.GrantedScope) > 0 {
		attrs = append(attrs, slog.Any("granted_scope", event.GrantedScope))
	}
	if event.Remembered {
		attrs = append(attrs, slog.Bool("remembered", true))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, message, attrs...)
	return nil
}
