package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// a subject granting, refusing, or withdrawing consent.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine flow events that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Subject   string        `json:"subject"`
	ClientID  string        `json:"client_id,omitempty"`
	Action    string        `json:"action"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	// GrantedScope is the scope actually submitted to the authorization
	// server, never the requested one.
	GrantedScope []string `json:"granted_scope,omitempty"`
	Remembered   bool     `json:"remembered,omitempty"`
	RequestID    string   `json:"request_id,omitempty"`
	// ActorID tracks the operator for admin actions on a subject's memory.
	ActorID   string `json:"actor_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type AuditEvent string

const (
	EventConsentGranted       AuditEvent = "consent_granted"
	EventConsentRejected      AuditEvent = "consent_rejected"
	EventConsentSkipped       AuditEvent = "consent_skipped"
	EventConsentMemoryRevoked AuditEvent = "consent_memory_revoked"
	EventConsentMemoryPurged  AuditEvent = "consent_memory_purged"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventConsentGranted:       CategoryCompliance,
	EventConsentRejected:      CategoryCompliance,
	EventConsentMemoryRevoked: CategoryCompliance,

	EventConsentSkipped:      CategoryOperations,
	EventConsentMemoryPurged: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can be queried back, such as the
// in-memory store used in development and tests.
type Lister interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
