package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and adapters return these
// (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist (or is logically expired in a cache)
// - ErrExpired: challenge is stale or was handled by the authorization server
// - ErrAlreadyUsed: challenge already consumed by an accept or reject
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: upstream temporarily unavailable; the request had no effect
// - ErrAmbiguous: request may or may not have taken effect upstream
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrAmbiguous    = errors.New("outcome unknown")
)
