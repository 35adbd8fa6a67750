package session

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Implementations live in infrastructure/persistence (Redis for production,
// an in-memory store for tests and local development).
// ══════════════════════════════════════════════════════════════════════════════

// UpdateFunc mutates a session in place inside a serialized update. Returning
// an error aborts the update without persisting anything.
type UpdateFunc func(s *Session) error

// Repository defines the storage contract for sessions.
type Repository interface {
	// Get returns the stored session, or ErrSessionNotFound when the user
	// has never interacted before.
	Get(ctx context.Context, userID UserID) (*Session, error)

	// GetOrCreate returns the stored session, materializing a default one
	// when absent. Absence is never an error.
	GetOrCreate(ctx context.Context, userID UserID) (*Session, error)

	// Save persists the full session record and refreshes its TTL.
	Save(ctx context.Context, s *Session) error

	// Update performs a serialized read-modify-write for one user. The
	// session passed to fn is the current stored state (materialized with
	// defaults when absent); when fn returns nil the mutated session is
	// persisted atomically with respect to other updates for the same user.
	Update(ctx context.Context, userID UserID, fn UpdateFunc) (*Session, error)

	// Delete removes the session record entirely.
	Delete(ctx context.Context, userID UserID) error
}
