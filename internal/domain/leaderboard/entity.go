// Package leaderboard contains the global points ranking model. The
// leaderboard is a projection of session points, never a separate source of
// truth.
package leaderboard

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Entry is one ranked user. Rank is 1-based and only populated by queries
// that compute it.
type Entry struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
	Rank   int    `json:"rank,omitempty"`
}

// DefaultTopCount is how many entries the /top command shows.
const DefaultTopCount = 10

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the storage contract for the global ranking. The
// backing structure is a sorted set keyed by score with the user ID as
// member; SetScore upserts, it never creates duplicate entries.
type Repository interface {
	// SetScore upserts the user's total score.
	SetScore(ctx context.Context, userID string, score int) error

	// Top returns the n highest-scoring entries in descending score order
	// with ranks populated. Tie order among equal scores is unspecified but
	// stable for a given store state.
	Top(ctx context.Context, n int) ([]Entry, error)

	// Rank returns the user's entry with its 1-based rank, or
	// shared.ErrUserNotRanked when the user has no score yet.
	Rank(ctx context.Context, userID string) (*Entry, error)

	// Size returns the number of ranked users.
	Size(ctx context.Context) (int, error)

	// Remove deletes the user's entry, for session resets by operators.
	Remove(ctx context.Context, userID string) error
}
