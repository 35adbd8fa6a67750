package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/leaderboard"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
)

// LeaderboardRepository keeps scores in a map and sorts on read. Fine for
// tests and small dev datasets; production uses the Redis sorted set.
type LeaderboardRepository struct {
	mu     sync.Mutex
	scores map[string]int
}

// NewLeaderboardRepository creates an empty in-memory leaderboard.
func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{scores: make(map[string]int)}
}

// SetScore upserts the user's total score.
func (r *LeaderboardRepository) SetScore(ctx context.Context, userID string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scores[userID] = score
	return nil
}

// ranked returns all entries sorted by descending score. Ties break by
// user ID so the order is stable for a given store state. Caller must hold
// the mutex.
func (r *LeaderboardRepository) ranked() []leaderboard.Entry {
	entries := make([]leaderboard.Entry, 0, len(r.scores))
	for userID, score := range r.scores {
		entries = append(entries, leaderboard.Entry{UserID: userID, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Top returns the n highest-scoring entries.
func (r *LeaderboardRepository) Top(ctx context.Context, n int) ([]leaderboard.Entry, error) {
	if n <= 0 {
		return nil, shared.ErrInvalidTopCount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.ranked()
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Rank returns the user's entry with its 1-based rank.
func (r *LeaderboardRepository) Rank(ctx context.Context, userID string) (*leaderboard.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scores[userID]; !ok {
		return nil, shared.ErrUserNotRanked
	}
	for _, e := range r.ranked() {
		if e.UserID == userID {
			entry := e
			return &entry, nil
		}
	}
	return nil, shared.ErrUserNotRanked
}

// Size returns the number of ranked users.
func (r *LeaderboardRepository) Size(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scores), nil
}

// Remove deletes the user's entry.
func (r *LeaderboardRepository) Remove(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.scores, userID)
	return nil
}
