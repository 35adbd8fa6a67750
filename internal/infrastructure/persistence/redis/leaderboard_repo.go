package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/leaderboard"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRepository projects session points into the "leaderboard:global"
// sorted set. ZADD upserts the member, so repeated score updates never create
// duplicate entries.
type LeaderboardRepository struct {
	store *Store
	key   string
}

// NewLeaderboardRepository creates a leaderboard repository over the store.
func NewLeaderboardRepository(store *Store) *LeaderboardRepository {
	return &LeaderboardRepository{store: store, key: KeyLeaderboard}
}

// SetScore upserts the user's total score.
func (r *LeaderboardRepository) SetScore(ctx context.Context, userID string, score int) error {
	err := r.store.Client().ZAdd(ctx, r.key, redis.Z{
		Score:  float64(score),
		Member: userID,
	}).Err()
	if err != nil {
		return shared.WrapError("leaderboard", "SetScore", shared.ErrExternalService,
			"failed to upsert score", err)
	}
	return nil
}

// Top returns the n highest-scoring entries in descending order with ranks.
func (r *LeaderboardRepository) Top(ctx context.Context, n int) ([]leaderboard.Entry, error) {
	if n <= 0 {
		return nil, shared.ErrInvalidTopCount
	}

	zs, err := r.store.Client().ZRevRangeWithScores(ctx, r.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, shared.WrapError("leaderboard", "Top", shared.ErrExternalService,
			"failed to read leaderboard", err)
	}

	entries := make([]leaderboard.Entry, 0, len(zs))
	for i, z := range zs {
		userID, _ := z.Member.(string)
		entries = append(entries, leaderboard.Entry{
			UserID: userID,
			Score:  int(z.Score),
			Rank:   i + 1,
		})
	}
	return entries, nil
}

// Rank returns the user's entry with its 1-based rank.
func (r *LeaderboardRepository) Rank(ctx context.Context, userID string) (*leaderboard.Entry, error) {
	rank, err := r.store.Client().ZRevRank(ctx, r.key, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrUserNotRanked
		}
		return nil, shared.WrapError("leaderboard", "Rank", shared.ErrExternalService,
			"failed to read rank", err)
	}

	score, err := r.store.Client().ZScore(ctx, r.key, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrUserNotRanked
		}
		return nil, shared.WrapError("leaderboard", "Rank", shared.ErrExternalService,
			"failed to read score", err)
	}

	return &leaderboard.Entry{
		UserID: userID,
		Score:  int(score),
		Rank:   int(rank) + 1,
	}, nil
}

// Size returns the number of ranked users.
func (r *LeaderboardRepository) Size(ctx context.Context) (int, error) {
	n, err := r.store.Client().ZCard(ctx, r.key).Result()
	if err != nil {
		return 0, shared.WrapError("leaderboard", "Size", shared.ErrExternalService,
			"failed to read leaderboard size", err)
	}
	return int(n), nil
}

// Remove deletes the user's entry.
func (r *LeaderboardRepository) Remove(ctx context.Context, userID string) error {
	if err := r.store.Client().ZRem(ctx, r.key, userID).Err(); err != nil {
		return shared.WrapError("leaderboard", "Remove", shared.ErrExternalService,
			"failed to remove entry", err)
	}
	return nil
}
