package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/ratelimit"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SLIDING-WINDOW RATE LIMITER
// ══════════════════════════════════════════════════════════════════════════════

// rateLimitScript implements the prune-count-insert sequence atomically so
// two near-simultaneous attempts from the same user cannot both slip past
// the limit.
//
// KEYS[1]  window sorted set
// ARGV[1]  now (epoch milliseconds)
// ARGV[2]  window length (milliseconds)
// ARGV[3]  max attempts
// ARGV[4]  member ID for the new attempt
//
// Returns {1, remaining} when admitted, {0, oldestScore} when rejected.
var rateLimitScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
local count = redis.call("ZCARD", KEYS[1])

if count >= max then
	local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
	return {0, tonumber(oldest[2])}
end

redis.call("ZADD", KEYS[1], now, ARGV[4])
redis.call("PEXPIRE", KEYS[1], window * 2)
return {1, max - count - 1}
`)

// RateLimiter is the Redis-backed sliding-window log limiter. Each attempt
// is a member of "ratelimit:<userId>" scored by its epoch-millisecond
// timestamp; the whole window expires on its own after two window lengths
// of inactivity.
type RateLimiter struct {
	store *Store
}

// NewRateLimiter creates a limiter over the given store.
func NewRateLimiter(store *Store) *RateLimiter {
	return &RateLimiter{store: store}
}

// Check admits or rejects an attempt for the user under the given policy.
func (l *RateLimiter) Check(ctx context.Context, userID string, policy ratelimit.Policy) (*ratelimit.Result, error) {
	now := time.Now()
	windowMs := policy.Window.Milliseconds()
	key := PrefixRateLimit + userID

	vals, err := rateLimitScript.Run(ctx, l.store.Client(),
		[]string{key},
		now.UnixMilli(), windowMs, policy.MaxAttempts, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, shared.WrapError("ratelimit", "Check", shared.ErrExternalService,
			"rate limit check failed", err)
	}
	if len(vals) != 2 {
		return nil, shared.NewDomainError("ratelimit", "Check", shared.ErrInvalidFormat,
			"unexpected script reply")
	}

	if vals[0] == 1 {
		return &ratelimit.Result{
			Allowed:   true,
			Remaining: int(vals[1]),
		}, nil
	}

	// Rejected: the caller may retry once the oldest attempt leaves the
	// window.
	resetAt := time.UnixMilli(vals[1] + windowMs)
	wait := timeutil.CeilSeconds(resetAt.Sub(now))
	if wait < 1 {
		wait = 1
	}

	return &ratelimit.Result{
		Allowed:     false,
		WaitSeconds: wait,
	}, nil
}
