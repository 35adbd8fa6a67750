package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/ratelimit"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/timeutil"
)

// RateLimiter is the in-process sliding-window log. The mutex makes the
// prune-count-insert sequence atomic, mirroring the Lua script used by the
// Redis limiter.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewRateLimiter creates an empty in-memory limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (l *RateLimiter) SetClock(now func() time.Time) {
	l.now = now
}

// Check admits or rejects an attempt for the user under the given policy.
func (l *RateLimiter) Check(ctx context.Context, userID string, policy ratelimit.Policy) (*ratelimit.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-policy.Window)

	attempts := l.windows[userID]
	kept := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= policy.MaxAttempts {
		l.windows[userID] = kept
		resetAt := kept[0].Add(policy.Window)
		wait := timeutil.CeilSeconds(resetAt.Sub(now))
		if wait < 1 {
			wait = 1
		}
		return &ratelimit.Result{Allowed: false, WaitSeconds: wait}, nil
	}

	l.windows[userID] = append(kept, now)
	return &ratelimit.Result{
		Allowed:   true,
		Remaining: policy.MaxAttempts - len(kept) - 1,
	}, nil
}
