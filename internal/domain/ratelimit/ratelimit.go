// Package ratelimit defines the sliding-window admission control guarding
// the expensive tutor call. The window is a per-user log of attempt
// timestamps; attempts older than the window are pruned on every check.
package ratelimit

import (
	"context"
	"time"
)

// Default policy: 20 messages per rolling minute per user.
const (
	DefaultMaxAttempts   = 20
	DefaultWindowSeconds = 60
)

// Policy parameterizes the limiter. The limiter is generic over these
// values; the defaults match the bot's message budget.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultPolicy returns the standard message rate policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Window:      DefaultWindowSeconds * time.Second,
	}
}

// Result is the outcome of a single admission check.
type Result struct {
	// Allowed reports whether the attempt was admitted and recorded.
	Allowed bool

	// Remaining is the number of further attempts available in the current
	// window. Only meaningful when Allowed is true.
	Remaining int

	// WaitSeconds is how long the user must wait before the next attempt
	// can succeed, rounded up to whole seconds and at least 1. Only
	// meaningful when Allowed is false.
	WaitSeconds int
}

// Limiter admits or rejects attempts. Check must be atomic per user: two
// near-simultaneous attempts from the same user must never both be admitted
// past the limit.
type Limiter interface {
	Check(ctx context.Context, userID string, policy Policy) (*Result, error)
}
