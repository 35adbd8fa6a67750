package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/ratelimit"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRateLimiterAdmitsUpToMax(t *testing.T) {
	ctx := context.Background()
	l := NewRateLimiter()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(fixedClock(base))

	policy := ratelimit.Policy{MaxAttempts: 2, Window: 60 * time.Second}

	// Three attempts within one second: allowed, allowed, rejected.
	res, err := l.Check(ctx, "u1", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)

	l.SetClock(fixedClock(base.Add(300 * time.Millisecond)))
	res, err = l.Check(ctx, "u1", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	l.SetClock(fixedClock(base.Add(900 * time.Millisecond)))
	res, err = l.Check(ctx, "u1", policy)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.WaitSeconds, 0)
}

func TestRateLimiterWindowSlides(t *testing.T) {
	ctx := context.Background()
	l := NewRateLimiter()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	policy := ratelimit.Policy{MaxAttempts: 1, Window: 60 * time.Second}

	l.SetClock(fixedClock(base))
	res, err := l.Check(ctx, "u1", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	l.SetClock(fixedClock(base.Add(30 * time.Second)))
	res, err = l.Check(ctx, "u1", policy)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30, res.WaitSeconds)

	// After the window passes, the old attempt is pruned.
	l.SetClock(fixedClock(base.Add(61 * time.Second)))
	res, err = l.Check(ctx, "u1", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimiterWaitSecondsRoundsUp(t *testing.T) {
	ctx := context.Background()
	l := NewRateLimiter()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	policy := ratelimit.Policy{MaxAttempts: 1, Window: 60 * time.Second}

	l.SetClock(fixedClock(base))
	_, err := l.Check(ctx, "u1", policy)
	require.NoError(t, err)

	// 59.5 seconds in: 0.5s remain, reported as a whole second.
	l.SetClock(fixedClock(base.Add(59*time.Second + 500*time.Millisecond)))
	res, err := l.Check(ctx, "u1", policy)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 1, res.WaitSeconds)
}

func TestRateLimiterUsersAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := NewRateLimiter()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(fixedClock(base))
	policy := ratelimit.Policy{MaxAttempts: 1, Window: 60 * time.Second}

	res, err := l.Check(ctx, "u1", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Check(ctx, "u2", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
