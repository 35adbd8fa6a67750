package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ANALYTICS COUNTERS
// ══════════════════════════════════════════════════════════════════════════════

// AnalyticsTracker maintains daily event counters under
// "analytics:<event>:<date>". Counters expire after 90 days.
type AnalyticsTracker struct {
	store *Store
}

// NewAnalyticsTracker creates an analytics tracker over the store.
func NewAnalyticsTracker(store *Store) *AnalyticsTracker {
	return &AnalyticsTracker{store: store}
}

func analyticsKey(event, date string) string {
	return PrefixAnalytics + event + ":" + date
}

// Track increments today's counter for the event.
func (t *AnalyticsTracker) Track(ctx context.Context, event string) error {
	key := analyticsKey(event, timeutil.TodayKey())

	n, err := t.store.Incr(ctx, key)
	if err != nil {
		return shared.WrapError("analytics", "Track", shared.ErrExternalService,
			"failed to increment counter", err)
	}

	// First increment of the day sets the retention window.
	if n == 1 {
		if err := t.store.Expire(ctx, key, TTLAnalytics); err != nil {
			return shared.WrapError("analytics", "Track", shared.ErrExternalService,
				"failed to set counter TTL", err)
		}
	}
	return nil
}

// Count returns the counter for an event on a given UTC day, zero when the
// counter does not exist.
func (t *AnalyticsTracker) Count(ctx context.Context, event string, day time.Time) (int64, error) {
	key := analyticsKey(event, timeutil.DateKey(day))

	val, err := t.store.Client().Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, shared.WrapError("analytics", "Count", shared.ErrExternalService,
			"failed to read counter", err)
	}
	return val, nil
}
