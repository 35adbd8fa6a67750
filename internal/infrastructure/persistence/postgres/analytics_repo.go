package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lingua-hub/lingua-tutor-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ANALYTICS ARCHIVE
// ══════════════════════════════════════════════════════════════════════════════

// schema creates the archive table. Idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS analytics_daily (
	event      TEXT NOT NULL,
	day        DATE NOT NULL,
	count      BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (event, day)
)`

// DailyCount is one archived counter value.
type DailyCount struct {
	Event string
	Day   string
	Count int64
}

// AnalyticsArchive persists daily event counters beyond the Redis
// retention window.
type AnalyticsArchive struct {
	pool *pgxpool.Pool
}

// NewAnalyticsArchive creates the archive and ensures its schema exists.
func NewAnalyticsArchive(ctx context.Context, pool *pgxpool.Pool) (*AnalyticsArchive, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("postgres: create analytics schema: %w", err)
	}
	return &AnalyticsArchive{pool: pool}, nil
}

// Upsert stores the counter for an event and day, overwriting any earlier
// value. The archive job re-runs safely.
func (a *AnalyticsArchive) Upsert(ctx context.Context, event string, day time.Time, count int64) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO analytics_daily (event, day, count, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (event, day)
		DO UPDATE SET count = EXCLUDED.count, updated_at = now()`,
		event, timeutil.DateKey(day), count,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert counter: %w", err)
	}
	return nil
}

// Range returns archived counters for an event between two days inclusive,
// oldest first.
func (a *AnalyticsArchive) Range(ctx context.Context, event string, from, to time.Time) ([]DailyCount, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT event, to_char(day, 'YYYY-MM-DD'), count
		FROM analytics_daily
		WHERE event = $1 AND day BETWEEN $2 AND $3
		ORDER BY day`,
		event, timeutil.DateKey(from), timeutil.DateKey(to),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: range query: %w", err)
	}
	defer rows.Close()

	var out []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Event, &dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("postgres: scan counter: %w", err)
		}
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: range rows: %w", err)
	}
	return out, nil
}

// Get returns the archived counter for one event and day, zero when absent.
func (a *AnalyticsArchive) Get(ctx context.Context, event string, day time.Time) (int64, error) {
	var count int64
	err := a.pool.QueryRow(ctx, `
		SELECT count FROM analytics_daily WHERE event = $1 AND day = $2`,
		event, timeutil.DateKey(day),
	).Scan(&count)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("postgres: get counter: %w", err)
	}
	return count, nil
}
