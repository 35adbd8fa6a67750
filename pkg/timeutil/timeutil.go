// Package timeutil provides UTC calendar-day utilities for streak tracking
// and daily analytics keys. The bot serves users across timezones, so all
// day boundaries are computed in UTC.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// DateLayout is the canonical calendar-day format used in storage keys
// and streak comparisons.
const DateLayout = "2006-01-02"

// DateKey returns the UTC calendar day of t in "YYYY-MM-DD" form.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// TodayKey returns today's UTC calendar day in "YYYY-MM-DD" form.
func TodayKey() string {
	return DateKey(time.Now())
}

// StartOfDay returns the start of the UTC calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of whole UTC calendar days from a to b.
// Positive when b is after a, negative when before, zero for the same day.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// IsYesterday reports whether t falls on the UTC calendar day immediately
// before ref.
func IsYesterday(t, ref time.Time) bool {
	return DaysBetween(t, ref) == 1
}

// DaysAgoKey returns the UTC calendar day n days before now in
// "YYYY-MM-DD" form. Used for analytics range queries.
func DaysAgoKey(now time.Time, n int) string {
	return DateKey(now.UTC().AddDate(0, 0, -n))
}

// CeilSeconds converts a duration to whole seconds, rounding up.
// A positive sub-second duration yields 1, never 0.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
