package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKey(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC
	loc := time.FixedZone("UTC-5", -5*60*60)
	local := time.Date(2024, 1, 1, 23, 30, 0, 0, loc)

	assert.Equal(t, "2024-01-02", DateKey(local))
	assert.Equal(t, "2024-01-01", DateKey(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDaysBetween(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
	day10 := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysBetween(day1, day2))
	assert.Equal(t, 9, DaysBetween(day1, day10))
	assert.Equal(t, 0, DaysBetween(day2, day2))
	assert.Equal(t, -1, DaysBetween(day2, day1))
}

func TestIsYesterday(t *testing.T) {
	ref := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

	assert.True(t, IsYesterday(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC), ref))
	assert.False(t, IsYesterday(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ref))
	assert.False(t, IsYesterday(time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC), ref))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 3, 15, 0, 0, 1, 0, time.UTC)
	b := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	c := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b, c))
}

func TestCeilSeconds(t *testing.T) {
	assert.Equal(t, 0, CeilSeconds(0))
	assert.Equal(t, 0, CeilSeconds(-time.Second))
	assert.Equal(t, 1, CeilSeconds(200*time.Millisecond))
	assert.Equal(t, 1, CeilSeconds(time.Second))
	assert.Equal(t, 2, CeilSeconds(1001*time.Millisecond))
}

func TestDaysAgoKey(t *testing.T) {
	now := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-03", DaysAgoKey(now, 0))
	assert.Equal(t, "2024-03-01", DaysAgoKey(now, 2))
	assert.Equal(t, "2024-02-29", DaysAgoKey(now, 3)) // leap year
}
