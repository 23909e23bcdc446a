package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Friday 2026-08-28 15:30 UTC.
var windowNow = time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)

func TestWindowStart_Today(t *testing.T) {
	start, ok := WindowStart(FilterToday, windowNow)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowStart_ThisWeek(t *testing.T) {
	// Week starts on the most recent Sunday, here 2026-08-23.
	start, ok := WindowStart(FilterThisWeek, windowNow)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowStart_ThisWeek_OnSunday(t *testing.T) {
	sunday := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	start, ok := WindowStart(FilterThisWeek, sunday)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowStart_ThisMonth(t *testing.T) {
	start, ok := WindowStart(FilterThisMonth, windowNow)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowStart_LastMonth(t *testing.T) {
	start, ok := WindowStart(FilterLastMonth, windowNow)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowStart_Last3Months(t *testing.T) {
	start, ok := WindowStart(FilterLast3Months, windowNow)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowStart_MonthRollsOverYear(t *testing.T) {
	january := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	start, ok := WindowStart(FilterLast3Months, january)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowStart_UnknownKeywordMeansNoBound(t *testing.T) {
	for _, filter := range []string{"", "yesterday", "THISWEEK", "all"} {
		_, ok := WindowStart(filter, windowNow)
		assert.False(t, ok, "filter %q must not produce a bound", filter)
	}
}

func TestWindowStart_NonUTCInput(t *testing.T) {
	// 09:30 on the 29th in UTC+10 is still 23:30 on the 28th in UTC.
	zone := time.FixedZone("AEST", 10*3600)
	local := time.Date(2026, 8, 29, 9, 30, 0, 0, zone)
	start, ok := WindowStart(FilterToday, local)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), start)
}

func TestNormalizeRange(t *testing.T) {
	assert.Equal(t, FilterThisWeek, NormalizeRange("week"))
	assert.Equal(t, FilterThisMonth, NormalizeRange("month"))
	assert.Equal(t, FilterLastMonth, NormalizeRange("lastMonth"))
	assert.Equal(t, FilterLast3Months, NormalizeRange("last3"))

	// Absent or unknown ranges default to the current month.
	assert.Equal(t, FilterThisMonth, NormalizeRange(""))
	assert.Equal(t, FilterThisMonth, NormalizeRange("bogus"))
}
