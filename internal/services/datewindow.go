package services

import "time"

// Date-filter keywords accepted by invoice listing and every dashboard
// operation. One canonical table; anything unrecognized means "no lower
// bound" (full history).
const (
	FilterToday       = "today"
	FilterThisWeek    = "thisWeek"
	FilterThisMonth   = "thisMonth"
	FilterLastMonth   = "lastMonth"
	FilterLast3Months = "last3Months"
)

// WindowStart resolves a date-filter keyword to the inclusive lower bound of
// the time window, relative to now. The second return value is false when the
// keyword is absent or unrecognized, in which case no bound applies.
//
// All boundary computation is done in UTC; day bucketing in the dashboard
// uses the same zone so a window never splits a bucket.
func WindowStart(filter string, now time.Time) (time.Time, bool) {
	now = now.UTC()
	switch filter {
	case FilterToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	case FilterThisWeek:
		// Most recent Sunday at 00:00.
		start := now.AddDate(0, 0, -int(now.Weekday()))
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC), true
	case FilterThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), true
	case FilterLastMonth:
		return time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC), true
	case FilterLast3Months:
		return time.Date(now.Year(), now.Month()-3, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// NormalizeRange maps the dashboard overview's legacy range keywords onto the
// canonical date-filter table. The overview defaults to the current month
// when the range is absent or unknown.
func NormalizeRange(rng string) string {
	switch rng {
	case "week":
		return FilterThisWeek
	case "month", "":
		return FilterThisMonth
	case "lastMonth":
		return FilterLastMonth
	case "last3":
		return FilterLast3Months
	}
	return FilterThisMonth
}
