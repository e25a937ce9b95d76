// Package scheduler decides when a background refresh bypassing the cache
// should fire. Decisions are pure functions of the current time and of the
// cache contents.
package scheduler

import "time"

// Cache is the part of the TTL cache the scheduler looks at.
type Cache interface {
	Has(key string) bool
}

// Policy selects the days on which a scheduled refresh may fire
type Policy interface {
	IsRefreshDay(now time.Time) bool
	DaysUntil(now time.Time) int
}

// Weekly refreshes on one fixed weekday.
type Weekly struct {
	Day time.Weekday
}

// Default policy: weekly refresh on Mondays
var Default = Weekly{Day: time.Monday}

func (w Weekly) IsRefreshDay(now time.Time) bool {
	return now.Weekday() == w.Day
}

// DaysUntil returns the number of days until the next refresh day, 7 when now
// already is one.
func (w Weekly) DaysUntil(now time.Time) int {
	days := (int(w.Day) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		return 7
	}
	return days
}

func IsScheduledRefreshDay(now time.Time) bool {
	return Default.IsRefreshDay(now)
}

func DaysUntilRefresh(now time.Time) int {
	return Default.DaysUntil(now)
}

// NeedsRefresh reports whether the cache holds no live entry for key.
func NeedsRefresh(c Cache, key string) bool {
	return !c.Has(key)
}

// ShouldAutoRefresh is advisory: callers decide what a true result means,
// usually a fetch that bypasses the cache.
func ShouldAutoRefresh(c Cache, key string, now time.Time) bool {
	return ShouldAutoRefreshWith(Default, c, key, now)
}

func ShouldAutoRefreshWith(p Policy, c Cache, key string, now time.Time) bool {
	return p.IsRefreshDay(now) && NeedsRefresh(c, key)
}
