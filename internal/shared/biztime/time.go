// Package biztime provides business timezone helpers.
// Storage and transport use UTC; the business timezone only decides
// calendar arithmetic such as "one month later".
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "Asia/Seoul"
)

var (
	bizLocation *time.Location
	locationMu  sync.RWMutex
)

// Init sets the business timezone. Empty means DefaultTimezone.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load business timezone %q: %w", tz, err)
	}
	locationMu.Lock()
	bizLocation = loc
	locationMu.Unlock()
	return nil
}

// Location returns the business timezone, initializing the default on first use.
func Location() *time.Location {
	locationMu.RLock()
	loc := bizLocation
	locationMu.RUnlock()
	if loc != nil {
		return loc
	}
	if err := Init(""); err != nil {
		panic(fmt.Sprintf("biztime: %v", err))
	}
	return Location()
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// AddMonths adds n calendar months in the business timezone. When the
// target month is shorter, the day is clamped to its last day
// (Jan 31 + 1 month = Feb 28/29), matching MySQL DATE_ADD. Result is UTC.
func AddMonths(t time.Time, n int) time.Time {
	local := t.In(Location())
	year, month, day := local.Date()

	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, Location())
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}

	hh, mm, ss := local.Clock()
	return time.Date(first.Year(), first.Month(), day, hh, mm, ss, local.Nanosecond(), Location()).UTC()
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatEdiDate renders t as YYYYMMDDhhmmss in the business timezone.
func FormatEdiDate(t time.Time) string {
	return t.In(Location()).Format("20060102150405")
}
