// Package timeband provides calendar-day windowing in a configured zone.
// Every day key in the system comes from here so that webhook ingestion,
// polling, and report selection all agree on what "today" means
package timeband

import "time"

// DayKeyLayout is the canonical yyyy-mm-dd layout used for day keys
const DayKeyLayout = "2006-01-02"

// DayKey returns the calendar-day key for t in loc.
// The same instant always yields the same key regardless of how the
// caller obtained it (parsed ISO string or time.Time)
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// DayRange is a half-open [Start, End) interval of absolute instants
type DayRange struct {
	Start time.Time
	End   time.Time
}

// TodayRange returns the half-open interval covering the local calendar
// day containing now, expressed as absolute instants. Providers that only
// accept since/until instants are bounded with this
func TodayRange(now time.Time, loc *time.Location) DayRange {
	l := now.In(loc)
	start := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
	return DayRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// LastBusinessDays walks backward from ref one calendar day at a time in
// loc, skipping Saturday and Sunday, until n day keys are collected.
// Keys are returned in ascending order and there are always exactly n
func LastBusinessDays(n int, ref time.Time, loc *time.Location) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	d := ref.In(loc)
	for len(out) < n {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			out = append(out, d.Format(DayKeyLayout))
		}
		d = d.AddDate(0, 0, -1)
	}
	// collected newest first; flip to ascending
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ParseDayKey parses a day key back into the midnight instant in loc
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, key, loc)
}
