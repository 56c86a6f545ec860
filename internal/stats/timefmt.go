// Package stats turns raw potty events into the derived views the chart and
// history screens render: time-of-day points, frequency buckets, trend lines
// and day groupings. Everything here is pure and recomputed on demand.
package stats

import (
	"fmt"
	"time"
)

// MinutesPerDay is the width of the time-of-day axis
const MinutesPerDay = 24 * 60

// FormatTime renders a minute-of-day as "H:MM AM/PM". Values outside
// [0, 1440) wrap around the clock, so 1440 is midnight again.
func FormatTime(minutes int) string {
	m := minutes % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	h := m / 60
	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	displayH := h % 12
	if displayH == 0 {
		displayH = 12
	}
	return fmt.Sprintf("%d:%02d %s", displayH, m%60, ampm)
}

// FormatDate renders a millisecond timestamp as a short month/day label ("Jan 5")
func FormatDate(timestampMs int64, loc *time.Location) string {
	return localTime(timestampMs, loc).Format("Jan 2")
}

// FormatDateTime is the "Jan 5 at 8:05 AM" form used when describing events in prose
func FormatDateTime(timestampMs int64, loc *time.Location) string {
	return FormatDate(timestampMs, loc) + " at " + FormatTime(TimeOfDay(timestampMs, loc))
}

// TimeOfDay returns hour*60+minute of the timestamp in loc
func TimeOfDay(timestampMs int64, loc *time.Location) int {
	t := localTime(timestampMs, loc)
	return t.Hour()*60 + t.Minute()
}

// DayKey is the local calendar date (YYYY-MM-DD) a timestamp falls on
func DayKey(timestampMs int64, loc *time.Location) string {
	return localTime(timestampMs, loc).Format("2006-01-02")
}

func localTime(timestampMs int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(timestampMs).In(loc)
}
