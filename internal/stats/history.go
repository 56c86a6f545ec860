package stats

import (
	"sort"
	"time"

	"pottytracker/internal/models"
)

// SortByTime returns a copy of events ordered oldest first
func SortByTime(events []models.PottyEvent) []models.PottyEvent {
	sorted := make([]models.PottyEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// GroupByDay groups events by local day for the history list.
// Days and the events inside each day are newest first.
func GroupByDay(events []models.PottyEvent, loc *time.Location) []models.DayGroup {
	sorted := SortByTime(events)
	var groups []models.DayGroup
	index := make(map[string]int)

	for i := len(sorted) - 1; i >= 0; i-- {
		ev := sorted[i]
		key := DayKey(ev.Timestamp, loc)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, models.DayGroup{
				Date:  key,
				Label: localTime(ev.Timestamp, loc).Format("Monday, January 2"),
			})
		}
		groups[pos].Events = append(groups[pos].Events, ev)
	}
	return groups
}

// EventsOn returns the events on day's local calendar date, newest first
func EventsOn(events []models.PottyEvent, day time.Time, loc *time.Location) []models.PottyEvent {
	if loc == nil {
		loc = time.Local
	}
	key := day.In(loc).Format("2006-01-02")

	var out []models.PottyEvent
	sorted := SortByTime(events)
	for i := len(sorted) - 1; i >= 0; i-- {
		if DayKey(sorted[i].Timestamp, loc) == key {
			out = append(out, sorted[i])
		}
	}
	return out
}

// WithTimeOfDay moves a timestamp to hour:minute on the same local day
func WithTimeOfDay(timestampMs int64, hour, minute int, loc *time.Location) int64 {
	t := localTime(timestampMs, loc)
	moved := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
	return moved.UnixMilli()
}
