package stats

import (
	"math"
	"sort"
	"time"

	"pottytracker/internal/models"
)

// Zoom bounds and the level above which the axis switches to hourly ticks
const (
	MinZoom       = 1.0
	MaxZoom       = 5.0
	ZoomStep      = 0.5
	FineTickZoom  = 2.5
	coarseTickGap = 180
	fineTickGap   = 60
)

// BinByTimeOfDay counts events per exact minute of the day, ascending.
// 8:00 and 8:01 are separate buckets.
func BinByTimeOfDay(events []models.PottyEvent, loc *time.Location) []models.FrequencyBucket {
	counts := make(map[int]int)
	for _, ev := range events {
		counts[TimeOfDay(ev.Timestamp, loc)]++
	}

	buckets := make([]models.FrequencyBucket, 0, len(counts))
	for minute, count := range counts {
		buckets = append(buckets, models.FrequencyBucket{TimeOfDay: minute, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].TimeOfDay < buckets[j].TimeOfDay
	})
	return buckets
}

// BinByDay counts events per local calendar day, oldest day first
func BinByDay(events []models.PottyEvent, loc *time.Location) []models.DayBucket {
	counts := make(map[string]int)
	for _, ev := range events {
		counts[DayKey(ev.Timestamp, loc)]++
	}

	buckets := make([]models.DayBucket, 0, len(counts))
	for day, count := range counts {
		buckets = append(buckets, models.DayBucket{Date: day, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	return buckets
}

// ClampZoom keeps a zoom level inside [MinZoom, MaxZoom]. NaN reads as MinZoom.
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// StepZoom moves the zoom level by steps of ZoomStep, clamped
func StepZoom(zoom float64, steps int) float64 {
	return ClampZoom(ClampZoom(zoom) + float64(steps)*ZoomStep)
}

// Ticks returns the x-axis tick positions (minutes of day) for a zoom level:
// every three hours up to FineTickZoom, every hour beyond it.
func Ticks(zoom float64) []int {
	gap := coarseTickGap
	if ClampZoom(zoom) > FineTickZoom {
		gap = fineTickGap
	}
	ticks := make([]int, 0, MinutesPerDay/gap+1)
	for m := 0; m <= MinutesPerDay; m += gap {
		ticks = append(ticks, m)
	}
	return ticks
}
