package stats

import (
	"time"

	"pottytracker/internal/models"
)

// BuildChartData maps events onto the scatter chart, sorted by timestamp
func BuildChartData(events []models.PottyEvent, loc *time.Location) []models.ChartDataPoint {
	points := make([]models.ChartDataPoint, 0, len(events))
	for _, ev := range SortByTime(events) {
		points = append(points, models.ChartDataPoint{
			Timestamp: ev.Timestamp,
			TimeOfDay: TimeOfDay(ev.Timestamp, loc),
			Date:      FormatDate(ev.Timestamp, loc),
		})
	}
	return points
}

// LineOfBestFit fits timeOfDay against timestamp with ordinary least squares
// and returns the line's endpoints at the smallest and largest timestamp.
// It returns nil for fewer than two points or when every timestamp is equal.
//
// Timestamps are shifted by the smallest one before summing. The slope is
// unchanged by the shift and millisecond epochs would otherwise lose most of
// their precision once squared.
func LineOfBestFit(points []models.ChartDataPoint) []models.BestFitPoint {
	n := len(points)
	if n < 2 {
		return nil
	}

	minX, maxX := points[0].Timestamp, points[0].Timestamp
	for _, p := range points[1:] {
		if p.Timestamp < minX {
			minX = p.Timestamp
		}
		if p.Timestamp > maxX {
			maxX = p.Timestamp
		}
	}

	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		x := float64(p.Timestamp - minX)
		y := float64(p.TimeOfDay)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denominator := fn*sumXX - sumX*sumX
	if denominator == 0 {
		return nil
	}

	m := (fn*sumXY - sumX*sumY) / denominator
	b := (sumY - m*sumX) / fn

	return []models.BestFitPoint{
		{X: float64(minX), Y: b},
		{X: float64(maxX), Y: m*float64(maxX-minX) + b},
	}
}
