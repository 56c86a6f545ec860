package models

// ChartDataPoint places one event on the time-of-day scatter chart
type ChartDataPoint struct {
	Timestamp int64  `json:"timestamp"`
	TimeOfDay int    `json:"timeOfDay"`
	Date      string `json:"date"`
}

// FrequencyBucket counts events that share an exact minute of the day
type FrequencyBucket struct {
	TimeOfDay int `json:"timeOfDay"`
	Count     int `json:"count"`
}

// Dense reports whether the bucket is highlighted on the frequency chart
func (b FrequencyBucket) Dense() bool {
	return b.Count > 2
}

// DayBucket counts events on one local calendar day (YYYY-MM-DD)
type DayBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// BestFitPoint is one endpoint of the trend line
type BestFitPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DayGroup holds a day's events for the history list, newest first
type DayGroup struct {
	Date   string       `json:"date"`
	Label  string       `json:"label"`
	Events []PottyEvent `json:"events"`
}
