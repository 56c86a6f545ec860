package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"pottytracker/internal/models"
	"pottytracker/internal/stats"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	denseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))

	adviceBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

const (
	barChar       = "█"
	pointChar     = "●"
	stripColumns  = 48
	maxBarColumns = 30
)

// renderTimeline draws every event on a one-line time-of-day strip. Higher
// zoom widens the strip; ticks follow stats.Ticks for the zoom.
func renderTimeline(points []models.ChartDataPoint, zoom float64) string {
	width := int(float64(stripColumns) * stats.ClampZoom(zoom))
	cells := make([]int, width)
	for _, p := range points {
		col := p.TimeOfDay * width / stats.MinutesPerDay
		if col >= width {
			col = width - 1
		}
		cells[col]++
	}

	var strip strings.Builder
	for _, n := range cells {
		switch {
		case n == 0:
			strip.WriteString(labelStyle.Render("·"))
		case n > 2:
			strip.WriteString(denseStyle.Render(pointChar))
		default:
			strip.WriteString(barStyle.Render(pointChar))
		}
	}

	labels := make([]string, 0)
	for _, m := range stats.Ticks(zoom) {
		labels = append(labels, stats.FormatTime(m))
	}
	return strip.String() + "\n" + labelStyle.Render("ticks: "+strings.Join(labels, "  ")) + "\n"
}

// renderFrequency draws one bar per minute of the day that has events
func renderFrequency(buckets []models.FrequencyBucket) string {
	most := 0
	for _, b := range buckets {
		if b.Count > most {
			most = b.Count
		}
	}

	var out strings.Builder
	for _, b := range buckets {
		n := b.Count
		if most > maxBarColumns {
			n = b.Count * maxBarColumns / most
			if n == 0 {
				n = 1
			}
		}
		style := barStyle
		if b.Dense() {
			style = denseStyle
		}
		fmt.Fprintf(&out, "%8s │ %s %d\n", stats.FormatTime(b.TimeOfDay), style.Render(strings.Repeat(barChar, n)), b.Count)
	}
	return out.String()
}

func renderDays(days []models.DayBucket) string {
	var out strings.Builder
	for _, d := range days {
		fmt.Fprintf(&out, "%10s │ %s %d\n", d.Date, barStyle.Render(strings.Repeat(barChar, d.Count)), d.Count)
	}
	return out.String()
}

// renderTrend describes the best-fit line as start and end times of day
func renderTrend(line []models.BestFitPoint) string {
	if len(line) != 2 {
		return "not enough data for a trend line"
	}
	start := int(math.Round(line[0].Y))
	end := int(math.Round(line[1].Y))
	return fmt.Sprintf("trend from %s to %s", stats.FormatTime(start), stats.FormatTime(end))
}

func renderHistory(groups []models.DayGroup, loc *time.Location) string {
	var out strings.Builder
	for _, g := range groups {
		out.WriteString(titleStyle.Render(g.Label) + "\n")
		for _, ev := range g.Events {
			typ := ev.Kind()
			fmt.Fprintf(&out, "  %s %-12s %8s  %s\n",
				typ.Icon(), typ.Label(),
				stats.FormatTime(stats.TimeOfDay(ev.Timestamp, loc)),
				labelStyle.Render(ev.ID),
			)
		}
	}
	return out.String()
}

func renderAdvice(a *models.Advice) string {
	var body strings.Builder
	body.WriteString(titleStyle.Render("Insights") + "\n")
	body.WriteString(a.Summary + "\n\n")
	body.WriteString("Best window: " + a.BestWindow + "\n")
	for _, r := range a.Recommendations {
		body.WriteString("• " + r + "\n")
	}
	return adviceBoxStyle.Render(strings.TrimRight(body.String(), "\n")) + "\n"
}
