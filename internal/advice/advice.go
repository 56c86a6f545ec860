// Package advice produces potty-timing guidance from a child's event history.
//
// A Gateway is the external round-trip (an LLM or an HTTP service). Gateways
// return errors freely; Advisor absorbs every failure into Fallback so callers
// always get advice to show.
package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pottytracker/internal/models"
	"pottytracker/internal/stats"
)

// ErrGatewayUnavailable wraps every transport or parse failure from a gateway
var ErrGatewayUnavailable = errors.New("advice gateway unavailable")

// Gateway turns a time-ordered event history into advice
type Gateway interface {
	Advise(ctx context.Context, events []models.PottyEvent) (*models.Advice, error)
}

// Fallback is the advice shown whenever no gateway answer is available
func Fallback() *models.Advice {
	return &models.Advice{
		Summary:    "I couldn't analyze the data yet. Try logging a few more events!",
		BestWindow: "Consistent tracking helps identify patterns.",
		Recommendations: []string{
			"Keep logging regularly",
			"Notice if timing correlates with meals",
			"Be patient with the process",
		},
	}
}

const promptTemplate = `Analyze these child potty events (Number 2) and provide guidance to a parent.
Routine events such as meals and naps are labelled in parentheses; unlabelled entries are potty events.
Events: [%s]

Your task:
1. Identify patterns in timing.
2. Determine the most likely next window.
3. Provide 3 actionable tips for the parent.

Format your response as valid JSON with the following structure:
{
  "summary": "Brief summary of the pattern detected",
  "bestWindow": "The specific time window recommended to prompt the child",
  "recommendations": ["Tip 1", "Tip 2", "Tip 3"]
}`

// BuildPrompt describes events oldest first as "Jan 5 at 8:05 AM" entries
func BuildPrompt(events []models.PottyEvent, loc *time.Location) string {
	sorted := stats.SortByTime(events)
	parts := make([]string, 0, len(sorted))
	for _, ev := range sorted {
		entry := stats.FormatDateTime(ev.Timestamp, loc)
		if kind := ev.Kind(); kind != models.EventPotty {
			entry += " (" + kind.Label() + ")"
		}
		parts = append(parts, entry)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(parts, ", "))
}

// ParseAdvice decodes a gateway's JSON answer, tolerating a markdown code fence around it
func ParseAdvice(text string) (*models.Advice, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var a models.Advice
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON response: %v", ErrGatewayUnavailable, err)
	}
	if a.Summary == "" || a.BestWindow == "" || len(a.Recommendations) == 0 {
		return nil, fmt.Errorf("%w: response is missing required fields", ErrGatewayUnavailable)
	}
	return &a, nil
}
