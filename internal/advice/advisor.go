package advice

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"pottytracker/internal/logging"
	"pottytracker/internal/metrics"
	"pottytracker/internal/models"
	"pottytracker/internal/stats"
)

// Advisor calls a Gateway and never fails: errors become Fallback.
// A nil gateway means advice is disabled and Fallback is always returned.
type Advisor struct {
	gateway Gateway
	logger  *zap.Logger
}

func NewAdvisor(gateway Gateway, logger *zap.Logger) *Advisor {
	return &Advisor{gateway: gateway, logger: logging.OrNop(logger)}
}

// Enabled reports whether a real gateway is configured
func (a *Advisor) Enabled() bool {
	return a.gateway != nil
}

// Advise returns the gateway's advice for events, or Fallback.
// trigger labels the request in metrics ("auto" or "manual").
func (a *Advisor) Advise(ctx context.Context, trigger string, events []models.PottyEvent) *models.Advice {
	if a.gateway == nil {
		metrics.AdviceRequests.WithLabelValues(trigger, metrics.OutcomeDisabled).Inc()
		return Fallback()
	}

	start := time.Now()
	result, err := a.gateway.Advise(ctx, stats.SortByTime(events))
	metrics.AdviceDuration.Observe(time.Since(start).Seconds())

	if err == nil && result == nil {
		err = errors.New("gateway returned no advice")
	}
	if err != nil {
		a.logger.Warn("advice gateway failed, using fallback advice",
			zap.String("trigger", trigger),
			zap.Int("events", len(events)),
			zap.Error(err),
		)
		metrics.AdviceRequests.WithLabelValues(trigger, metrics.OutcomeFallback).Inc()
		return Fallback()
	}

	metrics.AdviceRequests.WithLabelValues(trigger, metrics.OutcomeSuccess).Inc()
	return result
}
