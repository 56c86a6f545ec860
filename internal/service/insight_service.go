package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"pottytracker/internal/advice"
	"pottytracker/internal/logging"
	"pottytracker/internal/metrics"
	"pottytracker/internal/models"
	"pottytracker/internal/repository"
)

// Advice refresh policy
const (
	// MinEventsForInsights is the event count at which automatic advice starts
	MinEventsForInsights = 5
	// AutoRefreshEvery refreshes automatically on every multiple of this count
	AutoRefreshEvery = 3
	// MinEventsForManualRefresh is the smallest history a manual refresh accepts
	MinEventsForManualRefresh = 3
)

var ErrNotEnoughEvents = errors.New("not enough events to analyze")

// ShouldAutoRefresh reports whether logging the count-th event refreshes advice (6, 9, 12, ...)
func ShouldAutoRefresh(count int) bool {
	return count >= MinEventsForInsights && count%AutoRefreshEvery == 0
}

// EventsUntilInsights is how many more events unlock the insights panel
func EventsUntilInsights(count int) int {
	if count >= MinEventsForInsights {
		return 0
	}
	return MinEventsForInsights - count
}

// InsightService decides when to ask for advice and caches the latest answer per child
type InsightService struct {
	advisor *advice.Advisor
	events  *repository.EventRepository
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	seq   uint64
	cache map[string]cachedAdvice
	wg    sync.WaitGroup
}

// cachedAdvice remembers which refresh produced the advice. seq increases
// with each refresh start, so a slow older refresh never replaces a newer one.
type cachedAdvice struct {
	seq    uint64
	advice *models.Advice
}

// NewInsightService creates an insight service. timeout bounds automatic refreshes; zero means none.
func NewInsightService(advisor *advice.Advisor, events *repository.EventRepository, timeout time.Duration, logger *zap.Logger) *InsightService {
	return &InsightService{
		advisor: advisor,
		events:  events,
		timeout: timeout,
		logger:  logging.OrNop(logger),
		cache:   make(map[string]cachedAdvice),
	}
}

// OnEventLogged starts a background refresh when count hits the automatic schedule.
// It never blocks on the gateway and reports whether a refresh was started.
func (s *InsightService) OnEventLogged(ctx context.Context, childID string, count int) bool {
	if !ShouldAutoRefresh(count) {
		return false
	}

	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	metrics.AdviceInFlight.Inc()
	go func() {
		defer s.wg.Done()
		defer metrics.AdviceInFlight.Dec()

		if s.timeout > 0 {
			var cancel context.CancelFunc
			bg, cancel = context.WithTimeout(bg, s.timeout)
			defer cancel()
		}

		if _, err := s.refresh(bg, "auto", childID); err != nil {
			s.logger.Warn("automatic advice refresh failed",
				zap.String("child_id", childID),
				zap.Error(err),
			)
		}
	}()
	return true
}

// Refresh asks for new advice now. It needs at least MinEventsForManualRefresh events.
func (s *InsightService) Refresh(ctx context.Context, childID string) (*models.Advice, error) {
	events, err := s.events.ListByChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	if len(events) < MinEventsForManualRefresh {
		return nil, ErrNotEnoughEvents
	}
	return s.advise(ctx, "manual", childID, events), nil
}

// Advice returns the cached advice for childID, or nil
func (s *InsightService) Advice(childID string) *models.Advice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache[childID].advice
}

// Wait blocks until background refreshes have finished
func (s *InsightService) Wait() {
	s.wg.Wait()
}

func (s *InsightService) refresh(ctx context.Context, trigger, childID string) (*models.Advice, error) {
	events, err := s.events.ListByChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	return s.advise(ctx, trigger, childID, events), nil
}

func (s *InsightService) advise(ctx context.Context, trigger, childID string, events []models.PottyEvent) *models.Advice {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	result := s.advisor.Advise(ctx, trigger, events)

	s.mu.Lock()
	stale := s.cache[childID].seq > seq
	if !stale {
		s.cache[childID] = cachedAdvice{seq: seq, advice: result}
	}
	s.mu.Unlock()

	if stale {
		s.logger.Debug("discarding advice from an older refresh",
			zap.String("child_id", childID),
			zap.String("trigger", trigger),
		)
		return result
	}

	s.logger.Debug("advice refreshed",
		zap.String("child_id", childID),
		zap.String("trigger", trigger),
		zap.Int("events", len(events)),
	)
	return result
}
