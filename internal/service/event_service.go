package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pottytracker/internal/credentials"
	"pottytracker/internal/logging"
	"pottytracker/internal/metrics"
	"pottytracker/internal/models"
	"pottytracker/internal/repository"
	"pottytracker/internal/stats"
	"pottytracker/internal/validation"
)

var ErrEventNotFound = errors.New("event not found")

// EventService records and edits a child's events
type EventService struct {
	events   *repository.EventRepository
	insights *InsightService
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewEventService creates an event service. insights may be nil to skip automatic advice.
func NewEventService(events *repository.EventRepository, insights *InsightService, loc *time.Location, logger *zap.Logger) *EventService {
	if loc == nil {
		loc = time.Local
	}
	return &EventService{
		events:   events,
		insights: insights,
		loc:      loc,
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
}

// Location is the timezone used for time-of-day views and corrections
func (s *EventService) Location() *time.Location {
	return s.loc
}

// Events returns a child's events, oldest first
func (s *EventService) Events(ctx context.Context, childID string) ([]models.PottyEvent, error) {
	events, err := s.events.ListByChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	return stats.SortByTime(events), nil
}

// SaveEvent stores ev under a fresh id and returns the id. Any id on ev is ignored.
// Saving the event that reaches the automatic advice schedule starts a background refresh.
func (s *EventService) SaveEvent(ctx context.Context, ev models.PottyEvent) (string, error) {
	if strings.TrimSpace(ev.ChildID) == "" {
		return "", validation.ValidationError{Field: "childId", Message: "childId is required"}
	}
	if ev.Timestamp <= 0 {
		return "", validation.ValidationError{Field: "timestamp", Message: "timestamp must be a positive epoch in milliseconds"}
	}
	typ, err := models.ParseEventType(string(ev.Type))
	if err != nil {
		return "", validation.ValidationError{Field: "type", Message: err.Error()}
	}

	ev.ID = credentials.NewID()
	ev.Type = typ

	count, err := s.events.Create(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("failed to save event: %w", err)
	}
	metrics.EventsLogged.WithLabelValues(string(typ)).Inc()

	if s.insights != nil && s.insights.OnEventLogged(ctx, ev.ChildID, count) {
		s.logger.Debug("automatic advice refresh started",
			zap.String("child_id", ev.ChildID),
			zap.Int("events", count),
		)
	}
	return ev.ID, nil
}

// LogEvent records an event of typ for childID at the current time
func (s *EventService) LogEvent(ctx context.Context, childID string, typ models.EventType) (*models.PottyEvent, error) {
	ev := models.PottyEvent{
		ChildID:   childID,
		Timestamp: s.now().UnixMilli(),
		Type:      typ,
	}
	id, err := s.SaveEvent(ctx, ev)
	if err != nil {
		return nil, err
	}
	ev.ID = id
	ev.Type = ev.Type.Normalize()
	return &ev, nil
}

// Event returns the event with id or ErrEventNotFound
func (s *EventService) Event(ctx context.Context, id string) (*models.PottyEvent, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	err := s.events.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	metrics.EventsChanged.WithLabelValues("delete").Inc()
	return nil
}

// UpdateEvent moves an event to timestamp. Nothing else about the event changes.
func (s *EventService) UpdateEvent(ctx context.Context, id string, timestamp int64) (*models.PottyEvent, error) {
	if timestamp <= 0 {
		return nil, validation.ValidationError{Field: "timestamp", Message: "timestamp must be a positive epoch in milliseconds"}
	}
	ev, err := s.events.UpdateTimestamp(ctx, id, timestamp)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	metrics.EventsChanged.WithLabelValues("update").Inc()
	return ev, nil
}

// CorrectTime moves an event to hour:minute on the local day it was logged
func (s *EventService) CorrectTime(ctx context.Context, id string, hour, minute int) (*models.PottyEvent, error) {
	if err := validation.ValidateClock(hour, minute); err != nil {
		return nil, err
	}
	ev, err := s.Event(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.UpdateEvent(ctx, id, stats.WithTimeOfDay(ev.Timestamp, hour, minute, s.loc))
}
