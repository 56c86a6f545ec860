package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pottytracker/internal/models"
	"pottytracker/internal/service"
	"pottytracker/internal/stats"
)

// EventHandler handles logging and editing a child's events
type EventHandler struct {
	eventService  *service.EventService
	familyService *service.FamilyService
	logger        *zap.Logger
	now           func() time.Time
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService, familyService *service.FamilyService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		eventService:  eventService,
		familyService: familyService,
		logger:        logger,
		now:           time.Now,
	}
}

// ListEvents returns a child's events with today's list and the day-grouped history
func (h *EventHandler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()
	user := GetUserFromContext(c)

	child, err := h.familyService.ChildInFamily(ctx, user.FamilyID, c.Param("id"))
	if err != nil {
		return respondWithError(c, h.logger, "failed to load child", err)
	}

	events, err := h.eventService.Events(ctx, child.ID)
	if err != nil {
		return respondWithError(c, h.logger, "failed to list events", err)
	}

	if events == nil {
		events = []models.PottyEvent{}
	}

	loc := h.eventService.Location()
	resp := EventsResponse{
		Events:  events,
		Today:   eventViews(stats.EventsOn(events, h.now(), loc), loc),
		History: make([]DayGroupView, 0),
	}
	for _, g := range stats.GroupByDay(events, loc) {
		resp.History = append(resp.History, DayGroupView{Date: g.Date, Label: g.Label, Events: eventViews(g.Events, loc)})
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateEvent logs an event for a child
func (h *EventHandler) CreateEvent(c echo.Context) error {
	ctx := c.Request().Context()
	user := GetUserFromContext(c)

	child, err := h.familyService.ChildInFamily(ctx, user.FamilyID, c.Param("id"))
	if err != nil {
		return respondWithError(c, h.logger, "failed to load child", err)
	}

	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidRequestBody)
	}

	var ev *models.PottyEvent
	if req.Timestamp == 0 {
		ev, err = h.eventService.LogEvent(ctx, child.ID, req.Type)
	} else {
		ev = &models.PottyEvent{ChildID: child.ID, Timestamp: req.Timestamp, Type: req.Type}
		ev.ID, err = h.eventService.SaveEvent(ctx, *ev)
		ev.Type = ev.Type.Normalize()
	}
	if err != nil {
		return respondWithError(c, h.logger, "failed to log event", err)
	}
	return c.JSON(http.StatusCreated, eventView(*ev, h.eventService.Location()))
}

// UpdateEvent moves an event to a new timestamp or a new time on the same day
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	ctx := c.Request().Context()
	user := GetUserFromContext(c)

	ev, err := h.eventInFamily(ctx, user, c.Param("id"))
	if err != nil {
		return respondWithError(c, h.logger, "failed to load event", err)
	}

	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidRequestBody)
	}

	var updated *models.PottyEvent
	switch {
	case req.Timestamp != nil:
		updated, err = h.eventService.UpdateEvent(ctx, ev.ID, *req.Timestamp)
	case req.Hour != nil && req.Minute != nil:
		updated, err = h.eventService.CorrectTime(ctx, ev.ID, *req.Hour, *req.Minute)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "timestamp or hour and minute are required")
	}
	if err != nil {
		return respondWithError(c, h.logger, "failed to update event", err)
	}
	return c.JSON(http.StatusOK, eventView(*updated, h.eventService.Location()))
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	ctx := c.Request().Context()
	user := GetUserFromContext(c)

	ev, err := h.eventInFamily(ctx, user, c.Param("id"))
	if err != nil {
		return respondWithError(c, h.logger, "failed to load event", err)
	}
	if err := h.eventService.DeleteEvent(ctx, ev.ID); err != nil {
		return respondWithError(c, h.logger, "failed to delete event", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// eventInFamily loads an event and hides it unless its child belongs to the user's family
func (h *EventHandler) eventInFamily(ctx context.Context, user *models.User, id string) (*models.PottyEvent, error) {
	ev, err := h.eventService.Event(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := h.familyService.ChildInFamily(ctx, user.FamilyID, ev.ChildID); err != nil {
		if errors.Is(err, service.ErrChildNotFound) {
			return nil, service.ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

func eventView(ev models.PottyEvent, loc *time.Location) EventView {
	ev.Type = ev.Type.Normalize()
	return EventView{
		PottyEvent: ev,
		Label:      ev.Type.Label(),
		Icon:       ev.Type.Icon(),
		Formatted:  stats.FormatDateTime(ev.Timestamp, loc),
	}
}

func eventViews(events []models.PottyEvent, loc *time.Location) []EventView {
	out := make([]EventView, 0, len(events))
	for _, ev := range events {
		out = append(out, eventView(ev, loc))
	}
	return out
}
