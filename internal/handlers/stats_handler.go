package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pottytracker/internal/models"
	"pottytracker/internal/service"
	"pottytracker/internal/stats"
)

// StatsHandler serves the charts and the advice panel
type StatsHandler struct {
	eventService   *service.EventService
	familyService  *service.FamilyService
	insightService *service.InsightService
	adviceEnabled  bool
	logger         *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(eventService *service.EventService, familyService *service.FamilyService, insightService *service.InsightService, adviceEnabled bool, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		eventService:   eventService,
		familyService:  familyService,
		insightService: insightService,
		adviceEnabled:  adviceEnabled,
		logger:         logger,
	}
}

// Stats returns chart data for a child. ?zoom= sets the x-axis zoom (1 to 5).
func (h *StatsHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	user := GetUserFromContext(c)

	zoom := stats.MinZoom
	if raw := c.QueryParam("zoom"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "zoom must be a number")
		}
		zoom = stats.ClampZoom(parsed)
	}

	child, err := h.familyService.ChildInFamily(ctx, user.FamilyID, c.Param("id"))
	if err != nil {
		return respondWithError(c, h.logger, "failed to load child", err)
	}
	events, err := h.eventService.Events(ctx, child.ID)
	if err != nil {
		return respondWithError(c, h.logger, "failed to list events", err)
	}

	loc := h.eventService.Location()
	chart := stats.BuildChartData(events, loc)
	resp := StatsResponse{
		ChildID:             child.ID,
		EventCount:          len(events),
		EventsUntilInsights: service.EventsUntilInsights(len(events)),
		Zoom:                zoom,
		Chart:               chart,
		BestFit:             stats.LineOfBestFit(chart),
		Days:                stats.BinByDay(events, loc),
	}
	if resp.Chart == nil {
		resp.Chart = []models.ChartDataPoint{}
	}
	if resp.BestFit == nil {
		resp.BestFit = []models.BestFitPoint{}
	}
	if resp.Days == nil {
		resp.Days = []models.DayBucket{}
	}

	for _, m := range stats.Ticks(zoom) {
		resp.Ticks = append(resp.Ticks, TickView{Minutes: m, Label: stats.FormatTime(m)})
	}
	resp.Frequency = make([]FrequencyView, 0)
	for _, b := range stats.BinByTimeOfDay(events, loc) {
		resp.Frequency = append(resp.Frequency, FrequencyView{
			TimeOfDay: b.TimeOfDay,
			Label:     stats.FormatTime(b.TimeOfDay),
			Count:     b.Count,
			Dense:     b.Dense(),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Advice returns the latest advice for a child, or null before the first refresh
func (h *StatsHandler) Advice(c echo.Context) error {
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

	return c.JSON(http.StatusOK, AdviceResponse{
		Advice:              h.insightService.Advice(child.ID),
		Enabled:             h.adviceEnabled,
		EventsUntilInsights: service.EventsUntilInsights(len(events)),
	})
}

// RefreshAdvice asks for new advice now
func (h *StatsHandler) RefreshAdvice(c echo.Context) error {
	ctx := c.Request().Context()
	user := GetUserFromContext(c)

	child, err := h.familyService.ChildInFamily(ctx, user.FamilyID, c.Param("id"))
	if err != nil {
		return respondWithError(c, h.logger, "failed to load child", err)
	}

	result, err := h.insightService.Refresh(ctx, child.ID)
	if err != nil {
		return respondWithError(c, h.logger, "failed to refresh advice", err)
	}
	return c.JSON(http.StatusOK, AdviceResponse{
		Advice:  result,
		Enabled: h.adviceEnabled,
	})
}
