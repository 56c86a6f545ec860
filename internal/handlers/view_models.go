package handlers

import (
	"pottytracker/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries the signed-in user; User is null when signed out
type SessionResponse struct {
	User *models.User `json:"user"`
}

type AddChildRequest struct {
	Name string `json:"name"`
}

type InviteRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type InviteCheckResponse struct {
	Valid    bool   `json:"valid"`
	FamilyID string `json:"familyId"`
}

// CreateEventRequest logs an event. A zero Timestamp means now.
type CreateEventRequest struct {
	Timestamp int64            `json:"timestamp,omitempty"`
	Type      models.EventType `json:"type,omitempty"`
}

// UpdateEventRequest moves an event either to Timestamp or to Hour:Minute on its day
type UpdateEventRequest struct {
	Timestamp *int64 `json:"timestamp,omitempty"`
	Hour      *int   `json:"hour,omitempty"`
	Minute    *int   `json:"minute,omitempty"`
}

// EventView decorates an event with its display label and icon
type EventView struct {
	models.PottyEvent
	Label     string `json:"label"`
	Icon      string `json:"icon"`
	Formatted string `json:"formatted"`
}

type DayGroupView struct {
	Date   string      `json:"date"`
	Label  string      `json:"label"`
	Events []EventView `json:"events"`
}

type EventsResponse struct {
	Events  []models.PottyEvent `json:"events"`
	Today   []EventView         `json:"today"`
	History []DayGroupView      `json:"history"`
}

type TickView struct {
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
}

type FrequencyView struct {
	TimeOfDay int    `json:"timeOfDay"`
	Label     string `json:"label"`
	Count     int    `json:"count"`
	Dense     bool   `json:"dense"`
}

type StatsResponse struct {
	ChildID             string                  `json:"childId"`
	EventCount          int                     `json:"eventCount"`
	EventsUntilInsights int                     `json:"eventsUntilInsights"`
	Zoom                float64                 `json:"zoom"`
	Ticks               []TickView              `json:"ticks"`
	Chart               []models.ChartDataPoint `json:"chart"`
	BestFit             []models.BestFitPoint   `json:"bestFit"`
	Frequency           []FrequencyView         `json:"frequency"`
	Days                []models.DayBucket      `json:"days"`
}

type AdviceResponse struct {
	Advice              *models.Advice `json:"advice"`
	Enabled             bool           `json:"enabled"`
	EventsUntilInsights int            `json:"eventsUntilInsights"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
