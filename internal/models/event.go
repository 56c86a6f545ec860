package models

import (
	"fmt"
	"strings"
	"time"
)

// EventType classifies a logged event. Empty values read as EventPotty.
type EventType string

const (
	EventPotty     EventType = "potty"
	EventWakeup    EventType = "wakeup"
	EventMeal      EventType = "meal"
	EventNap       EventType = "nap"
	EventBreakfast EventType = "breakfast"
	EventLunch     EventType = "lunch"
	EventDinner    EventType = "dinner"
	EventSnack     EventType = "snack"
)

type eventTypeInfo struct {
	label string
	icon  string
}

var eventTypes = map[EventType]eventTypeInfo{
	EventPotty:     {label: "Number 2", icon: "💩"},
	EventWakeup:    {label: "Good Morning", icon: "☀️"},
	EventMeal:      {label: "Meal Time", icon: "🍎"},
	EventNap:       {label: "Nap Time", icon: "😴"},
	EventBreakfast: {label: "Breakfast", icon: "🍳"},
	EventLunch:     {label: "Lunch", icon: "🥪"},
	EventDinner:    {label: "Dinner", icon: "🍝"},
	EventSnack:     {label: "Snack", icon: "🍌"},
}

// EventTypes lists every known type in display order
var EventTypes = []EventType{
	EventPotty, EventWakeup, EventBreakfast, EventLunch,
	EventDinner, EventSnack, EventMeal, EventNap,
}

// ParseEventType accepts a type name case-insensitively; empty means potty
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return EventPotty, nil
	}
	if _, ok := eventTypes[t]; !ok {
		return "", fmt.Errorf("unknown event type %q", s)
	}
	return t, nil
}

// Normalize maps legacy empty types to potty
func (t EventType) Normalize() EventType {
	if t == "" {
		return EventPotty
	}
	return t
}

func (t EventType) Label() string {
	if info, ok := eventTypes[t.Normalize()]; ok {
		return info.label
	}
	return eventTypes[EventPotty].label
}

func (t EventType) Icon() string {
	if info, ok := eventTypes[t.Normalize()]; ok {
		return info.icon
	}
	return eventTypes[EventPotty].icon
}

// PottyEvent is a single logged event. Timestamp is milliseconds since the Unix epoch.
type PottyEvent struct {
	ID        string    `json:"id"`
	ChildID   string    `json:"childId"`
	Timestamp int64     `json:"timestamp"`
	Type      EventType `json:"type,omitempty"`
}

// Kind returns the event type with legacy values normalized
func (e PottyEvent) Kind() EventType {
	return e.Type.Normalize()
}

// Time converts the timestamp into loc
func (e PottyEvent) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(e.Timestamp).In(loc)
}
