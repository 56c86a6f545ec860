package repository

import (
	"context"
	"fmt"

	"pottytracker/internal/models"
)

// EventRepository stores potty events indexed by child id
type EventRepository struct {
	store *StorageRepository
}

func NewEventRepository(store *StorageRepository) *EventRepository {
	return &EventRepository{store: store}
}

// ListByChild returns a child's events in storage order. Callers sort as needed.
func (r *EventRepository) ListByChild(ctx context.Context, childID string) ([]models.PottyEvent, error) {
	byChild, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return byChild[childID], nil
}

// GetByID returns nil, nil when no event has the id
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.PottyEvent, error) {
	byChild, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, events := range byChild {
		for i := range events {
			if events[i].ID == id {
				return &events[i], nil
			}
		}
	}
	return nil, nil
}

// Create appends ev and returns how many events the child has afterwards
func (r *EventRepository) Create(ctx context.Context, ev models.PottyEvent) (int, error) {
	var count int
	err := updateJSON(ctx, r.store, KeyEvents, func(byChild *map[string][]models.PottyEvent) error {
		if *byChild == nil {
			*byChild = make(map[string][]models.PottyEvent)
		}
		(*byChild)[ev.ChildID] = append((*byChild)[ev.ChildID], ev)
		count = len((*byChild)[ev.ChildID])
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes the event with id from whichever child owns it
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return updateJSON(ctx, r.store, KeyEvents, func(byChild *map[string][]models.PottyEvent) error {
		for childID, events := range *byChild {
			for i := range events {
				if events[i].ID == id {
					(*byChild)[childID] = append(events[:i:i], events[i+1:]...)
					return nil
				}
			}
		}
		return ErrNotFound
	})
}

// UpdateTimestamp rewrites only the timestamp of the event with id
func (r *EventRepository) UpdateTimestamp(ctx context.Context, id string, timestamp int64) (*models.PottyEvent, error) {
	var updated models.PottyEvent
	err := updateJSON(ctx, r.store, KeyEvents, func(byChild *map[string][]models.PottyEvent) error {
		for _, events := range *byChild {
			for i := range events {
				if events[i].ID == id {
					events[i].Timestamp = timestamp
					updated = events[i]
					return nil
				}
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *EventRepository) load(ctx context.Context) (map[string][]models.PottyEvent, error) {
	byChild, err := readJSON[map[string][]models.PottyEvent](ctx, r.store, KeyEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return byChild, nil
}
