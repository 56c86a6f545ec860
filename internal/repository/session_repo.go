package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"pottytracker/internal/models"
)

// SessionRepository persists the signed-in user
type SessionRepository struct {
	store *StorageRepository
}

func NewSessionRepository(store *StorageRepository) *SessionRepository {
	return &SessionRepository{store: store}
}

// Get returns the current session user, or nil when nobody is signed in
func (r *SessionRepository) Get(ctx context.Context) (*models.User, error) {
	raw, ok, err := r.store.GetRaw(ctx, KeySession)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decode[*models.User](r.store.logger, KeySession, raw, ok), nil
}

// Set replaces the session. A nil user clears it.
func (r *SessionRepository) Set(ctx context.Context, user *models.User) error {
	if user == nil {
		return r.Clear(ctx)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return r.store.SetRaw(ctx, KeySession, string(data))
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, KeySession)
}
