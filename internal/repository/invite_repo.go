package repository

import (
	"context"
	"fmt"
	"time"

	"pottytracker/internal/models"
)

// InviteRepository is the registry of partner invite tokens
type InviteRepository struct {
	store *StorageRepository
}

func NewInviteRepository(store *StorageRepository) *InviteRepository {
	return &InviteRepository{store: store}
}

// Create records inv, failing with ErrAlreadyExists when the token is taken
func (r *InviteRepository) Create(ctx context.Context, inv models.InviteToken) error {
	return updateJSON(ctx, r.store, KeyInvites, func(invites *[]models.InviteToken) error {
		for _, existing := range *invites {
			if existing.Token == inv.Token {
				return ErrAlreadyExists
			}
		}
		*invites = append(*invites, inv)
		return nil
	})
}

// GetByToken returns nil, nil for an unknown token
func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*models.InviteToken, error) {
	invites, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range invites {
		if invites[i].Token == token {
			return &invites[i], nil
		}
	}
	return nil, nil
}

func (r *InviteRepository) List(ctx context.Context) ([]models.InviteToken, error) {
	invites, err := readJSON[[]models.InviteToken](ctx, r.store, KeyInvites)
	if err != nil {
		return nil, fmt.Errorf("failed to load invites: %w", err)
	}
	return invites, nil
}

// Consume marks a valid token as used by usedBy. Unknown, expired and
// already used tokens fail with ErrNotFound.
func (r *InviteRepository) Consume(ctx context.Context, token, usedBy string, now time.Time) (*models.InviteToken, error) {
	var consumed models.InviteToken
	err := updateJSON(ctx, r.store, KeyInvites, func(invites *[]models.InviteToken) error {
		for i := range *invites {
			inv := &(*invites)[i]
			if inv.Token != token {
				continue
			}
			if !inv.IsValid(now) {
				return ErrNotFound
			}
			usedAt := now.UnixMilli()
			inv.UsedAt = &usedAt
			inv.UsedBy = usedBy
			consumed = *inv
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &consumed, nil
}

// Release clears the used marker set by Consume
func (r *InviteRepository) Release(ctx context.Context, token string) error {
	return updateJSON(ctx, r.store, KeyInvites, func(invites *[]models.InviteToken) error {
		for i := range *invites {
			if (*invites)[i].Token == token {
				(*invites)[i].UsedAt = nil
				(*invites)[i].UsedBy = ""
				return nil
			}
		}
		return ErrNotFound
	})
}

// DeleteExpired drops unused tokens that expired before now and returns how many were removed.
// Used tokens are kept as a record of who joined.
func (r *InviteRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	err := updateJSON(ctx, r.store, KeyInvites, func(invites *[]models.InviteToken) error {
		kept := (*invites)[:0]
		for _, inv := range *invites {
			if !inv.IsUsed() && inv.IsExpired(now) {
				removed++
				continue
			}
			kept = append(kept, inv)
		}
		*invites = kept
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune invites: %w", err)
	}
	return removed, nil
}
