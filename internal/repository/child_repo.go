package repository

import (
	"context"
	"fmt"

	"pottytracker/internal/models"
)

// ChildRepository stores children indexed by family id
type ChildRepository struct {
	store *StorageRepository
}

func NewChildRepository(store *StorageRepository) *ChildRepository {
	return &ChildRepository{store: store}
}

// ListByFamily returns a family's children in the order they were added
func (r *ChildRepository) ListByFamily(ctx context.Context, familyID string) ([]models.Child, error) {
	byFamily, err := readJSON[map[string][]models.Child](ctx, r.store, KeyChildren)
	if err != nil {
		return nil, fmt.Errorf("failed to load children: %w", err)
	}
	return byFamily[familyID], nil
}

// GetByID finds a child in any family. Returns nil, nil when absent.
func (r *ChildRepository) GetByID(ctx context.Context, id string) (*models.Child, error) {
	byFamily, err := readJSON[map[string][]models.Child](ctx, r.store, KeyChildren)
	if err != nil {
		return nil, fmt.Errorf("failed to load children: %w", err)
	}
	for _, children := range byFamily {
		for i := range children {
			if children[i].ID == id {
				return &children[i], nil
			}
		}
	}
	return nil, nil
}

func (r *ChildRepository) Create(ctx context.Context, child models.Child) error {
	return updateJSON(ctx, r.store, KeyChildren, func(byFamily *map[string][]models.Child) error {
		if *byFamily == nil {
			*byFamily = make(map[string][]models.Child)
		}
		(*byFamily)[child.FamilyID] = append((*byFamily)[child.FamilyID], child)
		return nil
	})
}
