package repository

import (
	"context"
	"fmt"

	"pottytracker/internal/models"
)

// AccountRepository stores the local account list
type AccountRepository struct {
	store *StorageRepository
}

func NewAccountRepository(store *StorageRepository) *AccountRepository {
	return &AccountRepository{store: store}
}

// List returns every account in signup order
func (r *AccountRepository) List(ctx context.Context) ([]models.User, error) {
	accounts, err := readJSON[[]models.User](ctx, r.store, KeyAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounts, nil
}

// GetByEmail finds an account by its normalized email. Returns nil, nil when absent.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	accounts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	email = models.NormalizeEmail(email)
	for i := range accounts {
		if models.NormalizeEmail(accounts[i].Email) == email {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

// Create appends user, failing with ErrAlreadyExists when the email is taken
func (r *AccountRepository) Create(ctx context.Context, user models.User) error {
	email := models.NormalizeEmail(user.Email)
	return updateJSON(ctx, r.store, KeyAccounts, func(accounts *[]models.User) error {
		for _, existing := range *accounts {
			if models.NormalizeEmail(existing.Email) == email {
				return ErrAlreadyExists
			}
		}
		*accounts = append(*accounts, user)
		return nil
	})
}
