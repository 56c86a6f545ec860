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
	"pottytracker/internal/models"
	"pottytracker/internal/repository"
	"pottytracker/internal/validation"
)

var (
	ErrInvalidOrExpiredToken = errors.New("invalid or expired invite token")
	ErrChildNotFound         = errors.New("child not found")
)

const maxTokenAttempts = 5

// InviteNotifier delivers an invite token to the invited partner
type InviteNotifier interface {
	SendPartnerInvite(ctx context.Context, toEmail, toName, inviterName, token string) error
}

// FamilyService manages children and partner invitations within a family
type FamilyService struct {
	children  *repository.ChildRepository
	invites   *repository.InviteRepository
	notifier  InviteNotifier
	inviteTTL time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewFamilyService creates a family service. notifier may be nil.
// A zero inviteTTL issues tokens that never expire.
func NewFamilyService(children *repository.ChildRepository, invites *repository.InviteRepository, notifier InviteNotifier, inviteTTL time.Duration, logger *zap.Logger) *FamilyService {
	return &FamilyService{
		children:  children,
		invites:   invites,
		notifier:  notifier,
		inviteTTL: inviteTTL,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// AddChild creates a child in familyID
func (s *FamilyService) AddChild(ctx context.Context, familyID, name string) (*models.Child, error) {
	if err := validation.ValidateName("name", name); err != nil {
		return nil, err
	}
	if familyID == "" {
		return nil, validation.ValidationError{Field: "familyId", Message: "familyId is required"}
	}

	child := models.Child{
		ID:       credentials.NewID(),
		Name:     strings.TrimSpace(name),
		FamilyID: familyID,
	}
	if err := s.children.Create(ctx, child); err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	s.logger.Info("child added", zap.String("child_id", child.ID), zap.String("family_id", familyID))
	return &child, nil
}

// Children returns a family's children in the order they were added
func (s *FamilyService) Children(ctx context.Context, familyID string) ([]models.Child, error) {
	return s.children.ListByFamily(ctx, familyID)
}

// ChildInFamily returns the child if it belongs to familyID, else ErrChildNotFound
func (s *FamilyService) ChildInFamily(ctx context.Context, familyID, childID string) (*models.Child, error) {
	child, err := s.children.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.FamilyID != familyID {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// CreateToken issues a new invite token for inviteeEmail to join familyID
func (s *FamilyService) CreateToken(ctx context.Context, inviteeEmail, familyID string) (string, error) {
	if err := validation.ValidateEmail(inviteeEmail); err != nil {
		return "", err
	}
	if familyID == "" {
		return "", validation.ValidationError{Field: "familyId", Message: "familyId is required"}
	}

	now := s.now()
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := credentials.GenerateInviteToken()
		if err != nil {
			return "", fmt.Errorf("failed to generate invite token: %w", err)
		}

		inv := models.InviteToken{
			Token:        token,
			FamilyID:     familyID,
			InviteeEmail: models.NormalizeEmail(inviteeEmail),
			CreatedAt:    now.UnixMilli(),
		}
		if s.inviteTTL > 0 {
			inv.ExpiresAt = now.Add(s.inviteTTL).UnixMilli()
		}

		err = s.invites.Create(ctx, inv)
		if errors.Is(err, repository.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to record invite token: %w", err)
		}
		return token, nil
	}
	return "", fmt.Errorf("failed to generate a unique invite token after %d attempts", maxTokenAttempts)
}

// ValidateToken returns the inviting family of an unused, unexpired token
func (s *FamilyService) ValidateToken(ctx context.Context, token string) (string, error) {
	inv, err := s.invites.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return "", err
	}
	if inv == nil || !inv.IsValid(s.now()) {
		return "", ErrInvalidOrExpiredToken
	}
	return inv.FamilyID, nil
}

// InvitePartner issues a token for inviteeEmail and mails it when a notifier is set.
// Delivery failures are logged; the token is still returned so it can be shared by hand.
func (s *FamilyService) InvitePartner(ctx context.Context, inviter *models.User, inviteeName, inviteeEmail string) (*models.InviteToken, error) {
	if inviter == nil {
		return nil, ErrNotSignedIn
	}

	token, err := s.CreateToken(ctx, inviteeEmail, inviter.FamilyID)
	if err != nil {
		return nil, err
	}
	inv, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("invite token %s vanished after creation", token)
	}

	if s.notifier != nil {
		if err := s.notifier.SendPartnerInvite(ctx, inv.InviteeEmail, strings.TrimSpace(inviteeName), inviter.Name, token); err != nil {
			s.logger.Warn("failed to send partner invite",
				zap.String("family_id", inviter.FamilyID),
				zap.Error(err),
			)
		}
	}
	return inv, nil
}

// redeemToken marks token used by userID and returns its family.
// The signup email must match the invited email.
func (s *FamilyService) redeemToken(ctx context.Context, token, email, userID string) (string, error) {
	inv, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return "", err
	}
	if inv == nil || (inv.InviteeEmail != "" && models.NormalizeEmail(inv.InviteeEmail) != models.NormalizeEmail(email)) {
		return "", ErrInvalidOrExpiredToken
	}

	consumed, err := s.invites.Consume(ctx, token, userID, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidOrExpiredToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to redeem invite token: %w", err)
	}
	return consumed.FamilyID, nil
}

func (s *FamilyService) releaseToken(ctx context.Context, token string) {
	if err := s.invites.Release(ctx, token); err != nil {
		s.logger.Warn("failed to release invite token", zap.Error(err))
	}
}

// PruneExpiredInvites removes unused tokens that can no longer be redeemed
func (s *FamilyService) PruneExpiredInvites(ctx context.Context) (int, error) {
	removed, err := s.invites.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("expired invite tokens pruned", zap.Int("removed", removed))
	}
	return removed, nil
}
