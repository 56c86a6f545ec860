package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"pottytracker/internal/credentials"
	"pottytracker/internal/logging"
	"pottytracker/internal/metrics"
	"pottytracker/internal/models"
	"pottytracker/internal/repository"
	"pottytracker/internal/security"
	"pottytracker/internal/validation"
)

var (
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrAccountNotFound    = errors.New("no account found with this email")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrNotSignedIn        = errors.New("not signed in")
)

// SignupRequest carries the signup form. PartnerToken is optional.
type SignupRequest struct {
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Password     string `json:"password"`
	PartnerToken string `json:"partnerToken,omitempty"`
}

// AuthService handles local accounts and the current session
type AuthService struct {
	accounts      *repository.AccountRepository
	sessions      *repository.SessionRepository
	families      *FamilyService
	hashPasswords bool
	logger        *zap.Logger
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(accounts *repository.AccountRepository, sessions *repository.SessionRepository, families *FamilyService, hashPasswords bool, logger *zap.Logger) *AuthService {
	return &AuthService{
		accounts:      accounts,
		sessions:      sessions,
		families:      families,
		hashPasswords: hashPasswords,
		logger:        logging.OrNop(logger),
		now:           time.Now,
	}
}

// Signup creates an account, signs it in and returns it.
// With a partner token the account joins the inviting family and the token is used up.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("firstName", req.FirstName); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("lastName", req.LastName); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	email := models.NormalizeEmail(req.Email)
	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateAccount
	}

	password := req.Password
	if s.hashPasswords {
		password, err = security.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	user := models.User{
		ID:        credentials.NewID(),
		Email:     email,
		Password:  password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Name:      models.DisplayName(req.FirstName, req.LastName),
		CreatedAt: s.now().UnixMilli(),
	}

	token := strings.TrimSpace(req.PartnerToken)
	joined := token != ""
	if joined {
		familyID, err := s.families.redeemToken(ctx, token, email, user.ID)
		if err != nil {
			return nil, err
		}
		user.FamilyID = familyID
	} else {
		user.FamilyID = credentials.NewFamilyID()
	}

	if err := s.accounts.Create(ctx, user); err != nil {
		if joined {
			s.families.releaseToken(ctx, token)
		}
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	familyLabel := "new"
	if joined {
		familyLabel = "joined"
	}
	metrics.Signups.WithLabelValues(familyLabel).Inc()
	s.logger.Info("account created",
		zap.String("user_id", user.ID),
		zap.String("family_id", user.FamilyID),
		zap.Bool("joined_family", joined),
	)

	public := user.WithoutPassword()
	if err := s.SetSession(ctx, &public); err != nil {
		return nil, err
	}
	return &public, nil
}

// Login checks credentials and replaces the session. A failed login leaves the session untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if user == nil {
		metrics.LoginFailures.WithLabelValues("not_found").Inc()
		return nil, ErrAccountNotFound
	}

	if !security.CheckPassword(password, user.Password) {
		metrics.LoginFailures.WithLabelValues("bad_password").Inc()
		return nil, ErrInvalidCredentials
	}

	public := user.WithoutPassword()
	if err := s.SetSession(ctx, &public); err != nil {
		return nil, err
	}
	s.logger.Info("signed in", zap.String("user_id", user.ID))
	return &public, nil
}

// FindUserByEmail returns nil when no account matches
func (s *AuthService) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.accounts.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	public := user.WithoutPassword()
	return &public, nil
}

// AllAccounts lists every local account for quick login, without passwords
func (s *AuthService) AllAccounts(ctx context.Context) ([]models.User, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(accounts))
	for _, u := range accounts {
		out = append(out, u.WithoutPassword())
	}
	return out, nil
}

type accountSource []models.User

func (a accountSource) String(i int) string { return a[i].Name + " " + a[i].Email }
func (a accountSource) Len() int            { return len(a) }

// SearchAccounts fuzzy-matches query against account names and emails, best match first.
// An empty query returns every account.
func (s *AuthService) SearchAccounts(ctx context.Context, query string) ([]models.User, error) {
	accounts, err := s.AllAccounts(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return accounts, nil
	}

	matches := fuzzy.FindFrom(query, accountSource(accounts))
	out := make([]models.User, 0, len(matches))
	for _, m := range matches {
		out = append(out, accounts[m.Index])
	}
	return out, nil
}

// SetSession replaces the signed-in user. nil signs out.
func (s *AuthService) SetSession(ctx context.Context, user *models.User) error {
	if user != nil {
		public := user.WithoutPassword()
		user = &public
	}
	if err := s.sessions.Set(ctx, user); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

// CurrentUser returns the signed-in user or nil
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.sessions.Get(ctx)
}

// RequireUser is CurrentUser that fails with ErrNotSignedIn when nobody is signed in
func (s *AuthService) RequireUser(ctx context.Context) (*models.User, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotSignedIn
	}
	return user, nil
}

func (s *AuthService) ClearSession(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
