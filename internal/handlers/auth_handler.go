package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pottytracker/internal/service"
)

// AuthHandler handles signup, login and the current session
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Signup creates an account and signs it in
func (h *AuthHandler) Signup(c echo.Context) error {
	var req service.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidRequestBody)
	}

	user, err := h.authService.Signup(c.Request().Context(), req)
	if err != nil {
		return respondWithError(c, h.logger, "signup failed", err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login signs in an existing account
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidRequestBody)
	}

	user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondWithError(c, h.logger, "login failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.ClearSession(c.Request().Context()); err != nil {
		return respondWithError(c, h.logger, "logout failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Session returns the signed-in user, or null
func (h *AuthHandler) Session(c echo.Context) error {
	user, err := h.authService.CurrentUser(c.Request().Context())
	if err != nil {
		return respondWithError(c, h.logger, "failed to load session", err)
	}
	return c.JSON(http.StatusOK, SessionResponse{User: user})
}

// Accounts lists local accounts for quick login. ?q= fuzzy-filters them.
func (h *AuthHandler) Accounts(c echo.Context) error {
	accounts, err := h.authService.SearchAccounts(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondWithError(c, h.logger, "failed to list accounts", err)
	}
	return c.JSON(http.StatusOK, accounts)
}
