package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pottytracker/internal/service"
)

// FamilyHandler handles children and partner invites
type FamilyHandler struct {
	familyService *service.FamilyService
	logger        *zap.Logger
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, logger *zap.Logger) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		logger:        logger,
	}
}

// ListChildren returns the signed-in family's children
func (h *FamilyHandler) ListChildren(c echo.Context) error {
	user := GetUserFromContext(c)

	children, err := h.familyService.Children(c.Request().Context(), user.FamilyID)
	if err != nil {
		return respondWithError(c, h.logger, "failed to list children", err)
	}
	return c.JSON(http.StatusOK, children)
}

func (h *FamilyHandler) AddChild(c echo.Context) error {
	user := GetUserFromContext(c)

	var req AddChildRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidRequestBody)
	}

	child, err := h.familyService.AddChild(c.Request().Context(), user.FamilyID, req.Name)
	if err != nil {
		return respondWithError(c, h.logger, "failed to add child", err)
	}
	return c.JSON(http.StatusCreated, child)
}

// CreateInvite issues a partner invite token and emails it when delivery is configured
func (h *FamilyHandler) CreateInvite(c echo.Context) error {
	user := GetUserFromContext(c)

	var req InviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidRequestBody)
	}

	inv, err := h.familyService.InvitePartner(c.Request().Context(), user, req.Name, req.Email)
	if err != nil {
		return respondWithError(c, h.logger, "failed to create invite", err)
	}
	return c.JSON(http.StatusCreated, inv)
}

// CheckInvite reports whether a token can still be used to sign up
func (h *FamilyHandler) CheckInvite(c echo.Context) error {
	familyID, err := h.familyService.ValidateToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return respondWithError(c, h.logger, "failed to check invite", err)
	}
	return c.JSON(http.StatusOK, InviteCheckResponse{Valid: true, FamilyID: familyID})
}
