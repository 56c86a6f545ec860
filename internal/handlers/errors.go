package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pottytracker/internal/service"
	"pottytracker/internal/validation"
)

// statusFor maps service errors to an HTTP status and the message shown to the client
func statusFor(err error) (int, string) {
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, service.ErrDuplicateAccount):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrChildNotFound),
		errors.Is(err, service.ErrEventNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotSignedIn):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotEnoughEvents):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, ErrInternalServerError
}

// respondWithError turns err into an echo.HTTPError. Unexpected errors are
// logged and reported without detail.
func respondWithError(c echo.Context, logger *zap.Logger, logMsg string, err error) error {
	status, userMsg := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(logMsg,
			zap.String("uri", c.Request().RequestURI),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err),
		)
	}
	return echo.NewHTTPError(status, userMsg)
}
