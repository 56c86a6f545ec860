package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pottytracker/internal/models"
	"pottytracker/internal/security"
	"pottytracker/internal/service"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
	logger      *zap.Logger
}

// NewMiddleware creates a new middleware instance. limiter may be nil to disable throttling.
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter, logger *zap.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
		logger:      logger,
	}
}

// RequireAuth rejects requests when nobody is signed in and stores the user on the context
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.authService.RequireUser(c.Request().Context())
		if err != nil {
			return respondWithError(c, m.logger, "failed to load session", err)
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

// RateLimit throttles login and signup attempts per client IP
func (m *Middleware) RateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.limiter == nil {
			return next(c)
		}
		ip := security.GetClientIP(c.Request())
		if !m.limiter.Allow(ip) {
			m.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("uri", c.Request().RequestURI))
			return echo.NewHTTPError(http.StatusTooManyRequests, ErrTooManyAttempts)
		}
		return next(c)
	}
}

// Logging logs every request once it has been handled
func Logging(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the error response so the logged status is final.
				c.Error(err)
			}

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	}
}

// GetUserFromContext returns the user stored by RequireAuth
func GetUserFromContext(c echo.Context) *models.User {
	user, ok := c.Get(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
