// Package handlers serves the local JSON API over echo.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pottytracker/internal/logging"
	"pottytracker/internal/security"
	"pottytracker/internal/service"
)

// Services are the dependencies the API exposes
type Services struct {
	Auth          *service.AuthService
	Families      *service.FamilyService
	Events        *service.EventService
	Insights      *service.InsightService
	AdviceEnabled bool
	// Startup backs /ready. nil reports ready immediately.
	Startup *StartupStatus
}

// Server is the local JSON API
type Server struct {
	echo    *echo.Echo
	logger  *zap.Logger
	startup *StartupStatus

	middleware *Middleware
	auth       *AuthHandler
	family     *FamilyHandler
	events     *EventHandler
	stats      *StatsHandler
}

// NewServer creates the API. limiter throttles signup and login; nil disables it.
func NewServer(svc Services, limiter *security.RateLimiter, logger *zap.Logger) (*Server, error) {
	if svc.Auth == nil || svc.Families == nil || svc.Events == nil || svc.Insights == nil {
		return nil, fmt.Errorf("all services are required")
	}
	logger = logging.OrNop(logger)
	startup := svc.Startup
	if startup == nil {
		startup = NewStartupStatus()
		startup.MarkReady()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(Logging(logger))

	s := &Server{
		echo:       e,
		logger:     logger,
		startup:    startup,
		middleware: NewMiddleware(svc.Auth, limiter, logger),
		auth:       NewAuthHandler(svc.Auth, logger),
		family:     NewFamilyHandler(svc.Families, logger),
		events:     NewEventHandler(svc.Events, svc.Families, logger),
		stats:      NewStatsHandler(svc.Events, svc.Families, svc.Insights, svc.AdviceEnabled, logger),
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/ready", s.startup.ShowStartupStatus)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")

	// Public routes
	v1.POST("/signup", s.auth.Signup, s.middleware.RateLimit)
	v1.POST("/login", s.auth.Login, s.middleware.RateLimit)
	v1.POST("/logout", s.auth.Logout)
	v1.GET("/session", s.auth.Session)
	v1.GET("/accounts", s.auth.Accounts)
	v1.GET("/invites/:token", s.family.CheckInvite)

	// Signed-in routes
	auth := v1.Group("", s.middleware.RequireAuth)
	auth.GET("/children", s.family.ListChildren)
	auth.POST("/children", s.family.AddChild)
	auth.POST("/invites", s.family.CreateInvite)
	auth.GET("/children/:id/events", s.events.ListEvents)
	auth.POST("/children/:id/events", s.events.CreateEvent)
	auth.PATCH("/events/:id", s.events.UpdateEvent)
	auth.DELETE("/events/:id", s.events.DeleteEvent)
	auth.GET("/children/:id/stats", s.stats.Stats)
	auth.GET("/children/:id/advice", s.stats.Advice)
	auth.POST("/children/:id/advice", s.stats.RefreshAdvice)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
