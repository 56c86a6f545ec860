// Package app wires the store, repositories and services from a Config.
// The HTTP server and the CLI share it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pottytracker/internal/advice"
	"pottytracker/internal/config"
	"pottytracker/internal/database"
	"pottytracker/internal/logging"
	"pottytracker/internal/repository"
	"pottytracker/internal/service"
)

// App holds the wired services
type App struct {
	Config   *config.Config
	Location *time.Location
	Logger   *zap.Logger

	DB    *database.DB
	Store *repository.StorageRepository

	Auth     *service.AuthService
	Families *service.FamilyService
	Events   *service.EventService
	Insights *service.InsightService
	Backup   *service.BackupService
	Email    *service.EmailService
	Advisor  *advice.Advisor
}

// New opens the store and builds every service
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("database connection established", zap.String("type", db.GetDialect().DriverName()))

	gateway, err := advice.NewGateway(ctx, cfg.Advice, loc)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create advice gateway: %w", err)
	}

	email, err := service.NewEmailService(ctx, cfg.Email, logger.Named("email"))
	if err != nil {
		db.Close()
		return nil, err
	}

	store := repository.NewStorageRepository(db, logger.Named("store"))
	accountRepo := repository.NewAccountRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	childRepo := repository.NewChildRepository(store)
	eventRepo := repository.NewEventRepository(store)
	inviteRepo := repository.NewInviteRepository(store)

	advisor := advice.NewAdvisor(gateway, logger.Named("advice"))
	families := service.NewFamilyService(childRepo, inviteRepo, email, cfg.Invite.TTL.Duration(), logger.Named("family"))
	insights := service.NewInsightService(advisor, eventRepo, cfg.Advice.Timeout.Duration(), logger.Named("insights"))

	a := &App{
		Config:   cfg,
		Location: loc,
		Logger:   logger,
		DB:       db,
		Store:    store,
		Auth:     service.NewAuthService(accountRepo, sessionRepo, families, cfg.Auth.HashPasswords, logger.Named("auth")),
		Families: families,
		Events:   service.NewEventService(eventRepo, insights, loc, logger.Named("events")),
		Insights: insights,
		Backup:   service.NewBackupService(store, db.GetDialect().DriverName(), logger.Named("backup")),
		Email:    email,
		Advisor:  advisor,
	}

	logger.Info("services ready",
		zap.String("advice_provider", cfg.Advice.Provider),
		zap.Bool("email_enabled", email.IsEnabled()),
		zap.String("timezone", loc.String()),
	)
	return a, nil
}

// Close waits for background advice refreshes and closes the store
func (a *App) Close() error {
	a.Insights.Wait()
	return a.DB.Close()
}
