package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pottytracker/internal/app"
	"pottytracker/internal/config"
	"pottytracker/internal/handlers"
	"pottytracker/internal/logging"
	"pottytracker/internal/security"
)

const (
	stepStore     = "Opening store"
	stepServices  = "Initializing services"
	stepListening = "Starting listener"
)

func main() {
	configPath := flag.String("config", os.Getenv("POTTY_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "pottytracker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	startup := handlers.NewStartupStatus(stepStore, stepServices, stepListening)
	startup.SetCurrentStep(stepStore)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	startup.CompleteStep(stepStore)
	startup.CompleteStep(stepServices)
	startup.SetCurrentStep(stepListening)

	limiter := security.NewRateLimiter(cfg.Server.LoginRate, cfg.Server.LoginBurst)
	server, err := handlers.NewServer(handlers.Services{
		Auth:          a.Auth,
		Families:      a.Families,
		Events:        a.Events,
		Insights:      a.Insights,
		AdviceEnabled: a.Advisor.Enabled(),
		Startup:       startup,
	}, limiter, logger.Named("http"))
	if err != nil {
		return err
	}

	go pruneExpiredInvites(ctx, a, logger)

	startup.CompleteStep(stepListening)
	startup.MarkReady()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	startup.MarkDraining()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// pruneExpiredInvites periodically removes invite tokens that can no longer be used
func pruneExpiredInvites(ctx context.Context, a *app.App, logger *zap.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Families.PruneExpiredInvites(ctx); err != nil {
				logger.Warn("failed to prune expired invites", zap.Error(err))
			}
		}
	}
}
