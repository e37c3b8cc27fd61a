package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio/internal/captcha"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/logging"
	"portfolio/internal/notify"
	"portfolio/internal/pricing"
	"portfolio/internal/ratelimit"
	"portfolio/internal/server"
	"portfolio/internal/services"
	"portfolio/internal/util"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup(os.Stderr, "info")
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(os.Stderr, cfg.App.LogLevel)

	if err := validateConfig(cfg); err != nil {
		if !cfg.App.Debug {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		logger.Warn("insecure configuration allowed in debug mode", "reason", err)
	}

	logger.Info("starting", "name", cfg.App.Name, "version", cfg.App.Version, "debug", cfg.App.Debug)

	catalog, err := loadCatalog(cfg.Pricing)
	if err != nil {
		return err
	}
	if _, ok := pricing.CurrencyByCode(cfg.Pricing.DisplayCurrency); !ok {
		return fmt.Errorf("unsupported PRICING_CURRENCY %q", cfg.Pricing.DisplayCurrency)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		logger.Info("closing database")
		if err := database.Close(db); err != nil {
			logger.Error("close database", "error", err)
		}
	}()

	policies := ratelimit.NewPolicies(cfg.RateLimit)
	defer policies.Close()

	if !cfg.Email.Configured() {
		logger.Warn("email config missing, admin notifications are disabled")
	}
	dispatcher := notify.NewDispatcher(cfg.Email, notify.NewSMTPTransport(cfg.Email), logger)

	authSvc := services.NewAuthService(db, util.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry()), logger)
	contactSvc := services.NewContactService(db, captcha.NewTurnstile(cfg.Captcha, logger), policies.Inquiry, dispatcher, logger)
	contentSvc := services.NewContentService(db, logger)

	ctx := context.Background()
	created, err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info("admin user created", "username", cfg.Auth.AdminUsername)
	}

	srv := server.New(server.Deps{
		Config:   cfg,
		Logger:   logger,
		Catalog:  catalog,
		Policies: policies,
		Health:   services.NewHealthService(db, cfg.App.Name),
		Auth:     authSvc,
		Contact:  contactSvc,
		Content:  contentSvc,
	})

	addr := net.JoinHostPort(cfg.App.Host, cfg.App.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("graceful shutdown", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown", "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("shutdown timeout exceeded, forcing close")
			_ = httpServer.Close()
		}
	}
	// Accepted inquiries may still have a notification on its way out.
	if err := contactSvc.Drain(ctx); err != nil {
		logger.Warn("pending notifications abandoned", "error", err)
	}

	logger.Info("server shutdown complete")
	return nil
}

func loadCatalog(cfg config.PricingConfig) (*pricing.Catalog, error) {
	if cfg.CatalogPath == "" {
		return pricing.Default(), nil
	}
	catalog, err := pricing.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load pricing catalog: %w", err)
	}
	return catalog, nil
}

// validateConfig validates critical configuration values
func validateConfig(cfg *config.Config) error {
	if cfg.Auth.SecretKey == "" || cfg.Auth.SecretKey == "your-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set and changed from default value")
	}
	if len(cfg.Auth.SecretKey) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if cfg.Auth.AdminPassword == "admin123" {
		return fmt.Errorf("ADMIN_PASSWORD must be changed from default value")
	}
	if cfg.Captcha.SecretKey == config.TurnstileTestSecret {
		return fmt.Errorf("TURNSTILE_SECRET_KEY is the always-pass test key")
	}
	return nil
}
