package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/treasuremind/internal/auth/http"
	"github.com/aussiebroadwan/treasuremind/internal/auth/metrics"
	"github.com/aussiebroadwan/treasuremind/internal/auth/service"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/aussiebroadwan/treasuremind/pkg/cryptox"
	"github.com/aussiebroadwan/treasuremind/pkg/httpx"
	"github.com/aussiebroadwan/treasuremind/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	registry *prometheus.Registry

	// Services
	hasher              *service.PasswordHasher
	sessionService      *service.SessionService
	registrationService *service.RegistrationService
	loginService        *service.LoginService
	profileService      *service.ProfileService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}

	app.registry.MustRegister(collectors.NewGoCollector())
	app.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterMetrics(app.registry)

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	key, err := InitSessionKey(app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(key); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		slog.Int("port", app.cfg.Port),
		slog.String("version", BuildVersion),
		slog.String("store", app.cfg.StoreDriver),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("error", err))
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if !app.cfg.AutoMigrate {
		app.logger.Info("automatic migrations disabled")
		return nil
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", slog.String("store", app.cfg.StoreDriver))
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices(key []byte) error {
	hasher, err := service.NewPasswordHasher(
		cryptox.PBKDF2{Iterations: app.cfg.PBKDF2Iterations},
		app.cfg.HashConcurrency,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	app.hasher = hasher

	sessions, err := service.NewSessionService(service.SessionConfig{
		Key:             key,
		Issuer:          app.cfg.Issuer,
		MaxAge:          app.cfg.SessionMaxAge,
		RevocationGrace: max(app.cfg.StoreTimeout, service.DefaultRevocationGrace),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session service: %w", err)
	}
	app.sessionService = sessions

	app.registrationService = &service.RegistrationService{
		Store:        app.db,
		Hasher:       hasher,
		StoreTimeout: app.cfg.StoreTimeout,
	}
	app.loginService = &service.LoginService{
		Store:        app.db,
		Hasher:       hasher,
		Sessions:     sessions,
		StoreTimeout: app.cfg.StoreTimeout,
	}
	app.profileService = &service.ProfileService{
		Store:        app.db,
		StoreTimeout: app.cfg.StoreTimeout,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		sessions,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.OrphanGracePeriod,
	)
	app.housekeepingService.StoreTimeout = app.cfg.StoreTimeout

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	cookie := httpx.CookieConfig{
		Name:     authsdk.SessionCookieName,
		Path:     "/",
		Secure:   app.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   app.sessionService.MaxAge,
	}

	router := httpapi.NewRouter(BuildVersion, app.db, cookie, app.logger)

	// Wire services to router
	router.RegistrationService = app.registrationService
	router.LoginService = app.loginService
	router.ProfileService = app.profileService
	router.SessionService = app.sessionService
	router.MetricsHandler = promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
