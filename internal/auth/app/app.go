package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/mayur-driod/FloodWatch/internal/auth/http"
	"github.com/mayur-driod/FloodWatch/internal/auth/metrics"
	"github.com/mayur-driod/FloodWatch/internal/auth/oauth"
	"github.com/mayur-driod/FloodWatch/internal/auth/service"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/internal/auth/store/drivers/sqlite"
	"github.com/mayur-driod/FloodWatch/pkg/cryptox"
	"github.com/mayur-driod/FloodWatch/pkg/httpx"
	"github.com/mayur-driod/FloodWatch/pkg/jwtx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	tokens    *jwtx.HS256
	providers oauth.Registry
	registry  *prometheus.Registry
	collector *metrics.Collector

	// Services
	credentialService *service.CredentialService
	identityService   *service.IdentityService
	reconcileService  *service.ReconcileService
	sessionService    *service.SessionService
	authzService      *service.AuthzService
	bootstrapService  *service.BootstrapService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	// Session tokens are symmetric; a missing secret is a startup failure,
	// never a silent fallback.
	tokens, err := jwtx.NewHS256([]byte(cfg.SessionSecret), cfg.Issuer, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session signer: %w", err)
	}
	app.tokens = tokens

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initProviders()
	app.initServices()

	// Seed roles (and the optional first admin) before serving traffic.
	if err := app.bootstrapService.Bootstrap(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to bootstrap roles: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"providers", app.providers.Names(),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

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
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initProviders registers every identity provider with configured credentials.
func (app *Application) initProviders() {
	var providers []oauth.Provider

	if app.cfg.GoogleClientID != "" {
		providers = append(providers, oauth.NewGoogle(oauth.GoogleConfig{
			ClientID:     app.cfg.GoogleClientID,
			ClientSecret: app.cfg.GoogleClientSecret,
			RedirectURL:  app.cfg.GoogleRedirectURL,
		}))
	}
	if app.cfg.GitHubClientID != "" {
		providers = append(providers, oauth.NewGitHub(oauth.GitHubConfig{
			ClientID:     app.cfg.GitHubClientID,
			ClientSecret: app.cfg.GitHubClientSecret,
			RedirectURL:  app.cfg.GitHubRedirectURL,
		}))
	}

	app.providers = oauth.NewRegistry(providers...)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.credentialService = &service.CredentialService{Store: app.db}
	app.identityService = &service.IdentityService{}
	app.reconcileService = &service.ReconcileService{Store: app.db}
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Tokens: app.tokens,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.SessionTTL,
	}
	app.authzService = &service.AuthzService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:         app.db,
		AdminEmail:    app.cfg.AdminEmail,
		AdminPassword: app.cfg.AdminPassword,
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(collectors.NewGoCollector())
	app.collector = metrics.NewCollector(app.registry)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.cfg.Issuer,
		BuildVersion,
		app.db,
		app.providers,
		app.collector,
		app.registry,
		app.logger,
	)

	// Wire services to router
	router.CredentialService = app.credentialService
	router.IdentityService = app.identityService
	router.ReconcileService = app.reconcileService
	router.SessionService = app.sessionService
	router.AuthzService = app.authzService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr: fmt.Sprintf(":%d", app.cfg.Port),
		Handler: httpx.Chain(router,
			httpx.ContextTimeout(app.cfg.StoreTimeout),
		),
		ReadHeaderTimeout: 3 * time.Second,
	}
}
