package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saazhq/saaz/internal/saaz/federation"
	httpapi "github.com/saazhq/saaz/internal/saaz/http"
	"github.com/saazhq/saaz/internal/saaz/notify"
	"github.com/saazhq/saaz/internal/saaz/service"
	"github.com/saazhq/saaz/internal/saaz/store"
	"github.com/saazhq/saaz/internal/saaz/store/drivers/sqlite"
	"github.com/saazhq/saaz/pkg/cryptox"
	"github.com/saazhq/saaz/pkg/jwtx"
	"github.com/saazhq/saaz/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires configuration, storage, services and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	issuer *jwtx.Issuer
	mailer notify.Mailer
	closer io.Closer // NATS connection, nil with the log mailer

	identityService     *service.IdentityService
	federationService   *service.FederationService
	resetService        *service.ResetService
	profileService      *service.ProfileService
	eventService        *service.EventService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "saaz",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.DevSecret {
		app.logger.Warn("JWT_SECRET not set, signing sessions with the development secret")
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := jwtx.NewSignerHS256([]byte(cfg.JWTSecret))
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize session signer: %w", err)
	}
	app.issuer = jwtx.NewIssuer(signer)

	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	verifier, err := app.initFederation()
	if err != nil {
		app.closeResources()
		return nil, err
	}

	app.initServices(verifier)
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("saaz starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown drains in-flight requests, stops background work and closes
// the database and broker connections.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down saaz...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeResources(); err != nil {
		return err
	}

	app.logger.Info("saaz stopped")
	return nil
}

func (app *Application) closeResources() error {
	if app.closer != nil {
		if err := app.closer.Close(); err != nil {
			app.logger.Error("error closing mail broker", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile, sqlite.PoolConfig{
		MaxOpenConns:    app.cfg.MaxOpenConns,
		MaxIdleConns:    app.cfg.MaxIdleConns,
		ConnMaxLifetime: app.cfg.ConnMaxLifetime,
	})
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

// initMailer publishes to NATS when NATS_URL is set and logs otherwise.
// Either way dispatch goes through a circuit breaker.
func (app *Application) initMailer() error {
	var next notify.Mailer = notify.LogMailer{IncludeBody: app.cfg.Env == "dev"}

	if app.cfg.NATSURL != "" {
		m, err := notify.NewNATSMailer(app.cfg.NATSURL, app.cfg.MailSubject)
		if err != nil {
			return fmt.Errorf("failed to connect mail broker: %w", err)
		}
		next, app.closer = m, m
		app.logger.Info("mail dispatch via nats", "subject", app.cfg.MailSubject)
	} else {
		app.logger.Warn("NATS_URL not set, reset emails are written to the log")
	}

	app.mailer = notify.NewBreakerMailer(next, notify.BreakerConfig{}, app.logger)
	return nil
}

func (app *Application) initFederation() (federation.Verifier, error) {
	if app.cfg.GoogleClientID == "" {
		app.logger.Warn("GOOGLE_CLIENT_ID not set, federated login is disabled")
		return federation.Disabled{}, nil
	}

	v, err := federation.NewOIDCVerifier(federation.Config{
		ClientID: app.cfg.GoogleClientID,
		Issuers:  app.cfg.GoogleIssuers,
		JWKSURL:  app.cfg.GoogleJWKSURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize federated verifier: %w", err)
	}
	return v, nil
}

func (app *Application) initServices(verifier federation.Verifier) {
	hasher := cryptox.NewHasher(app.cfg.BcryptCost)

	app.identityService = &service.IdentityService{
		Store:  app.db,
		Hasher: hasher,
		Issuer: app.issuer,
	}
	app.federationService = &service.FederationService{
		Store:      app.db,
		Verifier:   verifier,
		Issuer:     app.issuer,
		PendingTTL: app.cfg.PendingFederationTTL,
	}
	app.resetService = &service.ResetService{
		Store:        app.db,
		Hasher:       hasher,
		Mailer:       app.mailer,
		ResetURLBase: app.cfg.ResetURLBase,
	}
	app.profileService = &service.ProfileService{Store: app.db}
	app.eventService = &service.EventService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		jwtx.NewVerifierHS256([]byte(app.cfg.JWTSecret)),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.CORSOrigins = app.cfg.CORSOrigins
	router.IdentityService = app.identityService
	router.FederationService = app.federationService
	router.ResetService = app.resetService
	router.ProfileService = app.profileService
	router.EventService = app.eventService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
