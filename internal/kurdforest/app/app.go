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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/aussiebroadwan/kurdforest/internal/kurdforest/http"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/mailer"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/pending"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/service"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store/drivers/postgres"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store/drivers/sqlite"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/tmdb"
	"github.com/aussiebroadwan/kurdforest/pkg/cryptox"
	"github.com/aussiebroadwan/kurdforest/pkg/jwtx"
	"github.com/aussiebroadwan/kurdforest/pkg/retryx"
	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	issuer = "kurdforest"
)

// Application encapsulates the service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	pending  *pending.Registry
	signer   *jwtx.SessionSigner
	hasher   cryptox.PasswordHasher
	mailer   mailer.Mailer
	provider service.MetadataProvider
	registry *prometheus.Registry

	// Services
	registrationService *service.RegistrationService
	sessionService      *service.SessionService
	watchlistService    *service.WatchlistService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "kurdforest",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.logger.Info("database migrations applied successfully", "driver", cfg.DatabaseDriver)

	if err := app.initSecrets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := app.initCollaborators(); err != nil {
		_ = db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.pending.Start()
	app.housekeepingService.Start()

	app.logger.Info("kurdforest starting", "port", app.cfg.Port, "version", BuildVersion)

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
			app.stopWorkers()
			_ = app.db.Close()
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
	app.logger.Info("shutting down kurdforest...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.stopWorkers()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("kurdforest stopped")
	return nil
}

// Handler exposes the routed HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) stopWorkers() {
	app.housekeepingService.Stop()
	app.pending.Stop()
}

// OpenStore connects the configured driver and applies migrations.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// initSecrets loads or creates the pepper and the session signing key.
func (app *Application) initSecrets() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = &cryptox.Argon2id{Pepper: pepper}

	key, err := cryptox.LoadOrCreateEd25519Key(app.cfg.SessionKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load session key: %w", err)
	}
	signer, err := jwtx.NewSessionSigner(key, issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize session signer: %w", err)
	}
	app.signer = signer
	app.logger.Info("session signer ready", "kid", signer.KID())
	return nil
}

// initCollaborators builds the mailer, metadata provider, pending registry
// and metrics registry.
func (app *Application) initCollaborators() error {
	if app.cfg.EmailHost != "" {
		m, err := mailer.NewSMTP(mailer.SMTPConfig{
			Host:     app.cfg.EmailHost,
			Port:     app.cfg.EmailPort,
			Username: app.cfg.EmailUser,
			Password: app.cfg.EmailPass,
			From:     app.cfg.EmailFrom,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize mailer: %w", err)
		}
		app.mailer = m
	} else {
		app.logger.Warn("EMAIL_HOST not set, verification emails will only be logged")
		app.mailer = mailer.Log{}
	}

	if app.cfg.TMDBKey != "" {
		client, err := tmdb.New(app.cfg.TMDBKey, app.cfg.TMDBBaseURL, app.cfg.TMDBLanguage)
		if err != nil {
			return fmt.Errorf("failed to initialize tmdb client: %w", err)
		}
		app.provider = client
	} else {
		app.logger.Warn("TMDB_KEY not set, uncached titles cannot be added")
		app.provider = unconfiguredProvider{}
	}

	app.pending = pending.New(pending.Options{
		TTL:           app.cfg.VerificationTTL,
		SweepInterval: app.cfg.PendingSweepInterval,
		MaxEntries:    app.cfg.PendingCapacity,
		Logger:        app.logger,
	})

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(collectors.NewGoCollector())
	app.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	service.RegisterMetrics(app.registry)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Signer: app.signer,
		Hasher: app.hasher,
		TTL:    app.cfg.SessionTTL,
	}

	app.registrationService = &service.RegistrationService{
		Store:    app.db,
		Pending:  app.pending,
		Hasher:   app.hasher,
		Mailer:   app.mailer,
		Sessions: app.sessionService,
		SiteName: app.cfg.WebsiteName,
		TTL:      app.cfg.VerificationTTL,
	}

	app.watchlistService = &service.WatchlistService{
		Store:    app.db,
		Provider: app.provider,
		Retry:    retryx.Default,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.cfg.WebsiteName,
		app.db,
		app.sessionService,
		httpapi.SessionCookie{Secure: app.cfg.SecureCookies, MaxAge: app.cfg.SessionTTL},
		app.logger,
	)

	// Wire services to router
	router.RegistrationService = app.registrationService
	router.WatchlistService = app.watchlistService
	router.MetricsHandler = promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry})
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// unconfiguredProvider fails every lookup the way TMDB rejects a missing
// key, so nothing is retried.
type unconfiguredProvider struct{}

func (unconfiguredProvider) FetchDetails(_ context.Context, externalID, mediaType string) (*tmdb.Details, error) {
	return nil, &tmdb.StatusError{StatusCode: http.StatusUnauthorized, Endpoint: "/" + mediaType + "/" + externalID}
}

func (unconfiguredProvider) FetchSeason(_ context.Context, showID string, season int) (*tmdb.Season, error) {
	return nil, &tmdb.StatusError{StatusCode: http.StatusUnauthorized, Endpoint: fmt.Sprintf("/tv/%s/season/%d", showID, season)}
}
