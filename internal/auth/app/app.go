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

	httpapi "github.com/triadacafetera/triada/internal/auth/http"
	"github.com/triadacafetera/triada/internal/auth/metrics"
	"github.com/triadacafetera/triada/internal/auth/notify"
	"github.com/triadacafetera/triada/internal/auth/service"
	"github.com/triadacafetera/triada/internal/auth/store"
	"github.com/triadacafetera/triada/internal/auth/store/drivers/postgres"
	"github.com/triadacafetera/triada/internal/auth/store/drivers/sqlite"
	"github.com/triadacafetera/triada/pkg/cryptox"
	"github.com/triadacafetera/triada/pkg/jwtx"
	"github.com/triadacafetera/triada/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	codec    *jwtx.Codec
	metrics  *metrics.Metrics
	notifier notify.Notifier

	// Services
	authService  *service.AuthService
	sessions     *service.SessionResolver
	statsService *service.StatsService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "triada-auth",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates an Application with every dependency initialised and
// migrations applied.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	if cfg.BcryptCost > 0 {
		cryptox.SetCost(cfg.BcryptCost)
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initCodec(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	m, err := metrics.New()
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	app.metrics = m

	app.initNotifier()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.statsService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		app.statsService.Stop()
		_ = app.db.Close()
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.statsService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// Close releases resources without a running server.
func (app *Application) Close() error {
	return app.db.Close()
}

// OpenStore connects to the configured directory and applies migrations.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	var (
		db  store.Store
		err error
	)

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("AUTH_DATABASE_URL is required for the postgres driver")
		}
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL, postgres.ConnectOptions{MaxRetries: cfg.DBMaxRetries})
	case DriverSQLite, "":
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
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

	logger.Info("database migrations applied successfully", "driver", cfg.DatabaseDriver)
	return db, nil
}

func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.db = db
	return nil
}

// initCodec loads the signing secret. An explicit secret wins over the
// secret file, which is generated on first start.
func (app *Application) initCodec() error {
	secret := []byte(app.cfg.Secret)
	if len(secret) == 0 {
		var err error
		secret, err = cryptox.LoadOrGenerateSecret(app.cfg.SecretFile)
		if err != nil {
			return fmt.Errorf("failed to load signing secret: %w", err)
		}
		app.logger.Info("signing secret loaded", "path", app.cfg.SecretFile)
	}

	codec, err := jwtx.NewCodec(secret, jwtx.WithIssuer(app.cfg.Issuer))
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec
	return nil
}

func (app *Application) initNotifier() {
	if app.cfg.SMTP.Enabled() {
		app.notifier = notify.NewSMTPNotifier(app.cfg.SMTP)
		app.logger.Info("password reset delivery via smtp", "host", app.cfg.SMTP.Host)
		return
	}
	app.notifier = notify.LogNotifier{}
	app.logger.Warn("smtp not configured, reset tokens are only logged by fingerprint")
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:     app.db,
		Codec:     app.codec,
		Notifier:  app.notifier,
		Metrics:   app.metrics,
		AccessTTL: app.cfg.AccessTokenTTL,
		ResetTTL:  app.cfg.ResetTokenTTL,
	}
	app.sessions = &service.SessionResolver{
		Store:   app.db,
		Codec:   app.codec,
		Metrics: app.metrics,
	}
	app.statsService = service.NewStatsService(
		app.db,
		app.metrics,
		app.logger,
		app.cfg.StatsInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)

	router.AuthService = app.authService
	router.Sessions = app.sessions
	router.ExposeResetToken = app.cfg.ExposeResetToken
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
