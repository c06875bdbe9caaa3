package serverapp

import (
	"database/sql"
	"fmt"
	"net/http"
	"sync"

	"claims-dashboard/internal/api"
	"claims-dashboard/internal/config"
	"claims-dashboard/internal/logging"
	"claims-dashboard/internal/observability"

	"github.com/redis/go-redis/v9"
)

// App owns runtime resources for the claims dashboard server lifecycle.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	loggerProvider *observability.LoggerProvider

	// databaseName is the schema checked for drift. Empty when the
	// database is disabled.
	databaseName string

	meterProvider   *observability.MeterProvider
	claimsMetrics   *observability.ClaimsMetrics
	securityMetrics *observability.SecurityMetrics
	tracerProvider  *observability.TracerProvider

	db         *sql.DB
	dbStatsReg interface{ Unregister() error }
	redis      *redis.Client

	service *api.Service
	mux     *http.ServeMux
	handler http.Handler

	serverAddr string
	srv        *http.Server

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	app := &App{cfg: cfg, logger: logger}
	if cfg.Database.Enabled {
		name, err := cfg.Database.DatabaseName()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database configuration: %w", err)
		}
		app.databaseName = name
	}
	return app, nil
}

// AttachLoggerProvider registers an optional logger provider for shutdown cleanup.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}

// Handler returns the fully wrapped HTTP handler. It is nil before Init.
func (a *App) Handler() http.Handler {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.handler
}
