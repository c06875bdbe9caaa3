package serverapp

import (
	"context"
	"fmt"
	"log/slog"

	"claims-dashboard/internal/api"
)

// Init initializes all runtime resources. It is idempotent.
func (a *App) Init(ctx context.Context) error {
	a.stateMu.Lock()
	if a.initialized {
		a.stateMu.Unlock()
		return nil
	}
	a.stateMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	cleanup := cleanupStack{}
	success := false
	defer func() {
		if !success {
			cleanup.run(context.Background(), a.logger)
		}
	}()

	if a.loggerProvider != nil {
		cleanup.push("logger provider", func(shutdownCtx context.Context) error {
			return a.loggerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	meterProvider, claimsMetrics, securityMetrics, err := initMetrics(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry metrics: %w", err)
	}
	if meterProvider != nil {
		cleanup.push("meter provider", func(shutdownCtx context.Context) error {
			return meterProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	tracerProvider, err := initTracing(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry tracing: %w", err)
	}
	if tracerProvider != nil {
		cleanup.push("tracer provider", func(shutdownCtx context.Context) error {
			return tracerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	db, dbStatsReg, err := a.openDatabase(ctx, &cleanup)
	if err != nil {
		return err
	}

	rdb := openRedis(ctx, a.cfg, a.logger)
	if rdb != nil {
		cleanup.push("redis", func(_ context.Context) error {
			return rdb.Close()
		})
	}

	service, err := buildService(ctx, a.cfg, a.logger, rdb)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	cleanup.push("saved query store", func(_ context.Context) error {
		return service.Saved.Close()
	})

	if db != nil {
		service.SetDrift(checkDrift(ctx, a.logger, db, a.databaseName, service.Catalog))
	}

	schema, err := api.NewSchema(service)
	if err != nil {
		return fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	mux := buildRouter(a.cfg, a.logger, service, &schema, db, rdb, claimsMetrics, meterProvider)
	handler, err := wrapHTTPHandler(ctx, a.cfg, a.logger, securityMetrics, mux)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP middleware: %w", err)
	}

	serverAddr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	srv := buildServer(a.cfg, handler, serverAddr)
	cleanup.push("HTTP server", func(shutdownCtx context.Context) error {
		return srv.Shutdown(shutdownCtx)
	})

	a.stateMu.Lock()
	a.meterProvider = meterProvider
	a.claimsMetrics = claimsMetrics
	a.securityMetrics = securityMetrics
	a.tracerProvider = tracerProvider
	a.db = db
	a.dbStatsReg = dbStatsReg
	a.redis = rdb
	a.service = service
	a.mux = mux
	a.handler = handler
	a.serverAddr = serverAddr
	a.srv = srv
	a.cleanup = cleanup
	a.initialized = true
	a.stateMu.Unlock()

	a.logger.Info("services initialized",
		slog.Bool("database", db != nil),
		slog.Bool("cache", rdb != nil),
		slog.Bool("sql_generation", service.Generator != nil),
		slog.Bool("export_archive", service.Archiver != nil),
		slog.Any("slack_channels", service.Notifier.Channels()),
	)

	success = true
	return nil
}
