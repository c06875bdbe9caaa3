package serverapp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"claims-dashboard/internal/api"
	"claims-dashboard/internal/config"
	"claims-dashboard/internal/dashboard"
	"claims-dashboard/internal/logging"
	"claims-dashboard/internal/middleware"
	"claims-dashboard/internal/observability"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	routeGraphQL     = "/graphql"
	routeClaims      = "/api/claims"
	routeSlack       = "/api/slack"
	routeGenerateSQL = "/api/generate-sql"
	routeExportCSV   = "/api/export/csv"
	routeExportXLSX  = "/api/export/xlsx"
	routeHealth      = "/health"
	routeMetrics     = "/metrics"
)

// probePaths bypass rate limiting and authentication.
var probePaths = []string{routeHealth, routeMetrics}

func buildRouter(cfg *config.Config, logger *logging.Logger, service *api.Service, schema *graphql.Schema, db *sql.DB, rdb *redis.Client, metrics *observability.ClaimsMetrics, meterProvider *observability.MeterProvider) *http.ServeMux {
	route := func(name string, h http.Handler) http.Handler {
		return middleware.MetricsMiddleware(metrics, name)(h)
	}

	graphqlHandler := handler.New(&handler.Config{
		Schema:     schema,
		Pretty:     true,
		GraphiQL:   cfg.Server.GraphiQLEnabled,
		Playground: cfg.Server.GraphiQLEnabled,
	})

	mux := http.NewServeMux()
	mux.Handle(routeGraphQL, route(routeGraphQL, graphqlHandler))
	mux.Handle("GET "+routeClaims, route(routeClaims, service.ClaimsHandler()))
	mux.Handle("GET "+routeSlack, route(routeSlack, service.SlackChannelsHandler()))
	mux.Handle("POST "+routeSlack, route(routeSlack, service.SlackPostHandler()))
	mux.Handle("POST "+routeGenerateSQL, route(routeGenerateSQL, service.GenerateSQLHandler()))
	mux.Handle("GET "+routeExportCSV, route(routeExportCSV, service.ExportHandler(dashboard.FormatCSV)))
	mux.Handle("GET "+routeExportXLSX, route(routeExportXLSX, service.ExportHandler(dashboard.FormatXLSX)))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, routeGraphQL, http.StatusFound)
			return
		}
		http.NotFound(w, r)
	})

	mux.HandleFunc(routeHealth, healthHandler(db, rdb, cfg.Server.HealthCheckTimeout))

	if cfg.Observability.MetricsEnabled && meterProvider != nil {
		mux.Handle(routeMetrics, promhttp.Handler())
		logger.Info("metrics endpoint enabled", slog.String("path", routeMetrics))
	}

	return mux
}

func oidcAuthConfig(cfg *config.Config) middleware.OIDCAuthConfig {
	return middleware.OIDCAuthConfig{
		Enabled:       cfg.Server.Auth.OIDCEnabled,
		IssuerURL:     cfg.Server.Auth.OIDCIssuerURL,
		Audience:      cfg.Server.Auth.OIDCAudience,
		ClockSkew:     cfg.Server.Auth.OIDCClockSkew,
		SkipTLSVerify: cfg.Server.Auth.OIDCSkipTLSVerify,
		CAFile:        cfg.Server.Auth.OIDCCAFile,
		PublicPaths:   probePaths,
	}
}

// wrapHTTPHandler applies the shared middleware. From the outside in:
// tracing, CORS, rate limiting, request logging, then OIDC when enabled.
func wrapHTTPHandler(ctx context.Context, cfg *config.Config, logger *logging.Logger, securityMetrics *observability.SecurityMetrics, handler http.Handler) (http.Handler, error) {
	if cfg.Server.Auth.OIDCEnabled {
		authMiddleware, err := middleware.OIDCAuthMiddleware(ctx, oidcAuthConfig(cfg), logger, securityMetrics)
		if err != nil {
			return nil, err
		}
		handler = authMiddleware(handler)
		logger.Info("OIDC auth middleware enabled")
	} else {
		logger.Warn("API endpoints are not authenticated - consider enabling OIDC authentication")
	}

	handler = middleware.LoggingMiddleware(logger)(handler)

	if cfg.Server.RateLimitEnabled {
		handler = middleware.RateLimitMiddleware(middleware.RateLimitConfig{
			Enabled:     cfg.Server.RateLimitEnabled,
			RPS:         cfg.Server.RateLimitRPS,
			Burst:       cfg.Server.RateLimitBurst,
			ExemptPaths: probePaths,
		})(handler)
	}

	if cfg.Server.CORSEnabled {
		handler = middleware.CORSMiddleware(middleware.CORSConfig{
			Enabled:          cfg.Server.CORSEnabled,
			AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
			AllowedMethods:   cfg.Server.CORSAllowedMethods,
			AllowedHeaders:   cfg.Server.CORSAllowedHeaders,
			ExposeHeaders:    cfg.Server.CORSExposeHeaders,
			AllowCredentials: cfg.Server.CORSAllowCredentials,
			MaxAge:           cfg.Server.CORSMaxAge,
		})(handler)
	}

	if cfg.Observability.MetricsEnabled || cfg.Observability.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "http.server",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return httpRootSpanName(r)
			}),
			otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
		)
		logger.Info("HTTP instrumentation enabled")
	}

	return handler, nil
}

func httpRootSpanName(r *http.Request) string {
	if r == nil {
		return "HTTP /*"
	}

	method := strings.TrimSpace(r.Method)
	if method == "" {
		method = "HTTP"
	}

	return method + " " + normalizeHTTPSpanRoute(r.URL.Path)
}

// normalizeHTTPSpanRoute keeps span names low cardinality.
func normalizeHTTPSpanRoute(rawPath string) string {
	switch rawPath {
	case "/", routeGraphQL, routeClaims, routeSlack, routeGenerateSQL,
		routeExportCSV, routeExportXLSX, routeHealth, routeMetrics:
		return rawPath
	default:
		return "/*"
	}
}

func buildServer(cfg *config.Config, handler http.Handler, serverAddr string) *http.Server {
	return &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func startServer(cfg *config.Config, logger *logging.Logger, srv *http.Server, serverAddr string) chan error {
	serverErrors := make(chan error, 1)
	go func() {
		logAttrs := []any{
			slog.String("address", serverAddr),
			slog.String("graphql_endpoint", routeGraphQL),
			slog.String("health_endpoint", routeHealth),
			slog.Bool("graphiql", cfg.Server.GraphiQLEnabled),
			slog.Bool("oidc", cfg.Server.Auth.OIDCEnabled),
			slog.String("log_level", cfg.Observability.Logging.Level),
			slog.String("log_format", cfg.Observability.Logging.Format),
		}

		if cfg.Observability.MetricsEnabled {
			logAttrs = append(logAttrs, slog.String("metrics_endpoint", routeMetrics))
		}

		if cfg.Server.RateLimitEnabled {
			logAttrs = append(logAttrs,
				slog.Float64("rate_limit_rps", cfg.Server.RateLimitRPS),
				slog.Int("rate_limit_burst", cfg.Server.RateLimitBurst),
			)
		}

		logger.Info("server starting", logAttrs...)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed: %w", err)
		}
	}()
	return serverErrors
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// healthHandler reports the database and cache state. Only a failed
// database makes the service unhealthy; the claims source reads through a
// broken cache.
func healthHandler(db *sql.DB, rdb *redis.Client, timeout time.Duration) http.HandlerFunc {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logging.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		status := healthStatus{Status: "healthy", Database: "disabled", Cache: "disabled"}
		code := http.StatusOK

		if db != nil {
			status.Database = "ok"
			if err := db.PingContext(ctx); err != nil {
				reqLogger.Error("health check failed",
					slog.String("error", err.Error()),
					slog.String("check", "database"),
				)
				status.Status = "unhealthy"
				status.Database = "failed"
				code = http.StatusServiceUnavailable
			}
		}

		if rdb != nil {
			status.Cache = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				reqLogger.Warn("cache check failed",
					slog.String("error", err.Error()),
					slog.String("check", "cache"),
				)
				status.Cache = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
