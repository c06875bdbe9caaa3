package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"claims-dashboard/internal/api"
	"claims-dashboard/internal/catalog"
	"claims-dashboard/internal/claims"
	"claims-dashboard/internal/config"
	"claims-dashboard/internal/dbexec"
	"claims-dashboard/internal/exportstore"
	"claims-dashboard/internal/logging"
	"claims-dashboard/internal/notify"
	"claims-dashboard/internal/savedquery"
	"claims-dashboard/internal/sqlgen"
	"claims-dashboard/internal/templates"

	"github.com/redis/go-redis/v9"
)

const driftQueryTimeout = 10 * time.Second

// openRedis returns a client when the cache is enabled. An unreachable
// server is only logged: the cached source reads through on redis errors.
func openRedis(ctx context.Context, cfg *config.Config, logger *logging.Logger) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not reachable, claims will be read uncached until it is",
			slog.String("addr", cfg.Cache.RedisAddr),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("claims cache enabled",
			slog.String("addr", cfg.Cache.RedisAddr),
			slog.Duration("ttl", cfg.Cache.TTL),
		)
	}
	return rdb
}

// buildService assembles the collaborators behind the GraphQL and REST
// endpoints. rdb may be nil.
func buildService(ctx context.Context, cfg *config.Config, logger *logging.Logger, rdb *redis.Client) (*api.Service, error) {
	cat := catalog.Default()
	registry, err := templates.Builtin(cat)
	if err != nil {
		return nil, fmt.Errorf("load query templates: %w", err)
	}

	source, err := claimsSource(cfg, logger, rdb)
	if err != nil {
		return nil, err
	}

	generator, err := buildGenerator(cfg, logger, cat)
	if err != nil {
		return nil, err
	}

	saved, err := savedquery.Open(ctx, cfg.SavedQueries.Backend, cfg.SavedQueries.Path, cfg.SavedQueries.Max)
	if err != nil {
		return nil, fmt.Errorf("open saved query store: %w", err)
	}
	logger.Info("saved query store ready",
		slog.String("backend", cfg.SavedQueries.Backend),
		slog.Int("max", cfg.SavedQueries.Max),
	)

	service := &api.Service{
		Catalog:   cat,
		Templates: registry,
		Source:    source,
		Notifier:  notify.NewSlackNotifier(cfg.Slack.Webhooks, nil, cfg.Slack.Timeout, logger),
		Saved:     saved,
	}
	// A typed nil must not end up in the interface fields.
	if generator != nil {
		service.Generator = generator
	}

	if cfg.Export.S3Enabled {
		archiver, err := exportstore.NewS3Archiver(ctx, exportstore.Config{
			Bucket:   cfg.Export.S3Bucket,
			Prefix:   cfg.Export.S3Prefix,
			Region:   cfg.Export.S3Region,
			Endpoint: cfg.Export.S3Endpoint,
		})
		if err != nil {
			_ = saved.Close()
			return nil, fmt.Errorf("configure export archive: %w", err)
		}
		service.Archiver = archiver
		logger.Info("export archive enabled", slog.String("bucket", cfg.Export.S3Bucket))
	}

	return service, nil
}

func claimsSource(cfg *config.Config, logger *logging.Logger, rdb *redis.Client) (claims.Source, error) {
	if !cfg.Sheets.Configured() {
		logger.Warn("sheets not configured, the dashboard will show no claims")
		return claims.Empty, nil
	}
	sheets, err := claims.NewSheetsSource(claims.SheetsConfig{
		CredentialsBase64: cfg.Sheets.CredentialsBase64,
		SheetID:           cfg.Sheets.SheetID,
		Range:             cfg.Sheets.Range,
		TokenURL:          cfg.Sheets.TokenURL,
		APIBaseURL:        cfg.Sheets.APIBaseURL,
		Timeout:           cfg.Sheets.Timeout,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("configure sheets source: %w", err)
	}
	if rdb == nil {
		return sheets, nil
	}
	return claims.NewCachedSource(sheets, rdb, cfg.Cache.Key, cfg.Cache.TTL, logger), nil
}

// aiKey returns the API key of the selected provider.
func aiKey(ai config.AIConfig) string {
	if strings.EqualFold(ai.Provider, sqlgen.ProviderOpenAI) {
		return ai.OpenAIAPIKey
	}
	return ai.AnthropicAPIKey
}

// buildGenerator returns nil when the selected provider has no API key.
func buildGenerator(cfg *config.Config, logger *logging.Logger, cat *catalog.Catalog) (*sqlgen.Generator, error) {
	if strings.TrimSpace(aiKey(cfg.AI)) == "" {
		logger.Info("SQL generation disabled: no API key for provider", slog.String("provider", cfg.AI.Provider))
		return nil, nil
	}
	provider, err := sqlgen.NewProvider(sqlgen.Config{
		Provider:        cfg.AI.Provider,
		AnthropicAPIKey: cfg.AI.AnthropicAPIKey,
		AnthropicModel:  cfg.AI.AnthropicModel,
		AnthropicURL:    cfg.AI.AnthropicURL,
		OpenAIAPIKey:    cfg.AI.OpenAIAPIKey,
		OpenAIModel:     cfg.AI.OpenAIModel,
		OpenAIURL:       cfg.AI.OpenAIURL,
		Timeout:         cfg.AI.Timeout,
		MaxTokens:       cfg.AI.MaxTokens,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("configure SQL generation: %w", err)
	}
	logger.Info("SQL generation enabled", slog.String("provider", provider.Name()))
	return sqlgen.NewGenerator(provider, cat, logger), nil
}

// checkDrift compares the catalog with the live schema. Failures are
// recorded in the report rather than stopping startup.
func checkDrift(ctx context.Context, logger *logging.Logger, db *sql.DB, schema string, cat *catalog.Catalog) api.DriftReport {
	report := api.DriftReport{Checked: true, CheckedAt: time.Now().UTC()}
	exec := dbexec.NewStandardExecutor(db).WithTimeout(driftQueryTimeout)

	drift, err := catalog.CheckDrift(ctx, exec, schema, cat)
	if err != nil {
		logger.Warn("schema drift check failed", slog.String("schema", schema), slog.String("error", err.Error()))
		report.Error = err.Error()
		return report
	}
	report.Drift = drift

	if drift.Empty() {
		logger.Info("catalog matches live schema", slog.String("schema", schema))
	} else {
		logger.Warn("catalog drift detected",
			slog.String("schema", schema),
			slog.Any("missing_tables", drift.MissingTables),
			slog.Int("missing_columns", drift.ColumnCount()),
		)
	}
	return report
}
