package serverapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"claims-dashboard/internal/catalog"
	"claims-dashboard/internal/claims"
	"claims-dashboard/internal/config"
	"claims-dashboard/internal/savedquery"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIKey(t *testing.T) {
	ai := config.AIConfig{AnthropicAPIKey: "a-key", OpenAIAPIKey: "o-key"}
	assert.Equal(t, "a-key", aiKey(ai))

	ai.Provider = "anthropic"
	assert.Equal(t, "a-key", aiKey(ai))

	ai.Provider = "OpenAI"
	assert.Equal(t, "o-key", aiKey(ai))
}

func TestBuildGenerator(t *testing.T) {
	cat := catalog.Default()

	gen, err := buildGenerator(&config.Config{}, testLogger(), cat)
	require.NoError(t, err)
	assert.Nil(t, gen)

	gen, err = buildGenerator(&config.Config{AI: config.AIConfig{Provider: "openai", OpenAIAPIKey: "k"}}, testLogger(), cat)
	require.NoError(t, err)
	require.NotNil(t, gen)
	assert.Equal(t, "openai", gen.Provider())

	_, err = buildGenerator(&config.Config{AI: config.AIConfig{Provider: "gemini", AnthropicAPIKey: "k"}}, testLogger(), cat)
	require.Error(t, err)
}

func TestClaimsSource(t *testing.T) {
	cfg := baseConfig()
	source, err := claimsSource(cfg, testLogger(), nil)
	require.NoError(t, err)
	records, err := source.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	cfg.Sheets = config.SheetsConfig{CredentialsBase64: "not base64!", SheetID: "sheet"}
	_, err = claimsSource(cfg, testLogger(), nil)
	require.Error(t, err)
}

func TestBuildService(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc, err := buildService(context.Background(), baseConfig(), testLogger(), nil)
		require.NoError(t, err)
		defer svc.Saved.Close()

		assert.NotNil(t, svc.Catalog)
		assert.NotNil(t, svc.Templates)
		assert.Equal(t, []string{"ops"}, svc.Notifier.Channels())
		assert.Nil(t, svc.Generator)
		assert.Nil(t, svc.Archiver)
	})

	t.Run("unknown saved query backend", func(t *testing.T) {
		cfg := baseConfig()
		cfg.SavedQueries.Backend = "etcd"
		_, err := buildService(context.Background(), cfg, testLogger(), nil)
		require.Error(t, err)
	})

	t.Run("yaml store and archive", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "test")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

		cfg := baseConfig()
		cfg.SavedQueries = config.SavedQueriesConfig{
			Backend: savedquery.BackendYAML,
			Path:    t.TempDir() + "/saved.yaml",
			Max:     5,
		}
		cfg.AI = config.AIConfig{AnthropicAPIKey: "k"}
		cfg.Export = config.ExportConfig{S3Enabled: true, S3Bucket: "exports", S3Region: "eu-west-1"}

		svc, err := buildService(context.Background(), cfg, testLogger(), nil)
		require.NoError(t, err)
		defer svc.Saved.Close()

		assert.NotNil(t, svc.Generator)
		assert.Equal(t, "anthropic", svc.Generator.Provider())
		assert.NotNil(t, svc.Archiver)
	})
}

func TestClaimsSource_CachedWhenRedisPresent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := baseConfig()
	cfg.Cache = config.CacheConfig{Enabled: true, Key: "claims", TTL: time.Minute}
	cfg.Sheets = config.SheetsConfig{
		// {"client_email":"svc@example.com","private_key":"x"} is enough to construct.
		CredentialsBase64: "eyJjbGllbnRfZW1haWwiOiJzdmNAZXhhbXBsZS5jb20iLCJwcml2YXRlX2tleSI6IngifQ==",
		SheetID:           "sheet",
	}
	source, err := claimsSource(cfg, testLogger(), rdb)
	require.NoError(t, err)
	_, ok := source.(*claims.CachedSource)
	assert.True(t, ok)
}

func TestOpenRedis(t *testing.T) {
	assert.Nil(t, openRedis(context.Background(), baseConfig(), testLogger()))

	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.Cache = config.CacheConfig{Enabled: true, RedisAddr: mr.Addr()}
	rdb := openRedis(context.Background(), cfg, testLogger())
	require.NotNil(t, rdb)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(context.Background()).Err())

	// An unreachable server still yields a client.
	cfg.Cache.RedisAddr = "127.0.0.1:1"
	down := openRedis(context.Background(), cfg, testLogger())
	require.NotNil(t, down)
	_ = down.Close()
}

func TestCheckDrift(t *testing.T) {
	cat := catalog.Default()

	t.Run("query failure is recorded", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").WillReturnError(errors.New("access denied"))

		report := checkDrift(context.Background(), testLogger(), db, "claims_db", cat)
		assert.True(t, report.Checked)
		assert.Contains(t, report.Error, "access denied")
		assert.False(t, report.CheckedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty schema reports every table", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
			WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "COLUMN_NAME"}))

		report := checkDrift(context.Background(), testLogger(), db, "claims_db", cat)
		assert.Empty(t, report.Error)
		assert.Len(t, report.Drift.MissingTables, len(cat.Tables()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
