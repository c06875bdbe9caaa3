package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestClaimsMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewClaimsMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRequest(ctx, "/api/claims", "GET", 200, 15*time.Millisecond)
	metrics.RecordRequest(ctx, "/api/claims", "GET", 500, time.Millisecond)
	metrics.IncrementActiveRequests(ctx)
	metrics.RecordSourceFetch(ctx, "sheets", 120, time.Second, nil)
	metrics.RecordCacheLookup(ctx, "hit")
	metrics.RecordTemplateRender(ctx, "claim_count", false, nil)
	metrics.RecordBuilderRender(ctx, "claims", 1, nil)
	metrics.RecordGeneration(ctx, "anthropic", time.Second, errors.New("boom"))
	metrics.RecordSlackDelivery(ctx, "#health-ops", true)
	metrics.RecordExport(ctx, "csv", false)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["http.server.requests.total"])
	assert.Equal(t, int64(1), sums["http.server.requests.active"])
	assert.Equal(t, int64(1), sums["claims.source.fetches.total"])
	assert.Equal(t, int64(1), sums["claims.cache.lookups.total"])
	assert.Equal(t, int64(1), sums["query.template.renders.total"])
	assert.Equal(t, int64(1), sums["query.builder.renders.total"])
	assert.Equal(t, int64(1), sums["query.generate.requests.total"])
	assert.Equal(t, int64(1), sums["notify.slack.deliveries.total"])
	assert.Equal(t, int64(1), sums["dashboard.exports.total"])
}

func TestNilMetricsAreNoops(t *testing.T) {
	var metrics *ClaimsMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		metrics.RecordRequest(ctx, "/", "GET", 200, 0)
		metrics.RecordTemplateRender(ctx, "x", true, nil)
		metrics.RecordExport(ctx, "xlsx", true)
	})
}

func TestMetricsContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, MetricsFromContext(ctx))

	metrics := &ClaimsMetrics{}
	assert.Same(t, metrics, MetricsFromContext(ContextWithMetrics(ctx, metrics)))
}

func TestSecurityMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewSecurityMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordAuthAttempt(ctx, "/api/claims")
	metrics.RecordAuthFailure(ctx, "/api/claims", "expired")
	metrics.RecordTokenValidationError(ctx, "expired")

	sums := collectSums(t, reader)
	assert.Equal(t, int64(1), sums["security.auth.attempts.total"])
	assert.Equal(t, int64(1), sums["security.auth.failures.total"])
	assert.Equal(t, int64(0), sums["security.auth.successes.total"])
}
