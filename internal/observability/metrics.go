package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "claims-dashboard"

// ClaimsMetrics holds the application metrics for the dashboard and the
// query authoring tools.
type ClaimsMetrics struct {
	requestDuration  metric.Float64Histogram
	requestCounter   metric.Int64Counter
	activeRequests   metric.Int64UpDownCounter
	sourceFetches    metric.Int64Counter
	sourceDuration   metric.Float64Histogram
	sourceRecords    metric.Int64Histogram
	cacheLookups     metric.Int64Counter
	templateRenders  metric.Int64Counter
	builderRenders   metric.Int64Counter
	generations      metric.Int64Counter
	generateDuration metric.Float64Histogram
	slackDeliveries  metric.Int64Counter
	exports          metric.Int64Counter
}

// InitClaimsMetrics creates the metrics on the global meter provider.
func InitClaimsMetrics() (*ClaimsMetrics, error) {
	return NewClaimsMetrics(otel.Meter(meterName))
}

// NewClaimsMetrics creates the metrics on the given meter.
func NewClaimsMetrics(meter metric.Meter) (*ClaimsMetrics, error) {
	m := &ClaimsMetrics{}
	var err error

	if m.requestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}
	if m.requestCounter, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	if m.activeRequests, err = meter.Int64UpDownCounter(
		"http.server.requests.active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create active requests counter: %w", err)
	}
	if m.sourceFetches, err = meter.Int64Counter(
		"claims.source.fetches.total",
		metric.WithDescription("Claims snapshot fetches by origin and outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create source fetch counter: %w", err)
	}
	if m.sourceDuration, err = meter.Float64Histogram(
		"claims.source.fetch.duration",
		metric.WithDescription("Duration of claims snapshot fetches in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create source duration histogram: %w", err)
	}
	if m.sourceRecords, err = meter.Int64Histogram(
		"claims.source.records",
		metric.WithDescription("Number of daily records in a claims snapshot"),
	); err != nil {
		return nil, fmt.Errorf("failed to create source records histogram: %w", err)
	}
	if m.cacheLookups, err = meter.Int64Counter(
		"claims.cache.lookups.total",
		metric.WithDescription("Claims snapshot cache lookups by result"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache lookup counter: %w", err)
	}
	if m.templateRenders, err = meter.Int64Counter(
		"query.template.renders.total",
		metric.WithDescription("SQL template renders by template and cost"),
	); err != nil {
		return nil, fmt.Errorf("failed to create template render counter: %w", err)
	}
	if m.builderRenders, err = meter.Int64Counter(
		"query.builder.renders.total",
		metric.WithDescription("Visual builder SQL renders by base table"),
	); err != nil {
		return nil, fmt.Errorf("failed to create builder render counter: %w", err)
	}
	if m.generations, err = meter.Int64Counter(
		"query.generate.requests.total",
		metric.WithDescription("Natural language SQL generations by provider and outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create generation counter: %w", err)
	}
	if m.generateDuration, err = meter.Float64Histogram(
		"query.generate.duration",
		metric.WithDescription("Duration of natural language SQL generations in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create generation duration histogram: %w", err)
	}
	if m.slackDeliveries, err = meter.Int64Counter(
		"notify.slack.deliveries.total",
		metric.WithDescription("Slack webhook deliveries by channel and outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create slack delivery counter: %w", err)
	}
	if m.exports, err = meter.Int64Counter(
		"dashboard.exports.total",
		metric.WithDescription("Dashboard exports by format and archive outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create export counter: %w", err)
	}

	return m, nil
}

// InitMetrics initializes the application metrics and logs the outcome.
func InitMetrics(logger *slog.Logger) (*ClaimsMetrics, error) {
	metrics, err := InitClaimsMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize claims metrics: %w", err)
	}
	logger.Info("application metrics initialized")
	return metrics, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordRequest records an HTTP request. route is the registered pattern, not the raw path.
func (m *ClaimsMetrics) RecordRequest(ctx context.Context, route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("method", method),
		attribute.Int("status", status),
	)
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.requestCounter.Add(ctx, 1, attrs)
}

// IncrementActiveRequests increments the in-flight request gauge.
func (m *ClaimsMetrics) IncrementActiveRequests(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeRequests.Add(ctx, 1)
}

// DecrementActiveRequests decrements the in-flight request gauge.
func (m *ClaimsMetrics) DecrementActiveRequests(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeRequests.Add(ctx, -1)
}

// RecordSourceFetch records a claims snapshot fetch from origin (sheets, cache).
func (m *ClaimsMetrics) RecordSourceFetch(ctx context.Context, origin string, records int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("origin", origin),
		attribute.String("outcome", outcome(err)),
	)
	m.sourceFetches.Add(ctx, 1, attrs)
	m.sourceDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err == nil {
		m.sourceRecords.Record(ctx, int64(records), metric.WithAttributes(attribute.String("origin", origin)))
	}
}

// RecordCacheLookup records a cache hit, miss or error.
func (m *ClaimsMetrics) RecordCacheLookup(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordTemplateRender records a template render.
func (m *ClaimsMetrics) RecordTemplateRender(ctx context.Context, template string, expensive bool, err error) {
	if m == nil {
		return
	}
	m.templateRenders.Add(ctx, 1, metric.WithAttributes(
		attribute.String("template", template),
		attribute.Bool("expensive", expensive),
		attribute.String("outcome", outcome(err)),
	))
}

// RecordBuilderRender records a visual builder render.
func (m *ClaimsMetrics) RecordBuilderRender(ctx context.Context, baseTable string, joins int, err error) {
	if m == nil {
		return
	}
	m.builderRenders.Add(ctx, 1, metric.WithAttributes(
		attribute.String("base_table", baseTable),
		attribute.Int("joins", joins),
		attribute.String("outcome", outcome(err)),
	))
}

// RecordGeneration records a natural language SQL generation.
func (m *ClaimsMetrics) RecordGeneration(ctx context.Context, provider string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome(err)),
	)
	m.generations.Add(ctx, 1, attrs)
	m.generateDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordSlackDelivery records one webhook post.
func (m *ClaimsMetrics) RecordSlackDelivery(ctx context.Context, channel string, ok bool) {
	if m == nil {
		return
	}
	m.slackDeliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.Bool("success", ok),
	))
}

// RecordExport records a CSV or XLSX export.
func (m *ClaimsMetrics) RecordExport(ctx context.Context, format string, archived bool) {
	if m == nil {
		return
	}
	m.exports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("archived", archived),
	))
}

type claimsMetricsContextKey struct{}

// ContextWithMetrics stores metrics in the provided context.
func ContextWithMetrics(ctx context.Context, metrics *ClaimsMetrics) context.Context {
	return context.WithValue(ctx, claimsMetricsContextKey{}, metrics)
}

// MetricsFromContext retrieves metrics from the context. The result may be nil;
// all recording methods accept a nil receiver.
func MetricsFromContext(ctx context.Context) *ClaimsMetrics {
	metrics, _ := ctx.Value(claimsMetricsContextKey{}).(*ClaimsMetrics)
	return metrics
}
