package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SecurityMetrics counts authentication outcomes on the API.
type SecurityMetrics struct {
	authAttempts          metric.Int64Counter
	authFailures          metric.Int64Counter
	authSuccesses         metric.Int64Counter
	tokenValidationErrors metric.Int64Counter
}

// InitSecurityMetrics initializes security metrics on the global meter provider.
func InitSecurityMetrics() (*SecurityMetrics, error) {
	return NewSecurityMetrics(otel.Meter(meterName + "/security"))
}

// NewSecurityMetrics initializes security metrics on the given meter.
func NewSecurityMetrics(meter metric.Meter) (*SecurityMetrics, error) {
	m := &SecurityMetrics{}
	var err error

	if m.authAttempts, err = meter.Int64Counter(
		"security.auth.attempts.total",
		metric.WithDescription("Total number of authentication attempts"),
	); err != nil {
		return nil, fmt.Errorf("failed to create auth attempts counter: %w", err)
	}
	if m.authFailures, err = meter.Int64Counter(
		"security.auth.failures.total",
		metric.WithDescription("Total number of authentication failures"),
	); err != nil {
		return nil, fmt.Errorf("failed to create auth failures counter: %w", err)
	}
	if m.authSuccesses, err = meter.Int64Counter(
		"security.auth.successes.total",
		metric.WithDescription("Total number of successful authentications"),
	); err != nil {
		return nil, fmt.Errorf("failed to create auth successes counter: %w", err)
	}
	if m.tokenValidationErrors, err = meter.Int64Counter(
		"security.token.validation_errors.total",
		metric.WithDescription("Total number of token validation errors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create token validation errors counter: %w", err)
	}
	return m, nil
}

// RecordAuthAttempt records an authentication attempt.
func (m *SecurityMetrics) RecordAuthAttempt(ctx context.Context, endpoint string) {
	m.authAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordAuthFailure records a failed authentication attempt.
func (m *SecurityMetrics) RecordAuthFailure(ctx context.Context, endpoint, reason string) {
	m.authFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("reason", reason),
	))
}

// RecordAuthSuccess records a successful authentication.
func (m *SecurityMetrics) RecordAuthSuccess(ctx context.Context, endpoint, issuer string) {
	m.authSuccesses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("issuer", issuer),
	))
}

// RecordTokenValidationError records a token validation error.
func (m *SecurityMetrics) RecordTokenValidationError(ctx context.Context, errorType string) {
	m.tokenValidationErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("error_type", errorType)))
}
