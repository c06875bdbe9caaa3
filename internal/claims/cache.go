package claims

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"claims-dashboard/internal/logging"
	"claims-dashboard/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// CachedSource keeps the last snapshot in redis for ttl. Any redis failure
// falls through to the wrapped source.
type CachedSource struct {
	inner  Source
	rdb    *redis.Client
	key    string
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedSource wraps inner with a redis backed cache.
func NewCachedSource(inner Source, rdb *redis.Client, key string, ttl time.Duration, logger *logging.Logger) *CachedSource {
	if logger == nil {
		logger = logging.Discard()
	}
	return &CachedSource{inner: inner, rdb: rdb, key: key, ttl: ttl, logger: logger}
}

// Fetch returns the cached snapshot when present, otherwise fetches and stores it.
func (c *CachedSource) Fetch(ctx context.Context) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "claims.cache.fetch")
	defer span.End()
	metrics := observability.MetricsFromContext(ctx)

	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var records []Record
		if jsonErr := json.Unmarshal(raw, &records); jsonErr == nil {
			span.SetAttributes(attribute.String("cache.result", "hit"))
			metrics.RecordCacheLookup(ctx, "hit")
			return records, nil
		}
		c.logger.Warn("discarding unreadable cached claims snapshot", "key", c.key)
		metrics.RecordCacheLookup(ctx, "corrupt")
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup(ctx, "miss")
	default:
		c.logger.Warn("claims cache unavailable, reading source directly", "error", err.Error())
		metrics.RecordCacheLookup(ctx, "error")
	}
	span.SetAttributes(attribute.String("cache.result", "miss"))

	records, err := c.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return records, nil
	}
	if err := c.rdb.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to store claims snapshot in cache", "error", err.Error())
	}
	return records, nil
}

// Invalidate drops the cached snapshot.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}
