package middleware

import (
	"net/http"
	"time"

	"claims-dashboard/internal/observability"
)

// MetricsMiddleware stores metrics in the request context so handlers can
// record domain events, and records the request under route. route is a
// fixed label such as "/api/claims", never the raw path.
func MetricsMiddleware(metrics *observability.ClaimsMetrics, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := observability.ContextWithMetrics(r.Context(), metrics)
			metrics.IncrementActiveRequests(ctx)
			defer metrics.DecrementActiveRequests(ctx)

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))
			metrics.RecordRequest(ctx, route, r.Method, rec.status, time.Since(start))
		})
	}
}
