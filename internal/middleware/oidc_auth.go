package middleware

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"claims-dashboard/internal/logging"
	"claims-dashboard/internal/observability"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const defaultClockSkew = 2 * time.Minute

// OIDCAuthConfig controls bearer token validation.
type OIDCAuthConfig struct {
	Enabled       bool
	IssuerURL     string
	Audience      string
	ClockSkew     time.Duration
	SkipTLSVerify bool
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string
	// PublicPaths are served without a token, e.g. /health.
	PublicPaths []string
}

type authContextKey struct{}

// AuthContext carries the validated token claims.
type AuthContext struct {
	Subject  string
	Issuer   string
	Audience []string
	Claims   map[string]interface{}
}

// AuthFromContext returns the auth context of an authenticated request.
func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey{}).(AuthContext)
	return auth, ok
}

// OIDCAuthMiddleware validates Bearer tokens against the issuer's JWKS.
// Discovery runs once, here; metrics may be nil.
func OIDCAuthMiddleware(ctx context.Context, cfg OIDCAuthConfig, logger *logging.Logger, metrics *observability.SecurityMetrics) (func(http.Handler) http.Handler, error) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	if cfg.IssuerURL == "" || cfg.Audience == "" {
		return nil, errors.New("oidc auth enabled but issuer/audience not configured")
	}
	if cfg.ClockSkew == 0 {
		cfg.ClockSkew = defaultClockSkew
	}

	issuerURL, err := url.Parse(cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid oidc issuer url: %w", err)
	}
	if issuerURL.Scheme != "https" {
		return nil, errors.New("oidc issuer url must use https")
	}
	if cfg.SkipTLSVerify {
		logger.Warn("oidc tls verification is disabled; enable only for local development", "issuer", cfg.IssuerURL)
	}

	client, err := newOIDCHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := oidc.NewProvider(withHTTPClient(ctx, client), cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize oidc provider: %w", err)
	}
	// Expiry is checked below with the configured skew.
	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.Audience, SkipExpiryCheck: true})

	public := make(map[string]struct{}, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		public[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ctx := withHTTPClient(r.Context(), client)
			endpoint := r.URL.Path
			reqLogger := logging.FromContext(ctx)
			if metrics != nil {
				metrics.RecordAuthAttempt(ctx, endpoint)
			}
			reject := func(reason, message string, err error) {
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, endpoint, reason)
					if err != nil {
						metrics.RecordTokenValidationError(ctx, reason)
					}
				}
				attrs := []any{slog.String("endpoint", endpoint), slog.String("reason", reason)}
				if err != nil {
					attrs = append(attrs, slog.String("error", err.Error()))
				}
				reqLogger.Warn("authentication failed", attrs...)
				writeUnauthorized(w, message)
			}

			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				reject("missing_token", "missing bearer token", nil)
				return
			}
			idToken, err := verifier.Verify(ctx, raw)
			if err != nil {
				reject("verification_failed", "invalid token", err)
				return
			}
			claims := map[string]interface{}{}
			if err := idToken.Claims(&claims); err != nil {
				reject("claims_parse_failed", "invalid token claims", err)
				return
			}
			if err := validateTimeClaims(claims, cfg.ClockSkew, time.Now()); err != nil {
				reject("time_validation_failed", "invalid token", err)
				return
			}

			subject, _ := claims["sub"].(string)
			aud := extractAudience(claims)
			if metrics != nil {
				metrics.RecordAuthSuccess(ctx, endpoint, cfg.IssuerURL)
			}
			reqLogger.Debug("authenticated", slog.String("subject", subject), slog.String("endpoint", endpoint))

			if span := trace.SpanFromContext(ctx); span.IsRecording() {
				span.SetAttributes(
					attribute.String("auth.subject", subject),
					attribute.Bool("auth.authenticated", true),
					attribute.StringSlice("auth.audience", aud),
				)
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authContextKey{}, AuthContext{
				Subject:  subject,
				Issuer:   cfg.IssuerURL,
				Audience: aud,
				Claims:   claims,
			})))
		})
	}, nil
}

// newOIDCHTTPClient builds the client used for discovery and JWKS fetches.
func newOIDCHTTPClient(cfg OIDCAuthConfig) (*http.Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: cfg.SkipTLSVerify}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read oidc ca file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("oidc ca file %s has no certificates", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &http.Client{Transport: transport, Timeout: 10 * time.Second}, nil
}

// withHTTPClient makes go-oidc fetch keys through client.
func withHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

func bearerToken(value string) string {
	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}

func validateTimeClaims(claims map[string]interface{}, skew time.Duration, now time.Time) error {
	if exp, ok := numericDate(claims["exp"]); ok && now.After(exp.Add(skew)) {
		return errors.New("token expired")
	}
	if nbf, ok := numericDate(claims["nbf"]); ok && now.Add(skew).Before(nbf) {
		return errors.New("token not valid yet")
	}
	return nil
}

func numericDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0), true
	default:
		return time.Time{}, false
	}
}

func extractAudience(claims map[string]interface{}) []string {
	switch v := claims["aud"].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
