package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "If-None-Match", RequestIDHeader}
	defaultCORSExpose  = []string{"ETag", "Content-Disposition", "X-Archive-Location", RequestIDHeader}
)

// CORSConfig configures cross-origin access for browser dashboards hosted on
// another origin. Empty method, header and expose lists fall back to what the
// dashboard endpoints use.
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// CORSMiddleware adds CORS headers and handles preflight requests.
func CORSMiddleware(cfg CORSConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	allowAllOrigins := false
	allowedOrigins := make(map[string]struct{})
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAllOrigins = true
			break
		}
		allowedOrigins[origin] = struct{}{}
	}

	methodsHeader := strings.Join(orDefault(cfg.AllowedMethods, defaultCORSMethods), ", ")
	headersHeader := strings.Join(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", ")
	exposeHeader := strings.Join(orDefault(cfg.ExposeHeaders, defaultCORSExpose), ", ")
	maxAgeHeader := ""
	if cfg.MaxAge > 0 {
		maxAgeHeader = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowOrigin := allowAllOrigins
			if !allowAllOrigins {
				_, allowOrigin = allowedOrigins[origin]
			}

			if allowOrigin {
				if allowAllOrigins {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}

				if cfg.AllowCredentials && !allowAllOrigins {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}

				w.Header().Set("Access-Control-Expose-Headers", exposeHeader)
			}

			if r.Method == http.MethodOptions {
				if allowOrigin {
					w.Header().Set("Access-Control-Allow-Methods", methodsHeader)
					w.Header().Set("Access-Control-Allow-Headers", headersHeader)
					if maxAgeHeader != "" {
						w.Header().Set("Access-Control-Max-Age", maxAgeHeader)
					}
				}

				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
