package config

import (
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (r *ValidationResult) fail(field, message, hint string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Hint: hint})
}

func (r *ValidationResult) warn(field, message, hint string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message, Hint: hint})
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues). Optional
// integrations that are left unconfigured produce warnings; the matching
// endpoints report themselves as unavailable at runtime.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	if c.Database.Enabled {
		c.Database.validate(result)
	}
	c.Server.validate(result)
	c.Observability.validate(result)
	c.Sheets.validate(result)
	c.Cache.validate(result)
	c.Slack.validate(result)
	c.AI.validate(result)
	c.SavedQueries.validate(result)
	c.Export.validate(result)

	return result
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	if d.ConnectionString == "" && (d.Port < 1 || d.Port > 65535) {
		result.fail("database.port", fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port), "")
	}

	d.TLS.validate(result)

	if d.Pool.MaxOpen < 0 {
		result.fail("database.pool.max_open", "max_open cannot be negative", "")
	}
	if d.Pool.MaxIdle < 0 {
		result.fail("database.pool.max_idle", "max_idle cannot be negative", "")
	}
	if d.Pool.MaxIdle > d.Pool.MaxOpen && d.Pool.MaxOpen > 0 {
		result.warn("database.pool.max_idle", "max_idle is greater than max_open", "idle connections will be limited to max_open")
	}

	if d.ConnectionTimeout < 0 {
		result.fail("database.connection_timeout", "connection_timeout cannot be negative", "")
	}
	if d.ConnectionRetryInterval < 0 {
		result.fail("database.connection_retry_interval", "connection_retry_interval cannot be negative", "")
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval == 0 {
		result.fail("database.connection_retry_interval",
			"connection_retry_interval must be greater than 0 when connection_timeout is set",
			"set a retry interval such as 2s, or set connection_timeout to 0 to disable retries")
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval > d.ConnectionTimeout {
		result.warn("database.connection_retry_interval", "connection_retry_interval is greater than connection_timeout", "only one connection attempt will be made")
	}

	name, err := d.DatabaseName()
	if err != nil {
		result.fail("database.database", err.Error(), "either remove database.database or set it to match the DSN database")
		return
	}
	d.Database = name
}

func (t *DatabaseTLSConfig) validate(result *ValidationResult) {
	validModes := map[string]bool{"": true, "off": true, "skip-verify": true, "verify-ca": true, "verify-full": true}
	if !validModes[t.Mode] {
		result.fail("database.tls.mode", fmt.Sprintf("invalid TLS mode %q", t.Mode), "valid values are: off, skip-verify, verify-ca, verify-full")
	}
	if (t.Mode == "verify-ca" || t.Mode == "verify-full") && t.CAFile == "" {
		result.fail("database.tls.ca_file", "CA file is required for verify-ca and verify-full modes", "")
	}
	if (t.CertFile != "") != (t.KeyFile != "") {
		result.fail("database.tls.cert_file",
			"both cert_file and key_file must be specified for client certificate authentication",
			"provide both cert_file and key_file, or neither")
	}
	if t.Mode == "skip-verify" {
		result.warn("database.tls.mode", "skip-verify mode does not verify server certificates", "use verify-ca or verify-full in production")
	}
}

func (s *ServerConfig) validate(result *ValidationResult) {
	if s.Port < 1 || s.Port > 65535 {
		result.fail("server.port", fmt.Sprintf("port %d is out of valid range (1-65535)", s.Port), "")
	}

	if s.RateLimitEnabled {
		if s.RateLimitRPS <= 0 {
			result.fail("server.rate_limit_rps", "rate_limit_rps must be greater than 0 when rate limiting is enabled", "")
		}
		if s.RateLimitBurst <= 0 {
			result.fail("server.rate_limit_burst", "rate_limit_burst must be greater than 0 when rate limiting is enabled", "")
		}
	} else if s.RateLimitRPS > 0 || s.RateLimitBurst > 0 {
		result.warn("server.rate_limit_enabled", "rate limit values are set but rate limiting is disabled", "enable server.rate_limit_enabled to apply rate limits")
	}

	if s.CORSEnabled {
		if len(s.CORSAllowedOrigins) == 0 {
			result.fail("server.cors_allowed_origins", "CORS enabled but no allowed origins configured", "set cors_allowed_origins or disable CORS")
		}
		hasWildcard := false
		for _, origin := range s.CORSAllowedOrigins {
			if strings.TrimSpace(origin) == "*" {
				hasWildcard = true
				break
			}
		}
		if hasWildcard && s.CORSAllowCredentials {
			result.fail("server.cors_allowed_origins", "wildcard origin (*) cannot be used with credentials",
				"use specific origins with credentials, or wildcard without credentials")
		}
		if hasWildcard {
			result.warn("server.cors_allowed_origins", "CORS wildcard origin enabled", "use specific origins in production for better security")
		}
	}

	if s.Auth.OIDCEnabled {
		if s.Auth.OIDCIssuerURL == "" {
			result.fail("server.auth.oidc_issuer_url", "issuer URL is required when OIDC is enabled", "")
		}
		if s.Auth.OIDCAudience == "" {
			result.fail("server.auth.oidc_audience", "audience is required when OIDC is enabled", "")
		}
	}
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[o.Logging.Level] {
		result.fail("observability.logging.level", fmt.Sprintf("invalid log level %q", o.Logging.Level), "valid values are: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[o.Logging.Format] {
		result.fail("observability.logging.format", fmt.Sprintf("invalid log format %q", o.Logging.Format), "valid values are: json, text")
	}
	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.fail("observability.trace_sample_ratio", "trace_sample_ratio must be between 0.0 and 1.0", "")
	}

	o.OTLP.validate("observability.otlp", result)
	if o.Traces != nil {
		o.Traces.validate("observability.traces", result)
	}
	if o.Logs != nil {
		o.Logs.validate("observability.logs", result)
	}
}

func (o *OTLPConfig) validate(prefix string, result *ValidationResult) {
	validProtocols := map[string]bool{"": true, "grpc": true, "http/protobuf": true}
	if !validProtocols[o.Protocol] {
		result.fail(prefix+".protocol", fmt.Sprintf("invalid OTLP protocol %q", o.Protocol), "valid values are: grpc, http/protobuf")
	}
	if o.Protocol == "http/protobuf" && !validEndpoint(o.Endpoint) {
		result.fail(prefix+".endpoint", fmt.Sprintf("invalid OTLP endpoint %q for http/protobuf", o.Endpoint), "use host:port or a full URL")
	}
	validCompressions := map[string]bool{"": true, "none": true, "gzip": true}
	if !validCompressions[o.Compression] {
		result.fail(prefix+".compression", fmt.Sprintf("invalid OTLP compression %q", o.Compression), "valid values are: none, gzip")
	}
	if o.RetryMaxAttempts < 0 {
		result.fail(prefix+".retry_max_attempts", "retry_max_attempts cannot be negative", "")
	}
}

func (s *SheetsConfig) validate(result *ValidationResult) {
	if !s.Configured() {
		result.warn("sheets", "Google Sheets is not configured", "the dashboard will show no data until sheets.credentials_base64 and sheets.sheet_id are set")
		return
	}
	if _, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s.CredentialsBase64)); err != nil {
		result.fail("sheets.credentials_base64", "credentials are not valid base64", "encode the service account JSON key with base64")
	}
	if strings.TrimSpace(s.Range) == "" {
		result.fail("sheets.range", "range cannot be empty", "the default is Raw Data!A:D")
	}
	if !validHTTPURL(s.APIBaseURL) {
		result.fail("sheets.api_base_url", fmt.Sprintf("invalid URL %q", s.APIBaseURL), "")
	}
	if !validHTTPURL(s.TokenURL) {
		result.fail("sheets.token_url", fmt.Sprintf("invalid URL %q", s.TokenURL), "")
	}
}

func (c *CacheConfig) validate(result *ValidationResult) {
	if !c.Enabled {
		return
	}
	if !validEndpoint(c.RedisAddr) {
		result.fail("cache.redis_addr", fmt.Sprintf("invalid redis address %q", c.RedisAddr), "use host:port")
	}
	if c.TTL <= 0 {
		result.fail("cache.ttl", "ttl must be greater than 0 when the cache is enabled", "")
	}
	if c.RedisDB < 0 {
		result.fail("cache.redis_db", "redis_db cannot be negative", "")
	}
}

func (s *SlackConfig) validate(result *ValidationResult) {
	if len(s.Webhooks) == 0 {
		result.warn("slack.webhooks", "no Slack channels are configured", "reports cannot be sent until slack.webhooks is set")
	}
	for channel, hook := range s.Webhooks {
		if hook == "" {
			continue
		}
		if !validHTTPURL(hook) {
			result.fail("slack.webhooks", fmt.Sprintf("webhook for %s is not a valid URL", channel), "")
		}
	}
}

func (a *AIConfig) validate(result *ValidationResult) {
	switch a.Provider {
	case "anthropic":
		if a.AnthropicAPIKey == "" {
			result.warn("ai.anthropic_api_key", "Anthropic API key is not set", "natural language SQL generation will be unavailable")
		}
	case "openai":
		if a.OpenAIAPIKey == "" {
			result.warn("ai.openai_api_key", "OpenAI API key is not set", "natural language SQL generation will be unavailable")
		}
	default:
		result.fail("ai.provider", fmt.Sprintf("invalid provider %q", a.Provider), "valid values are: anthropic, openai")
	}
	if a.MaxTokens <= 0 {
		result.fail("ai.max_tokens", "max_tokens must be greater than 0", "")
	}
}

func (q *SavedQueriesConfig) validate(result *ValidationResult) {
	switch q.Backend {
	case "memory":
	case "sqlite", "yaml":
		if strings.TrimSpace(q.Path) == "" {
			result.fail("saved_queries.path", fmt.Sprintf("path is required for the %s backend", q.Backend), "")
		}
	default:
		result.fail("saved_queries.backend", fmt.Sprintf("invalid backend %q", q.Backend), "valid values are: memory, sqlite, yaml")
	}
	if q.Max <= 0 {
		result.fail("saved_queries.max", "max must be greater than 0", "")
	}
}

func (e *ExportConfig) validate(result *ValidationResult) {
	if !e.S3Enabled {
		return
	}
	if strings.TrimSpace(e.S3Bucket) == "" {
		result.fail("export.s3_bucket", "bucket is required when S3 archiving is enabled", "")
	}
	if e.S3Endpoint != "" && !validHTTPURL(e.S3Endpoint) {
		result.fail("export.s3_endpoint", fmt.Sprintf("invalid URL %q", e.S3Endpoint), "")
	}
}

func validEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return parsed.Host != ""
	}
	_, _, err := net.SplitHostPort(endpoint)
	return err == nil
}

func validHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
