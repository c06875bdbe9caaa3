package config

import "time"

// Config holds the application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Sheets        SheetsConfig        `mapstructure:"sheets"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Slack         SlackConfig         `mapstructure:"slack"`
	AI            AIConfig            `mapstructure:"ai"`
	SavedQueries  SavedQueriesConfig  `mapstructure:"saved_queries"`
	Export        ExportConfig        `mapstructure:"export"`
}

// PoolConfig holds connection pool parameters.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// DatabaseTLSConfig holds TLS settings for the warehouse connection.
type DatabaseTLSConfig struct {
	// Mode is one of off, skip-verify, verify-ca, verify-full.
	Mode       string `mapstructure:"mode"`
	CAFile     string `mapstructure:"ca_file"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
	ServerName string `mapstructure:"server_name"`
}

// DatabaseConfig points at the claims warehouse. The dashboard never runs
// generated SQL; the connection is only used to check the catalog against
// the live schema.
type DatabaseConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// DSN is a complete go-sql-driver/mysql data source name and overrides
	// the discrete fields below.
	ConnectionString string `mapstructure:"dsn"`
	DSNFile          string `mapstructure:"dsn_file"`

	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	PasswordFile   string `mapstructure:"password_file"`
	PasswordPrompt bool   `mapstructure:"password_prompt"`
	Database       string `mapstructure:"database"`

	TLS  DatabaseTLSConfig `mapstructure:"tls"`
	Pool PoolConfig        `mapstructure:"pool"`

	// ConnectionTimeout bounds the startup wait for the database.
	ConnectionTimeout       time.Duration `mapstructure:"connection_timeout"`
	ConnectionRetryInterval time.Duration `mapstructure:"connection_retry_interval"`
}

// AuthConfig holds OIDC bearer token settings.
type AuthConfig struct {
	OIDCEnabled       bool          `mapstructure:"oidc_enabled"`
	OIDCIssuerURL     string        `mapstructure:"oidc_issuer_url"`
	OIDCAudience      string        `mapstructure:"oidc_audience"`
	OIDCClockSkew     time.Duration `mapstructure:"oidc_clock_skew"`
	OIDCSkipTLSVerify bool          `mapstructure:"oidc_skip_tls_verify"`
	OIDCCAFile        string        `mapstructure:"oidc_ca_file"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port                 int           `mapstructure:"port"`
	GraphiQLEnabled      bool          `mapstructure:"graphiql_enabled"`
	Auth                 AuthConfig    `mapstructure:"auth"`
	RateLimitEnabled     bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRPS         float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst       int           `mapstructure:"rate_limit_burst"`
	CORSEnabled          bool          `mapstructure:"cors_enabled"`
	CORSAllowedOrigins   []string      `mapstructure:"cors_allowed_origins"`
	CORSAllowedMethods   []string      `mapstructure:"cors_allowed_methods"`
	CORSAllowedHeaders   []string      `mapstructure:"cors_allowed_headers"`
	CORSExposeHeaders    []string      `mapstructure:"cors_expose_headers"`
	CORSAllowCredentials bool          `mapstructure:"cors_allow_credentials"`
	CORSMaxAge           int           `mapstructure:"cors_max_age"`
	ReadTimeout          time.Duration `mapstructure:"read_timeout"`
	WriteTimeout         time.Duration `mapstructure:"write_timeout"`
	IdleTimeout          time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout      time.Duration `mapstructure:"shutdown_timeout"`
	HealthCheckTimeout   time.Duration `mapstructure:"health_check_timeout"`
}

// SheetsConfig locates the spreadsheet the daily claim counts are read from.
type SheetsConfig struct {
	// CredentialsBase64 is a base64 encoded service account JSON key.
	CredentialsBase64 string        `mapstructure:"credentials_base64"`
	SheetID           string        `mapstructure:"sheet_id"`
	Range             string        `mapstructure:"range"`
	TokenURL          string        `mapstructure:"token_url"`
	APIBaseURL        string        `mapstructure:"api_base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// Configured reports whether enough is set to call the Sheets API.
func (s SheetsConfig) Configured() bool {
	return s.CredentialsBase64 != "" && s.SheetID != ""
}

// CacheConfig controls the redis cache in front of the claims source.
type CacheConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Key           string        `mapstructure:"key"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// SlackConfig maps channel names to incoming webhook URLs.
type SlackConfig struct {
	Webhooks map[string]string `mapstructure:"webhooks"`
	Timeout  time.Duration     `mapstructure:"timeout"`
}

// AIConfig selects and configures the natural language SQL provider.
type AIConfig struct {
	Provider        string        `mapstructure:"provider"` // anthropic, openai
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	AnthropicModel  string        `mapstructure:"anthropic_model"`
	AnthropicURL    string        `mapstructure:"anthropic_url"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	OpenAIModel     string        `mapstructure:"openai_model"`
	OpenAIURL       string        `mapstructure:"openai_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxTokens       int           `mapstructure:"max_tokens"`
}

// SavedQueriesConfig selects where saved queries live.
type SavedQueriesConfig struct {
	Backend string `mapstructure:"backend"` // memory, sqlite, yaml
	Path    string `mapstructure:"path"`
	Max     int    `mapstructure:"max"`
}

// ExportConfig controls archiving of CSV and XLSX exports to S3.
type ExportConfig struct {
	S3Enabled  bool   `mapstructure:"s3_enabled"`
	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	S3Region   string `mapstructure:"s3_region"`
	S3Endpoint string `mapstructure:"s3_endpoint"`
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level          string `mapstructure:"level"`  // debug, info, warn, error
	Format         string `mapstructure:"format"` // json, text
	ExportsEnabled bool   `mapstructure:"exports_enabled"`
}

// ObservabilityConfig holds observability parameters.
type ObservabilityConfig struct {
	ServiceName         string        `mapstructure:"service_name"`
	ServiceVersion      string        `mapstructure:"service_version"`
	Environment         string        `mapstructure:"environment"`
	MetricsEnabled      bool          `mapstructure:"metrics_enabled"`
	TracingEnabled      bool          `mapstructure:"tracing_enabled"`
	TraceSampleRatio    float64       `mapstructure:"trace_sample_ratio"`
	SQLCommenterEnabled bool          `mapstructure:"sqlcommenter_enabled"`
	Logging             LoggingConfig `mapstructure:"logging"`

	OTLP OTLPConfig `mapstructure:"otlp"`

	// Per-signal overrides of OTLP.
	Traces *OTLPConfig `mapstructure:"traces,omitempty"`
	Logs   *OTLPConfig `mapstructure:"logs,omitempty"`
}

// OTLPConfig holds OTLP exporter configuration.
type OTLPConfig struct {
	Endpoint         string            `mapstructure:"endpoint"`
	Protocol         string            `mapstructure:"protocol"` // grpc, http/protobuf
	Insecure         bool              `mapstructure:"insecure"`
	TLSCertFile      string            `mapstructure:"tls_cert_file"`
	Headers          map[string]string `mapstructure:"headers"`
	Timeout          time.Duration     `mapstructure:"timeout"`
	Compression      string            `mapstructure:"compression"` // none, gzip
	RetryEnabled     bool              `mapstructure:"retry_enabled"`
	RetryMaxAttempts int               `mapstructure:"retry_max_attempts"`
}

// TracesOTLP returns the effective OTLP settings for traces.
func (c *ObservabilityConfig) TracesOTLP() OTLPConfig {
	return c.OTLP.overlay(c.Traces)
}

// LogsOTLP returns the effective OTLP settings for logs.
func (c *ObservabilityConfig) LogsOTLP() OTLPConfig {
	return c.OTLP.overlay(c.Logs)
}

// overlay applies the set fields of o over base. Insecure always comes from
// o because a false value cannot be told apart from an unset one.
func (base OTLPConfig) overlay(o *OTLPConfig) OTLPConfig {
	if o == nil {
		return base
	}
	out := base
	if o.Endpoint != "" {
		out.Endpoint = o.Endpoint
	}
	if o.Protocol != "" {
		out.Protocol = o.Protocol
	}
	out.Insecure = o.Insecure
	if o.TLSCertFile != "" {
		out.TLSCertFile = o.TLSCertFile
	}
	if o.Headers != nil {
		out.Headers = make(map[string]string, len(base.Headers)+len(o.Headers))
		for k, v := range base.Headers {
			out.Headers[k] = v
		}
		for k, v := range o.Headers {
			out.Headers[k] = v
		}
	}
	if o.Timeout != 0 {
		out.Timeout = o.Timeout
	}
	if o.Compression != "" {
		out.Compression = o.Compression
	}
	if o.RetryMaxAttempts != 0 {
		out.RetryEnabled = o.RetryEnabled
		out.RetryMaxAttempts = o.RetryMaxAttempts
	}
	return out
}
