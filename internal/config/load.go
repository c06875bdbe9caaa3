package config

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const (
	defaultDatabaseName = "claims"
	envPrefix           = "CLAIMS"
)

var defineFlagsOnce sync.Once

// Load loads configuration from multiple sources with the following precedence:
// 1. Explicit overrides (v.Set), used for secrets read from files or a prompt
// 2. Command line flags
// 3. Environment variables
// 4. Config file
// 5. Default values
func Load() (*Config, error) {
	defineFlags()
	if !pflag.Parsed() {
		pflag.Parse()
	}
	cfgPath, _ := pflag.CommandLine.GetString("config")
	return load(pflag.CommandLine, cfgPath)
}

func load(flags *pflag.FlagSet, cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("claims-dashboard")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/claims-dashboard/")
		v.AddConfigPath("$HOME/.claims-dashboard")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Env vars: CLAIMS_SHEETS_SHEET_ID, CLAIMS_AI_ANTHROPIC_API_KEY
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindChangedFlagsToViper(flags, v)
	}
	if err := validateSingleStdinFileSource(v); err != nil {
		return nil, err
	}

	if v.GetString("database.dsn") == "" && v.GetString("database.dsn_file") != "" {
		dsn, err := readSecretFile(v.GetString("database.dsn_file"))
		if err != nil {
			return nil, fmt.Errorf("failed to read database DSN file: %w", err)
		}
		v.Set("database.dsn", dsn)
	}
	if v.GetString("database.password") == "" && v.GetString("database.password_file") != "" {
		pwd, err := readSecretFile(v.GetString("database.password_file"))
		if err != nil {
			return nil, fmt.Errorf("failed to read database password file: %w", err)
		}
		v.Set("database.password", pwd)
	}
	if v.GetBool("database.enabled") && v.GetString("database.password") == "" && v.GetBool("database.password_prompt") {
		pwd, err := promptPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		v.Set("database.password", pwd)
	}

	var cfg Config
	if err := v.UnmarshalExact(
		&cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToStringSliceHookFunc(","),
			),
		),
	); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bindChangedFlagsToViper copies only explicitly-set flags into Viper,
// preserving precedence: flags > env > file > defaults.
func bindChangedFlagsToViper(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Visit(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "version" {
			return
		}

		switch f.Value.Type() {
		case "string":
			val, _ := flags.GetString(f.Name)
			v.Set(f.Name, val)
		case "int":
			val, _ := flags.GetInt(f.Name)
			v.Set(f.Name, val)
		case "bool":
			val, _ := flags.GetBool(f.Name)
			v.Set(f.Name, val)
		case "float64":
			val, _ := flags.GetFloat64(f.Name)
			v.Set(f.Name, val)
		case "duration":
			val, _ := flags.GetDuration(f.Name)
			v.Set(f.Name, val)
		case "stringSlice":
			val, _ := flags.GetStringSlice(f.Name)
			v.Set(f.Name, val)
		case "stringToString":
			val, _ := flags.GetStringToString(f.Name)
			v.Set(f.Name, val)
		default:
			v.Set(f.Name, f.Value.String())
		}
	})
}

// defineFlags defines all command line flags using canonical snake_case keys.
func defineFlags() {
	defineFlagsOnce.Do(func() {
		registerFlags(pflag.CommandLine)
	})
}

func registerFlags(fs *pflag.FlagSet) {
	// Database (schema drift check only)
	fs.Bool("database.enabled", false, "Check the table catalog against the live warehouse schema at startup")
	fs.String("database.dsn", "", "Complete MySQL DSN (user:pass@tcp(host:port)/db)")
	fs.String("database.dsn_file", "", "Path to file containing database DSN (use @- for stdin)")
	fs.String("database.host", "", "Database host")
	fs.Int("database.port", 0, "Database port")
	fs.String("database.user", "", "Database user")
	fs.String("database.password", "", "Database password")
	fs.String("database.password_file", "", "Path to file containing database password (use @- for stdin)")
	fs.Bool("database.password_prompt", false, "Prompt for database password securely")
	fs.String("database.database", "", "Database name")
	fs.String("database.tls.mode", "", "TLS mode (off, skip-verify, verify-ca, verify-full)")
	fs.String("database.tls.ca_file", "", "Path to CA certificate for server verification")
	fs.String("database.tls.cert_file", "", "Path to client certificate for mTLS")
	fs.String("database.tls.key_file", "", "Path to client private key for mTLS")
	fs.String("database.tls.server_name", "", "Override TLS server name for verification")
	fs.Int("database.pool.max_open", 0, "Maximum open database connections")
	fs.Int("database.pool.max_idle", 0, "Maximum idle connections in pool")
	fs.Duration("database.pool.max_lifetime", 0, "Connection max lifetime (e.g. 5m, 30s)")
	fs.Duration("database.connection_timeout", 0, "Max time to wait for database on startup (0 = fail immediately)")
	fs.Duration("database.connection_retry_interval", 0, "Initial interval between connection retries")

	// Server
	fs.Int("server.port", 0, "HTTP server port")
	fs.Bool("server.graphiql_enabled", false, "Enable GraphiQL UI for /graphql (dev only)")
	fs.Bool("server.auth.oidc_enabled", false, "Enable OIDC/JWKS authentication middleware")
	fs.String("server.auth.oidc_issuer_url", "", "OIDC issuer URL (for discovery and JWKS)")
	fs.String("server.auth.oidc_audience", "", "Expected JWT audience (client ID)")
	fs.Duration("server.auth.oidc_clock_skew", 0, "Allowed JWT clock skew (e.g. 2m)")
	fs.Bool("server.auth.oidc_skip_tls_verify", false, "Skip TLS verification for OIDC provider (dev only)")
	fs.String("server.auth.oidc_ca_file", "", "PEM file of extra CAs trusted for the OIDC provider")
	fs.Bool("server.rate_limit_enabled", false, "Enable global rate limiting for all HTTP endpoints")
	fs.Float64("server.rate_limit_rps", 0, "Global rate limit requests per second")
	fs.Int("server.rate_limit_burst", 0, "Global rate limit burst size")
	fs.Bool("server.cors_enabled", false, "Enable CORS (Cross-Origin Resource Sharing)")
	fs.StringSlice("server.cors_allowed_origins", nil, "Allowed CORS origins (comma-separated or repeated)")
	fs.StringSlice("server.cors_allowed_methods", nil, "Allowed CORS methods (comma-separated or repeated)")
	fs.StringSlice("server.cors_allowed_headers", nil, "Allowed CORS headers (comma-separated or repeated)")
	fs.StringSlice("server.cors_expose_headers", nil, "CORS headers to expose to browser (comma-separated or repeated)")
	fs.Bool("server.cors_allow_credentials", false, "Allow credentials in CORS requests")
	fs.Int("server.cors_max_age", 0, "CORS preflight cache duration (seconds)")
	fs.Duration("server.read_timeout", 0, "HTTP server read timeout")
	fs.Duration("server.write_timeout", 0, "HTTP server write timeout")
	fs.Duration("server.idle_timeout", 0, "HTTP server idle timeout")
	fs.Duration("server.shutdown_timeout", 0, "HTTP server graceful shutdown timeout")
	fs.Duration("server.health_check_timeout", 0, "Health check timeout")

	// Google Sheets
	fs.String("sheets.credentials_base64", "", "Base64 encoded Google service account JSON key")
	fs.String("sheets.sheet_id", "", "Spreadsheet ID holding the daily claim counts")
	fs.String("sheets.range", "", "A1 range to read (default Raw Data!A:D)")
	fs.String("sheets.token_url", "", "OAuth2 token endpoint override")
	fs.String("sheets.api_base_url", "", "Sheets API base URL override")
	fs.Duration("sheets.timeout", 0, "Sheets API request timeout")

	// Cache
	fs.Bool("cache.enabled", false, "Cache the claims snapshot in redis")
	fs.String("cache.redis_addr", "", "Redis address (host:port)")
	fs.String("cache.redis_password", "", "Redis password")
	fs.Int("cache.redis_db", 0, "Redis database number")
	fs.String("cache.key", "", "Redis key for the claims snapshot")
	fs.Duration("cache.ttl", 0, "Claims snapshot freshness window")

	// Slack
	fs.StringToString("slack.webhooks", nil, "Channel to webhook URL pairs (e.g. #health-ops=https://hooks.slack.com/...)")
	fs.Duration("slack.timeout", 0, "Slack webhook request timeout")

	// Natural language SQL
	fs.String("ai.provider", "", "SQL generation provider (anthropic, openai)")
	fs.String("ai.anthropic_api_key", "", "Anthropic API key")
	fs.String("ai.anthropic_model", "", "Anthropic model name")
	fs.String("ai.openai_api_key", "", "OpenAI API key")
	fs.String("ai.openai_model", "", "OpenAI model name")
	fs.Duration("ai.timeout", 0, "SQL generation request timeout")
	fs.Int("ai.max_tokens", 0, "Maximum tokens in a generated answer")

	// Saved queries
	fs.String("saved_queries.backend", "", "Saved query store (memory, sqlite, yaml)")
	fs.String("saved_queries.path", "", "Saved query file path for sqlite and yaml backends")
	fs.Int("saved_queries.max", 0, "Maximum number of saved queries kept")

	// Export archive
	fs.Bool("export.s3_enabled", false, "Archive CSV and XLSX exports to S3")
	fs.String("export.s3_bucket", "", "S3 bucket for archived exports")
	fs.String("export.s3_prefix", "", "Key prefix for archived exports")
	fs.String("export.s3_region", "", "S3 region")
	fs.String("export.s3_endpoint", "", "S3 endpoint override (S3 compatible stores)")

	// Observability
	fs.String("observability.service_name", "", "Service name for observability")
	fs.String("observability.service_version", "", "Service version for observability")
	fs.String("observability.environment", "", "Environment name (dev, staging, prod)")
	fs.Bool("observability.metrics_enabled", false, "Enable metrics collection")
	fs.Bool("observability.tracing_enabled", false, "Enable distributed tracing")
	fs.Float64("observability.trace_sample_ratio", 0, "Trace sampling ratio from 0.0 to 1.0")
	fs.Bool("observability.sqlcommenter_enabled", false, "Inject trace context into SQL queries")
	fs.String("observability.logging.level", "", "Log level (debug, info, warn, error)")
	fs.String("observability.logging.format", "", "Log format (json, text)")
	fs.Bool("observability.logging.exports_enabled", false, "Enable OTLP log export")
	fs.String("observability.otlp.endpoint", "", "OTLP endpoint for all signals (e.g., localhost:4317)")
	fs.String("observability.otlp.protocol", "", "OTLP protocol for all signals (grpc, http/protobuf)")
	fs.Bool("observability.otlp.insecure", false, "Use insecure connection (no TLS)")
	fs.String("observability.otlp.tls_cert_file", "", "Path to TLS certificate file for server verification")
	fs.Duration("observability.otlp.timeout", 0, "OTLP export timeout")
	fs.String("observability.otlp.compression", "", "OTLP compression (none, gzip)")
	fs.Bool("observability.otlp.retry_enabled", false, "Enable retry on transient errors")
	fs.Int("observability.otlp.retry_max_attempts", 0, "Maximum retry attempts")

	fs.StringP("config", "c", "", "Config file path")
}

// setDefaults sets default values (lowest precedence).
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.dsn_file", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "claims_readonly")
	v.SetDefault("database.password", "")
	v.SetDefault("database.password_file", "")
	v.SetDefault("database.password_prompt", false)
	v.SetDefault("database.database", defaultDatabaseName)
	v.SetDefault("database.tls.mode", "")
	v.SetDefault("database.tls.ca_file", "")
	v.SetDefault("database.tls.cert_file", "")
	v.SetDefault("database.tls.key_file", "")
	v.SetDefault("database.tls.server_name", "")
	v.SetDefault("database.pool.max_open", 4)
	v.SetDefault("database.pool.max_idle", 1)
	v.SetDefault("database.pool.max_lifetime", 5*time.Minute)
	v.SetDefault("database.connection_timeout", 30*time.Second)
	v.SetDefault("database.connection_retry_interval", 2*time.Second)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.graphiql_enabled", false)
	v.SetDefault("server.auth.oidc_enabled", false)
	v.SetDefault("server.auth.oidc_issuer_url", "")
	v.SetDefault("server.auth.oidc_audience", "")
	v.SetDefault("server.auth.oidc_clock_skew", 2*time.Minute)
	v.SetDefault("server.auth.oidc_skip_tls_verify", false)
	v.SetDefault("server.auth.oidc_ca_file", "")
	v.SetDefault("server.rate_limit_enabled", false)
	v.SetDefault("server.rate_limit_rps", 0.0)
	v.SetDefault("server.rate_limit_burst", 0)
	v.SetDefault("server.cors_enabled", false)
	v.SetDefault("server.cors_allowed_origins", []string{})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("server.cors_expose_headers", []string{})
	v.SetDefault("server.cors_allow_credentials", false)
	v.SetDefault("server.cors_max_age", 86400)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.health_check_timeout", 2*time.Second)

	v.SetDefault("sheets.credentials_base64", "")
	v.SetDefault("sheets.sheet_id", "")
	v.SetDefault("sheets.range", "Raw Data!A:D")
	v.SetDefault("sheets.token_url", "https://oauth2.googleapis.com/token")
	v.SetDefault("sheets.api_base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("sheets.timeout", 20*time.Second)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key", "claims:snapshot")
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("slack.webhooks", map[string]string{})
	v.SetDefault("slack.timeout", 10*time.Second)

	v.SetDefault("ai.provider", "anthropic")
	v.SetDefault("ai.anthropic_api_key", "")
	v.SetDefault("ai.anthropic_model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.anthropic_url", "https://api.anthropic.com/v1/messages")
	v.SetDefault("ai.openai_api_key", "")
	v.SetDefault("ai.openai_model", "gpt-4o")
	v.SetDefault("ai.openai_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.max_tokens", 2000)

	v.SetDefault("saved_queries.backend", "memory")
	v.SetDefault("saved_queries.path", "")
	v.SetDefault("saved_queries.max", 50)

	v.SetDefault("export.s3_enabled", false)
	v.SetDefault("export.s3_bucket", "")
	v.SetDefault("export.s3_prefix", "exports/")
	v.SetDefault("export.s3_region", "")
	v.SetDefault("export.s3_endpoint", "")

	v.SetDefault("observability.service_name", "claims-dashboard")
	v.SetDefault("observability.service_version", "")
	v.SetDefault("observability.environment", "development")
	v.SetDefault("observability.metrics_enabled", true)
	v.SetDefault("observability.tracing_enabled", false)
	v.SetDefault("observability.trace_sample_ratio", 1.0)
	v.SetDefault("observability.sqlcommenter_enabled", true)
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.logging.exports_enabled", false)
	v.SetDefault("observability.otlp.endpoint", "localhost:4317")
	v.SetDefault("observability.otlp.protocol", "grpc")
	v.SetDefault("observability.otlp.insecure", false)
	v.SetDefault("observability.otlp.tls_cert_file", "")
	v.SetDefault("observability.otlp.timeout", 10*time.Second)
	v.SetDefault("observability.otlp.compression", "gzip")
	v.SetDefault("observability.otlp.retry_enabled", true)
	v.SetDefault("observability.otlp.retry_max_attempts", 3)
}

// promptPassword prompts the user for a password without echoing to terminal.
func promptPassword() (string, error) {
	fmt.Print("Enter database password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

var stdin io.Reader = os.Stdin

func readSecretFile(path string) (string, error) {
	var data []byte
	var err error

	if path == "@-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func validateSingleStdinFileSource(v *viper.Viper) error {
	stdinBackedKeys := []string{
		"database.dsn_file",
		"database.password_file",
	}

	var configured []string
	for _, key := range stdinBackedKeys {
		if strings.TrimSpace(v.GetString(key)) == "@-" {
			configured = append(configured, key)
		}
	}
	if len(configured) > 1 {
		return fmt.Errorf(
			"multiple stdin-backed file settings use @- (%s); only one @- source is allowed",
			strings.Join(configured, ", "),
		)
	}
	return nil
}

func stringToStringSliceHookFunc(sep string) mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []string{}, nil
		}

		parts := strings.Split(raw, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}
