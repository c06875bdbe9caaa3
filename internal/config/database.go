package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// tlsConfigName is the name the custom TLS config is registered under with the MySQL driver.
const tlsConfigName = "claims-dashboard-custom"

// DSN returns the data source name for the claims warehouse. A configured
// connection string wins over the discrete fields; either way parseTime and
// a UTC location are forced so DATETIME columns scan into time.Time.
func (d *DatabaseConfig) DSN() (string, error) {
	var cfg *mysql.Config
	if strings.TrimSpace(d.ConnectionString) != "" {
		parsed, err := mysql.ParseDSN(strings.TrimSpace(d.ConnectionString))
		if err != nil {
			return "", fmt.Errorf("database.dsn is invalid: %w", err)
		}
		cfg = parsed
	} else {
		cfg = mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
		cfg.DBName = d.Database
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	if param := d.effectiveTLSParam(); param != "" && cfg.TLSConfig == "" {
		cfg.TLSConfig = param
	}
	return cfg.FormatDSN(), nil
}

// DatabaseName returns the schema the catalog is checked against.
func (d *DatabaseConfig) DatabaseName() (string, error) {
	dsnName := ""
	if dsn := strings.TrimSpace(d.ConnectionString); dsn != "" {
		parsed, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("database.dsn is invalid: %w", err)
		}
		dsnName = parsed.DBName
	}
	name := strings.TrimSpace(d.Database)
	switch {
	case dsnName != "" && name != "" && name != defaultDatabaseName && name != dsnName:
		return "", fmt.Errorf("database mismatch: database.database=%q but database.dsn targets %q", name, dsnName)
	case dsnName != "":
		return dsnName, nil
	case name != "":
		return name, nil
	}
	return "", fmt.Errorf("no database name configured: set database.database or include /<database> in database.dsn")
}

func (d *DatabaseConfig) effectiveTLSParam() string {
	switch d.TLS.Mode {
	case "":
		return ""
	case "off":
		return "false"
	case "skip-verify":
		return "skip-verify"
	case "verify-ca", "verify-full":
		return tlsConfigName
	default:
		return d.TLS.Mode
	}
}

// RegisterTLS registers the custom TLS configuration with the MySQL driver.
// It must run before the connection is opened and is a no-op for modes that
// need no custom config.
func (d *DatabaseConfig) RegisterTLS() error {
	if d.TLS.Mode != "verify-ca" && d.TLS.Mode != "verify-full" {
		return nil
	}

	tlsCfg, err := d.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to build TLS config: %w", err)
	}
	if err := mysql.RegisterTLSConfig(tlsConfigName, tlsCfg); err != nil {
		return fmt.Errorf("failed to register TLS config: %w", err)
	}
	return nil
}

func (d *DatabaseConfig) buildTLSConfig() (*tls.Config, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if d.TLS.CAFile != "" {
		caCert, err := os.ReadFile(d.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file %q: %w", d.TLS.CAFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %q", d.TLS.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	switch {
	case d.TLS.CertFile != "" && d.TLS.KeyFile != "":
		cert, err := tls.LoadX509KeyPair(d.TLS.CertFile, d.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	case d.TLS.CertFile != "" || d.TLS.KeyFile != "":
		return nil, fmt.Errorf("both cert_file and key_file must be specified for client certificate authentication")
	}

	if d.TLS.Mode == "verify-full" && d.TLS.ServerName != "" {
		tlsCfg.ServerName = d.TLS.ServerName
	}
	return tlsCfg, nil
}
