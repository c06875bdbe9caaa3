package config

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNFromDiscreteFields(t *testing.T) {
	d := DatabaseConfig{Host: "db.internal", Port: 3306, User: "reader", Password: "p@ss", Database: "claims"}

	dsn, err := d.DSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "reader", parsed.User)
	assert.Equal(t, "p@ss", parsed.Passwd)
	assert.Equal(t, "db.internal:3306", parsed.Addr)
	assert.Equal(t, "claims", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
	assert.Empty(t, parsed.TLSConfig)
}

func TestDSNConnectionStringWins(t *testing.T) {
	d := DatabaseConfig{ConnectionString: "u:p@tcp(warehouse:4000)/analytics", Host: "ignored", Port: 1}

	dsn, err := d.DSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "warehouse:4000", parsed.Addr)
	assert.Equal(t, "analytics", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestDSNInvalidConnectionString(t *testing.T) {
	d := DatabaseConfig{ConnectionString: "not a dsn"}
	_, err := d.DSN()
	require.Error(t, err)
}

func TestDSNTLSParam(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{"", ""},
		{"off", "false"},
		{"skip-verify", "skip-verify"},
		{"verify-ca", tlsConfigName},
		{"verify-full", tlsConfigName},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			d := DatabaseConfig{Host: "h", Port: 3306, User: "u", Database: "claims", TLS: DatabaseTLSConfig{Mode: tt.mode}}
			dsn, err := d.DSN()
			require.NoError(t, err)
			if tt.want == "" {
				assert.NotContains(t, dsn, "tls=")
				return
			}
			assert.Contains(t, dsn, "tls="+tt.want)
		})
	}
}

func TestRegisterTLSNoopWithoutVerification(t *testing.T) {
	d := DatabaseConfig{TLS: DatabaseTLSConfig{Mode: "skip-verify"}}
	assert.NoError(t, d.RegisterTLS())
}

func TestRegisterTLSMissingCA(t *testing.T) {
	d := DatabaseConfig{TLS: DatabaseTLSConfig{Mode: "verify-ca", CAFile: "/nonexistent/ca.pem"}}
	err := d.RegisterTLS()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read CA file")
}

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DatabaseConfig
		want    string
		wantErr string
	}{
		{name: "field only", cfg: DatabaseConfig{Database: "claims_prod"}, want: "claims_prod"},
		{name: "dsn wins over default", cfg: DatabaseConfig{Database: defaultDatabaseName, ConnectionString: "u:p@tcp(h:1)/warehouse"}, want: "warehouse"},
		{name: "matching", cfg: DatabaseConfig{Database: "warehouse", ConnectionString: "u:p@tcp(h:1)/warehouse"}, want: "warehouse"},
		{name: "mismatch", cfg: DatabaseConfig{Database: "other", ConnectionString: "u:p@tcp(h:1)/warehouse"}, wantErr: "database mismatch"},
		{name: "missing", cfg: DatabaseConfig{}, wantErr: "no database name configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.DatabaseName()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
