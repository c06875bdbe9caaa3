package main

import (
	"bytes"
	"log/slog"
	"testing"

	"claims-dashboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportValidation(t *testing.T) {
	tests := []struct {
		name      string
		result    *config.ValidationResult
		expectErr bool
		logged    []string
	}{
		{
			name:   "clean",
			result: &config.ValidationResult{},
		},
		{
			name: "warnings only",
			result: &config.ValidationResult{
				Warnings: []config.ValidationWarning{{Field: "sheets.sheet_id", Message: "not set"}},
			},
			logged: []string{"configuration warning", "sheets.sheet_id"},
		},
		{
			name: "errors fail",
			result: &config.ValidationResult{
				Errors: []config.ValidationError{{Field: "server.port", Message: "out of range", Hint: "use 1-65535"}},
			},
			expectErr: true,
			logged:    []string{"configuration error", "server.port", "use 1-65535"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			err := reportValidation(tt.result, logger)
			if tt.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.logged {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "claims-dashboard dev (none)", versionString())
}
