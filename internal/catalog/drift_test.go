package catalog

import (
	"context"
	"errors"
	"testing"

	"claims-dashboard/internal/dbexec"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New([]TableDescriptor{
		{Name: "claims", Alias: "c", Columns: []string{"id", "hmo_id", "paid_at"}},
		{Name: "hmos", Alias: "h", Columns: []string{"id", "name"}},
	}, []JoinEdge{
		{From: "claims", To: "hmos", On: "`c`.`hmo_id` = `h`.`id`"},
	})
	require.NoError(t, err)
	return c
}

func TestCheckDrift(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		expected  Drift
		expectErr bool
	}{
		{
			name: "schema matches",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"TABLE_NAME", "COLUMN_NAME"}).
					AddRow("claims", "id").
					AddRow("claims", "hmo_id").
					AddRow("claims", "paid_at").
					AddRow("claims", "extra_column").
					AddRow("hmos", "id").
					AddRow("hmos", "name")
				mock.ExpectQuery("SELECT TABLE_NAME, COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS").
					WithArgs("claims_db", "claims", "hmos").
					WillReturnRows(rows)
			},
			expected: Drift{},
		},
		{
			name: "missing table and column",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"TABLE_NAME", "COLUMN_NAME"}).
					AddRow("claims", "id").
					AddRow("claims", "hmo_id")
				mock.ExpectQuery("SELECT TABLE_NAME, COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS").
					WithArgs("claims_db", "claims", "hmos").
					WillReturnRows(rows)
			},
			expected: Drift{
				MissingTables:  []string{"hmos"},
				MissingColumns: map[string][]string{"claims": {"paid_at"}},
			},
		},
		{
			name: "query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT TABLE_NAME, COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS").
					WillReturnError(errors.New("access denied"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setupMock(mock)

			drift, err := CheckDrift(context.Background(), dbexec.NewStandardExecutor(db), "claims_db", smallCatalog(t))
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to query columns")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, drift)
				assert.Equal(t, len(tt.expected.MissingTables) == 0 && len(tt.expected.MissingColumns) == 0, drift.Empty())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
