package sqltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "strips order by and limit",
			input: "SELECT\n  `c`.`id`,\n  `c`.`hmo_id`\nFROM `claims` `c`\nWHERE `c`.`hmo_id` = 73\n" +
				"ORDER BY `c`.`created_at` DESC\nLIMIT 1000;",
			expected: "SELECT COUNT(*) AS total_rows\nFROM `claims` `c`\nWHERE `c`.`hmo_id` = 73;",
		},
		{
			name:     "keeps joins and every condition",
			input:    "SELECT `c`.`id` FROM `claims` `c` LEFT JOIN `providers` `p` ON `c`.`provider_id` = `p`.`id` WHERE `p`.`name` LIKE '%a%' AND `c`.`hmo_id` = 4 LIMIT 10",
			expected: "SELECT COUNT(*) AS total_rows\nFROM `claims` `c`\nLEFT JOIN `providers` `p` ON `c`.`provider_id` = `p`.`id`\nWHERE\n  `p`.`name` LIKE '%a%'\n  AND `c`.`hmo_id` = 4;",
		},
		{
			name: "grouped statement counts groups",
			input: "SELECT `h`.`name` AS `hmo_name`, COUNT(DISTINCT `pt`.`id`) AS `n` FROM `provider_tariffs` `pt` " +
				"JOIN `hmos` `h` ON `pt`.`hmo_id` = `h`.`id` WHERE `pt`.`care_id` IS NULL GROUP BY h.id ORDER BY `n` DESC;",
			expected: "SELECT COUNT(*) AS total_groups\nFROM (\n" +
				"  SELECT 1\n" +
				"  FROM `provider_tariffs` `pt`\n" +
				"  JOIN `hmos` `h` ON `pt`.`hmo_id` = `h`.`id`\n" +
				"  WHERE `pt`.`care_id` IS NULL\n" +
				"  GROUP BY h.id\n" +
				") AS grouped;",
		},
		{
			name:     "distinct counts distinct rows",
			input:    "SELECT DISTINCT `hmo_status` FROM `claims` ORDER BY `hmo_status`;",
			expected: "SELECT COUNT(*) AS total_rows\nFROM (\n  SELECT DISTINCT `hmo_status`\n  FROM `claims`\n) AS distinct_rows;",
		},
		{
			name:     "comments are dropped, quoted dashes are not",
			input:    "-- Aggregate\nSELECT COUNT(*) AS n FROM `claims` WHERE x = '--not a comment'",
			expected: "SELECT COUNT(*) AS total_rows\nFROM `claims`\nWHERE x = '--not a comment';",
		},
		{
			name:     "keywords inside literals are ignored",
			input:    "SELECT a FROM t WHERE note = 'ORDER BY x LIMIT 5' ORDER BY a LIMIT 3",
			expected: "SELECT COUNT(*) AS total_rows\nFROM t\nWHERE note = 'ORDER BY x LIMIT 5';",
		},
		{
			name:     "subquery clauses are kept",
			input:    "SELECT a FROM t WHERE id IN (SELECT id FROM u ORDER BY id LIMIT 5) LIMIT 1",
			expected: "SELECT COUNT(*) AS total_rows\nFROM t\nWHERE id IN (SELECT id FROM u ORDER BY id LIMIT 5);",
		},
		{
			name:     "lower case input",
			input:    "select a from t where b = 1 order by a",
			expected: "SELECT COUNT(*) AS total_rows\nFROM t\nWHERE b = 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeriveCount(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDeriveCountTrailingClausesAreGone(t *testing.T) {
	got, ok := DeriveCount("SELECT `c`.`id` FROM `claims` `c`\nWHERE `c`.`hmo_status` = 1\nORDER BY `c`.`id` DESC\nLIMIT 1000;")
	require.True(t, ok)
	assert.Contains(t, got, "WHERE `c`.`hmo_status` = 1")
	assert.NotContains(t, got, "ORDER BY")
	assert.NotContains(t, got, "LIMIT")
	assert.NotContains(t, got, "DESC")
}

func TestDeriveCountUnavailable(t *testing.T) {
	inputs := []string{
		"",
		"-- Select a query template",
		"-- Pick a table and columns to build your query\n-- Your SQL will appear here as you make selections",
		"SELECT 1",
		"SELECT a FROM",
	}
	for _, in := range inputs {
		got, ok := DeriveCount(in)
		assert.False(t, ok, "input %q", in)
		assert.Empty(t, got)
	}
}
