package sqltext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:  "aggregate with conditions",
			input: "SELECT COUNT(DISTINCT `claims`.`id`) AS `claim_count` FROM `claims` WHERE `claims`.`hmo_id` = 73 AND `claims`.`submitted_at` >= '2026-01-01'",
			expected: "SELECT COUNT(DISTINCT `claims`.`id`) AS `claim_count`\n" +
				"FROM `claims`\n" +
				"WHERE\n" +
				"  `claims`.`hmo_id` = 73\n" +
				"  AND `claims`.`submitted_at` >= '2026-01-01';",
		},
		{
			name:  "select list and joins",
			input: "SELECT `c`.`id`, CONCAT(`e`.`firstname`, ' ', `e`.`lastname`) AS `enrollee_name` FROM `claims` `c` JOIN `enrollees` `e` ON `c`.`enrollee_id` = `e`.`id` ORDER BY `c`.`created_at` DESC LIMIT 1000;",
			expected: "SELECT\n" +
				"  `c`.`id`,\n" +
				"  CONCAT(`e`.`firstname`, ' ', `e`.`lastname`) AS `enrollee_name`\n" +
				"FROM `claims` `c`\n" +
				"JOIN `enrollees` `e` ON `c`.`enrollee_id` = `e`.`id`\n" +
				"ORDER BY `c`.`created_at` DESC\n" +
				"LIMIT 1000;",
		},
		{
			name:     "distinct",
			input:    "SELECT DISTINCT `hmo_status` FROM `claims` ORDER BY `hmo_status`",
			expected: "SELECT DISTINCT `hmo_status`\nFROM `claims`\nORDER BY `hmo_status`;",
		},
		{
			name:     "leading comment",
			input:    "-- note\nSELECT a FROM t",
			expected: "-- note\nSELECT a\nFROM t;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.input))
		})
	}
}

func TestFormatOnlyChangesWhitespace(t *testing.T) {
	inputs := []string{
		"SELECT a, b FROM t LEFT JOIN u ON t.id = u.t_id WHERE a = 'x  y' AND b > 2 GROUP BY a HAVING COUNT(*) > 1 AND MAX(b) < 3 ORDER BY a LIMIT 5;",
		"SELECT `id`, `name` FROM `cares` WHERE `cve_version` IS NULL OR `cve_version` <> 2 ORDER BY `name`;",
	}
	for _, in := range inputs {
		out := Format(in)
		assert.Equal(t, strings.Fields(in), strings.Fields(out))
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	in := "SELECT a, b FROM t WHERE a = 1 AND b = 2 ORDER BY a LIMIT 5"
	once := Format(in)
	assert.Equal(t, once, Format(once))
}
