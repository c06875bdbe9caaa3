package sqltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	sql := "SELECT a, b FROM `t` `x` LEFT JOIN `u` `y` ON `x`.`id` = `y`.`x_id` " +
		"WHERE a = 'FROM here' AND (b OR c) GROUP BY a ORDER BY b DESC LIMIT 10"

	lead, clauses := Split(sql)

	assert.Empty(t, lead)
	assert.Equal(t, []Clause{
		{Keyword: "SELECT", Body: "a, b"},
		{Keyword: "FROM", Body: "`t` `x`"},
		{Keyword: "LEFT JOIN", Body: "`u` `y` ON `x`.`id` = `y`.`x_id`"},
		{Keyword: "WHERE", Body: "a = 'FROM here' AND (b OR c)"},
		{Keyword: "GROUP BY", Body: "a"},
		{Keyword: "ORDER BY", Body: "b DESC"},
		{Keyword: "LIMIT", Body: "10"},
	}, clauses)
}

func TestSplitIgnoresNestedAndQuotedKeywords(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		keywords []string
	}{
		{
			name:     "subquery",
			sql:      "SELECT a FROM t WHERE id IN (SELECT id FROM u WHERE x = 1)",
			keywords: []string{"SELECT", "FROM", "WHERE"},
		},
		{
			name:     "backtick identifier",
			sql:      "SELECT `from`, `order by` FROM t",
			keywords: []string{"SELECT", "FROM"},
		},
		{
			name:     "escaped quote in literal",
			sql:      "SELECT a FROM t WHERE n = 'O''Brien FROM x'",
			keywords: []string{"SELECT", "FROM", "WHERE"},
		},
		{
			name:     "identifier prefix",
			sql:      "SELECT from_date, limit_amount FROM t",
			keywords: []string{"SELECT", "FROM"},
		},
		{
			name:     "line comment",
			sql:      "-- FROM nowhere\nSELECT a FROM t",
			keywords: []string{"SELECT", "FROM"},
		},
		{
			name:     "block comment",
			sql:      "SELECT a /* WHERE */ FROM t",
			keywords: []string{"SELECT", "FROM"},
		},
		{
			name:     "multi-word keyword across newline",
			sql:      "select a from t\norder\n  by a",
			keywords: []string{"SELECT", "FROM", "ORDER BY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, clauses := Split(tt.sql)
			var got []string
			for _, c := range clauses {
				got = append(got, c.Keyword)
			}
			assert.Equal(t, tt.keywords, got)
		})
	}
}

func TestSplitWithoutKeywords(t *testing.T) {
	lead, clauses := Split("  -- Select a query template  ")
	assert.Equal(t, "-- Select a query template", lead)
	assert.Empty(t, clauses)
}

func TestStripComments(t *testing.T) {
	in := "-- header\nSELECT a, -- trailing\n  b /* inline */ FROM t WHERE c = '-- kept'"
	assert.Equal(t, "\nSELECT a, \n  b  FROM t WHERE c = '-- kept'", StripComments(in))
}

func TestSplitTopLevel(t *testing.T) {
	assert.Equal(t,
		[]string{"CONCAT(a, ' ', b) AS n", "'x,y'", "c"},
		splitTopLevel("CONCAT(a, ' ', b) AS n, 'x,y', c", ","))
	assert.Equal(t,
		[]string{"a = 1", "b IN (1, 2)", "c = 'x AND y'", "brand = 2"},
		splitTopLevel("a = 1 AND b IN (1, 2) and c = 'x AND y' AND brand = 2", "AND"))
	assert.Equal(t,
		[]string{"x IS NULL OR y <> 2"},
		splitTopLevel("x IS NULL OR y <> 2", "AND"))
}
