package sqltext

import "strings"

// DeriveCount turns a generated SELECT into a statement counting its rows.
//
// The FROM, JOIN and WHERE clauses are kept; ORDER BY and LIMIT are dropped.
// A grouped statement counts its groups (total_groups) and a SELECT DISTINCT
// counts its distinct rows, both by wrapping the original in a derived table.
// Input without a top-level FROM, such as a comment-only placeholder, yields
// ok=false rather than a made-up query.
func DeriveCount(sql string) (string, bool) {
	_, clauses := Split(trimTerminator(StripComments(sql)))

	from := -1
	for i, c := range clauses {
		if c.Keyword == "FROM" {
			from = i
			break
		}
	}
	if from < 0 || clauses[from].Body == "" {
		return "", false
	}

	var selectBody string
	for _, c := range clauses[:from] {
		if c.Keyword == "SELECT" {
			selectBody = c.Body
		}
	}

	var source, grouping []string
loop:
	for _, c := range clauses[from:] {
		switch c.Keyword {
		case "ORDER BY", "LIMIT":
			break loop
		case "GROUP BY", "HAVING":
			grouping = append(grouping, c.String())
		default:
			if len(grouping) == 0 {
				source = append(source, c.String())
			}
		}
	}
	body := strings.Join(source, " ")

	if len(grouping) > 0 {
		inner := layout("SELECT 1 " + body + " " + strings.Join(grouping, " "))
		return wrapCount("total_groups", inner, "grouped"), true
	}
	if cols, distinct := cutDistinct(selectBody); distinct {
		inner := layout("SELECT DISTINCT " + cols + " " + body)
		return wrapCount("total_rows", inner, "distinct_rows"), true
	}
	return Format("SELECT COUNT(*) AS total_rows " + body), true
}

func wrapCount(column, inner, alias string) string {
	return "SELECT COUNT(*) AS " + column + "\nFROM (\n" + indentLines(inner) + "\n) AS " + alias + ";"
}
