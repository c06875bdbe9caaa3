// Package sqlutil is the single place where values are turned into SQL text.
//
// Every identifier or literal that ends up inside a generated statement goes
// through one of these helpers, so the escaping rules can be checked in one
// spot.
package sqlutil

import "strings"

// QuoteIdentifier quotes a SQL identifier (table name, column name, alias)
// with backticks and doubles any backticks inside it.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Qualified renders an alias-qualified column, e.g. `c`.`hmo_id`.
func Qualified(alias, column string) string {
	return QuoteIdentifier(alias) + "." + QuoteIdentifier(column)
}

// QualifiedStar renders `alias`.*.
func QualifiedStar(alias string) string {
	return QuoteIdentifier(alias) + ".*"
}

// TableAs renders a table reference with its alias: `claims` `c`.
func TableAs(table, alias string) string {
	if alias == "" {
		return QuoteIdentifier(table)
	}
	return QuoteIdentifier(table) + " " + QuoteIdentifier(alias)
}

// EscapeLiteral doubles every single quote so the result is safe inside a
// '...' literal. No other characters are touched.
func EscapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Literal wraps s in single quotes after escaping it.
func Literal(s string) string {
	return "'" + EscapeLiteral(s) + "'"
}
