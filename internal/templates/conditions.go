package templates

import (
	"strings"

	"claims-dashboard/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

// conditions accumulates WHERE predicates in the order they are added.
type conditions []string

func (c *conditions) add(predicates ...string) {
	*c = append(*c, predicates...)
}

// hmo adds col = <id> for a concrete HMO id. Negative ids are folded to their
// absolute value; "0" and non-numeric input add nothing.
func (c *conditions) hmo(col string, f Filters) {
	v, _ := f.Get(FieldHMOID)
	if id, ok := sqlutil.NormalizeHMOID(v); ok {
		c.add(col + " = " + id)
	}
}

// number adds col = <n> when field holds a numeric value.
func (c *conditions) number(col string, f Filters, field Field) {
	v, _ := f.Get(field)
	if n, ok := sqlutil.Number(v); ok {
		c.add(col + " = " + n)
	}
}

// dateRange adds a half-open interval on col. Either bound may be missing.
func (c *conditions) dateRange(col string, f Filters) {
	if from, ok := f.text(FieldDateFrom); ok {
		c.add(col + " >= " + sqlutil.Literal(from))
	}
	if to, ok := f.text(FieldDateTo); ok {
		c.add(col + " < DATE_ADD(" + sqlutil.Literal(to) + ", INTERVAL 1 DAY)")
	}
}

// today restricts col to the current calendar day.
func (c *conditions) today(col string) {
	c.add(col+" >= CURDATE()", col+" < DATE_ADD(CURDATE(), INTERVAL 1 DAY)")
}

func (c conditions) apply(q sq.SelectBuilder) sq.SelectBuilder {
	for _, p := range c {
		q = q.Where(p)
	}
	return q
}

// col returns a function qualifying columns with the given table or alias.
func col(qualifier string) func(string) string {
	return func(name string) string {
		return sqlutil.Qualified(qualifier, name)
	}
}

func as(expr, alias string) string {
	return expr + " AS " + sqlutil.QuoteIdentifier(alias)
}

func on(table, alias, predicate string) string {
	return sqlutil.TableAs(table, alias) + " ON " + predicate
}

func eq(left, right string) string {
	return left + " = " + right
}

func fullName(c func(string) string) string {
	return "CONCAT(" + c("firstname") + ", ' ', " + c("lastname") + ")"
}

// erpPrefix returns the ERP id prefix as entered, defaulting to UG.
func erpPrefix(f Filters) string {
	if v, ok := f.text(FieldERPPrefix); ok {
		return v
	}
	return "UG"
}

// prefixPattern is a LIKE pattern matching values that start with prefix.
// Wildcards inside the prefix match themselves.
func prefixPattern(prefix string) string {
	return sqlutil.Literal(likeEscaper.Replace(prefix) + "%")
}

var likeEscaper = strings.NewReplacer("%", `\%`, "_", `\_`)
