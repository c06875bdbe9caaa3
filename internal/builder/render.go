package builder

import (
	"strconv"

	"claims-dashboard/internal/sqltext"
	"claims-dashboard/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

// Render produces the SQL for s. It does not modify s and the same state
// always renders the same text.
func Render(s State) string {
	cols := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		cols = append(cols, qualify(s, c))
	}
	if len(cols) == 0 {
		cols = append(cols, sqlutil.QualifiedStar(s.BaseAlias))
	}

	q := sq.Select(cols...).From(sqlutil.TableAs(s.BaseTable, s.BaseAlias))
	for _, j := range s.Joins {
		q = q.JoinClause(j.Type + " " + sqlutil.TableAs(j.Table, j.Alias) + " ON " + j.On)
	}
	for _, w := range s.Wheres {
		if p, ok := predicate(s, w); ok {
			q = q.Where(p)
		}
	}
	if s.DateColumn != "" {
		date := sqlutil.Qualified(s.BaseAlias, s.DateColumn)
		if s.DateFrom != "" {
			q = q.Where(date + " >= " + sqlutil.Literal(s.DateFrom))
		}
		if s.DateTo != "" {
			q = q.Where(date + " < DATE_ADD(" + sqlutil.Literal(s.DateTo) + ", INTERVAL 1 DAY)")
		}
	}
	if s.OrderColumn != "" {
		dir := s.OrderDirection
		if dir != Ascending {
			dir = Descending
		}
		q = q.OrderBy(qualify(s, s.OrderColumn) + " " + dir)
	}
	if n, err := strconv.Atoi(s.Limit); err == nil && n > 0 {
		q = q.Limit(uint64(n))
	}

	query, _, err := q.ToSql()
	if err != nil {
		return "-- unable to render query: " + err.Error()
	}
	return sqltext.Format(query)
}

// predicate renders one where row. Rows that still lack a value are skipped.
func predicate(s State, w Where) (string, bool) {
	col := qualify(s, w.Column)
	switch w.Operator {
	case "IS NULL", "IS NOT NULL":
		return col + " " + w.Operator, true
	}
	if w.Value == "" {
		return "", false
	}
	switch w.Operator {
	case "IN":
		return col + " IN (" + w.Value + ")", true
	case "":
		return col + " = " + sqlutil.Literal(w.Value), true
	default:
		return col + " " + w.Operator + " " + sqlutil.Literal(w.Value), true
	}
}

func qualify(s State, ref string) string {
	alias, column := splitRef(ref)
	if alias == "" {
		alias = s.BaseAlias
	}
	return sqlutil.Qualified(alias, column)
}
