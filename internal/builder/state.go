// Package builder implements the custom query builder: an editable state of
// base table, joins, columns and conditions that renders to SQL text.
package builder

import (
	"errors"
	"strings"
)

var (
	ErrUnknownTable    = errors.New("unknown table")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrJoinUnavailable = errors.New("join unavailable")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrIndexOutOfRange = errors.New("condition index out of range")
	ErrInvalidOrder    = errors.New("invalid order direction")
)

// Operators lists the comparison operators a where row may use, in display order.
var Operators = []string{"=", "!=", ">", ">=", "<", "<=", "LIKE", "IS NULL", "IS NOT NULL", "IN"}

const (
	Ascending  = "ASC"
	Descending = "DESC"

	leftJoin = "LEFT JOIN"
)

// Join is a table joined to the base table.
type Join struct {
	Table string
	Alias string
	Type  string
	On    string
}

// Where is one editable condition row.
type Where struct {
	Column   string
	Operator string
	Value    string
}

// WhereField names the part of a where row UpdateWhere changes.
type WhereField string

const (
	WhereColumn   WhereField = "column"
	WhereOperator WhereField = "operator"
	WhereValue    WhereField = "value"
)

// State is everything Render needs. Columns, where columns and the order
// column are "alias.column" references.
type State struct {
	BaseTable      string
	BaseAlias      string
	Columns        []string
	Joins          []Join
	Wheres         []Where
	DateColumn     string
	DateFrom       string
	DateTo         string
	OrderColumn    string
	OrderDirection string
	Limit          string
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Columns = append([]string(nil), s.Columns...)
	out.Joins = append([]Join(nil), s.Joins...)
	out.Wheres = append([]Where(nil), s.Wheres...)
	return out
}

// Joined reports whether table is joined.
func (s State) Joined(table string) bool {
	return s.join(table) >= 0
}

func (s State) join(table string) int {
	for i, j := range s.Joins {
		if j.Table == table {
			return i
		}
	}
	return -1
}

func validOperator(op string) bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// splitRef splits "alias.column". A bare column has no alias.
func splitRef(ref string) (alias, column string) {
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return "", ref
}

func usesAlias(ref, alias string) bool {
	a, _ := splitRef(ref)
	return a == alias
}
