package builder

import (
	"fmt"
	"strings"

	"claims-dashboard/internal/catalog"
)

const (
	defaultBase    = "claims"
	defaultLimit   = "1000"
	preferredOrder = "created_at"
)

// Builder holds one editing session. It is not safe for concurrent use;
// callers keep one Builder per session or restore one per request.
type Builder struct {
	cat   *catalog.Catalog
	state State
}

// New returns a builder on the claims table with only its id selected.
func New(cat *catalog.Catalog) *Builder {
	b := &Builder{cat: cat}
	b.state.OrderDirection = Descending
	b.state.Limit = defaultLimit
	if err := b.SetBaseTable(defaultBase); err != nil {
		panic("builder: default base table missing from catalog")
	}
	return b
}

// Restore rebuilds a builder from a client supplied state by replaying it
// through the transitions. Join predicates are taken from the catalog, never
// from the input.
func Restore(cat *catalog.Catalog, s State) (*Builder, error) {
	b := New(cat)
	if err := b.SetBaseTable(s.BaseTable); err != nil {
		return nil, err
	}
	for _, j := range s.Joins {
		if err := b.AddJoin(j.Table); err != nil {
			return nil, err
		}
	}

	b.state.Columns = nil
	for _, c := range s.Columns {
		ref, err := b.resolve(c)
		if err != nil {
			return nil, err
		}
		if b.selected(ref) >= 0 {
			return nil, fmt.Errorf("column %q listed twice", c)
		}
		b.state.Columns = append(b.state.Columns, ref)
	}

	for i, w := range s.Wheres {
		b.AddWhere()
		for _, u := range []struct {
			field WhereField
			value string
		}{{WhereColumn, w.Column}, {WhereOperator, w.Operator}, {WhereValue, w.Value}} {
			if err := b.UpdateWhere(i, u.field, u.value); err != nil {
				return nil, err
			}
		}
	}

	if err := b.SetDateRange(s.DateColumn, s.DateFrom, s.DateTo); err != nil {
		return nil, err
	}
	if err := b.SetOrder(s.OrderColumn, s.OrderDirection); err != nil {
		return nil, err
	}
	b.SetLimit(s.Limit)
	return b, nil
}

// Snapshot returns a copy of the current state.
func (b *Builder) Snapshot() State {
	return b.state.Clone()
}

// SQL renders the current state.
func (b *Builder) SQL() string {
	return Render(b.state)
}

// AvailableJoins lists the authored joins from the current base table.
func (b *Builder) AvailableJoins() []catalog.JoinEdge {
	return b.cat.JoinsFrom(b.state.BaseTable)
}

// SetBaseTable switches the base table and resets everything that refers to
// the previous one. Order direction and limit are kept.
func (b *Builder) SetBaseTable(table string) error {
	t, ok := b.cat.Table(table)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	s := &b.state
	s.BaseTable = t.Name
	s.BaseAlias = t.Alias
	s.Columns = []string{t.Alias + ".id"}
	s.Joins = nil
	s.Wheres = nil
	s.DateFrom, s.DateTo = "", ""
	s.DateColumn = ""
	if dates := b.cat.DateColumns(t.Name); len(dates) > 0 {
		s.DateColumn = dates[0]
	}
	s.OrderColumn = ""
	if t.HasColumn(preferredOrder) {
		s.DateColumn = preferredOrder
		s.OrderColumn = t.Alias + "." + preferredOrder
	}
	return nil
}

// ToggleColumn selects or deselects a column. Bare names refer to the base
// table; re-adding a column places it last.
func (b *Builder) ToggleColumn(column string) error {
	ref, err := b.resolve(column)
	if err != nil {
		return err
	}
	if i := b.selected(ref); i >= 0 {
		b.state.Columns = append(b.state.Columns[:i], b.state.Columns[i+1:]...)
		return nil
	}
	b.state.Columns = append(b.state.Columns, ref)
	return nil
}

// SelectAll selects every base table column, replacing the selection.
func (b *Builder) SelectAll() {
	t, _ := b.cat.Table(b.state.BaseTable)
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = t.Alias + "." + c
	}
	b.state.Columns = cols
}

// ResetColumns selects only the base table id.
func (b *Builder) ResetColumns() {
	b.state.Columns = []string{b.state.BaseAlias + ".id"}
}

// AddJoin left-joins table using the authored edge from the base table.
// Joining an already joined table does nothing. Without an edge the state is
// left unchanged and ErrJoinUnavailable is returned.
func (b *Builder) AddJoin(table string) error {
	t, ok := b.cat.Table(table)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	if b.state.Joined(table) {
		return nil
	}
	edge, ok := b.cat.Join(b.state.BaseTable, table)
	if !ok {
		return fmt.Errorf("%w: no join from %s to %s", ErrJoinUnavailable, b.state.BaseTable, table)
	}
	b.state.Joins = append(b.state.Joins, Join{Table: t.Name, Alias: t.Alias, Type: leftJoin, On: edge.On})
	return nil
}

// RemoveJoin drops a join together with every selected column, where row and
// order column that refer to the joined table.
func (b *Builder) RemoveJoin(table string) {
	i := b.state.join(table)
	if i < 0 {
		return
	}
	alias := b.state.Joins[i].Alias
	b.state.Joins = append(b.state.Joins[:i], b.state.Joins[i+1:]...)

	cols := b.state.Columns[:0]
	for _, c := range b.state.Columns {
		if !usesAlias(c, alias) {
			cols = append(cols, c)
		}
	}
	b.state.Columns = cols

	wheres := b.state.Wheres[:0]
	for _, w := range b.state.Wheres {
		if !usesAlias(w.Column, alias) {
			wheres = append(wheres, w)
		}
	}
	b.state.Wheres = wheres

	if usesAlias(b.state.OrderColumn, alias) {
		b.state.OrderColumn = ""
	}
}

// AddWhere appends an empty condition on the base id.
func (b *Builder) AddWhere() {
	b.state.Wheres = append(b.state.Wheres, Where{Column: b.state.BaseAlias + ".id", Operator: "="})
}

// UpdateWhere changes one part of the condition at index i.
func (b *Builder) UpdateWhere(i int, field WhereField, value string) error {
	if i < 0 || i >= len(b.state.Wheres) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	w := &b.state.Wheres[i]
	switch field {
	case WhereColumn:
		ref, err := b.resolve(value)
		if err != nil {
			return err
		}
		w.Column = ref
	case WhereOperator:
		op := strings.ToUpper(strings.TrimSpace(value))
		if !validOperator(op) {
			return fmt.Errorf("%w: %q", ErrUnknownOperator, value)
		}
		w.Operator = op
	case WhereValue:
		w.Value = value
	default:
		return fmt.Errorf("unknown where field %q", field)
	}
	return nil
}

// RemoveWhere deletes the condition at index i.
func (b *Builder) RemoveWhere(i int) error {
	if i < 0 || i >= len(b.state.Wheres) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	b.state.Wheres = append(b.state.Wheres[:i], b.state.Wheres[i+1:]...)
	return nil
}

// SetDateRange filters the base table on a date column. An empty column keeps
// the current one; empty bounds are not rendered. Bounds on a table without a
// date column are rejected and leave the state unchanged.
func (b *Builder) SetDateRange(column, from, to string) error {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if column == "" {
		column = b.state.DateColumn
		if column == "" && (from != "" || to != "") {
			return fmt.Errorf("%w: %s has no date column", ErrUnknownColumn, b.state.BaseTable)
		}
	} else if !b.isDateColumn(column) {
		return fmt.Errorf("%w: %q is not a date column of %s", ErrUnknownColumn, column, b.state.BaseTable)
	}
	b.state.DateColumn = column
	b.state.DateFrom = from
	b.state.DateTo = to
	return nil
}

// SetOrder sets the order column and direction. An empty column removes the
// ORDER BY; an empty direction keeps the current one.
func (b *Builder) SetOrder(column, direction string) error {
	if direction != "" {
		d := strings.ToUpper(strings.TrimSpace(direction))
		if d != Ascending && d != Descending {
			return fmt.Errorf("%w: %q", ErrInvalidOrder, direction)
		}
		b.state.OrderDirection = d
	}
	if column == "" {
		b.state.OrderColumn = ""
		return nil
	}
	ref, err := b.resolve(column)
	if err != nil {
		return err
	}
	b.state.OrderColumn = ref
	return nil
}

// SetLimit stores the limit text as typed. Render ignores values that are not
// positive integers.
func (b *Builder) SetLimit(limit string) {
	b.state.Limit = strings.TrimSpace(limit)
}

// resolve turns a column reference into "alias.column", checking that the
// alias is the base table or a joined table and that the column exists.
func (b *Builder) resolve(ref string) (string, error) {
	alias, column := splitRef(strings.TrimSpace(ref))
	if alias == "" {
		alias = b.state.BaseAlias
	}

	var table string
	if alias == b.state.BaseAlias {
		table = b.state.BaseTable
	} else {
		for _, j := range b.state.Joins {
			if j.Alias == alias {
				table = j.Table
			}
		}
	}
	if table == "" {
		return "", fmt.Errorf("%w: %q is not the base table or a joined table", ErrUnknownColumn, ref)
	}
	if !b.cat.HasColumn(table, column) {
		return "", fmt.Errorf("%w: %s has no column %q", ErrUnknownColumn, table, column)
	}
	return alias + "." + column, nil
}

func (b *Builder) selected(ref string) int {
	for i, c := range b.state.Columns {
		if c == ref {
			return i
		}
	}
	return -1
}

func (b *Builder) isDateColumn(column string) bool {
	for _, c := range b.cat.DateColumns(b.state.BaseTable) {
		if c == column {
			return true
		}
	}
	return false
}
