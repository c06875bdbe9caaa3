// Package catalog describes the claims warehouse schema that generated SQL targets:
// tables, their aliases and columns, and the join edges the builder may follow.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// TableDescriptor describes one table of the claims schema.
type TableDescriptor struct {
	Name    string
	Alias   string
	Label   string
	Size    string // approximate row count, display only
	Columns []string
}

// HasColumn reports whether the table declares column.
func (t TableDescriptor) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// JoinEdge is a directed, authored join from one table to another.
// On is already alias-qualified.
type JoinEdge struct {
	From  string
	To    string
	On    string
	Label string
}

// Catalog is an immutable table and join lookup.
type Catalog struct {
	tables  []TableDescriptor
	byName  map[string]int
	byAlias map[string]int
	joins   map[string][]JoinEdge
}

var aliasRefPattern = regexp.MustCompile("`([^`]+)`\\.")

// New validates tables and joins and returns a catalog.
// Table order is kept as display order; join order is kept per source table.
func New(tables []TableDescriptor, joins []JoinEdge) (*Catalog, error) {
	c := &Catalog{
		byName:  make(map[string]int, len(tables)),
		byAlias: make(map[string]int, len(tables)),
		joins:   make(map[string][]JoinEdge),
	}

	for _, t := range tables {
		if t.Name == "" || t.Alias == "" {
			return nil, fmt.Errorf("table %q: name and alias are required", t.Name)
		}
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("table %q declared twice", t.Name)
		}
		if other, dup := c.byAlias[t.Alias]; dup {
			return nil, fmt.Errorf("alias %q used by both %q and %q", t.Alias, c.tables[other].Name, t.Name)
		}
		seen := make(map[string]struct{}, len(t.Columns))
		for _, col := range t.Columns {
			if _, dup := seen[col]; dup {
				return nil, fmt.Errorf("table %q: duplicate column %q", t.Name, col)
			}
			seen[col] = struct{}{}
		}
		t.Columns = append([]string(nil), t.Columns...)
		c.byName[t.Name] = len(c.tables)
		c.byAlias[t.Alias] = len(c.tables)
		c.tables = append(c.tables, t)
	}

	for _, j := range joins {
		from, ok := c.Table(j.From)
		if !ok {
			return nil, fmt.Errorf("join %s -> %s: unknown source table", j.From, j.To)
		}
		to, ok := c.Table(j.To)
		if !ok {
			return nil, fmt.Errorf("join %s -> %s: unknown target table", j.From, j.To)
		}
		if _, dup := c.Join(j.From, j.To); dup {
			return nil, fmt.Errorf("join %s -> %s declared twice", j.From, j.To)
		}
		for _, m := range aliasRefPattern.FindAllStringSubmatch(j.On, -1) {
			if m[1] != from.Alias && m[1] != to.Alias {
				return nil, fmt.Errorf("join %s -> %s: predicate references alias %q", j.From, j.To, m[1])
			}
		}
		c.joins[j.From] = append(c.joins[j.From], j)
	}

	return c, nil
}

// Table looks up a table by name.
func (c *Catalog) Table(name string) (TableDescriptor, bool) {
	i, ok := c.byName[name]
	if !ok {
		return TableDescriptor{}, false
	}
	return c.copyTable(i), true
}

// TableByAlias looks up a table by its alias.
func (c *Catalog) TableByAlias(alias string) (TableDescriptor, bool) {
	i, ok := c.byAlias[alias]
	if !ok {
		return TableDescriptor{}, false
	}
	return c.copyTable(i), true
}

// Tables returns all tables in display order.
func (c *Catalog) Tables() []TableDescriptor {
	out := make([]TableDescriptor, len(c.tables))
	for i := range c.tables {
		out[i] = c.copyTable(i)
	}
	return out
}

// Join returns the authored edge from -> to. A missing edge means the join is
// unavailable; it is not an error.
func (c *Catalog) Join(from, to string) (JoinEdge, bool) {
	for _, j := range c.joins[from] {
		if j.To == to {
			return j, true
		}
	}
	return JoinEdge{}, false
}

// JoinsFrom returns the edges leaving a table in authored order.
func (c *Catalog) JoinsFrom(from string) []JoinEdge {
	return append([]JoinEdge(nil), c.joins[from]...)
}

// HasColumn reports whether table declares column.
func (c *Catalog) HasColumn(table, column string) bool {
	t, ok := c.Table(table)
	return ok && t.HasColumn(column)
}

// DateColumns returns the columns of a table that hold dates or timestamps.
func (c *Catalog) DateColumns(table string) []string {
	t, ok := c.Table(table)
	if !ok {
		return nil
	}
	var out []string
	for _, col := range t.Columns {
		if strings.Contains(col, "_at") || strings.Contains(col, "date") {
			out = append(out, col)
		}
	}
	return out
}

func (c *Catalog) copyTable(i int) TableDescriptor {
	t := c.tables[i]
	t.Columns = append([]string(nil), t.Columns...)
	return t
}
