// Package templates is the registry of named, parameterized report queries.
//
// Each template turns a set of filters and an optional row limit into SQL
// text. Templates are pure: the same input always yields the same text.
package templates

import (
	"errors"
	"fmt"

	"claims-dashboard/internal/catalog"
	"claims-dashboard/internal/sqltext"

	sq "github.com/Masterminds/squirrel"
)

// ErrUnknownTemplate is returned when a template key is not registered.
var ErrUnknownTemplate = errors.New("unknown template")

// Category groups templates for display.
type Category struct {
	Key         string
	Name        string
	Description string
}

// Template is a named report query.
type Template struct {
	Key         string
	Name        string
	Description string
	Category    string
	// Heavy marks queries over multi-million row joins.
	Heavy bool
	// Aggregate templates return summary rows and never take a LIMIT.
	Aggregate bool
	Accepts   []Field
	// BaseTable is the table date_field values are checked against.
	BaseTable        string
	DefaultDateField string
	// Note is emitted as a leading SQL comment.
	Note string

	build       func(f Filters, dateField string) sq.SelectBuilder
	dateColumns map[string]struct{}
}

// AcceptsField reports whether the template reads field.
func (t Template) AcceptsField(field Field) bool {
	for _, a := range t.Accepts {
		if a == field || (a == FieldDateRange && (field == FieldDateFrom || field == FieldDateTo)) {
			return true
		}
	}
	return false
}

// Build renders the template. A positive limit adds a LIMIT clause unless the
// template is an aggregate.
func (t Template) Build(f Filters, limit *int) string {
	if t.build == nil {
		return "-- template " + t.Key + " has no query"
	}

	q := t.build(f, t.dateField(f))
	if !t.Aggregate && limit != nil && *limit > 0 {
		q = q.Limit(uint64(*limit))
	}

	query, _, err := q.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return fmt.Sprintf("-- unable to render %s: %v", t.Key, err)
	}
	if t.Note != "" {
		query = "-- " + t.Note + "\n" + query
	}
	return sqltext.Format(query)
}

func (t Template) dateField(f Filters) string {
	if !t.AcceptsField(FieldDateField) {
		return t.DefaultDateField
	}
	v, ok := f.text(FieldDateField)
	if !ok {
		return t.DefaultDateField
	}
	if t.dateColumns != nil {
		if _, known := t.dateColumns[v]; !known {
			return t.DefaultDateField
		}
	}
	return v
}

// Registry is an immutable set of templates.
type Registry struct {
	categories []Category
	templates  []Template
	byKey      map[string]int
}

// NewRegistry validates templates against the catalog and returns a registry.
// Template order within a category is registration order.
func NewRegistry(cat *catalog.Catalog, categories []Category, templates ...Template) (*Registry, error) {
	r := &Registry{
		categories: append([]Category(nil), categories...),
		byKey:      make(map[string]int, len(templates)),
	}
	known := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		known[c.Key] = struct{}{}
	}

	for _, t := range templates {
		if t.Key == "" {
			return nil, errors.New("template key is required")
		}
		if _, dup := r.byKey[t.Key]; dup {
			return nil, fmt.Errorf("template %q registered twice", t.Key)
		}
		if _, ok := known[t.Category]; !ok {
			return nil, fmt.Errorf("template %q: unknown category %q", t.Key, t.Category)
		}
		if t.BaseTable != "" {
			if _, ok := cat.Table(t.BaseTable); !ok {
				return nil, fmt.Errorf("template %q: unknown base table %q", t.Key, t.BaseTable)
			}
			t.dateColumns = make(map[string]struct{})
			for _, col := range cat.DateColumns(t.BaseTable) {
				t.dateColumns[col] = struct{}{}
			}
			if t.DefaultDateField != "" {
				if _, ok := t.dateColumns[t.DefaultDateField]; !ok {
					return nil, fmt.Errorf("template %q: %q is not a date column of %q", t.Key, t.DefaultDateField, t.BaseTable)
				}
			}
		}
		t.Accepts = append([]Field(nil), t.Accepts...)
		r.byKey[t.Key] = len(r.templates)
		r.templates = append(r.templates, t)
	}
	return r, nil
}

// Lookup returns the template registered under key.
func (r *Registry) Lookup(key string) (Template, error) {
	i, ok := r.byKey[key]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, key)
	}
	return r.templates[i], nil
}

// Render looks up key and builds it.
func (r *Registry) Render(key string, f Filters, limit *int) (string, error) {
	t, err := r.Lookup(key)
	if err != nil {
		return "", err
	}
	return t.Build(f, limit), nil
}

// Categories returns categories in display order.
func (r *Registry) Categories() []Category {
	return append([]Category(nil), r.categories...)
}

// Templates returns every template in registration order.
func (r *Registry) Templates() []Template {
	return append([]Template(nil), r.templates...)
}

// InCategory returns the templates of one category.
func (r *Registry) InCategory(key string) []Template {
	var out []Template
	for _, t := range r.templates {
		if t.Category == key {
			out = append(out, t)
		}
	}
	return out
}
