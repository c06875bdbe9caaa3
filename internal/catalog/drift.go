package catalog

import (
	"context"
	"fmt"
	"sort"

	"claims-dashboard/internal/dbexec"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Drift lists catalog entries the live database does not have.
type Drift struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

// Empty reports whether the catalog matches the database.
func (d Drift) Empty() bool {
	return len(d.MissingTables) == 0 && len(d.MissingColumns) == 0
}

// ColumnCount returns the number of missing columns across all tables.
func (d Drift) ColumnCount() int {
	n := 0
	for _, cols := range d.MissingColumns {
		n += len(cols)
	}
	return n
}

// CheckDrift compares the catalog against INFORMATION_SCHEMA.COLUMNS of the
// given schema. Generated SQL is never run here; this only verifies that the
// documented tables and columns still exist.
func CheckDrift(ctx context.Context, exec dbexec.QueryExecutor, schema string, cat *Catalog) (Drift, error) {
	ctx, span := startSpan(ctx, "catalog.check_drift", attribute.String("db.name", schema))
	defer span.End()

	tables := cat.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}

	query, args, err := sq.Select("TABLE_NAME", "COLUMN_NAME").
		From("INFORMATION_SCHEMA.COLUMNS").
		Where(sq.And{sq.Eq{"TABLE_SCHEMA": schema}, sq.Eq{"TABLE_NAME": names}}).
		OrderBy("TABLE_NAME", "ORDINAL_POSITION").
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		recordSpanError(span, err)
		return Drift{}, fmt.Errorf("failed to build drift query: %w", err)
	}

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		recordSpanError(span, err)
		return Drift{}, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	live := make(map[string]map[string]struct{})
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			recordSpanError(span, err)
			return Drift{}, fmt.Errorf("failed to scan column: %w", err)
		}
		if live[table] == nil {
			live[table] = make(map[string]struct{})
		}
		live[table][column] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return Drift{}, fmt.Errorf("failed to read columns: %w", err)
	}

	drift := Drift{MissingColumns: map[string][]string{}}
	for _, t := range tables {
		cols, ok := live[t.Name]
		if !ok {
			drift.MissingTables = append(drift.MissingTables, t.Name)
			continue
		}
		for _, col := range t.Columns {
			if _, ok := cols[col]; !ok {
				drift.MissingColumns[t.Name] = append(drift.MissingColumns[t.Name], col)
			}
		}
	}
	if len(drift.MissingColumns) == 0 {
		drift.MissingColumns = nil
	}
	sort.Strings(drift.MissingTables)

	span.SetAttributes(
		attribute.Int("catalog.missing_tables", len(drift.MissingTables)),
		attribute.Int("catalog.missing_columns", drift.ColumnCount()),
	)
	return drift, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("claims-dashboard/catalog")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
