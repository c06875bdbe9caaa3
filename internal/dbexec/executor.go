// Package dbexec runs the few statements the server itself issues against
// the claims warehouse. Report SQL is generated for users and never runs here.
package dbexec

import (
	"context"
	"database/sql"
	"time"
)

// Rows abstracts sql.Rows so executors can attach cleanup to Close.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// QueryExecutor runs read queries.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

// StandardExecutor queries a database handle, bounding each query by an
// optional timeout.
type StandardExecutor struct {
	db      *sql.DB
	timeout time.Duration
}

// NewStandardExecutor returns an executor without a per-query timeout.
func NewStandardExecutor(db *sql.DB) *StandardExecutor {
	return &StandardExecutor{db: db}
}

// WithTimeout returns a copy whose queries are cancelled after d, counted
// until the returned rows are closed.
func (e *StandardExecutor) WithTimeout(d time.Duration) *StandardExecutor {
	c := *e
	c.timeout = d
	return &c
}

func (e *StandardExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	if e.timeout <= 0 {
		return e.db.QueryContext(ctx, query, args...)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelRows{Rows: rows, cancel: cancel}, nil
}

// cancelRows releases the query context once the rows are closed.
type cancelRows struct {
	*sql.Rows
	cancel context.CancelFunc
}

func (r *cancelRows) Close() error {
	defer r.cancel()
	return r.Rows.Close()
}
