package savedquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

const (
	sqliteDriver = "sqlite"
	tableName    = "saved_queries"
)

const createTable = `CREATE TABLE IF NOT EXISTS saved_queries (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	id       TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL,
	sql_text TEXT NOT NULL,
	saved_at TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	template TEXT NOT NULL DEFAULT ''
)`

var queryColumns = []string{"id", "name", "sql_text", "saved_at", "category", "template"}

// SQLiteStore keeps queries in a SQLite table ordered by insertion.
type SQLiteStore struct {
	db  *sql.DB
	max int
}

// OpenSQLiteStore opens (creating when needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string, capacity int) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite saved query store needs a path")
	}
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open saved query database: %w", err)
	}
	// One connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping saved query database: %w", err)
	}
	store, err := NewSQLiteStore(ctx, db, capacity)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore uses an open database, creating the table when missing.
func NewSQLiteStore(ctx context.Context, db *sql.DB, capacity int) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("failed to create saved query table: %w", err)
	}
	return &SQLiteStore{db: db, max: limit(capacity)}, nil
}

func (s *SQLiteStore) List(ctx context.Context) (out []Query, err error) {
	ctx, span := tracer.Start(ctx, "savedquery.sqlite.list")
	defer endSpan(span, &err)

	query, args, err := sq.Select(queryColumns...).From(tableName).OrderBy("seq DESC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list saved queries: %w", err)
	}
	defer rows.Close()

	out = []Query{}
	for rows.Next() {
		var q Query
		if err := rows.Scan(&q.ID, &q.Name, &q.SQL, &q.Date, &q.Category, &q.Template); err != nil {
			return nil, fmt.Errorf("scan saved query: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, q Query) (_ Query, err error) {
	ctx, span := tracer.Start(ctx, "savedquery.sqlite.save")
	defer endSpan(span, &err)

	q, err = prepare(q)
	if err != nil {
		return Query{}, err
	}
	insert, insertArgs, err := sq.Insert(tableName).
		Columns(queryColumns...).
		Values(q.ID, q.Name, q.SQL, q.Date, q.Category, q.Template).
		ToSql()
	if err != nil {
		return Query{}, err
	}
	trim, trimArgs, err := sq.Delete(tableName).
		Where(sq.Expr("seq NOT IN (SELECT seq FROM "+tableName+" ORDER BY seq DESC LIMIT ?)", s.max)).
		ToSql()
	if err != nil {
		return Query{}, err
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
			return fmt.Errorf("insert saved query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, trim, trimArgs...); err != nil {
			return fmt.Errorf("trim saved queries: %w", err)
		}
		return nil
	})
	if err != nil {
		return Query{}, err
	}
	return q, nil
}

func (s *SQLiteStore) Get(ctx context.Context, index int) (q Query, err error) {
	ctx, span := tracer.Start(ctx, "savedquery.sqlite.get")
	defer endSpan(span, &err)

	if index < 0 {
		return Query{}, ErrNotFound
	}
	query, args, err := sq.Select(queryColumns...).From(tableName).
		OrderBy("seq DESC").Limit(1).Offset(uint64(index)).
		ToSql()
	if err != nil {
		return Query{}, err
	}
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&q.ID, &q.Name, &q.SQL, &q.Date, &q.Category, &q.Template)
	if errors.Is(err, sql.ErrNoRows) {
		return Query{}, ErrNotFound
	}
	if err != nil {
		return Query{}, fmt.Errorf("get saved query: %w", err)
	}
	return q, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, index int) (err error) {
	ctx, span := tracer.Start(ctx, "savedquery.sqlite.delete")
	defer endSpan(span, &err)

	if index < 0 {
		return ErrNotFound
	}
	find, findArgs, err := sq.Select("seq").From(tableName).
		OrderBy("seq DESC").Limit(1).Offset(uint64(index)).
		ToSql()
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var seq int64
		err := tx.QueryRowContext(ctx, find, findArgs...).Scan(&seq)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("find saved query: %w", err)
		}
		del, delArgs, err := sq.Delete(tableName).Where(sq.Eq{"seq": seq}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
			return fmt.Errorf("delete saved query: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func endSpan(span trace.Span, err *error) {
	if *err != nil && !errors.Is(*err, ErrNotFound) {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
