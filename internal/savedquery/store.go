// Package savedquery persists the query builder's saved queries: a most
// recent first list, capped in length and addressed by position.
package savedquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

// DefaultMax is the number of queries kept when no limit is configured.
const DefaultMax = 50

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendYAML   = "yaml"
)

// ErrNotFound is returned for an index outside the stored list.
var ErrNotFound = errors.New("saved query not found")

var tracer = otel.Tracer("claims-dashboard/savedquery")

// Query is one saved statement. Category and Template record the template
// it came from, when any.
type Query struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	SQL      string `json:"sql" yaml:"sql"`
	Date     string `json:"date" yaml:"date"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Template string `json:"template,omitempty" yaml:"template,omitempty"`
}

// Store holds saved queries. Index 0 is the most recently saved.
type Store interface {
	List(ctx context.Context) ([]Query, error)
	Save(ctx context.Context, q Query) (Query, error)
	Get(ctx context.Context, index int) (Query, error)
	Delete(ctx context.Context, index int) error
	Close() error
}

// Open returns the store for backend. path is ignored by the memory store.
func Open(ctx context.Context, backend, path string, capacity int) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(capacity), nil
	case BackendYAML:
		return NewYAMLStore(path, capacity), nil
	case BackendSQLite:
		return OpenSQLiteStore(ctx, path, capacity)
	default:
		return nil, fmt.Errorf("unknown saved query backend %q", backend)
	}
}

var now = func() time.Time { return time.Now().UTC() }

// prepare fills in the generated fields of a query about to be saved.
func prepare(q Query) (Query, error) {
	if q.SQL == "" {
		return Query{}, errors.New("saved query has no SQL")
	}
	if q.Name == "" {
		q.Name = "Untitled query"
	}
	q.ID = uuid.NewString()
	if q.Date == "" {
		q.Date = now().Format(time.RFC3339)
	}
	return q, nil
}

// prepend puts q first and drops entries beyond capacity.
func prepend(list []Query, q Query, capacity int) []Query {
	out := make([]Query, 0, min(len(list)+1, capacity))
	out = append(out, q)
	for _, existing := range list {
		if len(out) == capacity {
			break
		}
		out = append(out, existing)
	}
	return out
}

func limit(capacity int) int {
	if capacity <= 0 {
		return DefaultMax
	}
	return capacity
}
