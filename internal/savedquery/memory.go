package savedquery

import (
	"context"
	"sync"
)

// MemoryStore keeps queries for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	queries []Query
	max     int
}

func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{max: limit(capacity)}
}

func (s *MemoryStore) List(context.Context) ([]Query, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Query{}, s.queries...), nil
}

func (s *MemoryStore) Save(_ context.Context, q Query) (Query, error) {
	q, err := prepare(q)
	if err != nil {
		return Query{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = prepend(s.queries, q, s.max)
	return q, nil
}

func (s *MemoryStore) Get(_ context.Context, index int) (Query, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.queries) {
		return Query{}, ErrNotFound
	}
	return s.queries[index], nil
}

func (s *MemoryStore) Delete(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.queries) {
		return ErrNotFound
	}
	s.queries = append(s.queries[:index:index], s.queries[index+1:]...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
