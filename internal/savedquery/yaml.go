package savedquery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

// YAMLStore keeps queries in a YAML file, rewritten on every change.
type YAMLStore struct {
	mu   sync.Mutex
	path string
	max  int
}

type yamlDocument struct {
	Queries []Query `yaml:"queries"`
}

func NewYAMLStore(path string, capacity int) *YAMLStore {
	return &YAMLStore{path: path, max: limit(capacity)}
}

func (s *YAMLStore) List(ctx context.Context) ([]Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *YAMLStore) Save(ctx context.Context, q Query) (Query, error) {
	q, err := prepare(q)
	if err != nil {
		return Query{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx)
	if err != nil {
		return Query{}, err
	}
	if err := s.store(ctx, prepend(list, q, s.max)); err != nil {
		return Query{}, err
	}
	return q, nil
}

func (s *YAMLStore) Get(ctx context.Context, index int) (Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx)
	if err != nil {
		return Query{}, err
	}
	if index < 0 || index >= len(list) {
		return Query{}, ErrNotFound
	}
	return list[index], nil
}

func (s *YAMLStore) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(list) {
		return ErrNotFound
	}
	return s.store(ctx, append(list[:index:index], list[index+1:]...))
}

func (s *YAMLStore) Close() error { return nil }

// load reads the file. A missing file is an empty list.
func (s *YAMLStore) load(ctx context.Context) ([]Query, error) {
	_, span := tracer.Start(ctx, "savedquery.yaml.load")
	defer span.End()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Query{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read saved queries %q: %w", s.path, err)
	}
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse saved queries %q: %w", s.path, err)
	}
	span.SetAttributes(attribute.Int("savedquery.count", len(doc.Queries)))
	if doc.Queries == nil {
		doc.Queries = []Query{}
	}
	return doc.Queries, nil
}

// store replaces the file via a temporary file in the same directory.
func (s *YAMLStore) store(ctx context.Context, list []Query) error {
	_, span := tracer.Start(ctx, "savedquery.yaml.store")
	defer span.End()

	data, err := yaml.Marshal(yamlDocument{Queries: list})
	if err != nil {
		return fmt.Errorf("encode saved queries: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create saved query directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".saved-queries-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write saved queries: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write saved queries: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace saved queries %q: %w", s.path, err)
	}
	return nil
}
