// Package api exposes the claims dashboard and query tools over GraphQL and
// a small set of JSON endpoints.
package api

import (
	"context"
	"sync/atomic"
	"time"

	"claims-dashboard/internal/catalog"
	"claims-dashboard/internal/claims"
	"claims-dashboard/internal/notify"
	"claims-dashboard/internal/savedquery"
	"claims-dashboard/internal/templates"
)

// Notifier posts messages to chat channels.
type Notifier interface {
	Channels() []string
	Post(ctx context.Context, channels []string, msg notify.Message) ([]notify.Result, error)
}

// Generator turns a natural-language prompt into SQL.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// Archiver stores a copy of an export and returns where it went.
type Archiver interface {
	Archive(ctx context.Context, format, start, end string, body []byte) (string, error)
}

// DriftReport is the outcome of the startup schema check.
type DriftReport struct {
	Checked   bool
	Drift     catalog.Drift
	Error     string
	CheckedAt time.Time
}

// Service holds the collaborators behind every endpoint. Generator and
// Archiver may be nil when the feature is not configured.
type Service struct {
	Catalog   *catalog.Catalog
	Templates *templates.Registry
	Source    claims.Source
	Notifier  Notifier
	Generator Generator
	Saved     savedquery.Store
	Archiver  Archiver

	drift atomic.Pointer[DriftReport]
}

// SetDrift records the latest schema drift result.
func (s *Service) SetDrift(r DriftReport) {
	s.drift.Store(&r)
}

// Drift returns the latest schema drift result. Checked is false until a
// database check has run.
func (s *Service) Drift() DriftReport {
	if r := s.drift.Load(); r != nil {
		return *r
	}
	return DriftReport{}
}
