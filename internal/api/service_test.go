package api

import (
	"context"
	"testing"

	"claims-dashboard/internal/catalog"
	"claims-dashboard/internal/claims"
	"claims-dashboard/internal/notify"
	"claims-dashboard/internal/savedquery"
	"claims-dashboard/internal/templates"

	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	channels []string
	posted   []notify.Message
	fail     map[string]string
}

func (f *fakeNotifier) Channels() []string { return f.channels }

func (f *fakeNotifier) Post(_ context.Context, channels []string, msg notify.Message) ([]notify.Result, error) {
	if len(channels) == 0 {
		return nil, notify.ErrNoChannels
	}
	f.posted = append(f.posted, msg)
	results := make([]notify.Result, len(channels))
	for i, ch := range channels {
		results[i] = notify.Result{Channel: ch, Success: f.fail[ch] == "", Error: f.fail[ch]}
	}
	return results, nil
}

type fakeGenerator struct {
	sql    string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.sql, f.err
}

func (f *fakeGenerator) Provider() string { return "anthropic" }

type fakeArchiver struct {
	location string
	err      error
	bodies   [][]byte
}

func (f *fakeArchiver) Archive(_ context.Context, format, start, end string, body []byte) (string, error) {
	f.bodies = append(f.bodies, body)
	return f.location, f.err
}

func rec(date, insurer string, count int) claims.Record {
	return claims.Record{UniqueKey: date + "_" + insurer, Date: date, Insurer: insurer, ClaimsCount: count}
}

func sampleRecords() []claims.Record {
	return []claims.Record{
		rec("2026-09-01", "AXA", 10),
		rec("2026-09-01", "Jubilee", 5),
		rec("2026-09-02", "AXA", 20),
		rec("2026-09-02", "Jubilee", 15),
		rec("2026-10-01", "AXA", 30),
		rec("2026-10-02", "Jubilee", 40),
	}
}

func staticSource(records []claims.Record) claims.Source {
	return claims.SourceFunc(func(context.Context) ([]claims.Record, error) {
		return records, nil
	})
}

func newTestService(t *testing.T, records []claims.Record) *Service {
	t.Helper()
	cat := catalog.Default()
	reg, err := templates.Builtin(cat)
	require.NoError(t, err)
	return &Service{
		Catalog:   cat,
		Templates: reg,
		Source:    staticSource(records),
		Notifier:  &fakeNotifier{channels: []string{"ops", "sales"}},
		Saved:     savedquery.NewMemoryStore(savedquery.DefaultMax),
	}
}
