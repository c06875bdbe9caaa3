package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"claims-dashboard/internal/claims"
	"claims-dashboard/internal/dashboard"
	"claims-dashboard/internal/sqlgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestClaimsHandler(t *testing.T) {
	s := newTestService(t, sampleRecords())

	rr := httptest.NewRecorder()
	s.ClaimsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/claims", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 6, body["count"])
	assert.NotEmpty(t, body["updated_at"])
	assert.Equal(t, "s-maxage=300, stale-while-revalidate=600", rr.Header().Get("Cache-Control"))

	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/claims", nil)
	req.Header.Set("If-None-Match", "W/"+etag)
	rr = httptest.NewRecorder()
	s.ClaimsHandler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Empty(t, rr.Body.Bytes())
}

func TestClaimsHandlerEmptySource(t *testing.T) {
	s := newTestService(t, nil)
	s.Source = claims.Empty

	rr := httptest.NewRecorder()
	s.ClaimsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/claims", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, []any{}, body["data"])
	assert.EqualValues(t, 0, body["count"])
}

func TestClaimsHandlerSourceError(t *testing.T) {
	s := newTestService(t, nil)
	s.Source = claims.SourceFunc(func(context.Context) ([]claims.Record, error) {
		return nil, errors.New("sheet unavailable")
	})

	rr := httptest.NewRecorder()
	s.ClaimsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/claims", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "sheet unavailable", body["error"])
}

func TestETagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"abc"`, `"abc"`))
	assert.True(t, etagMatches(`W/"abc"`, `"abc"`))
	assert.True(t, etagMatches(`"x", "abc"`, `"abc"`))
	assert.True(t, etagMatches("*", `"abc"`))
	assert.False(t, etagMatches("", `"abc"`))
	assert.False(t, etagMatches(`"abd"`, `"abc"`))
}

func TestSlackHandlers(t *testing.T) {
	s := newTestService(t, nil)
	n := &fakeNotifier{channels: []string{"ops", "sales"}, fail: map[string]string{"sales": "Webhook not configured"}}
	s.Notifier = n

	rr := httptest.NewRecorder()
	s.SlackChannelsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/slack", nil))
	assert.JSONEq(t, `{"channels":["ops","sales"]}`, rr.Body.String())

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/slack", strings.NewReader(`{"channels":["ops","sales"],"message":"hi"}`))
	s.SlackPostHandler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":false,"results":[
		{"channel":"ops","success":true},
		{"channel":"sales","success":false,"error":"Webhook not configured"}]}`, rr.Body.String())
	require.Len(t, n.posted, 1)
	assert.Equal(t, "hi", n.posted[0].Text)
}

func TestSlackPostRejectsBadRequests(t *testing.T) {
	s := newTestService(t, nil)

	rr := httptest.NewRecorder()
	s.SlackPostHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/slack", strings.NewReader(`{"channels":[],"message":"hi"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgNoChannels, decode(t, rr)["error"])

	rr = httptest.NewRecorder()
	s.SlackPostHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/slack", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerateSQLHandler(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		gen    *fakeGenerator
		status int
		want   string
	}{
		{name: "ok", body: `{"prompt":"claims today"}`, gen: &fakeGenerator{sql: "SELECT 1;"}, status: http.StatusOK, want: `{"sql":"SELECT 1;","provider":"anthropic"}`},
		{name: "empty", body: `{"prompt":""}`, gen: &fakeGenerator{err: sqlgen.ErrEmptyPrompt}, status: http.StatusBadRequest, want: `{"error":"` + msgEmptyPrompt + `"}`},
		{name: "not a string", body: `{"prompt":42}`, gen: &fakeGenerator{err: sqlgen.ErrEmptyPrompt}, status: http.StatusBadRequest, want: `{"error":"` + msgEmptyPrompt + `"}`},
		{name: "too long", body: `{"prompt":"x"}`, gen: &fakeGenerator{err: sqlgen.ErrPromptTooLong}, status: http.StatusBadRequest, want: `{"error":"` + msgPromptTooLong + `"}`},
		{name: "no sql", body: `{"prompt":"x"}`, gen: &fakeGenerator{err: sqlgen.ErrNoSQL}, status: http.StatusUnprocessableEntity, want: `{"error":"` + msgNoSQL + `"}`},
		{name: "provider failure", body: `{"prompt":"x"}`, gen: &fakeGenerator{err: fmt.Errorf("anthropic completion: %w", errors.New("boom"))}, status: http.StatusInternalServerError, want: `{"error":"` + msgGenerateFailed + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, nil)
			s.Generator = tt.gen
			rr := httptest.NewRecorder()
			s.GenerateSQLHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/generate-sql", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rr.Code)
			assert.JSONEq(t, tt.want, rr.Body.String())
		})
	}
}

func TestGenerateSQLHandlerDisabled(t *testing.T) {
	s := newTestService(t, nil)
	rr := httptest.NewRecorder()
	s.GenerateSQLHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/generate-sql", strings.NewReader(`{"prompt":"x"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"error":"`+msgAIDisabled+`"}`, rr.Body.String())
}

func TestExportCSV(t *testing.T) {
	s := newTestService(t, sampleRecords())
	a := &fakeArchiver{location: "s3://exports/claims/x.csv"}
	s.Archiver = a

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/csv?start=2026-09-01&end=2026-09-02&insurer=AXA", nil)
	s.ExportHandler(dashboard.FormatCSV).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="claims_2026-09-01_to_2026-09-02.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "s3://exports/claims/x.csv", rr.Header().Get("X-Archive-Location"))
	assert.Contains(t, rr.Body.String(), `"AXA",10,20,30`)
	assert.NotContains(t, rr.Body.String(), "Jubilee")
	require.Len(t, a.bodies, 1)
	assert.Equal(t, rr.Body.Bytes(), a.bodies[0])
}

func TestExportArchiveFailureStillServes(t *testing.T) {
	s := newTestService(t, sampleRecords())
	s.Archiver = &fakeArchiver{err: errors.New("access denied")}

	rr := httptest.NewRecorder()
	s.ExportHandler(dashboard.FormatXLSX).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/export/xlsx", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("X-Archive-Location"))
	assert.Equal(t, contentTypes[dashboard.FormatXLSX], rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "PK"), "xlsx is a zip archive")
}
