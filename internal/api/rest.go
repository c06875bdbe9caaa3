package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"claims-dashboard/internal/claims"
	"claims-dashboard/internal/dashboard"
	"claims-dashboard/internal/logging"
	"claims-dashboard/internal/notify"
	"claims-dashboard/internal/observability"
	"claims-dashboard/internal/sqlgen"
)

const (
	claimsCacheControl = "s-maxage=300, stale-while-revalidate=600"
	maxRequestBody     = 1 << 20

	msgNoChannels     = "No channels selected"
	msgEmptyPrompt    = "Missing or empty 'prompt' field"
	msgPromptTooLong  = "Prompt too long (max 2000 characters)"
	msgNoSQL          = "No SQL generated. Try being more specific."
	msgGenerateFailed = "Failed to generate SQL. Please try again."
	msgAIDisabled     = "AI SQL generation is not configured"
)

var contentTypes = map[string]string{
	dashboard.FormatCSV:  "text/csv; charset=utf-8",
	dashboard.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type claimsResponse struct {
	Success   bool            `json:"success"`
	Data      []claims.Record `json:"data"`
	Count     int             `json:"count"`
	UpdatedAt string          `json:"updated_at"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	return dec.Decode(v)
}

// ClaimsHandler serves the claims snapshot with an ETag so unchanged data
// answers 304.
func (s *Service) ClaimsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		records, err := s.Source.Fetch(ctx)
		if err != nil {
			logging.FromContext(ctx).Error("claims fetch failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if records == nil {
			records = []claims.Record{}
		}

		etag, err := claims.ETag(records)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", claimsCacheControl)
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		writeJSON(w, http.StatusOK, claimsResponse{
			Success:   true,
			Data:      records,
			Count:     len(records),
			UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

type slackRequest struct {
	Channels []string        `json:"channels"`
	Message  string          `json:"message"`
	Blocks   json.RawMessage `json:"blocks,omitempty"`
}

type slackResponse struct {
	Success bool            `json:"success"`
	Results []notify.Result `json:"results"`
}

// SlackChannelsHandler lists the channels that have a webhook.
func (s *Service) SlackChannelsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"channels": s.Notifier.Channels()})
	})
}

// SlackPostHandler delivers a message to the requested channels and
// reports each channel's outcome.
func (s *Service) SlackPostHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req slackRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		results, err := s.Notifier.Post(r.Context(), req.Channels, notify.Message{Text: req.Message, Blocks: req.Blocks})
		if errors.Is(err, notify.ErrNoChannels) {
			writeError(w, http.StatusBadRequest, msgNoChannels)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, slackResponse{Success: notify.AllDelivered(results), Results: results})
	})
}

type generateResponse struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
}

// generateStatus maps a generation error to its HTTP status and message.
func generateStatus(err error) (int, string) {
	switch {
	case errors.Is(err, sqlgen.ErrEmptyPrompt):
		return http.StatusBadRequest, msgEmptyPrompt
	case errors.Is(err, sqlgen.ErrPromptTooLong):
		return http.StatusBadRequest, msgPromptTooLong
	case errors.Is(err, sqlgen.ErrNoSQL):
		return http.StatusUnprocessableEntity, msgNoSQL
	default:
		return http.StatusInternalServerError, msgGenerateFailed
	}
}

// GenerateSQLHandler answers {prompt} with {sql, provider}.
func (s *Service) GenerateSQLHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Generator == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": msgAIDisabled})
			return
		}
		var req struct {
			Prompt any `json:"prompt"`
		}
		if err := decodeBody(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgEmptyPrompt})
			return
		}
		prompt, _ := req.Prompt.(string)

		sql, err := s.Generator.Generate(r.Context(), prompt)
		if err != nil {
			status, msg := generateStatus(err)
			if status >= http.StatusInternalServerError {
				logging.FromContext(r.Context()).Error("generate-sql failed", "error", err)
			}
			writeJSON(w, status, map[string]string{"error": msg})
			return
		}
		writeJSON(w, http.StatusOK, generateResponse{SQL: sql, Provider: s.Generator.Provider()})
	})
}

// ExportHandler streams the pivot for the requested range as CSV or XLSX.
// Query parameters: start, end, and repeated insurer; missing values fall
// back to the default dashboard filter. When an archiver is configured the
// export is also uploaded and its location returned in X-Archive-Location.
func (s *Service) ExportHandler(format string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		records, err := s.Source.Fetch(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		f := filterFromQuery(r, records)
		pivot := dashboard.BuildPivot(f.Apply(records), f.SelectedInsurers())

		var buf bytes.Buffer
		switch format {
		case dashboard.FormatCSV:
			err = dashboard.WriteCSV(&buf, pivot)
		case dashboard.FormatXLSX:
			err = dashboard.WriteXLSX(&buf, pivot)
		default:
			writeError(w, http.StatusNotFound, "unknown export format")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		archived := false
		if s.Archiver != nil {
			location, err := s.Archiver.Archive(ctx, format, f.Start, f.End, buf.Bytes())
			if err != nil {
				logging.FromContext(ctx).Warn("export archive failed", "format", format, "error", err)
			} else {
				archived = true
				w.Header().Set("X-Archive-Location", location)
			}
		}
		observability.MetricsFromContext(ctx).RecordExport(ctx, format, archived)

		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("Content-Disposition", `attachment; filename="`+dashboard.ExportFilename(f.Start, f.End, format)+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	})
}

func filterFromQuery(r *http.Request, records []claims.Record) dashboard.Filter {
	q := r.URL.Query()
	f := dashboard.DefaultFilter(records)
	if v := q.Get("start"); v != "" {
		f.Start = v
	}
	if v := q.Get("end"); v != "" {
		f.End = v
	}
	if insurers := q["insurer"]; len(insurers) > 0 {
		f = dashboard.NewFilter(f.Start, f.End, insurers)
	}
	return f
}
