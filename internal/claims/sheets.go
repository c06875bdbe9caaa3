package claims

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"claims-dashboard/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

const sheetsScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

var tracer = otel.Tracer("claims-dashboard/claims")

// SheetsConfig locates the sheet and the service account used to read it.
type SheetsConfig struct {
	CredentialsBase64 string
	SheetID           string
	Range             string
	TokenURL          string
	APIBaseURL        string
	Timeout           time.Duration
}

// serviceAccount is the subset of a Google service account key file we need.
type serviceAccount struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// SheetsSource reads the claims range through the Sheets REST API using a
// service account JWT bearer grant.
type SheetsSource struct {
	client    *http.Client
	valuesURL string
}

// NewSheetsSource decodes the service account key and prepares an
// authenticated client. base, when non-nil, carries the transport used for
// both the token exchange and the API calls.
func NewSheetsSource(cfg SheetsConfig, base *http.Client) (*SheetsSource, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cfg.CredentialsBase64))
	if err != nil {
		return nil, fmt.Errorf("decode service account credentials: %w", err)
	}
	var sa serviceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, fmt.Errorf("service account credentials missing client_email or private_key")
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = sa.TokenURI
	}
	jwtCfg := &jwt.Config{
		Email:        sa.ClientEmail,
		PrivateKey:   []byte(sa.PrivateKey),
		PrivateKeyID: sa.PrivateKeyID,
		Scopes:       []string{sheetsScope},
		TokenURL:     tokenURL,
	}

	if base == nil {
		base = &http.Client{Timeout: cfg.Timeout}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := jwtCfg.Client(ctx)
	client.Timeout = cfg.Timeout

	valuesURL := strings.TrimRight(cfg.APIBaseURL, "/") +
		"/spreadsheets/" + url.PathEscape(cfg.SheetID) +
		"/values/" + url.PathEscape(cfg.Range)

	return &SheetsSource{client: client, valuesURL: valuesURL}, nil
}

type valueRange struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// Fetch reads the configured range and converts it to records.
func (s *SheetsSource) Fetch(ctx context.Context) (records []Record, err error) {
	ctx, span := tracer.Start(ctx, "claims.sheets.fetch")
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("claims.records", len(records)))
		span.End()
		observability.MetricsFromContext(ctx).RecordSourceFetch(ctx, "sheets", len(records), time.Since(start), err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.valuesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build sheets request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("sheets API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var vr valueRange
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("decode sheets response: %w", err)
	}

	rows := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				rows[i][j] = fmt.Sprint(v)
			}
		}
	}
	return ParseRows(rows), nil
}
