package claims

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentials(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	raw, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"client_email":   "dashboard@project.iam.gserviceaccount.com",
		"private_key":    string(keyPEM),
		"private_key_id": "kid-1",
	})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

type fakeSheets struct {
	*httptest.Server
	status int
	body   string
	tokens int
}

func newFakeSheets(t *testing.T) *fakeSheets {
	t.Helper()
	f := &fakeSheets{status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokens++
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.PostForm.Get("grant_type"))
		assert.NotEmpty(t, r.PostForm.Get("assertion"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"sheet-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v4/spreadsheets/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sheet-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/v4/spreadsheets/sheet-1/values/Raw Data!A:D", r.URL.Path)
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeSheets) source(t *testing.T) *SheetsSource {
	t.Helper()
	src, err := NewSheetsSource(SheetsConfig{
		CredentialsBase64: testCredentials(t),
		SheetID:           "sheet-1",
		Range:             "Raw Data!A:D",
		TokenURL:          f.URL + "/token",
		APIBaseURL:        f.URL + "/v4",
	}, f.Client())
	require.NoError(t, err)
	return src
}

func TestSheetsSourceFetch(t *testing.T) {
	f := newFakeSheets(t)
	f.body = `{"range":"'Raw Data'!A1:D3","majorDimension":"ROWS","values":[
		["unique_key","date","insurer","claims_count"],
		["k1","2026-01-02","Avon","12"],
		["k2","2026-01-02","Leadway",4]
	]}`

	src := f.source(t)
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{UniqueKey: "k1", Date: "2026-01-02", Insurer: "Avon", ClaimsCount: 12},
		{UniqueKey: "k2", Date: "2026-01-02", Insurer: "Leadway", ClaimsCount: 4},
	}, records)

	_, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.tokens)
}

func TestSheetsSourceEmptySheet(t *testing.T) {
	f := newFakeSheets(t)
	f.body = `{"range":"'Raw Data'!A1:D1"}`

	records, err := f.source(t).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSheetsSourceAPIError(t *testing.T) {
	f := newFakeSheets(t)
	f.status = http.StatusForbidden
	f.body = `{"error":{"message":"The caller does not have permission"}}`

	_, err := f.source(t).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets API returned 403")
	assert.Contains(t, err.Error(), "does not have permission")
}

func TestNewSheetsSourceBadCredentials(t *testing.T) {
	_, err := NewSheetsSource(SheetsConfig{CredentialsBase64: "%%%"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode service account credentials")

	_, err = NewSheetsSource(SheetsConfig{CredentialsBase64: base64.StdEncoding.EncodeToString([]byte("{}"))}, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing client_email"))
}
