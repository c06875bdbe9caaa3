package sqlgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"claims-dashboard/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply  string
	err    error
	prompt string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, _, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		"SELECT 1":                        "SELECT 1",
		"```sql\nSELECT 1\n```":           "SELECT 1",
		"```SQL\nSELECT 1;\n```":          "SELECT 1;",
		"```\nSELECT 1\n```":              "SELECT 1",
		"  \n```sql\nSELECT 1\n```  \n":   "SELECT 1",
		"```sql\n```":                     "",
		"SELECT '```' AS fence FROM dual": "SELECT '```' AS fence FROM dual",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripFences(in), "input %q", in)
	}
}

func TestGenerateValidatesPrompt(t *testing.T) {
	g := NewGenerator(&stubProvider{reply: "SELECT 1"}, catalog.Default(), nil)

	_, err := g.Generate(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = g.Generate(context.Background(), strings.Repeat("a", MaxPromptLength+1))
	assert.ErrorIs(t, err, ErrPromptTooLong)

	_, err = g.Generate(context.Background(), strings.Repeat("é", MaxPromptLength))
	assert.NoError(t, err)
}

func TestGenerateTrimsPromptAndStripsFences(t *testing.T) {
	stub := &stubProvider{reply: "```sql\nSELECT * FROM `claims`\n```"}
	g := NewGenerator(stub, catalog.Default(), nil)

	sql, err := g.Generate(context.Background(), "  all claims  ")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `claims`", sql)
	assert.Equal(t, "all claims", stub.prompt)
	assert.Equal(t, "stub", g.Provider())
}

func TestGenerateEmptyReply(t *testing.T) {
	g := NewGenerator(&stubProvider{reply: "```sql\n```"}, catalog.Default(), nil)
	_, err := g.Generate(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoSQL)
}

func TestGenerateProviderError(t *testing.T) {
	upstream := errors.New("boom")
	g := NewGenerator(&stubProvider{err: upstream}, catalog.Default(), nil)
	_, err := g.Generate(context.Background(), "anything")
	assert.ErrorIs(t, err, upstream)
}

func TestSystemPromptDescribesCatalog(t *testing.T) {
	p := SystemPrompt(catalog.Default())

	assert.Contains(t, p, "1. claims AS c (5.3M rows) - Claims")
	assert.Contains(t, p, "- claims → providers: `c`.`provider_id` = `p`.`id`")
	assert.Contains(t, p, "- hmo_status: -1=Rejected, 0=Pending, 1=Approved")
	assert.Contains(t, p, "- 73: UAP Old Mutual (Uganda)")
	assert.Contains(t, p, "HMO FILTERING RULES:")
	assert.True(t, strings.HasSuffix(p, "no backtick fences."))
}

func TestAnthropicClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req anthropicRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "model-x", req.Model)
		assert.Equal(t, 2000, req.MaxTokens)
		assert.Equal(t, "sys", req.System)
		assert.Equal(t, []anthropicMessage{{Role: "user", Content: "q"}}, req.Messages)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"SELECT"},{"type":"tool_use"},{"type":"text","text":"1"}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{
		Provider:        "anthropic",
		AnthropicAPIKey: "key-1",
		AnthropicModel:  "model-x",
		AnthropicURL:    srv.URL + "/v1/messages",
		MaxTokens:       2000,
	}, srv.Client())
	require.NoError(t, err)

	got, err := p.Complete(context.Background(), "sys", "q")
	require.NoError(t, err)
	assert.Equal(t, "SELECT\n1", got)
}

func TestAnthropicClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewProvider(Config{AnthropicAPIKey: "k", AnthropicURL: srv.URL}, nil)
	require.NoError(t, err)
	_, err = p.Complete(context.Background(), "sys", "q")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "overloaded", statusErr.Body)

	noKey, err := NewProvider(Config{Provider: "anthropic"}, nil)
	require.NoError(t, err)
	_, err = noKey.Complete(context.Background(), "sys", "q")
	assert.ErrorContains(t, err, "API key not set")
}

func TestOpenAIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-1", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-x", req.Model)
		assert.Equal(t, []chatMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "q"}}, req.Messages)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"SELECT 2"}}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{
		Provider:     "OpenAI",
		OpenAIAPIKey: "sk-1",
		OpenAIModel:  "gpt-x",
		OpenAIURL:    srv.URL,
		Timeout:      time.Second,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	got, err := p.Complete(context.Background(), "sys", "q")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", got)
}

func TestOpenAIClientNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{Provider: "openai", OpenAIAPIKey: "k", OpenAIURL: srv.URL}, nil)
	require.NoError(t, err)
	got, err := p.Complete(context.Background(), "sys", "q")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(Config{Provider: "gemini"}, nil)
	assert.ErrorContains(t, err, `unknown AI provider "gemini"`)
}
