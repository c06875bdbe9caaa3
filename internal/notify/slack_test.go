package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedPost struct {
	contentType string
	body        map[string]any
}

func webhookServer(t *testing.T, status int, reply string) (*httptest.Server, func() []capturedPost) {
	t.Helper()
	var (
		mu    sync.Mutex
		posts []capturedPost
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		posts = append(posts, capturedPost{contentType: r.Header.Get("Content-Type"), body: body})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedPost {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedPost(nil), posts...)
	}
}

func TestChannelsListsConfiguredOnly(t *testing.T) {
	n := NewSlackNotifier(map[string]string{
		"#health-ops":       "https://hooks.example/a",
		"#customer-success": "",
		"#finance":          "https://hooks.example/b",
	}, nil, time.Second, nil)

	assert.Equal(t, []string{"#finance", "#health-ops"}, n.Channels())
}

func TestPostDelivers(t *testing.T) {
	srv, posts := webhookServer(t, http.StatusOK, "ok")
	n := NewSlackNotifier(map[string]string{"#health-ops": srv.URL}, srv.Client(), time.Second, nil)

	results, err := n.Post(context.Background(), []string{"#health-ops"}, Message{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, []Result{{Channel: "#health-ops", Success: true}}, results)
	assert.True(t, AllDelivered(results))

	got := posts()
	require.Len(t, got, 1)
	assert.Equal(t, "application/json", got[0].contentType)
	assert.Equal(t, map[string]any{"text": "hello"}, got[0].body)
}

func TestPostPassesBlocks(t *testing.T) {
	srv, posts := webhookServer(t, http.StatusOK, "ok")
	n := NewSlackNotifier(map[string]string{"#health-ops": srv.URL}, srv.Client(), time.Second, nil)

	blocks := json.RawMessage(`[{"type":"section","text":{"type":"mrkdwn","text":"hi"}}]`)
	_, err := n.Post(context.Background(), []string{"#health-ops"}, Message{Text: "hi", Blocks: blocks})
	require.NoError(t, err)

	got := posts()
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].body["text"])
	assert.Len(t, got[0].body["blocks"], 1)
}

func TestPostReportsFailures(t *testing.T) {
	bad, _ := webhookServer(t, http.StatusForbidden, "invalid_token\n")
	good, _ := webhookServer(t, http.StatusOK, "ok")
	n := NewSlackNotifier(map[string]string{
		"#bad":  bad.URL,
		"#good": good.URL,
	}, nil, time.Second, nil)

	results, err := n.Post(context.Background(), []string{"#bad", "#missing", "#good"}, Message{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, []Result{
		{Channel: "#bad", Error: "invalid_token"},
		{Channel: "#missing", Error: "Webhook not configured"},
		{Channel: "#good", Success: true},
	}, results)
	assert.False(t, AllDelivered(results))
}

func TestPostUnreachableWebhook(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	tests := []struct {
		name    string
		webhook string
	}{
		{"connection refused", base + "/services/T000/B000/SECRETTOKEN"},
		{"malformed url", "http://[::1/services/T000/B000/SECRETTOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewSlackNotifier(map[string]string{"#ops": tt.webhook}, nil, time.Second, nil)
			results, err := n.Post(context.Background(), []string{"#ops"}, Message{Text: "x"})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.False(t, results[0].Success)
			assert.True(t, strings.HasPrefix(results[0].Error, "delivery failed"), results[0].Error)
			assert.NotContains(t, results[0].Error, "SECRETTOKEN")
			assert.NotContains(t, results[0].Error, "/services/")
		})
	}
}

func TestPostRequiresChannels(t *testing.T) {
	n := NewSlackNotifier(nil, nil, time.Second, nil)
	_, err := n.Post(context.Background(), nil, Message{Text: "x"})
	assert.ErrorIs(t, err, ErrNoChannels)
}
