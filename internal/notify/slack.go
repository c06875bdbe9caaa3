// Package notify delivers dashboard reports to Slack incoming webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"sort"
	"strings"
	"time"

	"claims-dashboard/internal/logging"
	"claims-dashboard/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNoChannels is returned when a post names no channels.
var ErrNoChannels = errors.New("no channels selected")

const errWebhookNotConfigured = "Webhook not configured"

var tracer = otel.Tracer("claims-dashboard/notify")

// Message is the payload sent to each channel. Blocks, when set, is passed
// through to Slack as Block Kit JSON and Text becomes the fallback.
type Message struct {
	Text   string          `json:"text"`
	Blocks json.RawMessage `json:"blocks,omitempty"`
}

// Result is the delivery outcome for one channel.
type Result struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SlackNotifier posts messages to a fixed set of channel webhooks.
type SlackNotifier struct {
	webhooks map[string]string
	client   *http.Client
	logger   *logging.Logger
}

// NewSlackNotifier keeps the channels that have a webhook URL. A nil client
// gets one with the given timeout.
func NewSlackNotifier(webhooks map[string]string, client *http.Client, timeout time.Duration, logger *logging.Logger) *SlackNotifier {
	configured := make(map[string]string, len(webhooks))
	for channel, url := range webhooks {
		if strings.TrimSpace(url) != "" {
			configured[channel] = url
		}
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &SlackNotifier{webhooks: configured, client: client, logger: logger}
}

// Channels lists the configured channels in sorted order.
func (n *SlackNotifier) Channels() []string {
	out := make([]string, 0, len(n.webhooks))
	for channel := range n.webhooks {
		out = append(out, channel)
	}
	sort.Strings(out)
	return out
}

// Post sends msg to each channel in order and reports every outcome.
// Delivery failures are recorded per channel rather than returned.
func (n *SlackNotifier) Post(ctx context.Context, channels []string, msg Message) ([]Result, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode slack payload: %w", err)
	}

	results := make([]Result, 0, len(channels))
	for _, channel := range channels {
		results = append(results, n.deliver(ctx, channel, payload))
	}
	return results, nil
}

// AllDelivered reports whether every result succeeded.
func AllDelivered(results []Result) bool {
	for _, r := range results {
		if !r.Success {
			return false
		}
	}
	return true
}

func (n *SlackNotifier) deliver(ctx context.Context, channel string, payload []byte) (res Result) {
	ctx, span := tracer.Start(ctx, "notify.slack.post")
	span.SetAttributes(attribute.String("slack.channel", channel))
	defer func() {
		if !res.Success {
			span.SetStatus(codes.Error, res.Error)
			n.logger.Warn("slack delivery failed", "channel", channel, "error", res.Error)
		}
		span.End()
		observability.MetricsFromContext(ctx).RecordSlackDelivery(ctx, channel, res.Success)
	}()

	res.Channel = channel
	url, ok := n.webhooks[channel]
	if !ok {
		res.Error = errWebhookNotConfigured
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		res.Error = deliveryError(err)
		return res
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		res.Error = deliveryError(err)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		res.Error = strings.TrimSpace(string(body))
		if res.Error == "" {
			res.Error = resp.Status
		}
		return res
	}
	res.Success = true
	return res
}

// deliveryError describes a failed request without the webhook URL, which
// carries the webhook secret.
func deliveryError(err error) string {
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		return "delivery failed: " + urlErr.Err.Error()
	}
	return "delivery failed"
}
