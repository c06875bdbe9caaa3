// Package sqlgen turns natural-language questions into MySQL queries using a
// hosted language model primed with the claims schema.
package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"claims-dashboard/internal/catalog"
	"claims-dashboard/internal/logging"
	"claims-dashboard/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MaxPromptLength is the longest accepted prompt, in characters.
const MaxPromptLength = 2000

var (
	ErrEmptyPrompt   = errors.New("missing or empty prompt")
	ErrPromptTooLong = fmt.Errorf("prompt too long (max %d characters)", MaxPromptLength)
	ErrNoSQL         = errors.New("no SQL generated")
)

var tracer = otel.Tracer("claims-dashboard/sqlgen")

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:sql)?[ \t]*\n?")
	trailingFence = regexp.MustCompile("\n?```$")
)

// Provider completes a single-turn conversation.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config selects and configures the model provider.
type Config struct {
	Provider        string
	AnthropicAPIKey string
	AnthropicModel  string
	AnthropicURL    string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIURL       string
	Timeout         time.Duration
	MaxTokens       int
}

// NewProvider builds the provider named by cfg.Provider. A nil client gets
// one with cfg.Timeout.
func NewProvider(cfg Config, client *http.Client) (Provider, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderAnthropic:
		return &AnthropicClient{
			apiKey:    cfg.AnthropicAPIKey,
			model:     cfg.AnthropicModel,
			url:       cfg.AnthropicURL,
			maxTokens: cfg.MaxTokens,
			client:    client,
		}, nil
	case ProviderOpenAI:
		return &OpenAIClient{
			apiKey:    cfg.OpenAIAPIKey,
			model:     cfg.OpenAIModel,
			url:       cfg.OpenAIURL,
			maxTokens: cfg.MaxTokens,
			client:    client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// Generator validates prompts and extracts SQL from model replies.
type Generator struct {
	provider Provider
	system   string
	logger   *logging.Logger
}

// NewGenerator primes provider with the schema in cat.
func NewGenerator(provider Provider, cat *catalog.Catalog, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Generator{provider: provider, system: SystemPrompt(cat), logger: logger}
}

// Provider returns the name of the backing provider.
func (g *Generator) Provider() string {
	return g.provider.Name()
}

// Generate asks the model for a query answering prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (sql string, err error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return "", ErrPromptTooLong
	}

	ctx, span := tracer.Start(ctx, "sqlgen.generate")
	span.SetAttributes(attribute.String("ai.provider", g.provider.Name()))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		observability.MetricsFromContext(ctx).RecordGeneration(ctx, g.provider.Name(), time.Since(start), err)
	}()

	reply, err := g.provider.Complete(ctx, g.system, prompt)
	if err != nil {
		g.logger.Error("sql generation failed", "provider", g.provider.Name(), "error", err)
		return "", fmt.Errorf("%s completion: %w", g.provider.Name(), err)
	}
	sql = StripFences(reply)
	if sql == "" {
		return "", ErrNoSQL
	}
	return sql, nil
}

// StripFences removes a surrounding Markdown code fence, with or without a
// sql language tag, and trims whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
