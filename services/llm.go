package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"rephrasecoach/config"
	"rephrasecoach/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrProviderFailure wraps every transport, auth or provider error. Callers
	// do not distinguish further.
	ErrProviderFailure = errors.New("model provider failure")
	// ErrMalformedOutput means a strict-JSON answer could not be parsed.
	ErrMalformedOutput = errors.New("malformed model output")
)

// CompletionOptions tunes a single completion call.
type CompletionOptions struct {
	// JSON asks the provider for a JSON document instead of free text.
	JSON bool
}

// Completer sends one prompt to a hosted model and returns its raw text.
// Implementations make exactly one attempt.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// NewCompleter builds the backend selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg config.LLMConfig, log *logger.Logger) (Completer, error) {
	var (
		c     Completer
		model string
		err   error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c = NewOpenAIClient(cfg.OpenAI)
		model = cfg.OpenAI.Model
	case config.ProviderGemini:
		c, err = NewGeminiClient(ctx, cfg.Gemini)
		model = cfg.Gemini.Model
	case config.ProviderGeminiLegacy:
		c, err = NewLegacyGeminiClient(ctx, cfg.Gemini)
		model = cfg.Gemini.Model
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	log.Info("model client ready", "provider", cfg.Provider, "model", model)
	return &tracedCompleter{next: c, provider: cfg.Provider, model: model}, nil
}

type tracedCompleter struct {
	next     Completer
	provider string
	model    string
}

func (t *tracedCompleter) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	ctx, span := otel.Tracer("rephrasecoach/services").Start(ctx, "llm.complete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", t.provider),
		attribute.String("llm.model", t.model),
		attribute.Bool("llm.json", opts.JSON),
		attribute.Int("llm.prompt_len", len(prompt)),
	)

	text, err := t.next.Complete(ctx, prompt, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.output_len", len(text)))
	return text, nil
}

// Close releases the backend's connection, if it holds one.
func (t *tracedCompleter) Close() error {
	if c, ok := t.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func providerError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProviderFailure, fmt.Sprintf(format, args...))
}

// cleanModelOutput trims whitespace and a surrounding Markdown code fence.
func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
