package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/llm"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
)

// FailoverClient wraps an LLM registry to try fallback providers on failure.
type FailoverClient struct {
	registry  *llm.Registry
	primary   string
	fallbacks []string
	log       *logging.Logger
}

// NewFailoverClient creates a client that tries the primary model first,
// then falls back through the list on retryable errors (401, 429, 5xx).
func NewFailoverClient(registry *llm.Registry, primary string, fallbacks []string, log *logging.Logger) *FailoverClient {
	return &FailoverClient{
		registry:  registry,
		primary:   primary,
		fallbacks: fallbacks,
		log:       log.Sub("failover"),
	}
}

// Name returns the primary model reference.
func (f *FailoverClient) Name() string { return f.primary }

// Available reports whether at least one model in the chain resolves to a provider.
func (f *FailoverClient) Available() bool {
	for _, model := range f.chain() {
		if _, err := f.registry.Resolve(model); err == nil {
			return true
		}
	}
	return false
}

func (f *FailoverClient) chain() []string {
	return append([]string{f.primary}, f.fallbacks...)
}

// Complete tries the primary provider, falling back on retryable errors.
// A provider reached through more than one model reference is tried once.
func (f *FailoverClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	tried := make(map[string]bool)

	var lastErr error
	for _, model := range f.chain() {
		client, err := f.registry.Resolve(model)
		if err != nil {
			f.log.Debug().Str("model", model).Err(err).Msg("no provider for model, skipping")
			lastErr = err
			continue
		}
		if tried[client.Name()] {
			continue
		}
		tried[client.Name()] = true

		req.Model = model
		resp, err := client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if isRetryable(err) {
			f.log.Warn().
				Str("model", model).
				Err(err).
				Msg("retryable error, trying next provider")
			continue
		}

		// Non-retryable: stop here.
		return nil, err
	}

	if lastErr == nil {
		lastErr = ErrNoProvider
	}
	return nil, lastErr
}

// isRetryable checks if the error suggests trying another provider.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case 401, 403, 429, 500, 502, 503, 504, 529:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "capacity") ||
		strings.Contains(msg, "timeout")
}
