// Package agent implements the chat and search agents and the registry that
// caches one instance of each.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/cache"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/llm"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
)

// Variant identifies an agent implementation. The set is closed.
type Variant int

const (
	Chat Variant = iota
	Search
)

// Variants lists every variant in a stable order.
var Variants = []Variant{Search, Chat}

func (v Variant) String() string {
	switch v {
	case Chat:
		return "chat"
	case Search:
		return "search"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// VariantFromToken maps a request's agent type token to a variant.
// "search" selects Search; every other token, including "", selects Chat.
func VariantFromToken(token string) Variant {
	if token == "search" {
		return Search
	}
	return Chat
}

// Errors returned by agent construction.
var (
	ErrNoProvider     = errors.New("no LLM provider available")
	ErrUnknownVariant = errors.New("unknown agent variant")
)

// ExecutionResult is the outcome of one agent execution. It is not mutated
// after Execute returns.
type ExecutionResult struct {
	Success  bool           `json:"success"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Error    string         `json:"error,omitempty"`
}

// Agent is a pluggable backend that answers prompts.
type Agent interface {
	// Execute runs the agent on a prompt. Provider failures are reported in
	// the result; a non-nil error means the execution itself could not run.
	Execute(ctx context.Context, prompt string, useTools bool) (ExecutionResult, error)

	// Capabilities returns the ordered capability tags of this instance.
	Capabilities() []string
}

// Config is the shared agent configuration, built once at startup and
// read-only afterwards.
type Config struct {
	LLM         *llm.Registry
	Provider    string
	Fallbacks   []string
	MaxTokens   int
	Temperature *float64
	Search      config.SearchConfig
	Cache       cache.Cache
	Log         *logging.Logger
}

// NewConfig assembles the shared agent configuration.
func NewConfig(cfg config.AgentsConfig, reg *llm.Registry, c cache.Cache, log *logging.Logger) Config {
	if c == nil {
		c = cache.Nop{}
	}
	return Config{
		LLM:         reg,
		Provider:    cfg.Provider,
		Fallbacks:   cfg.Fallbacks,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Search:      cfg.Search,
		Cache:       c,
		Log:         log,
	}
}

// Factory constructs an agent of the given variant. It must not perform
// network I/O.
type Factory func(v Variant, cfg Config) (Agent, error)

// New is the default Factory.
func New(v Variant, cfg Config) (Agent, error) {
	switch v {
	case Chat:
		a, err := NewChatAgent(cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	case Search:
		a, err := NewSearchAgent(cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
}
