package llm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
)

// ProviderError is returned when an LLM provider fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP status code (401, 429, 500, etc.)
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Registry manages LLM provider clients and resolves model references to clients.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client // provider name → client
	aliases  map[string]string // model alias → provider name
	fallback string            // default provider name
	images   ImageGenerator
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		aliases: make(map[string]string),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Info().Str("provider", name).Msg("registered LLM provider")
}

// Alias maps a model name/alias to a provider.
// e.g., Alias("gpt-4o", "openai") means "gpt-4o" resolves to the "openai" provider.
func (r *Registry) Alias(model, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[model] = provider
}

// SetFallback sets the default provider used when no model/provider match is found.
func (r *Registry) SetFallback(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = provider
}

// SetImageGenerator installs the image provider.
func (r *Registry) SetImageGenerator(g ImageGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = g
	r.log.Info().Str("provider", g.Name()).Msg("registered image provider")
}

// ImageGenerator returns the configured image provider or ErrNoImageProvider.
func (r *Registry) ImageGenerator() (ImageGenerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.images == nil {
		return nil, ErrNoImageProvider
	}
	return r.images, nil
}

// Resolve returns the Client for the given model reference.
// Resolution order: exact provider name → alias → fallback.
func (r *Registry) Resolve(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Direct provider name match
	if c, ok := r.clients[model]; ok {
		return c, nil
	}

	// Alias lookup
	if provider, ok := r.aliases[model]; ok {
		if c, ok := r.clients[provider]; ok {
			return c, nil
		}
	}

	// Fallback
	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, nil
		}
	}

	return nil, fmt.Errorf("no LLM provider for model %q", model)
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var builtinAliases = map[string][]string{
	"openai":    {"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini"},
	"anthropic": {"claude", "sonnet", "haiku", "opus"},
	"ollama":    {"llama", "llama3", "mistral"},
}

// NewRegistryFromConfig builds a Registry from the agents config. Providers
// whose credentials are missing are skipped. No network calls are made.
func NewRegistryFromConfig(cfg config.AgentsConfig, log *logging.Logger) *Registry {
	reg := NewRegistry(log)

	names := make([]string, 0, len(cfg.Providers)+1)
	for name := range cfg.Providers {
		names = append(names, name)
	}
	if _, ok := cfg.Providers["mock"]; !ok && cfg.Provider == "mock" {
		names = append(names, "mock")
	}
	sort.Strings(names)

	for _, name := range names {
		p := cfg.Providers[name]
		var client Client
		switch name {
		case "openai":
			if p.APIKey == "" {
				reg.log.Debug().Str("provider", name).Msg("no API key, skipping")
				continue
			}
			client = NewOpenAIClient(OpenAIOptions{APIKey: p.APIKey, Model: p.Model, BaseURL: p.Endpoint})
		case "anthropic":
			if p.APIKey == "" {
				reg.log.Debug().Str("provider", name).Msg("no API key, skipping")
				continue
			}
			client = NewAnthropicClient(AnthropicOptions{APIKey: p.APIKey, Model: p.Model, BaseURL: p.Endpoint})
		case "ollama":
			client = NewOllamaAPIClient(p.Endpoint, p.Model)
		case "mock":
			client = EchoClient{}
		default:
			reg.log.Warn().Str("provider", name).Msg("unknown provider, skipping")
			continue
		}

		reg.Register(name, client)
		for _, alias := range builtinAliases[name] {
			reg.Alias(alias, name)
		}
		for _, alias := range p.Aliases {
			reg.Alias(alias, name)
		}
	}

	if _, ok := reg.clients[cfg.Provider]; ok {
		reg.SetFallback(cfg.Provider)
	}

	if cfg.Image.Provider == "openai" {
		key := cfg.Image.APIKey
		if key == "" {
			key = cfg.Providers["openai"].APIKey
		}
		if key != "" {
			reg.SetImageGenerator(NewOpenAIImageGenerator(OpenAIOptions{
				APIKey:  key,
				Model:   cfg.Image.Model,
				BaseURL: cfg.Providers["openai"].Endpoint,
			}, cfg.Image.Size))
		}
	}

	return reg
}
