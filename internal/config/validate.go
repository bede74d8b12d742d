package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// KnownProviders lists the LLM providers the registry can build.
var KnownProviders = []string{"openai", "anthropic", "ollama", "mock"}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	oneOf := func(path, value string, valid []string) {
		if value != "" && !slices.Contains(valid, value) {
			issues = append(issues, ValidationIssue{
				Path:    path,
				Message: fmt.Sprintf("must be one of %v, got %q", valid, value),
			})
		}
	}

	// Gateway validation
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}
	oneOf("gateway.bind", cfg.Gateway.Bind, []string{"loopback", "lan", "custom"})
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.customBindHost",
			Message: "required when bind is custom",
		})
	}
	if cfg.Gateway.WriteTimeout < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.writeTimeout",
			Message: "must not be negative",
		})
	}

	// Agent validation
	oneOf("agents.provider", cfg.Agents.Provider, KnownProviders)
	for i, fb := range cfg.Agents.Fallbacks {
		oneOf(fmt.Sprintf("agents.fallbacks[%d]", i), fb, KnownProviders)
	}
	for name := range cfg.Agents.Providers {
		oneOf("agents.providers."+name, name, KnownProviders)
	}
	if cfg.Agents.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "agents.maxTokens",
			Message: "must not be negative",
		})
	}
	if t := cfg.Agents.Temperature; t != nil && (*t < 0 || *t > 2) {
		issues = append(issues, ValidationIssue{
			Path:    "agents.temperature",
			Message: fmt.Sprintf("must be between 0 and 2, got %g", *t),
		})
	}
	oneOf("agents.image.provider", cfg.Agents.Image.Provider, []string{"openai", "none"})
	oneOf("agents.search.provider", cfg.Agents.Search.Provider, []string{"brave", "none"})
	if cfg.Agents.Search.MaxResults < 0 || cfg.Agents.Search.MaxResults > 20 {
		issues = append(issues, ValidationIssue{
			Path:    "agents.search.maxResults",
			Message: fmt.Sprintf("must be 0-20, got %d", cfg.Agents.Search.MaxResults),
		})
	}

	// Store validation
	oneOf("store.driver", cfg.Store.Driver, []string{"sqlite", "mongo", "memory"})
	if cfg.Store.Driver == "mongo" && cfg.Store.MongoURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "store.mongoUrl",
			Message: "required when driver is mongo",
		})
	}

	// Cache validation
	oneOf("cache.driver", cfg.Cache.Driver, []string{"memory", "redis", "none"})
	if cfg.Cache.Driver == "redis" && cfg.Cache.RedisAddr == "" {
		issues = append(issues, ValidationIssue{
			Path:    "cache.redisAddr",
			Message: "required when driver is redis",
		})
	}

	// Wallpaper validation
	if tmpl := cfg.Wallpaper.RandomTemplate; tmpl != "" && strings.Count(tmpl, "%d") != 1 {
		issues = append(issues, ValidationIssue{
			Path:    "wallpaper.randomTemplate",
			Message: "must contain exactly one %d placeholder",
		})
	}
	for i, fb := range cfg.Wallpaper.Fallbacks {
		if fb.Keyword == "" || fb.ImageURL == "" {
			issues = append(issues, ValidationIssue{
				Path:    fmt.Sprintf("wallpaper.fallbacks[%d]", i),
				Message: "keyword and imageUrl are required",
			})
		}
	}

	// Logging validation
	oneOf("logging.level", cfg.Logging.Level, []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"})
	oneOf("logging.consoleStyle", cfg.Logging.ConsoleStyle, []string{"pretty", "compact", "json"})

	return issues
}
