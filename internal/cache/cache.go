// Package cache stores short-lived web search results.
package cache

import (
	"context"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
)

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value and whether it was found.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores a value. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// New builds the cache selected by cfg.Driver. "none" yields a cache that
// never hits.
func New(cfg config.CacheConfig, log *logging.Logger) (Cache, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg, log)
	case "none":
		return Nop{}, nil
	default:
		return NewMemory(), nil
	}
}

// Nop is a Cache that stores nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool, error)          { return "", false, nil }
func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }
func (Nop) Close() error                                             { return nil }
