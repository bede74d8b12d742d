package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Default values shared by Defaults and applyDefaults.
const (
	DefaultPort           = 8001
	DefaultProvider       = "openai"
	DefaultMaxTokens      = 2048
	DefaultSearchResults  = 5
	DefaultSearchCacheTTL = 600
	DefaultAspectRatio    = "9:16"
	DefaultWriteTimeout   = 330
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port:         DefaultPort,
			Bind:         "loopback",
			WriteTimeout: DefaultWriteTimeout,
		},
		Agents: AgentsConfig{
			Provider:  DefaultProvider,
			MaxTokens: DefaultMaxTokens,
			Providers: map[string]ProviderConfig{
				"openai": {Model: "gpt-4o-mini"},
			},
			Image: ImageConfig{
				Provider: "openai",
				Model:    "dall-e-3",
				Size:     "1024x1792",
			},
			Search: SearchConfig{
				Provider:   "brave",
				MaxResults: DefaultSearchResults,
				CacheTTL:   DefaultSearchCacheTTL,
			},
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DBName: "wallcraft",
		},
		Cache: CacheConfig{
			Driver: "memory",
		},
		Wallpaper: WallpaperConfig{
			DefaultAspectRatio: DefaultAspectRatio,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
