package config

// Config is the root configuration for wallcraft.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Agents    AgentsConfig    `yaml:"agents,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Wallpaper WallpaperConfig `yaml:"wallpaper,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// GatewayConfig controls the HTTP/WebSocket API server.
type GatewayConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"` // empty or ["*"] allows any origin
	WriteTimeout   int      `yaml:"writeTimeout,omitempty"`   // seconds
}

// AgentsConfig is the shared configuration every agent variant is built from.
type AgentsConfig struct {
	Provider    string                    `yaml:"provider,omitempty"` // primary LLM provider
	Fallbacks   []string                  `yaml:"fallbacks,omitempty"`
	MaxTokens   int                       `yaml:"maxTokens,omitempty"`
	Temperature *float64                  `yaml:"temperature,omitempty"`
	Providers   map[string]ProviderConfig `yaml:"providers,omitempty"`
	Image       ImageConfig               `yaml:"image,omitempty"`
	Search      SearchConfig              `yaml:"search,omitempty"`
}

// ProviderConfig configures a single LLM provider ("openai", "anthropic", "ollama", "mock").
type ProviderConfig struct {
	APIKey   string   `yaml:"apiKey,omitempty"`
	Model    string   `yaml:"model,omitempty"`
	Endpoint string   `yaml:"endpoint,omitempty"`
	Aliases  []string `yaml:"aliases,omitempty"`
}

// ImageConfig configures the image generation tool available to the chat agent.
type ImageConfig struct {
	Provider string `yaml:"provider,omitempty"` // "openai" | "none"
	Model    string `yaml:"model,omitempty"`
	Size     string `yaml:"size,omitempty"`
	APIKey   string `yaml:"apiKey,omitempty"`
}

// SearchConfig configures the web search tool available to the search agent.
type SearchConfig struct {
	Provider   string `yaml:"provider,omitempty"` // "brave" | "none"
	APIKey     string `yaml:"apiKey,omitempty"`
	Endpoint   string `yaml:"endpoint,omitempty"`
	MaxResults int    `yaml:"maxResults,omitempty"`
	CacheTTL   int    `yaml:"cacheTTL,omitempty"` // seconds
}

// StoreConfig selects the persistence backend for status checks and agent runs.
type StoreConfig struct {
	Driver   string `yaml:"driver,omitempty"` // "sqlite" | "mongo" | "memory"
	Path     string `yaml:"path,omitempty"`
	MongoURL string `yaml:"mongoUrl,omitempty"`
	DBName   string `yaml:"dbName,omitempty"`
}

// CacheConfig selects the search result cache backend.
type CacheConfig struct {
	Driver        string `yaml:"driver,omitempty"` // "memory" | "redis" | "none"
	RedisAddr     string `yaml:"redisAddr,omitempty"`
	RedisPassword string `yaml:"redisPassword,omitempty"`
	RedisDB       int    `yaml:"redisDB,omitempty"`
}

// WallpaperConfig controls the wallpaper operation and its fallback images.
type WallpaperConfig struct {
	DefaultAspectRatio string          `yaml:"defaultAspectRatio,omitempty"`
	RandomTemplate     string          `yaml:"randomTemplate,omitempty"` // must contain one %d
	Fallbacks          []FallbackEntry `yaml:"fallbacks,omitempty"`
}

// FallbackEntry maps a prompt keyword to a curated image.
type FallbackEntry struct {
	Keyword  string `yaml:"keyword"`
	ImageURL string `yaml:"imageUrl"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}
