package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides (WALLCRAFT_GATEWAY_PORT, ...).
const EnvPrefix = "WALLCRAFT"

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	for name, p := range cfg.Agents.Providers {
		p.APIKey = expandEnvVars(p.APIKey)
		p.Endpoint = expandEnvVars(p.Endpoint)
		cfg.Agents.Providers[name] = p
	}
	cfg.Agents.Image.APIKey = expandEnvVars(cfg.Agents.Image.APIKey)
	cfg.Agents.Search.APIKey = expandEnvVars(cfg.Agents.Search.APIKey)
	cfg.Store.MongoURL = expandEnvVars(cfg.Store.MongoURL)
	cfg.Cache.RedisPassword = expandEnvVars(cfg.Cache.RedisPassword)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
		}
	}

	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, &ConfigError{Message: "invalid environment override: " + err.Error()}
	}
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadDotEnv exports the KEY=VALUE pairs of a .env file into the process
// environment. Variables already set in the environment win. A missing file
// is not an error.
func LoadDotEnv(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = DefaultPort
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = "loopback"
	}
	if cfg.Gateway.WriteTimeout == 0 {
		cfg.Gateway.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Agents.Provider == "" {
		cfg.Agents.Provider = DefaultProvider
	}
	if cfg.Agents.MaxTokens == 0 {
		cfg.Agents.MaxTokens = DefaultMaxTokens
	}
	if cfg.Agents.Providers == nil {
		cfg.Agents.Providers = map[string]ProviderConfig{}
	}
	if cfg.Agents.Search.MaxResults == 0 {
		cfg.Agents.Search.MaxResults = DefaultSearchResults
	}
	if cfg.Agents.Search.CacheTTL == 0 {
		cfg.Agents.Search.CacheTTL = DefaultSearchCacheTTL
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.DBName == "" {
		cfg.Store.DBName = "wallcraft"
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = "memory"
	}
	if cfg.Wallpaper.DefaultAspectRatio == "" {
		cfg.Wallpaper.DefaultAspectRatio = DefaultAspectRatio
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// envOverrides lists the supported WALLCRAFT_* variables. Each one also
// falls back to its unprefixed name, so MONGO_URL or OPENAI_API_KEY work as-is.
type envOverrides struct {
	GatewayPort     int    `envconfig:"GATEWAY_PORT"`
	GatewayBind     string `envconfig:"GATEWAY_BIND"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	AgentProvider   string `envconfig:"AGENT_PROVIDER"`
	AgentModel      string `envconfig:"AGENT_MODEL"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	OllamaHost      string `envconfig:"OLLAMA_HOST"`
	BraveAPIKey     string `envconfig:"BRAVE_API_KEY"`
	StoreDriver     string `envconfig:"STORE_DRIVER"`
	MongoURL        string `envconfig:"MONGO_URL"`
	DBName          string `envconfig:"DB_NAME"`
	RedisAddr       string `envconfig:"REDIS_ADDR"`
}

// applyEnvOverrides reads WALLCRAFT_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	if env.GatewayPort != 0 {
		cfg.Gateway.Port = env.GatewayPort
	}
	if env.GatewayBind != "" {
		cfg.Gateway.Bind = env.GatewayBind
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(env.LogLevel)
	}
	if env.AgentProvider != "" {
		cfg.Agents.Provider = env.AgentProvider
	}
	if env.AgentModel != "" {
		p := cfg.Agents.Providers[cfg.Agents.Provider]
		p.Model = env.AgentModel
		cfg.Agents.Providers[cfg.Agents.Provider] = p
	}
	if env.OpenAIAPIKey != "" {
		setProviderKey(cfg, "openai", env.OpenAIAPIKey)
		if cfg.Agents.Image.Provider == "openai" && cfg.Agents.Image.APIKey == "" {
			cfg.Agents.Image.APIKey = env.OpenAIAPIKey
		}
	}
	if env.AnthropicAPIKey != "" {
		setProviderKey(cfg, "anthropic", env.AnthropicAPIKey)
	}
	if env.OllamaHost != "" {
		p := cfg.Agents.Providers["ollama"]
		p.Endpoint = env.OllamaHost
		cfg.Agents.Providers["ollama"] = p
	}
	if env.BraveAPIKey != "" && cfg.Agents.Search.APIKey == "" {
		cfg.Agents.Search.APIKey = env.BraveAPIKey
	}
	if env.StoreDriver != "" {
		cfg.Store.Driver = env.StoreDriver
	}
	if env.MongoURL != "" {
		cfg.Store.MongoURL = env.MongoURL
	}
	if env.DBName != "" {
		cfg.Store.DBName = env.DBName
	}
	if env.RedisAddr != "" {
		cfg.Cache.RedisAddr = env.RedisAddr
	}
	return nil
}

// setProviderKey fills in a provider API key unless the config file already set one.
func setProviderKey(cfg *Config, provider, key string) {
	p, ok := cfg.Agents.Providers[provider]
	if ok && p.APIKey != "" {
		return
	}
	p.APIKey = key
	cfg.Agents.Providers[provider] = p
}
