package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 8001, cfg.Gateway.Port)
	assert.Equal(t, "loopback", cfg.Gateway.Bind)
	assert.Equal(t, "openai", cfg.Agents.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Agents.Providers["openai"].Model)
	assert.Equal(t, 5, cfg.Agents.Search.MaxResults)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "9:16", cfg.Wallpaper.DefaultAspectRatio)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	// Should return defaults
	assert.Equal(t, 8001, cfg.Gateway.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
gateway:
  port: 9999
  bind: lan
  allowedOrigins:
    - https://wallcraft.app
agents:
  provider: anthropic
  fallbacks: [openai]
  temperature: 0.4
  providers:
    anthropic:
      apiKey: sk-ant-test
      model: claude-3-5-haiku-latest
  search:
    maxResults: 8
store:
  driver: mongo
  mongoUrl: mongodb://db:27017
wallpaper:
  fallbacks:
    - keyword: desert
      imageUrl: https://example.com/desert.jpg
logging:
  level: debug
  consoleStyle: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Gateway.Port)
	assert.Equal(t, "lan", cfg.Gateway.Bind)
	assert.Equal(t, []string{"https://wallcraft.app"}, cfg.Gateway.AllowedOrigins)
	assert.Equal(t, "anthropic", cfg.Agents.Provider)
	assert.Equal(t, []string{"openai"}, cfg.Agents.Fallbacks)
	require.NotNil(t, cfg.Agents.Temperature)
	assert.InDelta(t, 0.4, *cfg.Agents.Temperature, 1e-9)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.Agents.Providers["anthropic"].Model)
	assert.Equal(t, 8, cfg.Agents.Search.MaxResults)
	assert.Equal(t, 600, cfg.Agents.Search.CacheTTL)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Store.MongoURL)
	require.Len(t, cfg.Wallpaper.Fallbacks, 1)
	assert.Equal(t, "desert", cfg.Wallpaper.Fallbacks[0].Keyword)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WALLCRAFT_GATEWAY_PORT", "12345")
	t.Setenv("WALLCRAFT_LOG_LEVEL", "TRACE")
	t.Setenv("WALLCRAFT_STORE_DRIVER", "memory")
	t.Setenv("WALLCRAFT_AGENT_MODEL", "gpt-4.1")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.Gateway.Port)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "gpt-4.1", cfg.Agents.Providers["openai"].Model)
}

func TestLoadEnvOverridesUnprefixed(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://legacy:27017")
	t.Setenv("DB_NAME", "legacy_db")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://legacy:27017", cfg.Store.MongoURL)
	assert.Equal(t, "legacy_db", cfg.Store.DBName)
}

func TestLoadEnvOverridesInvalid(t *testing.T) {
	t.Setenv("WALLCRAFT_GATEWAY_PORT", "not-a-port")

	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestLoadExpandsSecrets(t *testing.T) {
	t.Setenv("TEST_BRAVE_KEY", "brave-secret")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agents:
  search:
    apiKey: ${TEST_BRAVE_KEY}
  providers:
    ollama:
      endpoint: ${TEST_UNSET_OLLAMA_HOST}
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "brave-secret", cfg.Agents.Search.APIKey)
	assert.Equal(t, "${TEST_UNSET_OLLAMA_HOST}", cfg.Agents.Providers["ollama"].Endpoint)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WALLCRAFT_TEST_DOTENV=from-file\nWALLCRAFT_TEST_PRESET=from-file\n"), 0o600))

	t.Setenv("WALLCRAFT_TEST_PRESET", "from-shell")
	t.Setenv("WALLCRAFT_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("WALLCRAFT_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("WALLCRAFT_TEST_DOTENV"))
	assert.Equal(t, "from-shell", os.Getenv("WALLCRAFT_TEST_PRESET"))
}

func TestLoadDotEnvMissing(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	raw := map[string]any{
		"gateway": map[string]any{
			"port": 9999,
		},
	}

	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(loaded, []string{"gateway", "port"})
	assert.True(t, ok)
	assert.Equal(t, 9999, val)
}

func TestLoadRawMissing(t *testing.T) {
	raw, err := LoadRaw(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}
