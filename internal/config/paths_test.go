package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ParseConfigPath extended tests ---

func TestParseConfigPath_Extended(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single segment", "gateway", []string{"gateway"}, false},
		{"two segments", "gateway.port", []string{"gateway", "port"}, false},
		{"three segments", "agents.search.apiKey", []string{"agents", "search", "apiKey"}, false},
		{"empty", "", nil, true},
		{"empty segment", "gateway..port", nil, true},
		{"leading dot", ".gateway", nil, true},
		{"trailing dot", "gateway.", nil, true},
		{"blocked __proto__", "foo.__proto__.bar", nil, true},
		{"blocked prototype", "prototype.x", nil, true},
		{"blocked constructor", "constructor", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// --- GetValueAtPath extended tests ---

func TestGetValueAtPath_Extended(t *testing.T) {
	root := map[string]any{
		"gateway": map[string]any{
			"port": 8001,
			"tls": map[string]any{
				"mode": "off",
			},
		},
		"simple": "value",
	}

	tests := []struct {
		name string
		path []string
		want any
		ok   bool
	}{
		{"nested value", []string{"gateway", "port"}, 8001, true},
		{"deeply nested", []string{"gateway", "tls", "mode"}, "off", true},
		{"top level", []string{"simple"}, "value", true},
		{"missing key", []string{"nonexistent"}, nil, false},
		{"missing nested", []string{"gateway", "nonexistent"}, nil, false},
		{"non-map intermediate", []string{"simple", "sub"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, ok := GetValueAtPath(root, tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, val)
			}
		})
	}
}

// --- SetValueAtPath extended tests ---

func TestSetValueAtPath_Update(t *testing.T) {
	root := map[string]any{
		"gateway": map[string]any{
			"port": 8001,
		},
	}

	SetValueAtPath(root, []string{"gateway", "port"}, 9999)
	val, ok := GetValueAtPath(root, []string{"gateway", "port"})
	assert.True(t, ok)
	assert.Equal(t, 9999, val)
}

func TestSetValueAtPath_CreatesIntermediates(t *testing.T) {
	root := map[string]any{}

	SetValueAtPath(root, []string{"a", "b", "c"}, "deep")
	val, ok := GetValueAtPath(root, []string{"a", "b", "c"})
	assert.True(t, ok)
	assert.Equal(t, "deep", val)
}

func TestSetValueAtPath_OverwritesNonMap(t *testing.T) {
	root := map[string]any{
		"gateway": "string-not-map",
	}

	SetValueAtPath(root, []string{"gateway", "port"}, 8080)
	val, ok := GetValueAtPath(root, []string{"gateway", "port"})
	assert.True(t, ok)
	assert.Equal(t, 8080, val)
}

func TestSetValueAtPath_SingleKey(t *testing.T) {
	root := map[string]any{}

	SetValueAtPath(root, []string{"version"}, "1.0.0")
	assert.Equal(t, "1.0.0", root["version"])
}

// --- UnsetValueAtPath extended tests ---

func TestUnsetValueAtPath_PreserveSiblings(t *testing.T) {
	root := map[string]any{
		"gateway": map[string]any{
			"port": 8001,
			"bind": "lan",
		},
	}

	ok := UnsetValueAtPath(root, []string{"gateway", "port"})
	assert.True(t, ok)

	_, found := GetValueAtPath(root, []string{"gateway", "port"})
	assert.False(t, found)

	val, found := GetValueAtPath(root, []string{"gateway", "bind"})
	assert.True(t, found)
	assert.Equal(t, "lan", val)
}

func TestUnsetValueAtPath_NotFound(t *testing.T) {
	root := map[string]any{
		"gateway": map[string]any{
			"port": 8001,
		},
	}

	ok := UnsetValueAtPath(root, []string{"gateway", "nonexistent"})
	assert.False(t, ok)
}

func TestUnsetValueAtPath_MissingIntermediate(t *testing.T) {
	root := map[string]any{}
	ok := UnsetValueAtPath(root, []string{"a", "b", "c"})
	assert.False(t, ok)
}

func TestUnsetValueAtPath_NonMapIntermediate(t *testing.T) {
	root := map[string]any{
		"gateway": "string",
	}
	ok := UnsetValueAtPath(root, []string{"gateway", "port"})
	assert.False(t, ok)
}

// --- ResolvePaths tests ---

func TestResolvePaths_Default(t *testing.T) {
	t.Setenv("WALLCRAFT_HOME", "")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".wallcraft"), paths.Base)
	assert.Equal(t, filepath.Join(home, ".wallcraft", "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(home, ".wallcraft", "logs"), paths.Logs)
	assert.Equal(t, filepath.Join(home, ".wallcraft", "data"), paths.Data)
}

func TestResolvePaths_CustomHome(t *testing.T) {
	t.Setenv("WALLCRAFT_HOME", "/tmp/wallcraft-test")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/wallcraft-test", paths.Base)
	assert.Equal(t, "/tmp/wallcraft-test/config.yaml", paths.Config)
	assert.Equal(t, "/tmp/wallcraft-test/logs", paths.Logs)
	assert.Equal(t, "/tmp/wallcraft-test/data", paths.Data)
	assert.Equal(t, "/tmp/wallcraft-test/data/wallcraft.db", paths.DatabasePath())
}

func TestEnsureDirs_CreatesAll(t *testing.T) {
	t.Setenv("WALLCRAFT_HOME", filepath.Join(t.TempDir(), "home"))

	paths, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, paths.EnsureDirs()) // idempotent

	for _, dir := range []string{paths.Base, paths.Logs, paths.Data} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

// --- blockedKeys tests ---

func TestBlockedKeys(t *testing.T) {
	assert.True(t, blockedKeys["__proto__"])
	assert.True(t, blockedKeys["prototype"])
	assert.True(t, blockedKeys["constructor"])
	assert.False(t, blockedKeys["gateway"])
	assert.False(t, blockedKeys["port"])
}
