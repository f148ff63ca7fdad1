package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfigStore_Success(t *testing.T) {
	path := writeConfig(t, `
model = "sonar"
base_url = "http://localhost:9999"
timeout = "30s"
port = 4000
transport = "sse"
`)

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, path, store.Path())
	assert.Equal(t, "sonar", store.GetString("model"))
	assert.Equal(t, "http://localhost:9999", store.GetString("base_url"))
	assert.Equal(t, 30*time.Second, store.GetDuration("timeout"))
	assert.Equal(t, 4000, store.GetInt("port"))
	assert.Equal(t, "sse", store.GetString("transport"))
}

func TestNewConfigStore_PartialFile(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, `model = "sonar-pro"`))
	require.NoError(t, err)

	settings := store.Settings()
	require.NotNil(t, settings.Model)
	assert.Equal(t, "sonar-pro", *settings.Model)
	assert.Nil(t, settings.BaseURL)
	assert.Nil(t, settings.Port)
	assert.Zero(t, store.GetInt("port"))
	assert.Zero(t, store.GetDuration("timeout"))
	assert.Empty(t, store.GetString("transport"))
}

func TestNewConfigStore_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".perplexity-mcp", "config.toml"), store.Path())
	assert.Equal(t, Settings{}, store.Settings())
}

func TestNewConfigStore_DefaultPathLoadsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".perplexity-mcp")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`port = 3100`), 0600))

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, 3100, store.GetInt("port"))
}

func TestNewConfigStore_ExplicitMissingFile(t *testing.T) {
	_, err := NewConfigStore(filepath.Join(t.TempDir(), "missing.toml"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewConfigStore_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed toml", `model = `},
		{"unknown key", `api_key = "secret"`},
		{"wrong type", `port = "many"`},
		{"bad duration", `timeout = "soon"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfigStore(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestConfigStore_UnknownKeys(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, `model = "sonar"`))
	require.NoError(t, err)

	assert.Empty(t, store.GetString("nonexistent"))
	assert.Zero(t, store.GetInt("model"))
}

func TestConfigStore_Loaded(t *testing.T) {
	t.Run("file read", func(t *testing.T) {
		store, err := NewConfigStore(writeConfig(t, `model = "sonar"`))
		require.NoError(t, err)
		assert.True(t, store.Loaded())
	})

	t.Run("default file absent", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		store, err := NewConfigStore("")
		require.NoError(t, err)
		assert.False(t, store.Loaded())
	})
}
