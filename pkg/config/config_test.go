package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "pokehub", cfg.Auth.JWTIssuer)
	assert.Equal(t, 10*time.Hour, cfg.Auth.JWTDuration)
	assert.Equal(t, "https://pokeapi.co/api/v2", cfg.PokeAPI.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.PokeAPI.Timeout)
	assert.Equal(t, 0, cfg.PokeAPI.RetryMax)
	assert.Equal(t, 1, cfg.Fetch.Concurrency)
	assert.Equal(t, 25, cfg.Fetch.DefaultLimit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POKEHUB_DB_PATH", "/tmp/pokehub-test.db")
	t.Setenv("POKEHUB_JWT_TTL", "90m")
	t.Setenv("POKEHUB_POKEAPI_BASE_URL", "http://localhost:9000/api/v2/")
	t.Setenv("POKEHUB_FETCH_CONCURRENCY", "4")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pokehub-test.db", cfg.DBPath)
	assert.Equal(t, 90*time.Minute, cfg.Auth.JWTDuration)
	assert.Equal(t, "http://localhost:9000/api/v2", cfg.PokeAPI.BaseURL)
	assert.Equal(t, 4, cfg.Fetch.Concurrency)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "http:\n  addr: \":9090\"\nlog:\n  level: debug\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadConcurrency(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POKEHUB_FETCH_CONCURRENCY", "0")

	_, err := Load(viper.New(), "")
	assert.ErrorContains(t, err, "fetch.concurrency")
}
