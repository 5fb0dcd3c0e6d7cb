package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "prospect.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, int64(4096), cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 2.0, cfg.Anthropic.RPS, 0.001)
	assert.Equal(t, "http://localhost:8000", cfg.Chroma.BaseURL)
	assert.Equal(t, "default_tenant", cfg.Chroma.Tenant)
	assert.True(t, cfg.Pipeline.ParallelOps)
	assert.Equal(t, 5, cfg.Pipeline.MaxUseCases)
	assert.Equal(t, 10, cfg.Pipeline.MaxStarredPlays)
	assert.Equal(t, 20, cfg.Pipeline.MaxAnnotations)
}

func TestLoadFromYAML(t *testing.T) {
	chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/prospect
log:
  level: debug
  format: console
pipeline:
  parallel_ops: false
  max_use_cases: 3
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/prospect", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Pipeline.ParallelOps)
	assert.Equal(t, 3, cfg.Pipeline.MaxUseCases)
	// Untouched keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PROSPECT_ANTHROPIC_KEY", "sk-test")
	t.Setenv("PROSPECT_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	require.Error(t, err)
}
