package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  base_url: https://llm.example.com/v1
  api_key: sk-test
  model: gpt-4o-mini
search:
  provider: searxng
  searxng:
    base_url: http://localhost:8080
stream:
  step_delay_ms: 150
client:
  base_url: http://analyzer:8000
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.LLM.Enabled())
	assert.Equal(t, "searxng", cfg.Search.Provider)
	assert.Equal(t, 30, cfg.Search.SearXNG.Timeout)
	assert.Equal(t, 150*time.Millisecond, cfg.Stream.StepDelay())
	assert.Equal(t, "http://analyzer:8000", cfg.Client.BaseURL)
	assert.Equal(t, "en", cfg.Client.Language)
	assert.Equal(t, DefaultFactCheckURL, cfg.FactCheck.BaseURL)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.LLM.Enabled())
	assert.Empty(t, cfg.Search.Provider)
	assert.Equal(t, 5, cfg.Concurrency.QPS)
	assert.Equal(t, 60, cfg.Concurrency.RPM)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultServerURL, cfg.Client.BaseURL)
	assert.Zero(t, cfg.Stream.StepDelay())
	assert.Equal(t, 4*time.Second, cfg.Timeouts.Search())
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Wikipedia())
	assert.Equal(t, 8*time.Second, cfg.Timeouts.LLM())
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Evidence())
	assert.Equal(t, "advanced", cfg.Search.Tavily.SearchDepth)
	assert.False(t, cfg.Wikipedia.Enabled)
	assert.Equal(t, DefaultWikipediaURL, cfg.Wikipedia.BaseURL)
}

func TestLoadConfig_Timeouts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timeouts:
  search_ms: 250
  evidence_ms: 1000
wikipedia:
  enabled: true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeouts.Search())
	assert.Equal(t, time.Second, cfg.Timeouts.Evidence())
	assert.Equal(t, 4*time.Second, cfg.Timeouts.FactCheck())
	assert.True(t, cfg.Wikipedia.Enabled)
}
