package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/config"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/searxng"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/tavily"
)

func TestNewSearcher(t *testing.T) {
	cfg := config.Default()
	s, err := NewSearcher(cfg)
	require.NoError(t, err)
	assert.Nil(t, s)

	cfg.Search.Tavily.APIKey = "k"
	s, err = NewSearcher(cfg)
	require.NoError(t, err)
	assert.IsType(t, &tavily.Client{}, s)

	cfg.Search.Provider = "searxng"
	_, err = NewSearcher(cfg)
	assert.ErrorContains(t, err, "base url is missing")

	cfg.Search.SearXNG.BaseURL = "http://localhost:8080"
	s, err = NewSearcher(cfg)
	require.NoError(t, err)
	assert.IsType(t, &searxng.Client{}, s)

	cfg.Search.Provider = "bing"
	_, err = NewSearcher(cfg)
	assert.ErrorContains(t, err, "unknown search provider")
}
