package factory

import (
	"fmt"
	"time"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/config"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/search"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/searxng"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例；未配置任何搜索服务时返回 nil, nil（不联网）
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	provider := cfg.Search.Provider
	if provider == "" {
		// 只填了 tavily key 时默认使用 tavily
		if cfg.Search.Tavily.APIKey == "" {
			return nil, nil
		}
		provider = "tavily"
	}

	switch provider {
	case "tavily":
		if cfg.Search.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		tc := cfg.Search.Tavily
		return tavily.NewClient(tc.APIKey, tc.BaseURL,
			tavily.WithSearchDepth(tc.SearchDepth),
			tavily.WithAnswer(tc.IncludeAnswer),
			tavily.WithTimeout(time.Duration(tc.Timeout)*time.Second),
		), nil

	case "searxng":
		if cfg.Search.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.Search.SearXNG.BaseURL, cfg.Search.SearXNG.Timeout), nil

	case "none", "mock":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
