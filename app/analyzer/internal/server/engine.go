package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/conf"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/config"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/engine"
	frLogger "github.com/iWorld-y/fact_radar/app/fact_radar/pkg/logger"
)

// NewAnalysisEngine 初始化核查引擎，未配置的外部依赖走规则引擎
func NewAnalysisEngine(c *conf.Engine, logger log.Logger) (*engine.Engine, error) {
	cfg := engineConfig(c)

	// 初始化日志
	if err := frLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine logger: %v", err)
		_ = frLogger.InitLogger("info", "") // 降级处理
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, err
	}
	return eng, nil
}

// engineConfig 将 internal/conf.Engine 转换为 pkg/config.Config
func engineConfig(c *conf.Engine) *config.Config {
	cfg := &config.Config{}
	if c == nil {
		cfg.ApplyDefaults()
		return cfg
	}
	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			BaseURL: c.Llm.BaseUrl,
			APIKey:  c.Llm.ApiKey,
			Model:   c.Llm.Model,
		}
	}
	if s := c.Search; s != nil {
		cfg.Search.Provider = s.Provider
		cfg.Search.MaxResults = int(s.MaxResults)
		if s.Tavily != nil {
			cfg.Search.Tavily = config.TavilyConfig{
				APIKey:        s.Tavily.ApiKey,
				BaseURL:       s.Tavily.BaseUrl,
				SearchDepth:   s.Tavily.SearchDepth,
				IncludeAnswer: s.Tavily.IncludeAnswer,
				Timeout:       int(s.Tavily.Timeout),
			}
		}
		if s.Searxng != nil {
			cfg.Search.SearXNG = config.SearXNGConfig{BaseURL: s.Searxng.BaseUrl, Timeout: int(s.Searxng.Timeout)}
		}
	}
	if f := c.FactCheck; f != nil {
		cfg.FactCheck = config.FactCheckConfig{APIKey: f.ApiKey, BaseURL: f.BaseUrl, PageSize: int(f.PageSize)}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{QPS: int(c.Concurrency.Qps), RPM: int(c.Concurrency.Rpm)}
	}
	if c.Stream != nil {
		cfg.Stream.StepDelayMS = int(c.Stream.StepDelayMs)
	}
	if t := c.Timeouts; t != nil {
		cfg.Timeouts = config.TimeoutConfig{
			FactCheckMS: int(t.FactCheckMs),
			SearchMS:    int(t.SearchMs),
			WikipediaMS: int(t.WikipediaMs),
			LLMMS:       int(t.LlmMs),
			TranslateMS: int(t.TranslateMs),
			EvidenceMS:  int(t.EvidenceMs),
			FetchMS:     int(t.FetchMs),
		}
	}
	if w := c.Wikipedia; w != nil {
		cfg.Wikipedia = config.WikipediaConfig{Enabled: w.Enabled, BaseURL: w.BaseUrl}
	}
	cfg.ApplyDefaults()
	return cfg
}
