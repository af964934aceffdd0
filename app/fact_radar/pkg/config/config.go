package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	FactCheck   FactCheckConfig   `yaml:"fact_check"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Stream      StreamConfig      `yaml:"stream"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
	Wikipedia   WikipediaConfig   `yaml:"wikipedia"`
	Client      ClientConfig      `yaml:"client"`
}

// LLMConfig LLM 相关配置，BaseURL/APIKey/Model 任一为空时使用规则引擎
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Enabled 是否配置了可用的 LLM
func (c LLMConfig) Enabled() bool {
	return c.BaseURL != "" && c.APIKey != "" && c.Model != ""
}

// SearchConfig 搜索相关配置，Provider 为空表示不联网搜索
type SearchConfig struct {
	Provider   string        `yaml:"provider"`
	MaxResults int           `yaml:"max_results"`
	Tavily     TavilyConfig  `yaml:"tavily"`
	SearXNG    SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	// SearchDepth basic 或 advanced，核查场景默认 advanced
	SearchDepth string `yaml:"search_depth"`
	// IncludeAnswer 是否请求 Tavily 生成的简短结论
	IncludeAnswer bool `yaml:"include_answer"`
	Timeout       int  `yaml:"timeout"` // 秒
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// FactCheckConfig Google Fact Check Tools 配置
type FactCheckConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	PageSize int    `yaml:"page_size"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// StreamConfig 流式接口配置
type StreamConfig struct {
	// StepDelayMS 相邻进度事件之间的间隔
	StepDelayMS int `yaml:"step_delay_ms"`
}

// StepDelay 返回进度事件间隔
func (c StreamConfig) StepDelay() time.Duration {
	return time.Duration(c.StepDelayMS) * time.Millisecond
}

// TimeoutConfig 各外部调用的超时（毫秒），超时后该路证据降级为空
type TimeoutConfig struct {
	FactCheckMS int `yaml:"fact_check_ms"`
	SearchMS    int `yaml:"search_ms"`
	WikipediaMS int `yaml:"wikipedia_ms"`
	LLMMS       int `yaml:"llm_ms"`
	TranslateMS int `yaml:"translate_ms"`
	// EvidenceMS 整轮证据收集的总上限
	EvidenceMS int `yaml:"evidence_ms"`
	FetchMS    int `yaml:"fetch_ms"`
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (c TimeoutConfig) FactCheck() time.Duration { return ms(c.FactCheckMS) }
func (c TimeoutConfig) Search() time.Duration { return ms(c.SearchMS) }
func (c TimeoutConfig) Wikipedia() time.Duration { return ms(c.WikipediaMS) }
func (c TimeoutConfig) LLM() time.Duration { return ms(c.LLMMS) }
func (c TimeoutConfig) Translate() time.Duration { return ms(c.TranslateMS) }
func (c TimeoutConfig) Evidence() time.Duration { return ms(c.EvidenceMS) }
func (c TimeoutConfig) Fetch() time.Duration { return ms(c.FetchMS) }

// WikipediaConfig 百科摘要查询，默认关闭以保持离线的规则模式
type WikipediaConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// ClientConfig 命令行客户端配置
type ClientConfig struct {
	BaseURL  string `yaml:"base_url"`
	Language string `yaml:"language"`
	Timeout  int    `yaml:"timeout"`
}

const (
	DefaultFactCheckURL = "https://factchecktools.googleapis.com/v1alpha1/claims:search"
	DefaultTavilyURL    = "https://api.tavily.com/search"
	DefaultWikipediaURL = "https://en.wikipedia.org/api/rest_v1"
	DefaultServerURL    = "http://localhost:8000"
)

// ApplyDefaults 为未设置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 5
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 5
	}
	if c.Search.Tavily.BaseURL == "" {
		c.Search.Tavily.BaseURL = DefaultTavilyURL
	}
	if c.Search.Tavily.SearchDepth == "" {
		c.Search.Tavily.SearchDepth = "advanced"
	}
	if c.Search.Tavily.Timeout <= 0 {
		c.Search.Tavily.Timeout = 10
	}
	if c.Search.SearXNG.Timeout <= 0 {
		c.Search.SearXNG.Timeout = 30
	}
	if c.FactCheck.BaseURL == "" {
		c.FactCheck.BaseURL = DefaultFactCheckURL
	}
	if c.FactCheck.PageSize <= 0 {
		c.FactCheck.PageSize = 5
	}
	t := &c.Timeouts
	defaultMS(&t.FactCheckMS, 4000)
	defaultMS(&t.SearchMS, 4000)
	defaultMS(&t.WikipediaMS, 3000)
	defaultMS(&t.LLMMS, 8000)
	defaultMS(&t.TranslateMS, 3000)
	defaultMS(&t.EvidenceMS, 10000)
	defaultMS(&t.FetchMS, 15000)
	if c.Wikipedia.BaseURL == "" {
		c.Wikipedia.BaseURL = DefaultWikipediaURL
	}
	if c.Stream.StepDelayMS < 0 {
		c.Stream.StepDelayMS = 0
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = DefaultServerURL
	}
	if c.Client.Language == "" {
		c.Client.Language = "en"
	}
	if c.Client.Timeout <= 0 {
		c.Client.Timeout = 60
	}
}

func defaultMS(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// Default 返回仅含默认值的配置（纯规则引擎模式）
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig 从指定路径加载配置并填充默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}
