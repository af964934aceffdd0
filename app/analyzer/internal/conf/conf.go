package conf

type Bootstrap struct {
	Server *Server
	Data   *Data
	Engine *Engine
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr        string
	Timeout     string
	CorsOrigins []string `json:"cors_origins"`
}

// Data 结果存储配置，Store 取值 memory | postgres | redis
type Data struct {
	Store       string
	MemoryLimit int32 `json:"memory_limit"`
	Database    *Database
	Redis       *Redis
}

type Database struct {
	Driver string
	Source string
}

type Redis struct {
	Addr     string
	Password string
	Db       int32
	Ttl      string
}

type Engine struct {
	Llm         *LLM         `json:"llm"`
	Search      *Search      `json:"search"`
	FactCheck   *FactCheck   `json:"fact_check"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Stream      *Stream      `json:"stream"`
	Timeouts    *Timeouts    `json:"timeouts"`
	Wikipedia   *Wikipedia   `json:"wikipedia"`
}

type LLM struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type Search struct {
	Provider   string   `json:"provider"`
	MaxResults int32    `json:"max_results"`
	Tavily     *Tavily  `json:"tavily"`
	Searxng    *SearXNG `json:"searxng"`
}

type Tavily struct {
	ApiKey        string `json:"api_key"`
	BaseUrl       string `json:"base_url"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	Timeout       int32  `json:"timeout"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type FactCheck struct {
	ApiKey   string `json:"api_key"`
	BaseUrl  string `json:"base_url"`
	PageSize int32  `json:"page_size"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type Stream struct {
	StepDelayMs int32 `json:"step_delay_ms"`
}

type Timeouts struct {
	FactCheckMs int32 `json:"fact_check_ms"`
	SearchMs    int32 `json:"search_ms"`
	WikipediaMs int32 `json:"wikipedia_ms"`
	LlmMs       int32 `json:"llm_ms"`
	TranslateMs int32 `json:"translate_ms"`
	EvidenceMs  int32 `json:"evidence_ms"`
	FetchMs     int32 `json:"fetch_ms"`
}

type Wikipedia struct {
	Enabled bool   `json:"enabled"`
	BaseUrl string `json:"base_url"`
}
