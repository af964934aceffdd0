package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/config"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/factcheck"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/logger"
	fm "github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/search"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/search/factory"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/wikipedia"
)

var (
	ErrEmptyContent           = errors.New("content is empty")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrInvalidImage           = errors.New("content is not a valid base64 image")
	ErrInvalidURL             = errors.New("content is not a valid http(s) url")
	ErrTranslatorUnavailable  = errors.New("no translator configured")
	ErrUnsupportedLanguage    = errors.New("unsupported target language")
)

// Engine 核心分析引擎，所有外部依赖均可缺省，缺省时走规则引擎
type Engine struct {
	cfg       *config.Config
	chatModel model.BaseChatModel
	searcher  search.Searcher
	checker   factcheck.Checker
	wiki      wikipedia.Encyclopedia
	fetch     PageFetcher
	limiter   *rate.Limiter
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// Option 引擎可选项
type Option func(*Engine)

// WithSearcher 指定网页搜索实现
func WithSearcher(s search.Searcher) Option {
	return func(e *Engine) { e.searcher = s }
}

// WithChecker 指定事实核查实现
func WithChecker(c factcheck.Checker) Option {
	return func(e *Engine) { e.checker = c }
}

// WithChatModel 指定 LLM
func WithChatModel(cm model.BaseChatModel) Option {
	return func(e *Engine) { e.chatModel = cm }
}

// WithEncyclopedia 指定百科背景来源
func WithEncyclopedia(w wikipedia.Encyclopedia) Option {
	return func(e *Engine) { e.wiki = w }
}

// WithFetcher 指定网页正文抓取实现
func WithFetcher(f PageFetcher) Option {
	return func(e *Engine) { e.fetch = f }
}

// WithClock 指定时钟，便于测试
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine 创建引擎实例，cfg 为 nil 时使用默认配置
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	// 零值时限会让所有外部调用立即超时
	cfg.ApplyDefaults()

	e := &Engine{
		cfg:       cfg,
		fetch:     newReadableFetcher(&http.Client{Timeout: cfg.Timeouts.Fetch()}),
		limiter:   rate.NewLimiter(rate.Limit(float64(cfg.Concurrency.RPM)/60.0), cfg.Concurrency.QPS),
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}

	if cfg.LLM.Enabled() {
		chatModel, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("LLM 初始化失败: %w", err)
		}
		e.chatModel = chatModel
	}

	searcher, err := factory.NewSearcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}
	e.searcher = searcher

	if cfg.FactCheck.APIKey != "" {
		e.checker = factcheck.NewClient(cfg.FactCheck.APIKey, cfg.FactCheck.BaseURL, cfg.FactCheck.PageSize)
	}
	if cfg.Wikipedia.Enabled {
		e.wiki = wikipedia.NewClient(cfg.Wikipedia.BaseURL, cfg.Timeouts.Wikipedia())
	}

	for _, opt := range opts {
		opt(e)
	}

	logger.Log.Infof("engine ready: llm=%t search=%t factcheck=%t wikipedia=%t",
		e.chatModel != nil, e.searcher != nil, e.checker != nil, e.wiki != nil)
	return e, nil
}

// Mode 返回当前分析模式，用于健康检查
func (e *Engine) Mode() map[string]bool {
	return map[string]bool{
		"llm":        e.chatModel != nil,
		"search":     e.searcher != nil,
		"fact_check": e.checker != nil,
		"wikipedia":  e.wiki != nil,
	}
}

// Analyze 分析一条声明 / 链接 / 图片，返回后端原始结果（由 normalize 包消费的宽松结构）
func (e *Engine) Analyze(ctx context.Context, req fm.AnalyzeRequest) (map[string]any, error) {
	started := e.now()
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	lang := normalizeLanguage(req.Language)

	switch contentType(req.ContentType) {
	case fm.ContentTypeText:
		return e.analyzeText(ctx, content, content, lang, "", started), nil
	case fm.ContentTypeURL:
		return e.analyzeURL(ctx, content, lang, started)
	case fm.ContentTypeImage:
		img, err := decodeImage(content)
		if err != nil {
			return nil, err
		}
		return e.imagePayload(img, lang, started), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, req.ContentType)
	}
}

func contentType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fm.ContentTypeText
	}
	return s
}

func newAnalysisID() string {
	return "analysis_" + uuid.NewString()
}
