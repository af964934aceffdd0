// Package tavily 是面向事实核查的 Tavily 搜索客户端：默认深度检索并附带简短结论。
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/search"
)

const (
	defaultBaseURL = "https://api.tavily.com/search"
	defaultTimeout = 10 * time.Second

	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// Client Tavily API 客户端
type Client struct {
	apiKey        string
	baseURL       string
	depth         string
	includeAnswer bool
	http          *http.Client
}

// Option 客户端可选项
type Option func(*Client)

// WithSearchDepth 设置检索深度 basic | advanced
func WithSearchDepth(depth string) Option {
	return func(c *Client) {
		if depth == DepthBasic || depth == DepthAdvanced {
			c.depth = depth
		}
	}
}

// WithAnswer 请求 Tavily 对检索结果给出一句话结论
func WithAnswer(on bool) Option {
	return func(c *Client) { c.includeAnswer = on }
}

// WithTimeout 单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// NewClient 创建客户端，baseURL 为空时使用官方地址
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		depth:   DepthAdvanced,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ search.Searcher = (*Client)(nil)

type request struct {
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	Topic         string `json:"topic"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type response struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

// Search 检索与声明相关的报道，结果按 Tavily 的相关度排序
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	body := request{
		Query:         req.Query,
		SearchDepth:   c.depth,
		Topic:         req.Topic,
		MaxResults:    req.MaxResults,
		IncludeAnswer: c.includeAnswer,
	}
	if body.Topic == "" {
		body.Topic = "general"
	}
	if body.MaxResults <= 0 {
		body.MaxResults = 5
	}

	var out response
	if err := c.post(ctx, body, &out); err != nil {
		return nil, err
	}

	resp := &search.Response{Answer: out.Answer, Results: make([]search.Result, 0, len(out.Results))}
	for _, r := range out.Results {
		resp.Results = append(resp.Results, search.Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal tavily request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build tavily request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("tavily request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("tavily api error (status %d): %s", res.StatusCode, msg)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tavily response: %w", err)
	}
	return nil
}
