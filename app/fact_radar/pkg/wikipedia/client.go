// Package wikipedia 通过 REST summary 接口为声明补充百科背景。
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://en.wikipedia.org/api/rest_v1"

// maxTitleWords 声明通常是整句，只取前几个词作为条目名
const maxTitleWords = 5

// Summary 条目摘要
type Summary struct {
	Title   string
	Extract string
	URL     string
}

// Encyclopedia 百科检索
type Encyclopedia interface {
	// Summary 未找到条目时返回 nil, nil
	Summary(ctx context.Context, query string) (*Summary, error)
}

// Client Wikipedia REST 客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建客户端，baseURL 为空时使用英文维基
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

var _ Encyclopedia = (*Client)(nil)

type summaryResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Summary 查询条目摘要
func (c *Client) Summary(ctx context.Context, query string) (*Summary, error) {
	title := Title(query)
	if title == "" {
		return nil, nil
	}

	endpoint := c.baseURL + "/page/summary/" + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build wikipedia request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("wikipedia api error (status %d): %s", resp.StatusCode, body)
	}

	var out summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode wikipedia response: %w", err)
	}
	// 消歧义页没有可用摘要
	if out.Type == "disambiguation" || strings.TrimSpace(out.Extract) == "" {
		return nil, nil
	}

	page := out.ContentURLs.Desktop.Page
	if page == "" {
		page = "https://en.wikipedia.org/wiki/" + url.PathEscape(title)
	}
	return &Summary{Title: out.Title, Extract: strings.TrimSpace(out.Extract), URL: page}, nil
}

// Title 把声明转换为条目名：取前几个词，空格替换为下划线
func Title(query string) string {
	words := strings.FieldsFunc(query, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '?' || r == '!' || r == ','
	})
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	return strings.TrimRight(strings.Join(words, "_"), ".")
}
