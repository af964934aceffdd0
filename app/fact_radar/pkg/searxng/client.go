// Package searxng 通过自建 SearXNG 实例检索报道，结果按 URL 去重。
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/search"
)

// 部分实例会拦截默认 UA
const userAgent = "Mozilla/5.0 (compatible; FactRadar/1.0; +https://github.com/iWorld-y/fact_radar)"

// Client SearXNG 客户端
type Client struct {
	endpoint *url.URL
	err      error
	http     *http.Client
}

// NewClient timeout 单位为秒，0 表示 30 秒；baseURL 可以带路径前缀
func NewClient(baseURL string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t <= 0 {
		t = 30 * time.Second
	}
	c := &Client{http: &http.Client{Timeout: t}}
	u, err := url.Parse(baseURL)
	if err != nil {
		c.err = fmt.Errorf("invalid searxng url: %w", err)
		return c
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/search"
	c.endpoint = u
	return c
}

var _ search.Searcher = (*Client)(nil)

type response struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		PublishedDate string  `json:"publishedDate"`
		Score         float64 `json:"score"`
	} `json:"results"`
	// 旧版本为字符串数组，新版本为 {"answer": ...} 对象数组
	Answers []json.RawMessage `json:"answers"`
}

// Search 查询 news 或 general 分类，跳过无链接与重复链接的结果
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	if c.err != nil {
		return nil, c.err
	}

	u := *c.endpoint
	q := url.Values{}
	q.Set("q", req.Query)
	q.Set("format", "json")
	q.Set("categories", category(req.Topic))
	if req.Language != "" {
		q.Set("language", req.Language)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build searxng request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("searxng request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("searxng api error (status %d): %s", res.StatusCode, body)
	}

	var out response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode searxng response: %w", err)
	}

	resp := &search.Response{Answer: firstAnswer(out.Answers)}
	seen := make(map[string]bool, len(out.Results))
	for _, r := range out.Results {
		if req.MaxResults > 0 && len(resp.Results) >= req.MaxResults {
			break
		}
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
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

func category(topic string) string {
	if topic == "news" {
		return "news"
	}
	return "general"
}

func firstAnswer(answers []json.RawMessage) string {
	for _, raw := range answers {
		var s string
		if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var obj struct {
			Answer string `json:"answer"`
		}
		if json.Unmarshal(raw, &obj) == nil && strings.TrimSpace(obj.Answer) != "" {
			return strings.TrimSpace(obj.Answer)
		}
	}
	return ""
}
