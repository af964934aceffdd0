// Package factcheck 封装 Google Fact Check Tools 的 claims:search 接口。
package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Checker 查询已有的专业事实核查结论
type Checker interface {
	Search(ctx context.Context, query, language string) ([]Claim, error)
}

// Claim 一条被核查过的声明
type Claim struct {
	Text     string   `json:"text"`
	Claimant string   `json:"claimant"`
	Reviews  []Review `json:"reviews"`
}

// Review 核查机构给出的评级
type Review struct {
	Publisher string `json:"publisher"`
	Site      string `json:"site"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Rating    string `json:"rating"`
}

// Client Fact Check Tools API 客户端
type Client struct {
	apiKey   string
	baseURL  string
	pageSize int
	client   *http.Client
}

// NewClient 创建一个新的 Fact Check 客户端
func NewClient(apiKey, baseURL string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		pageSize: pageSize,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

var _ Checker = (*Client)(nil)

type searchResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Search 按声明文本查询核查记录
func (c *Client) Search(ctx context.Context, query, language string) ([]Claim, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("key", c.apiKey)
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	if language != "" {
		q.Set("languageCode", language)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("fact check api error (status %d): %s", res.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	claims := make([]Claim, 0, len(sr.Claims))
	for _, c := range sr.Claims {
		claim := Claim{Text: c.Text, Claimant: c.Claimant}
		for _, r := range c.ClaimReview {
			claim.Reviews = append(claim.Reviews, Review{
				Publisher: r.Publisher.Name,
				Site:      r.Publisher.Site,
				URL:       r.URL,
				Title:     r.Title,
				Rating:    r.TextualRating,
			})
		}
		claims = append(claims, claim)
	}
	return claims, nil
}
