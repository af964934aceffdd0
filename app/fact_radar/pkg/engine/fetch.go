package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-shiori/go-readability"
)

// Page 抽取出的网页正文
type Page struct {
	Title string
	Text  string
}

// PageFetcher 抓取并抽取网页正文
type PageFetcher func(ctx context.Context, rawURL string) (Page, error)

const fetchUserAgent = "Mozilla/5.0 (compatible; FactRadar/1.0)"

// newReadableFetcher 用 hc 抓取页面，请求随 ctx 取消
func newReadableFetcher(hc *http.Client) PageFetcher {
	return func(ctx context.Context, rawURL string) (Page, error) {
		u, err := url.Parse(rawURL)
		if err != nil {
			return Page{}, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return Page{}, err
		}
		req.Header.Set("User-Agent", fetchUserAgent)

		resp, err := hc.Do(req)
		if err != nil {
			return Page{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return Page{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		article, err := readability.FromReader(resp.Body, u)
		if err != nil {
			return Page{}, err
		}
		return Page{Title: article.Title, Text: article.TextContent}, nil
	}
}
