// Package client 是核查服务的类型化 HTTP 客户端，负责把后端响应归一化为 model.Result。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/logger"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/normalize"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/sse"
)

var (
	// ErrInvalidID 结果标识为空或格式不合法，未发起请求
	ErrInvalidID = errors.New("invalid result identifier")
	// ErrUnsupportedID 服务端不认识该结果标识
	ErrUnsupportedID = errors.New("unsupported result identifier")
	// ErrBatchSize 批量条数为 0 或超过 model.MaxBatchSize，未发起请求
	ErrBatchSize = errors.New("invalid batch size")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// HTTPError 非 2xx 响应或传输失败
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.StatusCode == 0 {
		return "request failed: " + e.Body
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// Client 核查服务客户端
type Client struct {
	baseURL  string
	language string
	http     *http.Client
}

// Option 客户端可选项
type Option func(*Client)

// WithHTTPClient 指定底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout 设置单次请求超时，流式请求同样受限
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLanguage 设置默认语言，调用时未指定语言时使用
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// New 创建客户端
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: "en",
		http:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze 提交一段文本声明
func (c *Client) Analyze(ctx context.Context, content, lang string) (model.Result, error) {
	return c.analyze(ctx, model.ContentTypeText, content, lang)
}

// AnalyzeURL 提交一个链接
func (c *Client) AnalyzeURL(ctx context.Context, rawURL, lang string) (model.Result, error) {
	return c.analyze(ctx, model.ContentTypeURL, rawURL, lang)
}

func (c *Client) analyze(ctx context.Context, contentType, content, lang string) (model.Result, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/analyze", model.AnalyzeRequest{
		ContentType: contentType,
		Content:     content,
		Language:    c.lang(lang),
	})
	if err != nil {
		return model.Result{}, err
	}

	result := normalize.NormalizeJSON(body)
	if result.Input == "" {
		result.Input = content
	}
	return result, nil
}

// BatchResult 批量分析中的一条，失败时 Error 非空
type BatchResult struct {
	Success bool         `json:"success"`
	Result  model.Result `json:"result"`
	Error   string       `json:"error,omitempty"`
}

// AnalyzeBatch 一次提交多条文本声明，返回顺序与 claims 一致
func (c *Client) AnalyzeBatch(ctx context.Context, claims []string, lang string) ([]BatchResult, error) {
	if len(claims) == 0 || len(claims) > model.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d (1-%d)", ErrBatchSize, len(claims), model.MaxBatchSize)
	}
	reqs := make([]model.AnalyzeRequest, len(claims))
	for i, claim := range claims {
		reqs[i] = model.AnalyzeRequest{ContentType: model.ContentTypeText, Content: claim, Language: c.lang(lang)}
	}

	body, err := c.do(ctx, http.MethodPost, "/api/v1/analyze-batch", reqs)
	if err != nil {
		return nil, err
	}
	var reply struct {
		Results []struct {
			Success bool            `json:"success"`
			Result  json.RawMessage `json:"result"`
			Error   string          `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}

	out := make([]BatchResult, len(reply.Results))
	for i, item := range reply.Results {
		out[i] = BatchResult{Success: item.Success, Error: item.Error}
		if !item.Success {
			continue
		}
		out[i].Result = normalize.NormalizeJSON(item.Result)
		if out[i].Result.Input == "" && i < len(claims) {
			out[i].Result.Input = claims[i]
		}
	}
	return out, nil
}

// VerifyImage 提交 base64 图片进行取证
func (c *Client) VerifyImage(ctx context.Context, imageBase64, lang string) (model.ImageVerification, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/verify-image", model.AnalyzeRequest{
		ContentType: model.ContentTypeImage,
		Content:     imageBase64,
		Language:    c.lang(lang),
	})
	if err != nil {
		return model.ImageVerification{}, err
	}

	var out model.ImageVerification
	if err := json.Unmarshal(body, &out); err != nil {
		return model.ImageVerification{}, fmt.Errorf("decode image verification: %w", err)
	}
	return out, nil
}

// GetResult 按标识获取历史结果
func (c *Client) GetResult(ctx context.Context, id string) (model.Result, error) {
	id = strings.TrimSpace(id)
	if !idPattern.MatchString(id) {
		return model.Result{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	body, err := c.do(ctx, http.MethodGet, "/api/v1/results/"+url.PathEscape(id), nil)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode != 0 {
			return model.Result{}, fmt.Errorf("%w %q: %w", ErrUnsupportedID, id, err)
		}
		return model.Result{}, err
	}

	result := normalize.NormalizeJSON(body)
	if result.ID == normalize.DefaultID {
		result.ID = id
	}
	return result, nil
}

// Translate 翻译文本；任何失败都返回占位译文 "[target] text"
func (c *Client) Translate(ctx context.Context, text, target string) string {
	placeholder := fmt.Sprintf("[%s] %s", target, text)

	body, err := c.do(ctx, http.MethodPost, "/api/translate", map[string]string{
		"text":   text,
		"target": target,
	})
	if err != nil {
		logger.Log.Debugf("translate failed, using placeholder: %v", err)
		return placeholder
	}

	var out struct {
		Translated string `json:"translated"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Translated == "" {
		return placeholder
	}
	return out.Translated
}

// ArchiveResponse /api/v1/archive 响应
type ArchiveResponse struct {
	Analyses []model.ArchiveEntry `json:"analyses"`
	Total    int                  `json:"total"`
}

// Archive 获取最近的核查记录
func (c *Client) Archive(ctx context.Context, limit int) (ArchiveResponse, error) {
	path := "/api/v1/archive"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return ArchiveResponse{}, err
	}

	var out ArchiveResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return ArchiveResponse{}, fmt.Errorf("decode archive: %w", err)
	}
	return out, nil
}

// Stream 发起一次流式 POST 请求，所有结果与错误均通过 handlers 回调
func (c *Client) Stream(ctx context.Context, path string, body any, h sse.Handlers) {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		h.Fail(err)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		h.Fail(&HTTPError{Body: err.Error()})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		h.Fail(&HTTPError{StatusCode: resp.StatusCode, Body: string(data)})
		return
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		h.Fail(&HTTPError{StatusCode: resp.StatusCode, Body: "response has no body"})
		return
	}

	sse.Ingest(ctx, resp.Body, h)
}

// StreamAnalysis 流式分析文本或链接
func (c *Client) StreamAnalysis(ctx context.Context, contentType, content, lang string, h sse.Handlers) {
	c.Stream(ctx, "/api/v1/verify-stream", model.AnalyzeRequest{
		ContentType: contentType,
		Content:     content,
		Language:    c.lang(lang),
	}, h)
}

// StreamImage 流式图片取证
func (c *Client) StreamImage(ctx context.Context, imageBase64, lang string, h sse.Handlers) {
	c.Stream(ctx, "/api/v1/verify-image-stream", model.AnalyzeRequest{
		ContentType: model.ContentTypeImage,
		Content:     imageBase64,
		Language:    c.lang(lang),
	}, h)
}

func (c *Client) lang(lang string) string {
	if lang == "" {
		lang = c.language
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	return tag.String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request failed: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do 执行一次请求，非 2xx 返回 *HTTPError
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &HTTPError{Body: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
