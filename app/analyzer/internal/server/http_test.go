package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/conf"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/data"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/service"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/usecase"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/config"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/engine"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/sse"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	eng, err := engine.NewEngine(nil)
	require.NoError(t, err)
	uc := usecase.NewAnalysisUseCase(eng, data.NewMemoryResultRepo(10), log.DefaultLogger)
	srv := NewHTTPServer(&conf.Server{Http: &conf.HTTP{Timeout: "5s"}}, service.NewAnalyzerService(uc, log.DefaultLogger), log.DefaultLogger)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *nethttp.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := nethttp.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *nethttp.Response {
	t.Helper()
	resp, err := nethttp.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTP_AnalyzeThenFetchAndArchive(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/analyze", map[string]string{"content": "The singer died yesterday", "language": "en"})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	id, _ := body["id"].(string)
	require.True(t, strings.HasPrefix(id, "analysis_"), id)
	verdict := body["verdict"].(map[string]any)
	assert.Equal(t, engine.LabelFalse, verdict["label"])
	assert.EqualValues(t, 85, verdict["confidence"])

	resp = get(t, ts.URL+"/api/v1/results/"+id)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, id, decode(t, resp)["id"])

	resp = get(t, ts.URL+"/api/v1/archive?limit=5")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	archive := decode(t, resp)
	assert.EqualValues(t, 1, archive["total"])
	entries := archive["analyses"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].(map[string]any)["id"])
}

func TestHTTP_Errors(t *testing.T) {
	ts := newTestServer(t)

	resp := get(t, ts.URL+"/api/v1/results/missing")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "RESULT_NOT_FOUND", decode(t, resp)["reason"])

	resp = postJSON(t, ts.URL+"/api/v1/analyze", map[string]string{"content_type": "video", "content": "x"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/v1/analyze", map[string]string{"content": "   "})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/translate", map[string]string{"text": "hello", "target": "es"})
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "TRANSLATOR_UNAVAILABLE", decode(t, resp)["reason"])

	resp = postJSON(t, ts.URL+"/api/translate", map[string]string{"target": "es"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_AnalyzeBatch(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/analyze-batch", []map[string]string{
		{"content": "Vaccines cause infertility"},
		{"content": ""},
	})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.EqualValues(t, 2, body["total"])
	results := body["results"].([]any)
	require.Len(t, results, 2)

	first := results[0].(map[string]any)
	assert.Equal(t, true, first["success"])
	assert.Equal(t, "Health", first["result"].(map[string]any)["domain"])
	second := results[1].(map[string]any)
	assert.Equal(t, false, second["success"])
	assert.Contains(t, second["error"], "content is empty")

	resp = get(t, ts.URL+"/api/v1/archive")
	assert.EqualValues(t, 1, decode(t, resp)["total"])

	resp = postJSON(t, ts.URL+"/analyze-batch/text", []map[string]string{{"content": "The election was rigged"}})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode(t, resp)["total"])
}

func TestHTTP_AnalyzeBatchTooLarge(t *testing.T) {
	ts := newTestServer(t)

	items := make([]map[string]string, 11)
	for i := range items {
		items[i] = map[string]string{"content": "claim"}
	}
	resp := postJSON(t, ts.URL+"/api/v1/analyze-batch", items)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "BATCH_TOO_LARGE", body["reason"])
	assert.Equal(t, "Too many requests (max 10 per batch)", body["message"])

	resp = postJSON(t, ts.URL+"/api/v1/analyze-batch", map[string]string{"content": "not a list"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_Health(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		resp := get(t, ts.URL+path)
		require.Equal(t, nethttp.StatusOK, resp.StatusCode, path)
		body := decode(t, resp)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, service.Version, body["version"])
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "ok", checks["store"])
		assert.Equal(t, "mock", checks["llm"])
	}
}

func TestHTTP_VerifyImage(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/verify-image", map[string]string{"content": "iVBORw0KGgoAAAAA"})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	forensic := body["forensic"].(map[string]any)
	assert.Equal(t, "png", forensic["format"])

	resp = postJSON(t, ts.URL+"/api/v1/verify-image", map[string]string{"content": "plain text"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_VerifyStream(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/verify-stream", map[string]string{"content": "Vaccines contain microchips"})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var types []string
	var errs []error
	sse.Ingest(context.Background(), resp.Body, sse.Handlers{
		OnMessage: func(msg json.RawMessage) {
			var ev engine.Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			types = append(types, ev.Type)
		},
		OnError: func(err error) { errs = append(errs, err) },
	})
	require.Empty(t, errs)
	require.NotEmpty(t, types)
	assert.Equal(t, engine.EventMessage, types[0])
	assert.Contains(t, types, engine.EventResult)
	assert.Equal(t, engine.EventComplete, types[len(types)-1])

	// 流式结果同样会存档
	archive := decode(t, get(t, ts.URL+"/api/v1/archive"))
	assert.EqualValues(t, 1, archive["total"])
}

func TestHTTP_VerifyStreamErrors(t *testing.T) {
	ts := newTestServer(t)

	resp := get(t, ts.URL+"/api/v1/verify-stream")
	assert.Equal(t, nethttp.StatusMethodNotAllowed, resp.StatusCode)

	resp, err := nethttp.Post(ts.URL+"/api/v1/verify-image-stream", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp2 := postJSON(t, ts.URL+"/api/v1/verify-image-stream", map[string]string{"content": "not an image"})
	require.Equal(t, nethttp.StatusOK, resp2.StatusCode)
	raw, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"error"`)
}

func TestHTTP_CORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := nethttp.NewRequest(nethttp.MethodOptions, ts.URL+"/api/v1/analyze", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := nethttp.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestEngineConfig(t *testing.T) {
	cfg := engineConfig(nil)
	assert.Equal(t, 5, cfg.Concurrency.QPS)
	assert.False(t, cfg.LLM.Enabled())

	cfg = engineConfig(&conf.Engine{
		Llm:    &conf.LLM{BaseUrl: "http://llm", ApiKey: "k", Model: "m"},
		Search: &conf.Search{
			Provider: "searxng",
			Searxng:  &conf.SearXNG{BaseUrl: "http://sx"},
			Tavily:   &conf.Tavily{ApiKey: "t", IncludeAnswer: true},
		},
		Stream:    &conf.Stream{StepDelayMs: 250},
		Timeouts:  &conf.Timeouts{SearchMs: 1500},
		Wikipedia: &conf.Wikipedia{Enabled: true},
	})
	assert.True(t, cfg.LLM.Enabled())
	assert.Equal(t, "searxng", cfg.Search.Provider)
	assert.Equal(t, 30, cfg.Search.SearXNG.Timeout)
	assert.Equal(t, 250, int(cfg.Stream.StepDelay().Milliseconds()))
	assert.Equal(t, 60, cfg.Concurrency.RPM)
	assert.True(t, cfg.Search.Tavily.IncludeAnswer)
	assert.Equal(t, "advanced", cfg.Search.Tavily.SearchDepth)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeouts.Search())
	assert.Equal(t, 4*time.Second, cfg.Timeouts.FactCheck())
	assert.True(t, cfg.Wikipedia.Enabled)
	assert.Equal(t, config.DefaultWikipediaURL, cfg.Wikipedia.BaseURL)
}
