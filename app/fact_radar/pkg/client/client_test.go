package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/sse"
)

func decodeRequest(t *testing.T, r *http.Request) model.AnalyzeRequest {
	t.Helper()
	var req model.AnalyzeRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestAnalyze_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req := decodeRequest(t, r)
		assert.Equal(t, model.AnalyzeRequest{ContentType: "text", Content: "Vaccines cause infertility", Language: "en"}, req)

		_, _ = w.Write([]byte(`{
			"verdict": {"label": "❌ False", "confidence": 82},
			"evidence": [
				{"source": "WHO", "url": "https://who.int", "snippet": "No link found"},
				{"title": "CDC"}
			]
		}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Analyze(context.Background(), "Vaccines cause infertility", "")
	require.NoError(t, err)

	assert.Equal(t, "Vaccines cause infertility", res.Input)
	assert.Equal(t, 82, res.Verdict.Confidence)
	require.NotNil(t, res.Verdict.Breakdown)
	assert.Equal(t, 90, res.Verdict.Breakdown.CrossMedia)
	assert.Equal(t, 82, res.Verdict.Breakdown.ModelConsensus)
	require.Len(t, res.Evidence, 2)
	assert.Equal(t, model.Evidence{Title: "CDC", URL: "#", Note: "Evidence snippet"}, res.Evidence[1])
}

func TestAnalyzeURL_LanguageHandling(t *testing.T) {
	var got model.AnalyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = decodeRequest(t, r)
		_, _ = w.Write([]byte(`{"input": "https://example.com/story"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithLanguage("hi"))

	res, err := c.AnalyzeURL(context.Background(), "https://example.com/story", "")
	require.NoError(t, err)
	assert.Equal(t, "url", got.ContentType)
	assert.Equal(t, "hi", got.Language)
	assert.Equal(t, "https://example.com/story", res.Input)

	_, err = c.AnalyzeURL(context.Background(), "https://example.com/story", "pt_br")
	require.NoError(t, err)
	assert.Equal(t, "pt-BR", got.Language)
}

func TestAnalyze_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), "x", "en")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "engine exploded", httpErr.Body)
	assert.Equal(t, "http 500: engine exploded", err.Error())
}

func TestAnalyze_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), "x", "en")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Zero(t, httpErr.StatusCode)
}

func TestVerifyImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/verify-image", r.URL.Path)
		assert.Equal(t, "image", decodeRequest(t, r).ContentType)
		_, _ = w.Write([]byte(`{
			"forensic": {"format": "png", "size_bytes": 19, "sha256": "ab", "manipulation_score": 12, "findings": ["ok"]},
			"ocr_text": "",
			"fact_check": {"label": "⚠️ Caution", "confidence": 88, "summary": "verify"},
			"education": ["reverse search"]
		}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).VerifyImage(context.Background(), "iVBORw0KGgo=", "en")
	require.NoError(t, err)
	assert.Equal(t, "png", res.Forensic.Format)
	assert.Equal(t, 12, res.Forensic.ManipulationScore)
	assert.Equal(t, 88, res.FactCheck.Confidence)
	assert.Equal(t, []string{"reverse search"}, res.Education)
}

func TestGetResult(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/api/v1/results/analysis_1":
			_, _ = w.Write([]byte(`{"verdict": {"confidence": 40}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code": 404, "reason": "RESULT_NOT_FOUND"}`))
		}
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	for _, id := range []string{"", "   ", "../etc/passwd", "a b", "_leading"} {
		_, err := c.GetResult(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
	}
	assert.Zero(t, hits.Load(), "invalid ids must not reach the network")

	res, err := c.GetResult(ctx, "analysis_1")
	require.NoError(t, err)
	assert.Equal(t, "analysis_1", res.ID)
	assert.Equal(t, 40, res.Verdict.Confidence)

	_, err = c.GetResult(ctx, "demo-42")
	assert.ErrorIs(t, err, ErrUnsupportedID)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, err.Error(), "RESULT_NOT_FOUND")
}

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch body["target"] {
		case "es":
			_, _ = w.Write([]byte(`{"translated": "hola"}`))
		case "fr":
			_, _ = w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	assert.Equal(t, "hola", c.Translate(ctx, "hello", "es"))
	assert.Equal(t, "[fr] hello", c.Translate(ctx, "hello", "fr"))
	assert.Equal(t, "[hi] hello", c.Translate(ctx, "hello", "hi"))

	srv.Close()
	assert.Equal(t, "[es] hello", c.Translate(ctx, "hello", "es"))
}

func TestArchive(t *testing.T) {
	created := time.Date(2026, 9, 30, 8, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(ArchiveResponse{
			Analyses: []model.ArchiveEntry{{ID: "analysis_1", Verdict: "❌ False", Confidence: 85, CreatedAt: created}},
			Total:    1,
		})
	}))
	defer srv.Close()

	out, err := New(srv.URL).Archive(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Analyses, 1)
	assert.True(t, created.Equal(out.Analyses[0].CreatedAt))
}

func TestAnalyzeBatch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/v1/analyze-batch", r.URL.Path)
		var reqs []model.AnalyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqs))
		require.Len(t, reqs, 2)
		assert.Equal(t, model.AnalyzeRequest{ContentType: "text", Content: "Cats can fly", Language: "fr"}, reqs[0])

		_, _ = w.Write([]byte(`{"results":[
			{"success":true,"result":{"id":"analysis_1","verdict":{"label":"❌ False","confidence":85}}},
			{"success":false,"error":"content is empty"}
		],"total":2}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	out, err := c.AnalyzeBatch(context.Background(), []string{"Cats can fly", " "}, "fr")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Success)
	assert.Equal(t, "analysis_1", out[0].Result.ID)
	assert.Equal(t, "Cats can fly", out[0].Result.Input)
	assert.Equal(t, 85, out[0].Result.Verdict.Confidence)
	assert.False(t, out[1].Success)
	assert.Equal(t, "content is empty", out[1].Error)

	_, err = c.AnalyzeBatch(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrBatchSize)
	_, err = c.AnalyzeBatch(context.Background(), make([]string, model.MaxBatchSize+1), "")
	assert.ErrorIs(t, err, ErrBatchSize)
	assert.EqualValues(t, 1, calls.Load())
}

type streamRecorder struct {
	messages  []string
	errs      []error
	completed int
}

func (s *streamRecorder) handlers() sse.Handlers {
	return sse.Handlers{
		OnMessage:  func(m json.RawMessage) { s.messages = append(s.messages, string(m)) },
		OnError:    func(err error) { s.errs = append(s.errs, err) },
		OnComplete: func() { s.completed++ },
	}
}

func TestStreamAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/verify-stream", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		sw, err := sse.NewWriter(w)
		require.NoError(t, err)
		_ = sw.Send(map[string]string{"type": "message"})
		_ = sw.Comment("heartbeat")
		_, _ = fmt.Fprint(w, "data: :heartbeat\n\n")
		_ = sw.Send(map[string]string{"type": "complete"})
		_, _ = fmt.Fprint(w, "data: {\"partial\"")
	}))
	defer srv.Close()

	rec := &streamRecorder{}
	New(srv.URL).StreamAnalysis(context.Background(), model.ContentTypeText, "claim", "en", rec.handlers())

	assert.Equal(t, []string{`{"type":"message"}`, `{"type":"complete"}`}, rec.messages)
	assert.Empty(t, rec.errs)
	assert.Equal(t, 1, rec.completed)
}

func TestStream_FailingStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := &streamRecorder{}
	assert.NotPanics(t, func() {
		New(srv.URL).StreamImage(context.Background(), "abc", "en", rec.handlers())
	})

	require.Len(t, rec.errs, 1)
	var httpErr *HTTPError
	require.True(t, errors.As(rec.errs[0], &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "boom")
	assert.Empty(t, rec.messages)
	assert.Zero(t, rec.completed)
}

func TestStream_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	rec := &streamRecorder{}
	New(srv.URL, WithTimeout(time.Second)).Stream(context.Background(), "/x", nil, rec.handlers())
	require.Len(t, rec.errs, 1)
	assert.Zero(t, rec.completed)
}
