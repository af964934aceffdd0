package searxng

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/search"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searx/search", r.URL.Path)
		assert.Equal(t, "election fraud", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "news", r.URL.Query().Get("categories"))
		assert.Equal(t, "de", r.URL.Query().Get("language"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		w.Write([]byte(`{"answers":[{"answer":"No evidence of widespread fraud."}],"results":[
			{"title":"a","url":"https://a.example"},
			{"title":"a again","url":"https://a.example"},
			{"title":"no link"},
			{"title":"b","url":"https://b.example","score":1.5},
			{"title":"c","url":"https://c.example"}
		]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/searx/", 5).Search(context.Background(), &search.Request{
		Query: "election fraud", Topic: "news", Language: "de", MaxResults: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "No evidence of widespread fraud.", resp.Answer)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "a", resp.Results[0].Title)
	assert.Equal(t, "b", resp.Results[1].Title)
	assert.InDelta(t, 1.5, resp.Results[1].Score, 1e-9)
}

func TestClient_SearchLegacyAnswers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "general", r.URL.Query().Get("categories"))
		assert.Empty(t, r.URL.Query().Get("language"))
		w.Write([]byte(`{"answers":["", " 42 "],"results":[]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, 0).Search(context.Background(), &search.Request{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "42", resp.Answer)
	assert.Empty(t, resp.Results)
}

func TestClient_SearchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Search(context.Background(), &search.Request{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")

	_, err = NewClient("://bad", 0).Search(context.Background(), &search.Request{Query: "q"})
	assert.ErrorContains(t, err, "invalid searxng url")
}
