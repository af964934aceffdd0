package factcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "vaccines cause infertility", q.Get("query"))
		assert.Equal(t, "fc-key", q.Get("key"))
		assert.Equal(t, "3", q.Get("pageSize"))
		assert.Equal(t, "en", q.Get("languageCode"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"claims": [{
			"text": "Vaccines cause infertility",
			"claimant": "social media",
			"claimReview": [{
				"publisher": {"name": "Reuters", "site": "reuters.com"},
				"url": "https://www.reuters.com/fact-check/x",
				"title": "Fact Check: no link",
				"textualRating": "False"
			}]
		}]}`))
	}))
	defer srv.Close()

	claims, err := NewClient("fc-key", srv.URL, 3).Search(context.Background(), "vaccines cause infertility", "en")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "social media", claims[0].Claimant)
	require.Len(t, claims[0].Reviews, 1)
	assert.Equal(t, Review{
		Publisher: "Reuters",
		Site:      "reuters.com",
		URL:       "https://www.reuters.com/fact-check/x",
		Title:     "Fact Check: no link",
		Rating:    "False",
	}, claims[0].Reviews[0])
}

func TestClient_SearchEmptyAndError(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer empty.Close()

	claims, err := NewClient("k", empty.URL, 0).Search(context.Background(), "q", "")
	require.NoError(t, err)
	assert.Empty(t, claims)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "API key not valid", http.StatusBadRequest)
	}))
	defer failing.Close()

	_, err = NewClient("k", failing.URL, 0).Search(context.Background(), "q", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}
