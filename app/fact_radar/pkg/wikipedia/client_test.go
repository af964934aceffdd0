package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	assert.Equal(t, "Great_Wall_of_China", Title("Great Wall of China"))
	assert.Equal(t, "Is_the_Great_Wall_visible", Title("Is the Great Wall visible from space?"))
	assert.Equal(t, "Moon_landing", Title("  Moon landing.  "))
	assert.Empty(t, Title(" ?! "))
}

func TestClient_Summary(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"standard","title":"Great Wall of China","extract":" A series of fortifications. ",
			"content_urls":{"desktop":{"page":"https://en.wikipedia.org/wiki/Great_Wall_of_China"}}}`))
	}))
	defer srv.Close()

	s, err := NewClient(srv.URL+"/", time.Second).Summary(context.Background(), "Great Wall of China")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "/page/summary/Great_Wall_of_China", path)
	assert.Equal(t, "Great Wall of China", s.Title)
	assert.Equal(t, "A series of fortifications.", s.Extract)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Great_Wall_of_China", s.URL)
}

func TestClient_SummaryMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page/summary/Mercury":
			w.Write([]byte(`{"type":"disambiguation","title":"Mercury","extract":"Mercury may refer to:"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	s, err := c.Summary(context.Background(), "Mercury")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = c.Summary(context.Background(), "Nonexistent thing")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestClient_SummaryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Summary(context.Background(), "Moon")
	assert.ErrorContains(t, err, "status 503")
}
