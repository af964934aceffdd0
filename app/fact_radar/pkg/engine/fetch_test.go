package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<html><head><title>Council vote</title></head><body>
<article><h1>Council vote</h1>
<p>The city council voted on Tuesday to extend the library opening hours across all districts.</p>
<p>The measure passed with a large majority after a long public consultation that lasted several months.</p>
<p>Officials said the new schedule will start next month and will be reviewed after one year.</p>
<p>Librarians welcomed the decision, noting that evening visits have grown steadily since the pandemic ended.</p>
<p>Opponents argued the extra staffing costs should have been covered by savings elsewhere in the city budget.</p>
<p>A spokesperson for the mayor said funding had already been set aside and no new taxes would be required.</p>
</article></body></html>`

func TestReadableFetcher(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	fetch := newReadableFetcher(srv.Client())

	page, err := fetch(context.Background(), srv.URL+"/news")
	require.NoError(t, err)
	assert.Equal(t, fetchUserAgent, ua)
	assert.Contains(t, page.Text, "library opening hours")

	_, err = fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestReadableFetcher_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newReadableFetcher(&http.Client{})(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
