package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-digest/pkg/fetch"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
)

func newURLEngine() *Engine {
	return NewEngine(fetch.New(httpclient.NewRestyClient(5*time.Second), nil), nil)
}

func TestExtractFromURL(t *testing.T) {
	body := strings.Repeat("Paragraph of genuine article body text for the fetch path. ", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><article>%s</article></body></html>", body)
	}))
	defer srv.Close()

	got, ok := newURLEngine().ExtractFromURL(context.Background(), srv.URL, 0)
	require.True(t, ok)
	assert.Contains(t, got, "genuine article body")
}

func TestExtractFromURLNonHTML(t *testing.T) {
	text := strings.Repeat("plain text payload ", 50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, text)
	}))
	defer srv.Close()

	got, ok := newURLEngine().ExtractFromURL(context.Background(), srv.URL, 100)
	require.True(t, ok)
	// Non-HTML bodies are clipped without the truncation marker.
	assert.Len(t, got, 100)
	assert.False(t, strings.HasSuffix(got, TruncationMarker))
}

func TestExtractFromURLNonHTMLKeepsValidUTF8(t *testing.T) {
	text := strings.Repeat("খবর ", 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, text)
	}))
	defer srv.Close()

	got, ok := newURLEngine().ExtractFromURL(context.Background(), srv.URL, 100)
	require.True(t, ok)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 100)
}

func TestExtractFromURLFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	got, ok := newURLEngine().ExtractFromURL(context.Background(), srv.URL, 0)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestExtractFromURLWithoutFetcher(t *testing.T) {
	engine := NewEngine(nil, nil)
	got, ok := engine.ExtractFromURL(context.Background(), "https://example.com/a", 0)
	assert.False(t, ok)
	assert.Empty(t, got)
}
