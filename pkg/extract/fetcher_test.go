package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0 (compatible; RecipeBot/1.0)", r.Header.Get("User-Agent"))
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	f := NewFetcher()
	html, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "hello")
}

func TestFetcherFetchErrors(t *testing.T) {
	f := NewFetcher()

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := f.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFetch)
	})

	t.Run("unreachable host", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), "http://127.0.0.1:1")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFetch)
	})
}

func TestAgentRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Agent Page</title></head><body><p>Readable body text.</p></body></html>`))
	}))
	defer server.Close()

	agent := NewAgent(NewFetcher(), NewContentExtractor())
	result, err := agent.Run(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, server.URL, result.URL)
	assert.Equal(t, "Agent Page", result.Title)
	assert.Contains(t, result.TextContent, "Readable body text.")
}
