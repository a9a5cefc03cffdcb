package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [{"type": "text", "text": "{\"title\": \"Stew\"}"}]}`))
	}))
	defer server.Close()

	c := NewClaudeClient("test-key", nil)
	c.SetAPIURL(server.URL)

	reply, err := c.Complete(context.Background(), "extract this", false)
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Stew"}`, reply)
}

func TestClaudeClientErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := NewClaudeClient("test-key", nil)
		c.SetAPIURL(server.URL)

		_, err := c.Complete(context.Background(), "extract this", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"content": []}`))
		}))
		defer server.Close()

		c := NewClaudeClient("test-key", nil)
		c.SetAPIURL(server.URL)

		_, err := c.Complete(context.Background(), "extract this", false)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0.0, CountTokens(""))
	assert.Equal(t, 1.0, CountTokens("abcd"))
	assert.Equal(t, 2.5, CountTokens("abcdefghij"))
}
