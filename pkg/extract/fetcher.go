// Package extract fetches web pages and isolates their readable content.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrFetch means the page could not be retrieved
	ErrFetch = errors.New("fetch error")

	// ErrNoContent means no usable text could be extracted from the page
	ErrNoContent = errors.New("no extractable content")
)

const (
	fetchTimeout     = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; RecipeBot/1.0)"
)

// Fetcher retrieves raw HTML over HTTP with a fixed timeout
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with the standard 10s timeout
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch retrieves the HTML content of the given URL
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %d for %s", ErrFetch, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response body: %v", ErrFetch, err)
	}

	return string(body), nil
}
