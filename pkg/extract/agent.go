package extract

import (
	"context"

	"github.com/agenticdev/recipeclip/pkg/models"
)

// Agent is the single-strategy extraction path: fetch, extract, done.
// Unlike the recipe cascade there is no fallback — every failure is hard.
type Agent struct {
	fetcher *Fetcher
	content *ContentExtractor
}

// NewAgent creates the plain extraction agent
func NewAgent(fetcher *Fetcher, content *ContentExtractor) *Agent {
	return &Agent{fetcher: fetcher, content: content}
}

// Run fetches the URL and returns its title and plain text.
// Propagates ErrFetch and ErrNoContent to the caller.
func (a *Agent) Run(ctx context.Context, url string) (*models.ExtractionResponse, error) {
	html, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	text, err := a.content.Text(html, Options{IncludeTables: false, Deduplicate: false})
	if err != nil {
		return nil, err
	}

	return &models.ExtractionResponse{
		Status:      "success",
		URL:         url,
		Title:       a.content.Title(html),
		TextContent: text,
	}, nil
}
