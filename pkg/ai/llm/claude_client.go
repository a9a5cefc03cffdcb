package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agenticdev/recipeclip/pkg/logger"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	claudeModel      = "claude-3-haiku-20240307"
)

// ClaudeClient wraps the Anthropic messages API
type ClaudeClient struct {
	apiKey     string
	apiURL     string
	maxTokens  int
	httpClient *http.Client
	logger     logger.Logger
}

// NewClaudeClient creates a new Anthropic client
func NewClaudeClient(apiKey string, log logger.Logger) *ClaudeClient {
	if log == nil {
		log = logger.Default()
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		apiURL:     anthropicAPIURL,
		maxTokens:  2000,
		httpClient: &http.Client{Timeout: providerTimeout},
		logger:     log,
	}
}

// SetAPIURL overrides the API endpoint (used in tests)
func (c *ClaudeClient) SetAPIURL(url string) {
	c.apiURL = url
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends a single-prompt message request and returns the reply text
func (c *ClaudeClient) Complete(ctx context.Context, prompt string, _ bool) (string, error) {
	payload, err := json.Marshal(claudeRequest{
		Model:     claudeModel,
		MaxTokens: c.maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("claude completion failed", "error", err, "duration", duration.String())
		return "", fmt.Errorf("claude request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("claude returned status %d: %s", resp.StatusCode, body)
	}

	var reply claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(reply.Content) == 0 {
		return "", fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	c.logger.Debug("claude completion", "model", claudeModel, "duration", duration.String())
	return reply.Content[0].Text, nil
}
