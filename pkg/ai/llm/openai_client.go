// Package llm wraps the language-model providers used for recipe parsing.
// Both clients expose the same Complete shape so the extraction strategy
// can treat them interchangeably.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// ErrMalformedResponse means the model reply was not the JSON we asked for
var ErrMalformedResponse = errors.New("malformed model response")

// Per-token prices in dollars, used for rough cost estimates
const (
	OpenAITokenPrice = 0.0005 / 1000
	ClaudeTokenPrice = 0.003 / 1000
)

const providerTimeout = 30 * time.Second

// OpenAIClient wraps the OpenAI chat completion API
type OpenAIClient struct {
	client      *openai.Client
	temperature float32
	maxTokens   int
	logger      logger.Logger
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string, log logger.Logger) *OpenAIClient {
	if log == nil {
		log = logger.Default()
	}
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		temperature: 0.1,
		maxTokens:   2000,
		logger:      log,
	}
}

// Complete sends a single-prompt chat completion and returns the reply text.
// preferFast picks the cheaper model.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, preferFast bool) (string, error) {
	model := openai.GPT4oMini
	if preferFast {
		model = openai.GPT3Dot5Turbo
	}

	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a recipe extraction assistant. Return only valid JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("openai completion failed", "error", err, "duration", duration.String())
		return "", fmt.Errorf("openai chat failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	c.logger.Debug("openai completion", "model", model, "tokens", resp.Usage.TotalTokens, "duration", duration.String())
	return resp.Choices[0].Message.Content, nil
}

// CountTokens estimates the number of tokens in a text.
// Rough estimate: ~4 characters per token.
func CountTokens(text string) float64 {
	return float64(len(text)) / 4
}
