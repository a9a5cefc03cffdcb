package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/agenticdev/recipeclip/pkg/ai/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient records the prompt it receives and returns a canned reply
type stubClient struct {
	reply  string
	err    error
	called bool
}

func (s *stubClient) Complete(_ context.Context, _ string, _ bool) (string, error) {
	s.called = true
	return s.reply, s.err
}

const validModelReply = `{
	"title": "Lemon Pasta",
	"description": "Bright and simple.",
	"ingredients": [
		{"amount": "1", "unit": "lb", "item": "spaghetti", "notes": null},
		"Juice of 2 lemons"
	],
	"instructions": ["Boil the pasta.", "Toss with lemon juice."],
	"prep_time_minutes": 5,
	"cook_time_minutes": 12,
	"servings": 4
}`

func TestParseModelReply(t *testing.T) {
	recipe, err := parseModelReply(validModelReply, "https://example.com/pasta")
	require.NoError(t, err)

	assert.Equal(t, "Lemon Pasta", recipe.Title)
	assert.Equal(t, "https://example.com/pasta", recipe.SourceURL)

	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "spaghetti", recipe.Ingredients[0].Item)
	require.NotNil(t, recipe.Ingredients[0].Amount)
	assert.Equal(t, "1", *recipe.Ingredients[0].Amount)
	// bare string entries become item-only ingredients
	assert.Equal(t, "Juice of 2 lemons", recipe.Ingredients[1].Item)

	require.Len(t, recipe.Instructions, 2)
	require.NotNil(t, recipe.Servings)
	assert.Equal(t, 4, *recipe.Servings)
}

func TestParseModelReplyMalformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "Sure! Here is the recipe you asked for."},
		{"missing title", `{"ingredients": [], "instructions": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseModelReply(tt.reply, "https://example.com")
			require.Error(t, err)
			assert.ErrorIs(t, err, llm.ErrMalformedResponse)
		})
	}
}

func TestAIStrategyUnavailable(t *testing.T) {
	s := NewAIStrategy(nil, nil, nil)
	assert.False(t, s.Available())

	result, err := s.Extract(context.Background(), "content", "https://example.com", false)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestAIStrategyProviderSelection(t *testing.T) {
	tests := []struct {
		name       string
		claude     *stubClient
		openai     *stubClient
		preferFast bool
		wantClaude bool
	}{
		{"claude wins by default", &stubClient{reply: validModelReply}, &stubClient{reply: validModelReply}, false, true},
		{"prefer fast picks openai", &stubClient{reply: validModelReply}, &stubClient{reply: validModelReply}, true, false},
		{"prefer fast without openai keeps claude", &stubClient{reply: validModelReply}, nil, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claude, openai CompletionClient
			if tt.claude != nil {
				claude = tt.claude
			}
			if tt.openai != nil {
				openai = tt.openai
			}

			s := NewAIStrategy(claude, openai, nil)
			result, err := s.Extract(context.Background(), "content", "https://example.com", tt.preferFast)
			require.NoError(t, err)
			require.NotNil(t, result)

			if tt.wantClaude {
				assert.True(t, tt.claude.called)
				if tt.openai != nil {
					assert.False(t, tt.openai.called)
				}
			} else {
				assert.True(t, tt.openai.called)
				assert.False(t, tt.claude.called)
			}
		})
	}
}

func TestAIStrategyCostEstimate(t *testing.T) {
	claude := &stubClient{reply: validModelReply}
	s := NewAIStrategy(claude, nil, nil)

	result, err := s.Extract(context.Background(), "some page content", "https://example.com", false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Greater(t, result.CostCents, 0.0)
}

func TestAIStrategyProviderError(t *testing.T) {
	claude := &stubClient{err: errors.New("rate limited")}
	s := NewAIStrategy(claude, nil, nil)

	result, err := s.Extract(context.Background(), "content", "https://example.com", false)
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestAIStrategyTruncatesLongContent(t *testing.T) {
	claude := &stubClient{reply: validModelReply}
	s := NewAIStrategy(claude, nil, nil)

	long := make([]byte, maxPromptContentChars*3)
	for i := range long {
		long[i] = 'a'
	}

	result, err := s.Extract(context.Background(), string(long), "https://example.com", false)
	require.NoError(t, err)
	require.NotNil(t, result)
	// cost scales with prompt length, which the truncation caps
	capped := (llm.CountTokens(promptTemplate) + float64(maxPromptContentChars)/4 + llm.CountTokens(validModelReply)) * llm.ClaudeTokenPrice * 100
	assert.LessOrEqual(t, result.CostCents, capped+1)
}
