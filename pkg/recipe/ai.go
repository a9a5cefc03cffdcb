package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenticdev/recipeclip/pkg/ai/llm"
	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/agenticdev/recipeclip/pkg/models"
)

// maxPromptContentChars limits the page text sent to the model to keep
// token spend bounded
const maxPromptContentChars = 4000

const promptTemplate = `Extract the recipe from this content and return ONLY valid JSON matching this exact structure:
{
  "title": "Recipe Title",
  "description": "Brief description or null",
  "ingredients": [
    {"amount": "2", "unit": "cups", "item": "flour", "notes": "sifted"},
    {"amount": null, "unit": null, "item": "Salt to taste", "notes": null}
  ],
  "instructions": [
    "Step 1 text",
    "Step 2 text"
  ],
  "prep_time_minutes": 15,
  "cook_time_minutes": 30,
  "total_time_minutes": 45,
  "servings": 4,
  "cuisine": "Italian",
  "course": "main",
  "difficulty": "easy",
  "calories_per_serving": 350,
  "author": "Author Name"
}

Content to extract from:
%s

Return ONLY the JSON object, no other text.`

// CompletionClient is the provider-neutral surface both LLM clients expose
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, preferFast bool) (string, error)
}

// AIStrategy parses recipes with a language model. Claude is preferred
// unless the caller asks for the fast path and an OpenAI key exists.
type AIStrategy struct {
	claude CompletionClient
	openai CompletionClient
	logger logger.Logger
}

// NewAIStrategy creates the AI extraction strategy. Either client may be
// nil; with both nil the strategy reports itself unavailable.
func NewAIStrategy(claude, openai CompletionClient, log logger.Logger) *AIStrategy {
	if log == nil {
		log = logger.Default()
	}
	return &AIStrategy{claude: claude, openai: openai, logger: log}
}

// Available reports whether at least one provider is configured
func (s *AIStrategy) Available() bool {
	return s.claude != nil || s.openai != nil
}

// aiResult carries the parsed recipe together with the estimated spend
type aiResult struct {
	Recipe    *models.RecipeData
	CostCents float64
}

// Extract asks the configured model for a structured recipe. Failures are
// soft by design: the caller falls through to the heuristic strategy.
func (s *AIStrategy) Extract(ctx context.Context, content, sourceURL string, preferFast bool) (*aiResult, error) {
	if !s.Available() {
		return nil, nil
	}

	if len(content) > maxPromptContentChars {
		content = content[:maxPromptContentChars]
	}
	prompt := fmt.Sprintf(promptTemplate, content)

	var (
		client     CompletionClient
		tokenPrice float64
	)
	if s.claude != nil && (!preferFast || s.openai == nil) {
		client = s.claude
		tokenPrice = llm.ClaudeTokenPrice
	} else {
		client = s.openai
		tokenPrice = llm.OpenAITokenPrice
	}

	reply, err := client.Complete(ctx, prompt, preferFast)
	if err != nil {
		return nil, err
	}

	recipe, err := parseModelReply(reply, sourceURL)
	if err != nil {
		return nil, err
	}

	tokens := llm.CountTokens(prompt) + llm.CountTokens(reply)
	return &aiResult{
		Recipe:    recipe,
		CostCents: tokens * tokenPrice * 100,
	}, nil
}

// aiRecipe mirrors the JSON schema the prompt demands. Ingredients stay
// raw because models sometimes return bare strings in the list.
type aiRecipe struct {
	Title              string            `json:"title"`
	Description        *string           `json:"description"`
	Ingredients        []json.RawMessage `json:"ingredients"`
	Instructions       []string          `json:"instructions"`
	PrepTimeMinutes    *int              `json:"prep_time_minutes"`
	CookTimeMinutes    *int              `json:"cook_time_minutes"`
	TotalTimeMinutes   *int              `json:"total_time_minutes"`
	Servings           *int              `json:"servings"`
	Cuisine            *string           `json:"cuisine"`
	Course             *string           `json:"course"`
	Difficulty         *string           `json:"difficulty"`
	CaloriesPerServing *int              `json:"calories_per_serving"`
	Author             *string           `json:"author"`
}

func parseModelReply(reply, sourceURL string) (*models.RecipeData, error) {
	var parsed aiRecipe
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	if parsed.Title == "" {
		return nil, fmt.Errorf("%w: missing title", llm.ErrMalformedResponse)
	}

	ingredients := make([]models.Ingredient, 0, len(parsed.Ingredients))
	for _, raw := range parsed.Ingredients {
		var ing models.Ingredient
		if err := json.Unmarshal(raw, &ing); err == nil && ing.Item != "" {
			ingredients = append(ingredients, ing)
			continue
		}
		var item string
		if err := json.Unmarshal(raw, &item); err == nil {
			ingredients = append(ingredients, models.Ingredient{Item: item})
		}
	}

	instructions := parsed.Instructions
	if instructions == nil {
		instructions = []string{}
	}

	return &models.RecipeData{
		Title:              parsed.Title,
		Description:        parsed.Description,
		Ingredients:        ingredients,
		Instructions:       instructions,
		PrepTimeMinutes:    parsed.PrepTimeMinutes,
		CookTimeMinutes:    parsed.CookTimeMinutes,
		TotalTimeMinutes:   parsed.TotalTimeMinutes,
		Servings:           parsed.Servings,
		Cuisine:            parsed.Cuisine,
		Course:             parsed.Course,
		Difficulty:         parsed.Difficulty,
		CaloriesPerServing: parsed.CaloriesPerServing,
		Author:             parsed.Author,
		SourceURL:          sourceURL,
	}, nil
}
