package recipe

import (
	"strings"

	"github.com/agenticdev/recipeclip/pkg/models"
)

// instructionKeywords mark the start of the instruction section
var instructionKeywords = []string{"instructions", "directions", "method", "steps"}

// HeuristicParse is the last-resort extraction: bucket plain-text lines
// into ingredients and instructions by section keywords. It always
// produces a recipe, padding empty sections with placeholder entries.
func HeuristicParse(text, sourceURL string) *models.RecipeData {
	lines := strings.Split(text, "\n")

	// The title is usually one of the first non-empty lines; anything
	// longer than 100 chars is body text, not a title.
	title := "Recipe"
	limit := len(lines)
	if limit > 10 {
		limit = 10
	}
	for _, line := range lines[:limit] {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && len(line) < 100 {
			title = trimmed
			break
		}
	}

	var ingredients []models.Ingredient
	inIngredients := false
	for _, line := range lines {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "ingredients"):
			inIngredients = true
		case containsAny(lower, instructionKeywords):
			inIngredients = false
		case inIngredients && strings.TrimSpace(line) != "":
			ingredients = append(ingredients, models.Ingredient{Item: strings.TrimSpace(line)})
		}
	}

	var instructions []string
	inInstructions := false
	for _, line := range lines {
		lower := strings.ToLower(line)
		trimmed := strings.TrimSpace(line)
		switch {
		case containsAny(lower, instructionKeywords):
			inInstructions = true
		case inInstructions && trimmed != "" && len(trimmed) > 10:
			instructions = append(instructions, trimmed)
		}
	}

	if len(ingredients) == 0 {
		ingredients = []models.Ingredient{{Item: "See original recipe for ingredients"}}
	}
	if len(instructions) == 0 {
		instructions = []string{"See original recipe for instructions"}
	}

	return &models.RecipeData{
		Title:        title,
		Ingredients:  ingredients,
		Instructions: instructions,
		SourceURL:    sourceURL,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
