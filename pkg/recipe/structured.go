// Package recipe implements the multi-strategy recipe extraction cascade:
// structured data first, then AI parsing, then a line-based heuristic.
package recipe

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/agenticdev/recipeclip/pkg/extract"
	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/agenticdev/recipeclip/pkg/models"
)

// Strategy-specific confidence constants. Fixed estimates, not computed
// from content.
const (
	ConfidenceStructured = 0.95
	ConfidenceAI         = 0.9
	ConfidenceFallback   = 0.6
)

var (
	minutesPattern = regexp.MustCompile(`PT(\d+)M`)
	hoursPattern   = regexp.MustCompile(`PT(\d+)H`)
	digitsPattern  = regexp.MustCompile(`\d+`)
)

// StructuredStrategy extracts recipes from schema.org JSON-LD markup
// embedded in the page. Pinterest and most recipe sites carry it.
type StructuredStrategy struct {
	fetcher *extract.Fetcher
	logger  logger.Logger
}

// NewStructuredStrategy creates the JSON-LD extraction strategy
func NewStructuredStrategy(fetcher *extract.Fetcher, log logger.Logger) *StructuredStrategy {
	if log == nil {
		log = logger.Default()
	}
	return &StructuredStrategy{fetcher: fetcher, logger: log}
}

// TryURL fetches the page and scans it for recipe markup. Best-effort:
// any failure, including the fetch itself, yields nil rather than an error.
func (s *StructuredStrategy) TryURL(ctx context.Context, url string) *models.RecipeData {
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Debug("structured data fetch failed", "url", url, "error", err)
		return nil
	}
	return ParseJSONLD(html, url)
}

// ParseJSONLD scans raw HTML for JSON-LD blocks and returns the first
// recipe found, normalized. Pure parse: same HTML in, same recipe out.
func ParseJSONLD(html, sourceURL string) *models.RecipeData {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var recipe *models.RecipeData
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return true // malformed block, keep scanning
		}

		var items []any
		switch v := data.(type) {
		case map[string]any:
			items = []any{v}
		case []any:
			items = v
		default:
			return true
		}

		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if typeDenotesRecipe(item["@type"]) {
				recipe = parseSchemaRecipe(item, sourceURL)
				return false
			}
		}
		return true
	})

	return recipe
}

// typeDenotesRecipe accepts "@type": "Recipe" as well as composite forms
// like ["Recipe", "NewsArticle"] or "schema:Recipe".
func typeDenotesRecipe(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.Contains(t, "Recipe")
	case []any:
		for _, elem := range t {
			if s, ok := elem.(string); ok && strings.Contains(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

// parseSchemaRecipe maps a schema.org Recipe object into RecipeData.
// Every field decodes tolerantly: the markup in the wild mixes strings,
// objects, and lists for the same keys.
func parseSchemaRecipe(data map[string]any, sourceURL string) *models.RecipeData {
	title := "Untitled Recipe"
	if name, ok := data["name"].(string); ok && name != "" {
		title = name
	}

	return &models.RecipeData{
		Title:              title,
		Description:        stringField(data["description"]),
		Ingredients:        parseIngredients(data["recipeIngredient"]),
		Instructions:       parseInstructions(data["recipeInstructions"]),
		PrepTimeMinutes:    ParseDuration(stringValue(data["prepTime"])),
		CookTimeMinutes:    ParseDuration(stringValue(data["cookTime"])),
		TotalTimeMinutes:   ParseDuration(stringValue(data["totalTime"])),
		Servings:           ParseYield(data["recipeYield"]),
		Cuisine:            firstString(data["recipeCuisine"]),
		Course:             firstString(data["recipeCategory"]),
		CaloriesPerServing: parseCalories(data["nutrition"]),
		Author:             authorName(data["author"]),
		SourceURL:          sourceURL,
		ImageURL:           imageURL(data["image"]),
	}
}

// parseIngredients accepts string entries or {amount, unit, name} objects
func parseIngredients(v any) []models.Ingredient {
	list, ok := v.([]any)
	if !ok {
		return []models.Ingredient{}
	}

	ingredients := make([]models.Ingredient, 0, len(list))
	for _, raw := range list {
		switch ing := raw.(type) {
		case string:
			ingredients = append(ingredients, models.Ingredient{Item: ing})
		case map[string]any:
			item := stringValue(ing["name"])
			if item == "" {
				// No usable name; fall back to the raw object text
				b, _ := json.Marshal(ing)
				item = string(b)
			}
			ingredients = append(ingredients, models.Ingredient{
				Amount: stringField(ing["amount"]),
				Unit:   stringField(ing["unit"]),
				Item:   item,
			})
		}
	}
	return ingredients
}

// parseInstructions accepts string entries or HowToStep-like objects
// carrying text (or name) fields. A bare string is a single step.
func parseInstructions(v any) []string {
	switch inst := v.(type) {
	case string:
		return []string{inst}
	case []any:
		steps := make([]string, 0, len(inst))
		for _, raw := range inst {
			switch step := raw.(type) {
			case string:
				steps = append(steps, step)
			case map[string]any:
				text := stringValue(step["text"])
				if text == "" {
					text = stringValue(step["name"])
				}
				if text == "" {
					b, _ := json.Marshal(step)
					text = string(b)
				}
				steps = append(steps, text)
			}
		}
		return steps
	}
	return []string{}
}

// ParseDuration converts an ISO-8601-like duration (PT15M, PT2H) to
// minutes. The minutes form is tried first; only if it is absent does the
// hours form apply. Unparseable input yields nil.
func ParseDuration(duration string) *int {
	if duration == "" {
		return nil
	}
	if m := minutesPattern.FindStringSubmatch(duration); m != nil {
		n, _ := strconv.Atoi(m[1])
		return &n
	}
	if m := hoursPattern.FindStringSubmatch(duration); m != nil {
		n, _ := strconv.Atoi(m[1])
		n *= 60
		return &n
	}
	return nil
}

// ParseYield normalizes recipe yield: integers pass through, strings like
// "Serves 6" yield their first number, anything else yields nil.
func ParseYield(v any) *int {
	switch y := v.(type) {
	case float64:
		n := int(y)
		return &n
	case string:
		if m := digitsPattern.FindString(y); m != "" {
			n, _ := strconv.Atoi(m)
			return &n
		}
	}
	return nil
}

// authorName accepts a plain string or a {name: ...} person object
func authorName(v any) *string {
	switch a := v.(type) {
	case string:
		return &a
	case map[string]any:
		return stringField(a["name"])
	}
	return nil
}

// imageURL accepts a string, an {url: ...} object, or a list of either
func imageURL(v any) *string {
	switch img := v.(type) {
	case string:
		return &img
	case map[string]any:
		return stringField(img["url"])
	case []any:
		if len(img) == 0 {
			return nil
		}
		return imageURL(img[0])
	}
	return nil
}

// parseCalories digs the digits out of nutrition.calories ("240 calories")
func parseCalories(v any) *int {
	nutrition, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	calories := stringValue(nutrition["calories"])
	if calories == "" {
		return nil
	}
	var digits strings.Builder
	for _, r := range calories {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return nil
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return nil
	}
	return &n
}

// firstString accepts a string or the first string element of a list
func firstString(v any) *string {
	switch s := v.(type) {
	case string:
		return &s
	case []any:
		for _, elem := range s {
			if str, ok := elem.(string); ok {
				return &str
			}
		}
	}
	return nil
}

func stringField(v any) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
