package models

// Ingredient is a single ingredient with optional quantity and unit.
// Only the item text is guaranteed; structured-data and AI extraction
// populate the rest when the source provides it.
type Ingredient struct {
	Amount *string `json:"amount,omitempty"`
	Unit   *string `json:"unit,omitempty"`
	Item   string  `json:"item"`
	Notes  *string `json:"notes,omitempty"` // e.g. "finely chopped", "room temperature"
}

// RecipeData is the normalized recipe produced by any extraction strategy
type RecipeData struct {
	Title              string       `json:"title"`
	Description        *string      `json:"description,omitempty"`
	Ingredients        []Ingredient `json:"ingredients"`
	Instructions       []string     `json:"instructions"`
	PrepTimeMinutes    *int         `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes    *int         `json:"cook_time_minutes,omitempty"`
	TotalTimeMinutes   *int         `json:"total_time_minutes,omitempty"`
	Servings           *int         `json:"servings,omitempty"`
	Cuisine            *string      `json:"cuisine,omitempty"`
	Course             *string      `json:"course,omitempty"` // e.g. "main", "dessert", "appetizer"
	Difficulty         *string      `json:"difficulty,omitempty"`
	CaloriesPerServing *int         `json:"calories_per_serving,omitempty"`
	Author             *string      `json:"author,omitempty"`
	SourceURL          string       `json:"source_url"`
	ImageURL           *string      `json:"image_url,omitempty"`
}

// RecipeRequest is a request to extract a recipe from a URL
type RecipeRequest struct {
	URL       string `json:"url" validate:"required,url"`
	UserToken string `json:"user_token,omitempty"`
}

// Extraction methods reported in RecipeResponse
const (
	MethodStructuredData = "structured_data"
	MethodAI             = "ai"
	MethodFallback       = "fallback"
	MethodNone           = "none"
)

// RecipeResponse is the full result of a recipe extraction run.
// The recipe endpoint always returns one of these, even on total failure.
type RecipeResponse struct {
	Status           string      `json:"status"`
	Recipe           *RecipeData `json:"recipe,omitempty"`
	ExtractionMethod string      `json:"extraction_method"`
	ConfidenceScore  float64     `json:"confidence_score"`
	ExtractionTimeMs int64       `json:"extraction_time_ms"`
	CostCents        float64     `json:"cost_cents"`
	Error            string      `json:"error,omitempty"`
}
