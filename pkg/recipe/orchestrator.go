package recipe

import (
	"context"
	"fmt"
	"time"

	"github.com/agenticdev/recipeclip/pkg/extract"
	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/agenticdev/recipeclip/pkg/models"
)

// Orchestrator runs the extraction cascade in strict order, stopping at
// the first strategy that produces a recipe:
//
//  1. structured data — own best-effort fetch, free and most reliable
//  2. page fetch + content extraction — a hard failure for the request
//  3. AI parsing — soft failure, falls through
//  4. heuristic line bucketing — always produces something
//
// Run never lets a failure escape: any error becomes a status="error"
// response with timing attached.
type Orchestrator struct {
	fetcher    *extract.Fetcher
	content    *extract.ContentExtractor
	structured *StructuredStrategy
	ai         *AIStrategy
	logger     logger.Logger
}

// NewOrchestrator wires the cascade. ai may be nil when no provider key
// is configured.
func NewOrchestrator(fetcher *extract.Fetcher, content *extract.ContentExtractor, structured *StructuredStrategy, ai *AIStrategy, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Default()
	}
	return &Orchestrator{
		fetcher:    fetcher,
		content:    content,
		structured: structured,
		ai:         ai,
		logger:     log,
	}
}

// Run extracts a recipe from the URL using the best available method
func (o *Orchestrator) Run(ctx context.Context, url string, preferFast bool) (resp *models.RecipeResponse) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("extraction panic", "url", url, "panic", r)
			resp = o.errorResponse(start, fmt.Sprintf("internal extraction failure: %v", r))
		}
	}()

	if recipe := o.structured.TryURL(ctx, url); recipe != nil {
		return &models.RecipeResponse{
			Status:           "success",
			Recipe:           recipe,
			ExtractionMethod: models.MethodStructuredData,
			ConfidenceScore:  ConfidenceStructured,
			ExtractionTimeMs: time.Since(start).Milliseconds(),
			CostCents:        0,
		}
	}

	html, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		return o.errorResponse(start, err.Error())
	}

	text, err := o.content.Text(html, extract.Options{IncludeTables: true, Deduplicate: true})
	if err != nil {
		return o.errorResponse(start, err.Error())
	}

	if o.ai != nil && o.ai.Available() {
		result, err := o.ai.Extract(ctx, text, url, preferFast)
		if err != nil {
			// AI failure is soft: log and fall through to the heuristic
			o.logger.Warn("ai extraction failed", "url", url, "error", err)
		} else if result != nil {
			return &models.RecipeResponse{
				Status:           "success",
				Recipe:           result.Recipe,
				ExtractionMethod: models.MethodAI,
				ConfidenceScore:  ConfidenceAI,
				ExtractionTimeMs: time.Since(start).Milliseconds(),
				CostCents:        result.CostCents,
			}
		}
	}

	recipe := HeuristicParse(text, url)
	return &models.RecipeResponse{
		Status:           "success",
		Recipe:           recipe,
		ExtractionMethod: models.MethodFallback,
		ConfidenceScore:  ConfidenceFallback,
		ExtractionTimeMs: time.Since(start).Milliseconds(),
		CostCents:        0,
	}
}

func (o *Orchestrator) errorResponse(start time.Time, msg string) *models.RecipeResponse {
	return &models.RecipeResponse{
		Status:           "error",
		ExtractionMethod: models.MethodNone,
		ConfidenceScore:  0,
		ExtractionTimeMs: time.Since(start).Milliseconds(),
		CostCents:        0,
		Error:            msg,
	}
}
