package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/agenticdev/recipeclip/pkg/api/errors"
	"github.com/agenticdev/recipeclip/pkg/database"
	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/agenticdev/recipeclip/pkg/metrics"
	"github.com/agenticdev/recipeclip/pkg/models"
	"github.com/agenticdev/recipeclip/pkg/payments"
	"github.com/agenticdev/recipeclip/pkg/recipe"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RecipeHandler handles the credit-gated recipe extraction endpoint
type RecipeHandler struct {
	orchestrator *recipe.Orchestrator
	credits      *payments.Credits
	db           *database.Client
	validator    *validator.Validate
	metrics      *metrics.Metrics
	logger       logger.Logger
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(orch *recipe.Orchestrator, credits *payments.Credits, db *database.Client, m *metrics.Metrics, log logger.Logger) *RecipeHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RecipeHandler{
		orchestrator: orch,
		credits:      credits,
		db:           db,
		validator:    validator.New(),
		metrics:      m,
		logger:       log,
	}
}

// ExtractRecipe runs the extraction cascade for the given URL. A user token
// spends one free-tier credit up front; the credit is not refunded if the
// cascade comes back empty-handed. Cascade failures are reported in-band as
// a 200 with status "error" so the client can always decode the same shape.
func (h *RecipeHandler) ExtractRecipe(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RecipeRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	if req.UserToken != "" {
		remaining, err := h.credits.CheckAndSpend(ctx, req.UserToken)
		if err != nil {
			if errors.Is(err, payments.ErrPaymentRequired) {
				return apierrors.PaymentRequiredError(c, "Free recipes exhausted. Please subscribe or pay per use.")
			}
			return apierrors.InternalError(c, err)
		}
		if remaining != payments.UnlimitedCredits {
			if h.metrics != nil {
				h.metrics.CreditsSpent.Inc()
			}
			h.logger.Debug("credit spent", "remaining", remaining)
		}
	}

	result := h.orchestrator.Run(ctx, req.URL, true)

	if result.Status == "success" {
		if err := h.db.LogRecipeExtraction(ctx, req.URL, req.UserToken, result.ExtractionMethod, result.ConfidenceScore, result.CostCents); err != nil {
			h.logger.Error("failed to write extraction log", "error", err)
		}
	}

	if h.metrics != nil {
		h.metrics.ExtractionsTotal.WithLabelValues(result.ExtractionMethod).Inc()
		if result.CostCents > 0 {
			h.metrics.ExtractionCost.Add(result.CostCents)
		}
	}

	return c.JSON(http.StatusOK, result)
}
