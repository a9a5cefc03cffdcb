package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/agenticdev/recipeclip/pkg/api/errors"
	"github.com/agenticdev/recipeclip/pkg/database"
	"github.com/agenticdev/recipeclip/pkg/extract"
	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/agenticdev/recipeclip/pkg/metrics"
	"github.com/agenticdev/recipeclip/pkg/models"
	"github.com/agenticdev/recipeclip/pkg/payments"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const extractEndpoint = "/api/v1/extract"

// ExtractHandler handles the pay-per-call plain extraction endpoint
type ExtractHandler struct {
	agent     *extract.Agent
	gate      *payments.Gate
	db        *database.Client
	validator *validator.Validate
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewExtractHandler creates a new extraction handler
func NewExtractHandler(agent *extract.Agent, gate *payments.Gate, db *database.Client, m *metrics.Metrics, log logger.Logger) *ExtractHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ExtractHandler{
		agent:     agent,
		gate:      gate,
		db:        db,
		validator: validator.New(),
		metrics:   m,
		logger:    log,
	}
}

// Extract runs the single-strategy extraction after consuming a settled
// invoice. Every call, success or failure, lands in the api_logs trail.
func (h *ExtractHandler) Extract(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.ExtractionRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	if err := h.gate.AuthorizeAndConsume(ctx, req.PaymentHash); err != nil {
		if errors.Is(err, payments.ErrPaymentRequired) {
			h.logAPICall(c, http.StatusPaymentRequired, req.PaymentHash, req.URL, "payment required or not yet settled")
			return apierrors.PaymentRequiredError(c, "Payment required or not yet settled.")
		}
		h.logAPICall(c, http.StatusInternalServerError, req.PaymentHash, req.URL, err.Error())
		return apierrors.InternalError(c, err)
	}

	result, err := h.agent.Run(ctx, req.URL)
	if err != nil {
		h.logAPICall(c, http.StatusInternalServerError, req.PaymentHash, req.URL, err.Error())
		return apierrors.InternalError(c, err)
	}

	h.logAPICall(c, http.StatusOK, req.PaymentHash, req.URL, "")
	if h.metrics != nil {
		h.metrics.ExtractionsTotal.WithLabelValues("simple").Inc()
	}
	return c.JSON(http.StatusOK, result)
}

func (h *ExtractHandler) logAPICall(c echo.Context, status int, paymentHash, url, errMsg string) {
	if err := h.db.LogAPIRequest(c.Request().Context(), extractEndpoint, status, paymentHash, url, errMsg); err != nil {
		h.logger.Error("failed to write api log", "error", err)
	}
}
