package handlers

import (
	"io"
	"net/http"

	apierrors "github.com/agenticdev/recipeclip/pkg/api/errors"
	"github.com/agenticdev/recipeclip/pkg/billing"
	"github.com/agenticdev/recipeclip/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// BillingHandler handles Stripe subscription endpoints
type BillingHandler struct {
	billing   *billing.Service
	validator *validator.Validate
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(svc *billing.Service) *BillingHandler {
	return &BillingHandler{
		billing:   svc,
		validator: validator.New(),
	}
}

// CreateCheckout starts a Stripe checkout session for the monthly plan
func (h *BillingHandler) CreateCheckout(c echo.Context) error {
	if !h.billing.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "billing_disabled",
			Message: "Subscription billing is not configured.",
		})
	}

	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	resp, err := h.billing.CreateCheckoutSession(c.Request().Context(), req.UserToken, req.Email)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// StripeWebhook processes Stripe webhook events. Verification happens inside
// the billing service; any failure maps to 400 so Stripe retries later.
func (h *BillingHandler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apierrors.WebhookVerificationError(c, err)
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.billing.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return apierrors.WebhookVerificationError(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
