// Package handlers exposes the HTTP surface: invoice issuance, the
// settlement webhook, and the two extraction endpoints.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	apierrors "github.com/agenticdev/recipeclip/pkg/api/errors"
	"github.com/agenticdev/recipeclip/pkg/metrics"
	"github.com/agenticdev/recipeclip/pkg/models"
	"github.com/agenticdev/recipeclip/pkg/payments"
	"github.com/labstack/echo/v4"
)

// WebhookVerifier checks the signature on an inbound settlement webhook.
// Satisfied by svix.Webhook.
type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

// InvoiceHandler handles invoice issuance, status polling, and the
// payment-provider settlement callback.
type InvoiceHandler struct {
	gate     *payments.Gate
	verifier WebhookVerifier
	metrics  *metrics.Metrics
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(gate *payments.Gate, verifier WebhookVerifier, m *metrics.Metrics) *InvoiceHandler {
	return &InvoiceHandler{
		gate:     gate,
		verifier: verifier,
		metrics:  m,
	}
}

// Create mints a new Lightning invoice and records it as pending
func (h *InvoiceHandler) Create(c echo.Context) error {
	invoice, err := h.gate.IssueInvoice(c.Request().Context())
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.InvoicesIssued.Inc()
	}
	return c.JSON(http.StatusOK, invoice)
}

// Status lets the client poll for the settlement state of their payment
func (h *InvoiceHandler) Status(c echo.Context) error {
	paymentHash := c.Param("payment_hash")

	status, err := h.gate.InvoiceStatus(c.Request().Context(), paymentHash)
	if err == payments.ErrInvoiceNotFound {
		return apierrors.NotFoundError(c, "invoice")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.InvoiceStatusResponse{Status: status})
}

// settlementEvent is the provider webhook payload we act on
type settlementEvent struct {
	State       string `json:"state"`
	PaymentHash string `json:"payment_hash"`
}

// PaymentCallback receives settlement webhooks from the payment provider.
// The signature is verified before anything is read from the payload; a
// failed check returns 400 with no state committed. Events other than
// SETTLED are acknowledged and ignored.
func (h *InvoiceHandler) PaymentCallback(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apierrors.WebhookVerificationError(c, err)
	}

	if err := h.verifier.Verify(payload, c.Request().Header); err != nil {
		return apierrors.WebhookVerificationError(c, err)
	}

	var event settlementEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return apierrors.WebhookVerificationError(c, err)
	}

	if event.State != "SETTLED" {
		return c.JSON(http.StatusOK, models.SuccessResponse{
			Success: true,
			Message: "unhandled event state: " + event.State,
		})
	}

	if event.PaymentHash == "" {
		return apierrors.WebhookVerificationError(c, echo.NewHTTPError(http.StatusBadRequest, "missing payment_hash"))
	}

	if err := h.gate.MarkSettled(c.Request().Context(), event.PaymentHash); err != nil {
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.InvoicesSettled.Inc()
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
