package errors

import (
	"log"
	"net/http"

	"github.com/agenticdev/recipeclip/pkg/models"
	"github.com/labstack/echo/v4"
)

// ValidationError returns a generic validation error without exposing internal details
func ValidationError(c echo.Context, err error) error {
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// PaymentRequiredError maps exhausted credits and unsettled invoices to 402
func PaymentRequiredError(c echo.Context, message string) error {
	return c.JSON(http.StatusPaymentRequired, models.ErrorResponse{
		Error:   "payment_required",
		Message: message,
	})
}

// NotFoundError returns a generic not found error
func NotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "The requested resource was not found.",
	})
}

// WebhookVerificationError maps a failed signature check to 400.
// No state change may be committed before this is returned.
func WebhookVerificationError(c echo.Context, err error) error {
	log.Printf("[WEBHOOK ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "webhook_verification_failed",
		Message: "Webhook verification failed.",
	})
}
