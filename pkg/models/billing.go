package models

// CheckoutRequest asks for a Stripe checkout session for the monthly plan
type CheckoutRequest struct {
	UserToken string `json:"user_token" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

// CheckoutResponse carries the hosted checkout session details
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}
