package models

// InvoiceResponse is returned when a Lightning invoice is issued
type InvoiceResponse struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"` // BOLT11 invoice string
}

// InvoiceStatusResponse reports the lifecycle state of an invoice
type InvoiceStatusResponse struct {
	Status string `json:"status"` // pending, settled, expired
}

// ExtractionRequest asks for a plain content extraction, paid per call
type ExtractionRequest struct {
	URL         string `json:"url" validate:"required,url"`
	PaymentHash string `json:"payment_hash" validate:"required"`
}

// ExtractionResponse is the result of the plain extraction path
type ExtractionResponse struct {
	Status      string `json:"status"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	TextContent string `json:"text_content,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
