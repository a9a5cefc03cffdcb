package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const albyAPIURL = "https://api.getalby.com"

// AlbyClient talks to the Alby REST API to mint Lightning invoices
type AlbyClient struct {
	accessToken     string
	webhookEndpoint string
	baseURL         string
	httpClient      *http.Client
}

// NewAlbyClient creates a client for the Alby invoice API.
// webhookEndpoint is registered on every invoice so Alby calls us back
// when it settles.
func NewAlbyClient(accessToken, webhookEndpoint string) *AlbyClient {
	return &AlbyClient{
		accessToken:     accessToken,
		webhookEndpoint: webhookEndpoint,
		baseURL:         albyAPIURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURL overrides the API endpoint (used in tests)
func (a *AlbyClient) SetBaseURL(url string) {
	a.baseURL = url
}

// AlbyInvoice is the subset of Alby's invoice object we use
type AlbyInvoice struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
	Settled        bool   `json:"settled"`
}

type createInvoiceRequest struct {
	Amount          int    `json:"amount"`
	Description     string `json:"description"`
	WebhookEndpoint string `json:"webhook_endpoint"`
}

// CreateInvoice mints a new invoice for the given amount in satoshis
func (a *AlbyClient) CreateInvoice(ctx context.Context, amountSats int, description string) (*AlbyInvoice, error) {
	payload, err := json.Marshal(createInvoiceRequest{
		Amount:          amountSats,
		Description:     description,
		WebhookEndpoint: a.webhookEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/invoices", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: alby returned status %d: %s", ErrUpstream, resp.StatusCode, body)
	}

	var invoice AlbyInvoice
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		return nil, fmt.Errorf("%w: failed to decode invoice: %v", ErrUpstream, err)
	}

	return &invoice, nil
}

// IsInvoicePaid polls Alby for the settlement state of a single invoice.
// The webhook callback is the primary settlement path; this remains for
// manual reconciliation.
func (a *AlbyClient) IsInvoicePaid(ctx context.Context, paymentHash string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/invoices/"+paymentHash, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: alby returned status %d", ErrUpstream, resp.StatusCode)
	}

	var invoice AlbyInvoice
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		return false, fmt.Errorf("%w: failed to decode invoice: %v", ErrUpstream, err)
	}

	return invoice.Settled, nil
}
