// Package payments gates extraction calls behind Lightning invoices and
// free-tier credits. An invoice moves pending → settled (webhook-driven,
// at most once) and is consumed at most once by an extraction call.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenticdev/recipeclip/pkg/database"
	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/agenticdev/recipeclip/pkg/models"
	"gorm.io/gorm"
)

var (
	// ErrPaymentRequired means the payment is not settled, unknown, already
	// consumed, or the user's free credits are exhausted
	ErrPaymentRequired = errors.New("payment required")

	// ErrUpstream means the payment provider call failed
	ErrUpstream = errors.New("upstream provider error")

	// ErrInvoiceNotFound means no invoice exists for the payment hash
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// Gate is the payment state machine consulted before any extraction runs
type Gate struct {
	db     *database.Client
	alby   *AlbyClient
	amount int
	logger logger.Logger
}

// NewGate creates a payment gate backed by the shared database and Alby
func NewGate(db *database.Client, alby *AlbyClient, amountSats int, log logger.Logger) *Gate {
	if log == nil {
		log = logger.Default()
	}
	return &Gate{
		db:     db,
		alby:   alby,
		amount: amountSats,
		logger: log,
	}
}

// IssueInvoice mints an invoice with the provider and records it as pending
func (g *Gate) IssueInvoice(ctx context.Context) (*models.InvoiceResponse, error) {
	invoice, err := g.alby.CreateInvoice(ctx, g.amount, "Payment for 1x extraction run")
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	row := database.Invoice{
		PaymentHash: invoice.PaymentHash,
		Status:      database.InvoiceStatusPending,
	}
	if err := g.db.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to record invoice: %w", err)
	}

	g.logger.Info("invoice issued", "payment_hash", invoice.PaymentHash, "amount_sats", g.amount)

	return &models.InvoiceResponse{
		PaymentHash:    invoice.PaymentHash,
		PaymentRequest: invoice.PaymentRequest,
	}, nil
}

// MarkSettled records the pending → settled transition for a payment hash.
// Unknown hashes are tolerated as a no-op: the webhook receiver must accept
// unrelated events without erroring.
func (g *Gate) MarkSettled(ctx context.Context, paymentHash string) error {
	result := g.db.DB.WithContext(ctx).
		Model(&database.Invoice{}).
		Where("payment_hash = ? AND status = ?", paymentHash, database.InvoiceStatusPending).
		Update("status", database.InvoiceStatusSettled)
	if result.Error != nil {
		return fmt.Errorf("failed to settle invoice: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		g.logger.Warn("settle event for unknown or non-pending invoice", "payment_hash", paymentHash)
		return nil
	}

	g.logger.Info("invoice settled", "payment_hash", paymentHash)
	return nil
}

// InvoiceStatus returns the lifecycle state of an invoice.
// Returns ErrInvoiceNotFound for unknown hashes.
func (g *Gate) InvoiceStatus(ctx context.Context, paymentHash string) (string, error) {
	var invoice database.Invoice
	err := g.db.DB.WithContext(ctx).
		Where("payment_hash = ?", paymentHash).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvoiceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query invoice: %w", err)
	}
	return invoice.Status, nil
}

// AuthorizeAndConsume authorizes one extraction against a settled invoice
// and records the consumption, all in one transaction. A payment hash that
// is unknown, unsettled, or already consumed yields ErrPaymentRequired.
func (g *Gate) AuthorizeAndConsume(ctx context.Context, paymentHash string) error {
	return g.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice database.Invoice
		err := tx.Where("payment_hash = ?", paymentHash).First(&invoice).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentRequired
		}
		if err != nil {
			return fmt.Errorf("failed to query invoice: %w", err)
		}

		if invoice.Status != database.InvoiceStatusSettled {
			return ErrPaymentRequired
		}

		var used int64
		if err := tx.Model(&database.UsedInvoice{}).
			Where("payment_hash = ?", paymentHash).
			Count(&used).Error; err != nil {
			return fmt.Errorf("failed to check consumption: %w", err)
		}
		if used > 0 {
			return ErrPaymentRequired
		}

		if err := tx.Create(&database.UsedInvoice{PaymentHash: paymentHash}).Error; err != nil {
			return fmt.Errorf("failed to record consumption: %w", err)
		}
		return nil
	})
}
