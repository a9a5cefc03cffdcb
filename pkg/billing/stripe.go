// Package billing handles the optional Stripe subscription path: a single
// monthly plan that grants unlimited extractions while active.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agenticdev/recipeclip/pkg/database"
	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/agenticdev/recipeclip/pkg/models"
	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"
)

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PriceMonthly  string
	SuccessURL    string
	CancelURL     string
}

// Service handles Stripe billing operations
type Service struct {
	db     *database.Client
	config *StripeConfig
	logger logger.Logger
}

// NewService creates a new billing service
func NewService(db *database.Client, config *StripeConfig, log logger.Logger) *Service {
	// Set Stripe API key
	stripe.Key = config.SecretKey

	if log == nil {
		log = logger.Default()
	}
	return &Service{
		db:     db,
		config: config,
		logger: log,
	}
}

// Enabled reports whether Stripe billing is configured
func (s *Service) Enabled() bool {
	return s.config.SecretKey != "" && s.config.PriceMonthly != ""
}

// CreateCheckoutSession creates a Stripe checkout session for the monthly
// plan. The user row is created on first contact so the webhook always has
// something to upgrade.
func (s *Service) CreateCheckoutSession(ctx context.Context, userToken, email string) (*models.CheckoutResponse, error) {
	var u database.User
	err := s.db.DB.WithContext(ctx).First(&u, "token = ?", userToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = database.User{
			Token:            userToken,
			Email:            email,
			RecipesRemaining: database.FreeTierCredits,
			SubscriptionType: database.SubscriptionFree,
		}
		if err := s.db.DB.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Create or reuse the Stripe customer
	customerID := u.StripeCustomerID
	if customerID == "" {
		params := &stripe.CustomerParams{
			Email: stripe.String(email),
			Metadata: map[string]string{
				"user_token": userToken,
			},
		}
		cust, err := customer.New(params)
		if err != nil {
			return nil, fmt.Errorf("failed to create customer: %w", err)
		}
		customerID = cust.ID

		if err := s.db.DB.WithContext(ctx).Model(&database.User{}).
			Where("token = ?", userToken).
			Update("stripe_customer_id", customerID).Error; err != nil {
			return nil, fmt.Errorf("failed to save customer ID: %w", err)
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.config.PriceMonthly),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.config.SuccessURL),
		CancelURL:  stripe.String(s.config.CancelURL),
		Metadata: map[string]string{
			"user_token": userToken,
		},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &models.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// HandleWebhook processes Stripe webhook events
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	s.logger.Info("stripe webhook received", "type", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	default:
		s.logger.Debug("unhandled webhook event type", "type", event.Type)
	}

	return nil
}

// handleCheckoutCompleted upgrades the user to the monthly plan
func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	userToken, ok := sess.Metadata["user_token"]
	if !ok || userToken == "" {
		return fmt.Errorf("user_token not found in metadata")
	}

	subscriptionID := ""
	if sess.Subscription != nil {
		subscriptionID = sess.Subscription.ID
	}

	res := s.db.DB.WithContext(ctx).Model(&database.User{}).
		Where("token = ?", userToken).
		Updates(map[string]any{
			"subscription_type":      database.SubscriptionMonthly,
			"stripe_subscription_id": subscriptionID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to upgrade user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user not found for token in metadata")
	}

	s.logger.Info("user upgraded to monthly plan", "subscription", subscriptionID)
	return nil
}

// handleSubscriptionDeleted downgrades the user back to the free tier
func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	res := s.db.DB.WithContext(ctx).Model(&database.User{}).
		Where("stripe_subscription_id = ?", sub.ID).
		Updates(map[string]any{
			"subscription_type":      database.SubscriptionFree,
			"stripe_subscription_id": "",
		})
	if res.Error != nil {
		return fmt.Errorf("failed to downgrade user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Already downgraded or never recorded; nothing to do
		s.logger.Warn("subscription deleted for unknown user", "subscription", sub.ID)
	}

	return nil
}
