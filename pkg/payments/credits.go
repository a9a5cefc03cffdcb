package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenticdev/recipeclip/pkg/database"
	"gorm.io/gorm"
)

// UnlimitedCredits is reported as remaining for tiers without a counter
const UnlimitedCredits = -1

// Credits tracks per-user free-tier allowances
type Credits struct {
	db *database.Client
}

// NewCredits creates the credit ledger over the shared database
func NewCredits(db *database.Client) *Credits {
	return &Credits{db: db}
}

// CheckAndSpend authorizes one extraction for the token and spends a credit
// when the user is on the free tier. Unknown tokens are created with the
// free allotment. The credit is spent before the extraction runs and is not
// refunded on extraction failure.
//
// Returns the credits remaining after the spend (UnlimitedCredits for
// monthly subscribers), or ErrPaymentRequired when the allowance is gone.
func (c *Credits) CheckAndSpend(ctx context.Context, token string) (int, error) {
	var user database.User
	err := c.db.DB.WithContext(ctx).Where("token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = database.User{
			Token:            token,
			RecipesRemaining: database.FreeTierCredits,
			SubscriptionType: database.SubscriptionFree,
		}
		if err := c.db.DB.WithContext(ctx).Create(&user).Error; err != nil {
			return 0, fmt.Errorf("failed to create user: %w", err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("failed to query user: %w", err)
	}

	// Only the free tier carries a counter. Monthly and pay-per-use
	// subscribers pass without a decrement.
	if user.SubscriptionType != database.SubscriptionFree {
		return UnlimitedCredits, nil
	}

	// Conditional decrement so a concurrent request on the same token
	// cannot push the counter below zero.
	result := c.db.DB.WithContext(ctx).
		Model(&database.User{}).
		Where("token = ? AND recipes_remaining > 0", token).
		UpdateColumn("recipes_remaining", gorm.Expr("recipes_remaining - 1"))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to spend credit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: free recipes exhausted", ErrPaymentRequired)
	}

	var after database.User
	if err := c.db.DB.WithContext(ctx).Where("token = ?", token).First(&after).Error; err != nil {
		return 0, fmt.Errorf("failed to reload user: %w", err)
	}
	return after.RecipesRemaining, nil
}

// Remaining reports the current allowance without spending
func (c *Credits) Remaining(ctx context.Context, token string) (int, error) {
	var user database.User
	err := c.db.DB.WithContext(ctx).Where("token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.FreeTierCredits, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query user: %w", err)
	}
	if user.SubscriptionType != database.SubscriptionFree {
		return UnlimitedCredits, nil
	}
	return user.RecipesRemaining, nil
}
