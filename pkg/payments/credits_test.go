package payments

import (
	"context"
	"testing"

	"github.com/agenticdev/recipeclip/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndSpendNewUser(t *testing.T) {
	ctx := context.Background()
	credits := NewCredits(newTestDB(t))

	// An unseen token gets the free allotment and spends one immediately
	remaining, err := credits.CheckAndSpend(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, database.FreeTierCredits-1, remaining)
}

func TestCheckAndSpendExhaustion(t *testing.T) {
	ctx := context.Background()
	credits := NewCredits(newTestDB(t))

	for want := database.FreeTierCredits - 1; want >= 0; want-- {
		remaining, err := credits.CheckAndSpend(ctx, "heavy-user")
		require.NoError(t, err)
		assert.Equal(t, want, remaining)
	}

	_, err := credits.CheckAndSpend(ctx, "heavy-user")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	// Exhaustion is persistent, not transient
	_, err = credits.CheckAndSpend(ctx, "heavy-user")
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestCheckAndSpendMonthlySubscriber(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	credits := NewCredits(db)

	user := database.User{
		Token:            "subscriber",
		RecipesRemaining: 0,
		SubscriptionType: database.SubscriptionMonthly,
	}
	require.NoError(t, db.DB.Create(&user).Error)

	for i := 0; i < 5; i++ {
		remaining, err := credits.CheckAndSpend(ctx, "subscriber")
		require.NoError(t, err)
		assert.Equal(t, UnlimitedCredits, remaining)
	}
}

func TestCheckAndSpendPayPerUse(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	credits := NewCredits(db)

	// Pay-per-use users settle invoices per call; the credit counter never
	// gates or decrements for them, even at zero.
	user := database.User{
		Token:            "payg-user",
		RecipesRemaining: 0,
		SubscriptionType: database.SubscriptionPayPerUse,
	}
	require.NoError(t, db.DB.Create(&user).Error)

	remaining, err := credits.CheckAndSpend(ctx, "payg-user")
	require.NoError(t, err)
	assert.Equal(t, UnlimitedCredits, remaining)

	var after database.User
	require.NoError(t, db.DB.First(&after, "token = ?", "payg-user").Error)
	assert.Equal(t, 0, after.RecipesRemaining)
}

func TestExhaustedCounterRoundTrips(t *testing.T) {
	// A zero counter must survive insertion; a column default would make
	// GORM silently replace it on Create.
	db := newTestDB(t)

	user := database.User{
		Token:            "spent-user",
		RecipesRemaining: 0,
		SubscriptionType: database.SubscriptionFree,
	}
	require.NoError(t, db.DB.Create(&user).Error)

	var stored database.User
	require.NoError(t, db.DB.First(&stored, "token = ?", "spent-user").Error)
	assert.Equal(t, 0, stored.RecipesRemaining)

	_, err := NewCredits(db).CheckAndSpend(context.Background(), "spent-user")
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestRemaining(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	credits := NewCredits(db)

	t.Run("unknown token reports full allotment", func(t *testing.T) {
		remaining, err := credits.Remaining(ctx, "never-seen")
		require.NoError(t, err)
		assert.Equal(t, database.FreeTierCredits, remaining)
	})

	t.Run("reflects spends without spending", func(t *testing.T) {
		_, err := credits.CheckAndSpend(ctx, "casual-user")
		require.NoError(t, err)

		remaining, err := credits.Remaining(ctx, "casual-user")
		require.NoError(t, err)
		assert.Equal(t, database.FreeTierCredits-1, remaining)

		again, err := credits.Remaining(ctx, "casual-user")
		require.NoError(t, err)
		assert.Equal(t, remaining, again)
	})
}
