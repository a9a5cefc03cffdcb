// Package database owns the single SQLite ledger file. The connection is
// created once at process start, injected into every service, and closed
// on shutdown — there is no package-level handle.
package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Invoice lifecycle states
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusSettled = "settled"
	InvoiceStatusExpired = "expired"
)

// Subscription tiers
const (
	SubscriptionFree      = "free"
	SubscriptionMonthly   = "monthly"
	SubscriptionPayPerUse = "payperuse"
)

// FreeTierCredits is the number of extractions a new user gets for free
const FreeTierCredits = 3

// Invoice is a requested Lightning payment, keyed by its payment hash.
// Rows are never deleted; settlement is recorded by the webhook callback.
type Invoice struct {
	PaymentHash string    `gorm:"primaryKey"`
	Status      string    `gorm:"not null;default:pending"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// UsedInvoice marks a settled invoice as spent on one extraction call,
// preventing replay of the same payment hash.
type UsedInvoice struct {
	PaymentHash string    `gorm:"primaryKey"`
	UsedAt      time.Time `gorm:"autoCreateTime"`
}

// User is created lazily on the first recipe request bearing an unseen
// token. RecipesRemaining carries no column default on purpose: GORM skips
// zero-valued fields with defaults on insert, which would make an exhausted
// counter unstorable. Callers seed FreeTierCredits explicitly.
type User struct {
	Token                string    `gorm:"primaryKey"`
	Email                string    ``
	RecipesRemaining     int       ``
	SubscriptionType     string    `gorm:"default:free"`
	StripeCustomerID     string    ``
	StripeSubscriptionID string    ``
	CreatedAt            time.Time `gorm:"autoCreateTime"`
}

// RecipeExtraction is an append-only audit row per successful extraction
type RecipeExtraction struct {
	ID               uint   `gorm:"primaryKey"`
	URL              string `gorm:"not null"`
	UserToken        string
	ExtractionMethod string
	ConfidenceScore  float64
	CostCents        float64
	ExtractedAt      time.Time `gorm:"autoCreateTime"`
}

// APILog is an append-only audit row for the paid extraction endpoint,
// recording successes and failures alike.
type APILog struct {
	ID           uint `gorm:"primaryKey"`
	Endpoint     string
	StatusCode   int
	PaymentHash  string
	URLRequested string
	ErrorMessage string
	LoggedAt     time.Time `gorm:"autoCreateTime"`
}

// Client wraps the shared GORM handle
type Client struct {
	DB *gorm.DB
}

// New opens the SQLite database at path and migrates the schema.
// WAL mode tolerates concurrent readers alongside the writer; the busy
// timeout covers brief write contention from overlapping requests.
func New(path string) (*Client, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&Invoice{},
		&UsedInvoice{},
		&User{},
		&RecipeExtraction{},
		&APILog{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Client{DB: db}, nil
}

// Ping verifies the underlying connection is alive
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LogAPIRequest appends one row to the api_logs audit trail.
// Logging must never fail a request, so the error is returned for the
// caller to log and ignore.
func (c *Client) LogAPIRequest(ctx context.Context, endpoint string, statusCode int, paymentHash, url, errMsg string) error {
	row := APILog{
		Endpoint:     endpoint,
		StatusCode:   statusCode,
		PaymentHash:  paymentHash,
		URLRequested: url,
		ErrorMessage: errMsg,
	}
	return c.DB.WithContext(ctx).Create(&row).Error
}

// LogRecipeExtraction appends one row to the recipe_extractions audit trail
func (c *Client) LogRecipeExtraction(ctx context.Context, url, userToken, method string, confidence, costCents float64) error {
	row := RecipeExtraction{
		URL:              url,
		UserToken:        userToken,
		ExtractionMethod: method,
		ConfidenceScore:  confidence,
		CostCents:        costCents,
	}
	return c.DB.WithContext(ctx).Create(&row).Error
}
