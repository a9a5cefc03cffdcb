package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// Database
	DatabasePath string

	// Alby (Lightning payment provider)
	AlbyAccessToken   string
	AlbyWebhookSecret string
	WebhookEndpoint   string
	InvoiceAmountSats int

	// LLM providers (optional — absence disables the AI strategy)
	AnthropicAPIKey string
	OpenAIAPIKey    string

	// Stripe (optional — absence disables subscription billing)
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceMonthly  string
	StripeSuccessURL    string
	StripeCancelURL     string

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
// A .env file is honored when present, matching local development setups.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		// Database
		DatabasePath: getEnv("DATABASE_PATH", "./data/recipeclip.db"),

		// Alby
		AlbyAccessToken:   getEnv("ALBY_ACCESS_TOKEN", ""),
		AlbyWebhookSecret: getEnv("ALBY_WEBHOOK_SECRET", ""),
		WebhookEndpoint:   getEnv("WEBHOOK_ENDPOINT", "https://api.agenticdev.app/api/v1/payment-callback"),
		InvoiceAmountSats: getEnvAsInt("INVOICE_AMOUNT_SATS", 100),

		// LLM providers
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),

		// Stripe
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceMonthly:  getEnv("STRIPE_PRICE_MONTHLY", ""),
		StripeSuccessURL:    getEnv("STRIPE_SUCCESS_URL", "https://recipeclip.agenticdev.app/billing/success"),
		StripeCancelURL:     getEnv("STRIPE_CANCEL_URL", "https://recipeclip.agenticdev.app/billing/cancel"),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", getEnv("API_ENVIRONMENT", "development")),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// The payment provider credentials are not optional: without them the
	// service cannot mint invoices or verify settlement callbacks.
	if cfg.AlbyAccessToken == "" || cfg.AlbyWebhookSecret == "" {
		return nil, fmt.Errorf("ALBY_ACCESS_TOKEN and ALBY_WEBHOOK_SECRET must be set")
	}

	return cfg, nil
}

// AIEnabled reports whether at least one LLM provider key is configured
func (c *Config) AIEnabled() bool {
	return c.AnthropicAPIKey != "" || c.OpenAIAPIKey != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
