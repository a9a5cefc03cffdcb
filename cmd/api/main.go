package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/agenticdev/recipeclip/config"
	"github.com/agenticdev/recipeclip/pkg/ai/llm"
	"github.com/agenticdev/recipeclip/pkg/api/handlers"
	"github.com/agenticdev/recipeclip/pkg/billing"
	"github.com/agenticdev/recipeclip/pkg/database"
	"github.com/agenticdev/recipeclip/pkg/extract"
	"github.com/agenticdev/recipeclip/pkg/jobs"
	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/agenticdev/recipeclip/pkg/metrics"
	custommiddleware "github.com/agenticdev/recipeclip/pkg/middleware"
	"github.com/agenticdev/recipeclip/pkg/payments"
	"github.com/agenticdev/recipeclip/pkg/recipe"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("configuration loaded", "environment", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			appLogger.Warn("failed to initialize sentry", "error", err)
		} else {
			appLogger.Info("sentry initialized", "environment", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		appLogger.Info("sentry disabled (no DSN configured)")
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()

	// Payment layer
	albyClient := payments.NewAlbyClient(cfg.AlbyAccessToken, cfg.WebhookEndpoint)
	gate := payments.NewGate(db, albyClient, cfg.InvoiceAmountSats, appLogger)
	credits := payments.NewCredits(db)

	webhookVerifier, err := svix.NewWebhook(cfg.AlbyWebhookSecret)
	if err != nil {
		log.Fatalf("❌ Invalid webhook secret: %v", err)
	}

	// Extraction layer
	fetcher := extract.NewFetcher()
	contentExtractor := extract.NewContentExtractor()
	agent := extract.NewAgent(fetcher, contentExtractor)

	// LLM providers are optional; the cascade falls back to the heuristic
	// parser when neither key is configured.
	var claudeClient, openaiClient recipe.CompletionClient
	if cfg.AnthropicAPIKey != "" {
		claudeClient = llm.NewClaudeClient(cfg.AnthropicAPIKey, appLogger)
	}
	if cfg.OpenAIAPIKey != "" {
		openaiClient = llm.NewOpenAIClient(cfg.OpenAIAPIKey, appLogger)
	}
	if !cfg.AIEnabled() {
		appLogger.Warn("no LLM provider configured, AI extraction disabled")
	}

	aiStrategy := recipe.NewAIStrategy(claudeClient, openaiClient, appLogger)
	structuredStrategy := recipe.NewStructuredStrategy(fetcher, appLogger)
	orchestrator := recipe.NewOrchestrator(fetcher, contentExtractor, structuredStrategy, aiStrategy, appLogger)

	// Billing (optional)
	billingService := billing.NewService(db, &billing.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceMonthly:  cfg.StripePriceMonthly,
		SuccessURL:    cfg.StripeSuccessURL,
		CancelURL:     cfg.StripeCancelURL,
	}, appLogger)

	// Initialize cron manager for invoice maintenance
	cronManager := jobs.NewCronManager(db, appLogger)
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	defer globalRateLimiter.Stop()
	webhookRateLimiter := custommiddleware.NewRateLimiter(100, 20) // payment provider callbacks
	defer webhookRateLimiter.Stop()

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appLogger.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORS())
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "RecipeClip API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize handlers
	invoiceHandler := handlers.NewInvoiceHandler(gate, webhookVerifier, prometheusMetrics)
	extractHandler := handlers.NewExtractHandler(agent, gate, db, prometheusMetrics, appLogger)
	recipeHandler := handlers.NewRecipeHandler(orchestrator, credits, db, prometheusMetrics, appLogger)
	billingHandler := handlers.NewBillingHandler(billingService)

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "pong"})
	})

	v1.POST("/invoice", invoiceHandler.Create)
	v1.GET("/invoice/status/:payment_hash", invoiceHandler.Status)
	v1.POST("/payment-callback", invoiceHandler.PaymentCallback, webhookRateLimiter.RateLimitMiddleware())

	v1.POST("/extract", extractHandler.Extract)
	v1.POST("/extract-recipe", recipeHandler.ExtractRecipe)

	v1.POST("/billing/checkout", billingHandler.CreateCheckout)
	v1.POST("/webhook/stripe", billingHandler.StripeWebhook, webhookRateLimiter.RateLimitMiddleware())

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	appLogger.Info("starting server",
		"address", address,
		"invoice_amount_sats", cfg.InvoiceAmountSats,
		"rate_limit_rpm", cfg.RateLimitRequestsPerMinute,
		"ai_enabled", cfg.AIEnabled(),
	)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")

	cronManager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	appLogger.Info("server stopped")
}
