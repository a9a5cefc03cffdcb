package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	InvoicesIssued   prometheus.Counter
	InvoicesSettled  prometheus.Counter
	ExtractionsTotal *prometheus.CounterVec
	ExtractionCost   prometheus.Counter
	CreditsSpent     prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		InvoicesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "invoices_issued_total",
			Help: "Total number of Lightning invoices issued",
		}),
		InvoicesSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "invoices_settled_total",
			Help: "Total number of Lightning invoices settled via webhook",
		}),
		ExtractionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extractions_total",
				Help: "Total number of extraction runs",
			},
			[]string{"method"}, // structured_data, ai, fallback, none, simple
		),
		ExtractionCost: promauto.NewCounter(prometheus.CounterOpts{
			Name: "extraction_cost_cents_total",
			Help: "Cumulative estimated LLM spend in cents",
		}),
		CreditsSpent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credits_spent_total",
			Help: "Total number of free-tier credits spent",
		}),
	}
}

// Middleware returns an Echo middleware that records request counts and latency
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
			m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
