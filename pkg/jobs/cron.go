// Package jobs runs the scheduled maintenance work: expiring stale pending
// invoices so the ledger reflects payments that never arrived.
package jobs

import (
	"context"
	"time"

	"github.com/agenticdev/recipeclip/pkg/database"
	"github.com/agenticdev/recipeclip/pkg/logger"
	"github.com/robfig/cron/v3"
)

// pendingInvoiceTTL is how long an unpaid invoice stays claimable.
// Lightning invoices themselves expire far sooner; this only cleans up rows.
const pendingInvoiceTTL = 24 * time.Hour

// CronManager manages scheduled jobs
type CronManager struct {
	cron   *cron.Cron
	db     *database.Client
	logger logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(db *database.Client, log logger.Logger) *CronManager {
	if log == nil {
		log = logger.Default()
	}

	return &CronManager{
		cron:   cron.New(),
		db:     db,
		logger: log,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	// Hourly: mark stale pending invoices as expired
	_, err := cm.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		n, err := cm.ExpireStaleInvoices(ctx)
		if err != nil {
			cm.logger.Error("invoice expiry job failed", "error", err)
			return
		}
		if n > 0 {
			cm.logger.Info("expired stale invoices", "count", n)
		}
	})
	if err != nil {
		return err
	}

	cm.logger.Info("cron jobs configured", "jobs", "hourly invoice expiry")
	return nil
}

// ExpireStaleInvoices flips pending invoices older than the TTL to expired.
// Settled invoices are never touched.
func (cm *CronManager) ExpireStaleInvoices(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-pendingInvoiceTTL)

	res := cm.db.DB.WithContext(ctx).Model(&database.Invoice{}).
		Where("status = ? AND created_at < ?", database.InvoiceStatusPending, cutoff).
		Update("status", database.InvoiceStatusExpired)

	return res.RowsAffected, res.Error
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Info("starting cron scheduler")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Info("stopping cron scheduler")
	cm.cron.Stop()
}
