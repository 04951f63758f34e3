package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/brandbeam/brandbeam-backend/internal/wallet"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
)

// DepositOrderExpiryJob flips pending deposit orders past their expiry to
// expired so late gateway callbacks are rejected.
type DepositOrderExpiryJob struct {
	repo wallet.Repository
	logg *logger.Logger
}

// NewDepositOrderExpiryJob builds the expiry job.
func NewDepositOrderExpiryJob(repo wallet.Repository, logg *logger.Logger) (*DepositOrderExpiryJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &DepositOrderExpiryJob{repo: repo, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *DepositOrderExpiryJob) Name() string {
	return "deposit_order_expiry"
}

// Run expires pending orders whose deadline has passed.
func (j *DepositOrderExpiryJob) Run(ctx context.Context) error {
	expired, err := j.repo.ExpirePendingOrdersBefore(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("expiring deposit orders: %w", err)
	}
	if expired > 0 {
		logCtx := j.logg.WithField(ctx, "expired_count", expired)
		j.logg.Info(logCtx, "deposit orders expired")
	}
	return nil
}
