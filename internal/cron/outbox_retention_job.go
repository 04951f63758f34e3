package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/brandbeam/brandbeam-backend/pkg/logger"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox"
)

// OutboxRetentionJob prunes published outbox rows older than the configured
// retention window.
type OutboxRetentionJob struct {
	repo      *outbox.Repository
	retention time.Duration
	logg      *logger.Logger
}

// NewOutboxRetentionJob builds the retention job.
func NewOutboxRetentionJob(repo *outbox.Repository, retentionDays int, logg *logger.Logger) (*OutboxRetentionJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if retentionDays <= 0 {
		retentionDays = 14
	}
	return &OutboxRetentionJob{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logg:      logg,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *OutboxRetentionJob) Name() string {
	return "outbox_retention"
}

// Run deletes published rows older than the retention cutoff.
func (j *OutboxRetentionJob) Run(ctx context.Context) error {
	deleted, err := j.repo.DeletePublishedBefore(time.Now().Add(-j.retention))
	if err != nil {
		return fmt.Errorf("pruning outbox: %w", err)
	}
	if deleted > 0 {
		logCtx := j.logg.WithField(ctx, "deleted_count", deleted)
		j.logg.Info(logCtx, "published outbox rows pruned")
	}
	return nil
}
