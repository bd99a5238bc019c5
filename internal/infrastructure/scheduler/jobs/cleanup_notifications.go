package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLEANUP NOTIFICATIONS JOB
// ══════════════════════════════════════════════════════════════════════════════

// CleanupNotificationsJob deletes old notifications. The feed is a rolling
// window: users only ever scroll the recent motivational messages, so rows
// past the retention period are dead weight.
type CleanupNotificationsJob struct {
	repo      notification.Repository
	retention time.Duration
	logger    *slog.Logger
}

// DefaultNotificationRetention keeps a month of history.
const DefaultNotificationRetention = 30 * 24 * time.Hour

// NewCleanupNotificationsJob creates a new cleanup job. retention <= 0
// falls back to DefaultNotificationRetention.
func NewCleanupNotificationsJob(
	repo notification.Repository,
	retention time.Duration,
	logger *slog.Logger,
) *CleanupNotificationsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if retention <= 0 {
		retention = DefaultNotificationRetention
	}

	return &CleanupNotificationsJob{
		repo:      repo,
		retention: retention,
		logger:    logger,
	}
}

// Name returns the job name.
func (j *CleanupNotificationsJob) Name() string {
	return "cleanup_notifications"
}

// Description returns a human-readable description.
func (j *CleanupNotificationsJob) Description() string {
	return "Deletes notifications older than the retention period"
}

// Run executes the cleanup job.
func (j *CleanupNotificationsJob) Run(ctx context.Context) error {
	before := time.Now().UTC().Add(-j.retention)

	deleted, err := j.repo.DeleteOlderThan(ctx, before)
	if err != nil {
		return fmt.Errorf("cleanup_notifications: failed to delete old notifications: %w", err)
	}

	j.logger.Info("cleanup_notifications run finished",
		"deleted", deleted,
		"before", before.Format(time.RFC3339),
	)

	return nil
}
