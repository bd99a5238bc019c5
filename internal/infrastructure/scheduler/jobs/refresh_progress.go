// Package jobs contains implementations of scheduled jobs for the FinZen
// progress engine.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finzen-app/finzen-engine/internal/application/command"
	"github.com/finzen-app/finzen-engine/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH PROGRESS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshProgressJob periodically re-runs the progress refresh for recently
// active users. Synchronous post-write refreshes cover the common path; this
// job heals users whose refresh failed mid-way and picks up day transitions
// (a streak that should lapse at midnight does so without the user opening
// the app).
type RefreshProgressJob struct {
	users     user.Repository
	refresher *command.RefreshProgressHandler
	logger    *slog.Logger
	config    RefreshProgressConfig
}

// RefreshProgressConfig contains configuration for the refresh job.
type RefreshProgressConfig struct {
	// BatchSize is the maximum number of users refreshed per run.
	BatchSize int

	// Timeout is the maximum duration for one run.
	Timeout time.Duration
}

// DefaultRefreshProgressConfig returns sensible defaults.
func DefaultRefreshProgressConfig() RefreshProgressConfig {
	return RefreshProgressConfig{
		BatchSize: 200,
		Timeout:   5 * time.Minute,
	}
}

// NewRefreshProgressJob creates a new refresh progress job.
func NewRefreshProgressJob(
	users user.Repository,
	refresher *command.RefreshProgressHandler,
	logger *slog.Logger,
	config RefreshProgressConfig,
) *RefreshProgressJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultRefreshProgressConfig().BatchSize
	}

	return &RefreshProgressJob{
		users:     users,
		refresher: refresher,
		logger:    logger,
		config:    config,
	}
}

// Name returns the job name.
func (j *RefreshProgressJob) Name() string {
	return "refresh_progress"
}

// Description returns a human-readable description.
func (j *RefreshProgressJob) Description() string {
	return "Re-runs the progress refresh for recently active users"
}

// Run executes the refresh job. One failing user never blocks the rest of
// the batch.
func (j *RefreshProgressJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	startedAt := time.Now()

	userIDs, err := j.users.ListRecentlyActive(ctx, j.config.BatchSize)
	if err != nil {
		return fmt.Errorf("refresh_progress: failed to list active users: %w", err)
	}

	var refreshed, failed int
	for _, id := range userIDs {
		if ctx.Err() != nil {
			break
		}

		_, err := j.refresher.Handle(ctx, command.RefreshProgressCommand{
			UserID: id,
			Reason: command.RefreshReasonScheduled,
		})
		if err != nil {
			failed++
			j.logger.Warn("scheduled refresh failed",
				"user_id", id.Int64(),
				"error", err,
			)
			continue
		}
		refreshed++
	}

	j.logger.Info("refresh_progress run finished",
		"users", len(userIDs),
		"refreshed", refreshed,
		"failed", failed,
		"duration", time.Since(startedAt).String(),
	)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("refresh_progress: run cut short: %w", err)
	}
	return nil
}
