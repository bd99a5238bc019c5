package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRebuilder loads a full ranking into the cache, replacing
// whatever was there. Implemented by the redis leaderboard projection.
type LeaderboardRebuilder interface {
	Rebuild(ctx context.Context, entries []gamification.LeaderboardEntry) error
}

// RebuildLeaderboardJob reloads the leaderboard projection from postgres.
// Incremental updates from the event handler keep the cache warm between
// runs; the rebuild heals entries lost to eviction, TTL expiry or missed
// events.
type RebuildLeaderboardJob struct {
	profiles gamification.ProfileRepository
	cache    LeaderboardRebuilder
	logger   *slog.Logger
	config   RebuildLeaderboardConfig
}

// RebuildLeaderboardConfig contains configuration for the rebuild job.
type RebuildLeaderboardConfig struct {
	// TopSize is how many entries to load into the projection.
	TopSize int

	// Timeout is the maximum duration for one run.
	Timeout time.Duration
}

// DefaultRebuildLeaderboardConfig returns sensible defaults.
func DefaultRebuildLeaderboardConfig() RebuildLeaderboardConfig {
	return RebuildLeaderboardConfig{
		TopSize: 100,
		Timeout: time.Minute,
	}
}

// NewRebuildLeaderboardJob creates a new rebuild leaderboard job.
func NewRebuildLeaderboardJob(
	profiles gamification.ProfileRepository,
	cache LeaderboardRebuilder,
	logger *slog.Logger,
	config RebuildLeaderboardConfig,
) *RebuildLeaderboardJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopSize <= 0 {
		config.TopSize = DefaultRebuildLeaderboardConfig().TopSize
	}

	return &RebuildLeaderboardJob{
		profiles: profiles,
		cache:    cache,
		logger:   logger,
		config:   config,
	}
}

// Name returns the job name.
func (j *RebuildLeaderboardJob) Name() string {
	return "rebuild_leaderboard"
}

// Description returns a human-readable description.
func (j *RebuildLeaderboardJob) Description() string {
	return "Reloads the leaderboard cache projection from the database"
}

// Run executes the rebuild job.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	startedAt := time.Now()

	entries, err := j.profiles.Top(ctx, j.config.TopSize)
	if err != nil {
		return fmt.Errorf("rebuild_leaderboard: failed to load top profiles: %w", err)
	}

	if err := j.cache.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("rebuild_leaderboard: failed to rebuild cache: %w", err)
	}

	j.logger.Info("rebuild_leaderboard run finished",
		"entries", len(entries),
		"duration", time.Since(startedAt).String(),
	)

	return nil
}
