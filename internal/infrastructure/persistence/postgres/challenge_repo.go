package postgres

import (
	"context"
	"fmt"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHALLENGE PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ChallengeRepository implements gamification.ChallengeRepository for PostgreSQL.
type ChallengeRepository struct {
	conn *Connection
}

// NewChallengeRepository creates a new ChallengeRepository.
func NewChallengeRepository(conn *Connection) *ChallengeRepository {
	return &ChallengeRepository{conn: conn}
}

// ListProgress returns all challenge progress rows for the user.
func (r *ChallengeRepository) ListProgress(ctx context.Context, userID shared.UserID) ([]gamification.ChallengeProgress, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT user_id, challenge_id, progress, completed, completed_at
		FROM user_challenges
		WHERE user_id = $1
		ORDER BY challenge_id
	`, userID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list challenge progress: %w", err)
	}
	defer rows.Close()

	var result []gamification.ChallengeProgress
	for rows.Next() {
		var cp gamification.ChallengeProgress
		if err := rows.Scan(&cp.UserID, &cp.ChallengeID, &cp.Progress, &cp.Completed, &cp.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan challenge progress: %w", err)
		}
		result = append(result, cp)
	}
	return result, rows.Err()
}

// GetProgress returns one challenge progress row.
func (r *ChallengeRepository) GetProgress(ctx context.Context, userID shared.UserID, challengeID int) (*gamification.ChallengeProgress, error) {
	var cp gamification.ChallengeProgress
	err := r.conn.QueryRow(ctx, `
		SELECT user_id, challenge_id, progress, completed, completed_at
		FROM user_challenges
		WHERE user_id = $1 AND challenge_id = $2
	`, userID.Int64(), challengeID).Scan(
		&cp.UserID, &cp.ChallengeID, &cp.Progress, &cp.Completed, &cp.CompletedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge progress: %w", err)
	}
	return &cp, nil
}

// CreateProgress inserts a new progress row. A concurrent insert loses
// silently: created=false tells the caller to fall back to the update path.
func (r *ChallengeRepository) CreateProgress(ctx context.Context, progress *gamification.ChallengeProgress) (bool, error) {
	tag, err := r.conn.Exec(ctx, `
		INSERT INTO user_challenges (user_id, challenge_id, progress, completed, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, challenge_id) DO NOTHING
	`,
		progress.UserID.Int64(),
		progress.ChallengeID,
		progress.Progress,
		progress.Completed,
		progress.CompletedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create challenge progress: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateProgress updates the display progress of a not-yet-completed row.
// Completed rows are left untouched: completed is monotonic.
func (r *ChallengeRepository) UpdateProgress(ctx context.Context, userID shared.UserID, challengeID int, progress float64) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE user_challenges
		SET progress = $3
		WHERE user_id = $1 AND challenge_id = $2 AND completed = FALSE
	`, userID.Int64(), challengeID, progress)
	if err != nil {
		return fmt.Errorf("failed to update challenge progress: %w", err)
	}
	return nil
}

// TryComplete atomically flips completed from false to true. Exactly one
// caller per (user, challenge) observes won=true - the conditional update
// is the single check-and-act step, so concurrent refreshes cannot both win.
func (r *ChallengeRepository) TryComplete(ctx context.Context, userID shared.UserID, challengeID int, progress float64) (bool, error) {
	tag, err := r.conn.Exec(ctx, `
		UPDATE user_challenges
		SET progress = $3, completed = TRUE, completed_at = NOW()
		WHERE user_id = $1 AND challenge_id = $2 AND completed = FALSE
	`, userID.Int64(), challengeID, progress)
	if err != nil {
		return false, fmt.Errorf("failed to complete challenge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
