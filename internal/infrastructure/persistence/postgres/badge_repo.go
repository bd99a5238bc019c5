package postgres

import (
	"context"
	"fmt"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements gamification.BadgeRepository for PostgreSQL.
type BadgeRepository struct {
	conn *Connection
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(conn *Connection) *BadgeRepository {
	return &BadgeRepository{conn: conn}
}

// ListEarned returns all badges earned by the user.
func (r *BadgeRepository) ListEarned(ctx context.Context, userID shared.UserID) ([]gamification.UserBadge, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT user_id, badge_id, earned_at
		FROM user_badges
		WHERE user_id = $1
		ORDER BY earned_at
	`, userID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []gamification.UserBadge
	for rows.Next() {
		var b gamification.UserBadge
		if err := rows.Scan(&b.UserID, &b.BadgeID, &b.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// TryAward inserts the badge row if it does not exist. Exactly one caller
// per (user, badge) observes awarded=true; badges are never revoked.
func (r *BadgeRepository) TryAward(ctx context.Context, badge *gamification.UserBadge) (bool, error) {
	tag, err := r.conn.Exec(ctx, `
		INSERT INTO user_badges (user_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`, badge.UserID.Int64(), badge.BadgeID, badge.EarnedAt)
	if err != nil {
		return false, fmt.Errorf("failed to award badge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
