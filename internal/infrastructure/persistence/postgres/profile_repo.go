package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements gamification.ProfileRepository for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// GetOrCreate returns the user's profile, inserting a zero-value row on
// first access. Concurrent first calls are safe: the insert is
// ON CONFLICT DO NOTHING and the row is re-read afterwards.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID shared.UserID) (*gamification.Profile, error) {
	profile, err := r.get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	_, err = r.conn.Exec(ctx, `
		INSERT INTO progress_profiles (user_id, points, level, current_streak, best_streak)
		VALUES ($1, 0, 1, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return r.get(ctx, userID)
}

// Save upserts the profile. The stored best streak never decreases even if
// a stale in-memory profile is written back.
func (r *ProfileRepository) Save(ctx context.Context, profile *gamification.Profile) error {
	var lastActivity *time.Time
	if !profile.LastActivityDate.IsZero() {
		d := profile.LastActivityDate
		lastActivity = &d
	}

	_, err := r.conn.Exec(ctx, `
		INSERT INTO progress_profiles (user_id, points, level, current_streak, best_streak, last_activity_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			points = EXCLUDED.points,
			level = EXCLUDED.level,
			current_streak = EXCLUDED.current_streak,
			best_streak = GREATEST(progress_profiles.best_streak, EXCLUDED.best_streak),
			last_activity_date = EXCLUDED.last_activity_date
	`,
		profile.UserID.Int64(),
		profile.Points.Int(),
		profile.Level.Int(),
		profile.CurrentStreak,
		profile.BestStreak,
		lastActivity,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Top returns the highest-scoring profiles joined with user display data.
func (r *ProfileRepository) Top(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT p.user_id, u.name, u.email, p.points, p.level, p.current_streak
		FROM progress_profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.points DESC, p.user_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top profiles: %w", err)
	}
	defer rows.Close()

	var entries []gamification.LeaderboardEntry
	for rows.Next() {
		var (
			userID        int64
			name, email   string
			points, level int
			streak        int
		)
		if err := rows.Scan(&userID, &name, &email, &points, &level, &streak); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}

		entries = append(entries, gamification.LeaderboardEntry{
			UserID:        shared.UserID(userID),
			DisplayName:   displayNameOf(name, email),
			Points:        shared.Points(points),
			Level:         shared.Level(level),
			CurrentStreak: streak,
		})
	}
	return entries, rows.Err()
}

func (r *ProfileRepository) get(ctx context.Context, userID shared.UserID) (*gamification.Profile, error) {
	var (
		profile      gamification.Profile
		points       int
		level        int
		lastActivity *time.Time
	)

	err := r.conn.QueryRow(ctx, `
		SELECT user_id, points, level, current_streak, best_streak, last_activity_date, created_at, updated_at
		FROM progress_profiles
		WHERE user_id = $1
	`, userID.Int64()).Scan(
		&profile.UserID,
		&points,
		&level,
		&profile.CurrentStreak,
		&profile.BestStreak,
		&lastActivity,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.Points = shared.Points(points)
	profile.Level = shared.Level(level)
	if lastActivity != nil {
		profile.LastActivityDate = *lastActivity
	}
	return &profile, nil
}

// displayNameOf mirrors user.DisplayName for joined rows.
func displayNameOf(name, email string) string {
	if name != "" {
		return name
	}
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}
