package postgres

import (
	"context"
	"fmt"

	"github.com/finzen-app/finzen-engine/internal/domain/education"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EDUCATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// EducationRepository implements education.Repository for PostgreSQL.
type EducationRepository struct {
	conn *Connection
}

// NewEducationRepository creates a new EducationRepository.
func NewEducationRepository(conn *Connection) *EducationRepository {
	return &EducationRepository{conn: conn}
}

// RecordCompletion inserts a completion row if the lesson was not counted
// yet. created=false means the lesson was already completed before.
func (r *EducationRepository) RecordCompletion(ctx context.Context, completion *education.LessonCompletion) (bool, error) {
	tag, err := r.conn.Exec(ctx, `
		INSERT INTO lesson_completions (user_id, lesson_id, quiz_score, completed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, lesson_id) DO NOTHING
	`,
		completion.UserID.Int64(),
		completion.LessonID,
		completion.QuizScore,
		completion.CompletedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record lesson completion: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountCompleted returns the number of completed lessons.
func (r *EducationRepository) CountCompleted(ctx context.Context, userID shared.UserID) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM lesson_completions WHERE user_id = $1
	`, userID.Int64()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}

// ListCompleted returns the user's lesson completions, newest first.
func (r *EducationRepository) ListCompleted(ctx context.Context, userID shared.UserID) ([]*education.LessonCompletion, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, user_id, lesson_id, quiz_score, completed_at
		FROM lesson_completions
		WHERE user_id = $1
		ORDER BY completed_at DESC
	`, userID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	var completions []*education.LessonCompletion
	for rows.Next() {
		var c education.LessonCompletion
		if err := rows.Scan(&c.ID, &c.UserID, &c.LessonID, &c.QuizScore, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lesson completion: %w", err)
		}
		completions = append(completions, &c)
	}
	return completions, rows.Err()
}
