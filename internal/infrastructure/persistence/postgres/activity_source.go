package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY SOURCE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ActivitySource implements gamification.ActivitySource with direct SQL over
// the raw finance and education tables. The aggregator re-reads everything on
// each refresh, so the queries stay narrow: days, counts and EXISTS checks.
type ActivitySource struct {
	conn *Connection
}

// NewActivitySource creates a new ActivitySource.
func NewActivitySource(conn *Connection) *ActivitySource {
	return &ActivitySource{conn: conn}
}

// ExpenseDays returns the distinct calendar days with at least one expense.
func (s *ActivitySource) ExpenseDays(ctx context.Context, userID shared.UserID) ([]time.Time, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT DISTINCT date
		FROM expenses
		WHERE user_id = $1
		ORDER BY date DESC
	`, userID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to query expense days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan expense day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// CountGoals returns the total and completed goal counts.
func (s *ActivitySource) CountGoals(ctx context.Context, userID shared.UserID) (int, int, error) {
	var total, completed int
	err := s.conn.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM goals
		WHERE user_id = $1
	`, userID.Int64()).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count goals: %w", err)
	}
	return total, completed, nil
}

// CountLessonsCompleted returns the number of completed lessons.
func (s *ActivitySource) CountLessonsCompleted(ctx context.Context, userID shared.UserID) (int, error) {
	var count int
	err := s.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM lesson_completions WHERE user_id = $1
	`, userID.Int64()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}

// HasAnyTransaction reports whether the user has logged any expense or income.
func (s *ActivitySource) HasAnyTransaction(ctx context.Context, userID shared.UserID) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM expenses WHERE user_id = $1)
		    OR EXISTS (SELECT 1 FROM incomes WHERE user_id = $1)
	`, userID.Int64()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transactions: %w", err)
	}
	return exists, nil
}

// HasActivityOn reports whether the user has raw activity on the given day:
// an expense, an income or a goal deadline falling on that day.
func (s *ActivitySource) HasActivityOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM expenses WHERE user_id = $1 AND date = $2)
		    OR EXISTS (SELECT 1 FROM incomes WHERE user_id = $1 AND date = $2)
		    OR EXISTS (SELECT 1 FROM goals WHERE user_id = $1 AND deadline = $2)
	`, userID.Int64(), day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check activity on day: %w", err)
	}
	return exists, nil
}
