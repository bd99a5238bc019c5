package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/finance"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPENSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ExpenseRepository implements finance.ExpenseRepository for PostgreSQL.
type ExpenseRepository struct {
	conn *Connection
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(conn *Connection) *ExpenseRepository {
	return &ExpenseRepository{conn: conn}
}

// Create inserts a new expense and fills in the generated ID.
func (r *ExpenseRepository) Create(ctx context.Context, expense *finance.Expense) error {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO expenses (user_id, amount, category, description, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		expense.UserID.Int64(),
		expense.Amount.Float64(),
		string(expense.Category),
		expense.Description,
		expense.Date,
		expense.CreatedAt,
	).Scan(&expense.ID)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// ListByUser returns the user's expenses, newest first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID shared.UserID, limit int) ([]*finance.Expense, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, user_id, amount, category, description, date, created_at
		FROM expenses
		WHERE user_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2
	`, userID.Int64(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*finance.Expense
	for rows.Next() {
		var (
			e        finance.Expense
			amount   float64
			category string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &amount, &category, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = shared.Money(amount)
		e.Category = finance.ExpenseCategory(category)
		expenses = append(expenses, &e)
	}
	return expenses, rows.Err()
}

// DistinctDays returns the distinct calendar days with at least one expense,
// newest first. Feeds the consecutive-days scan.
func (r *ExpenseRepository) DistinctDays(ctx context.Context, userID shared.UserID) ([]time.Time, error) {
	rows, err := r.conn.Query(ctx, `
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

// ExistsOn reports whether the user logged an expense on the given day.
func (r *ExpenseRepository) ExistsOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM expenses WHERE user_id = $1 AND date = $2)
	`, userID.Int64(), day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check expense on day: %w", err)
	}
	return exists, nil
}

// Exists reports whether the user has any expense at all.
func (r *ExpenseRepository) Exists(ctx context.Context, userID shared.UserID) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM expenses WHERE user_id = $1)
	`, userID.Int64()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check expenses: %w", err)
	}
	return exists, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INCOME REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// IncomeRepository implements finance.IncomeRepository for PostgreSQL.
type IncomeRepository struct {
	conn *Connection
}

// NewIncomeRepository creates a new IncomeRepository.
func NewIncomeRepository(conn *Connection) *IncomeRepository {
	return &IncomeRepository{conn: conn}
}

// Create inserts a new income and fills in the generated ID.
func (r *IncomeRepository) Create(ctx context.Context, income *finance.Income) error {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO incomes (user_id, amount, description, date, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		income.UserID.Int64(),
		income.Amount.Float64(),
		income.Description,
		income.Date,
		income.CreatedAt,
	).Scan(&income.ID)
	if err != nil {
		return fmt.Errorf("failed to create income: %w", err)
	}
	return nil
}

// ListByUser returns the user's incomes, newest first.
func (r *IncomeRepository) ListByUser(ctx context.Context, userID shared.UserID, limit int) ([]*finance.Income, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, user_id, amount, description, date, created_at
		FROM incomes
		WHERE user_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2
	`, userID.Int64(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []*finance.Income
	for rows.Next() {
		var (
			in     finance.Income
			amount float64
		)
		if err := rows.Scan(&in.ID, &in.UserID, &amount, &in.Description, &in.Date, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		in.Amount = shared.Money(amount)
		incomes = append(incomes, &in)
	}
	return incomes, rows.Err()
}

// ExistsOn reports whether the user logged an income on the given day.
func (r *IncomeRepository) ExistsOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM incomes WHERE user_id = $1 AND date = $2)
	`, userID.Int64(), day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check income on day: %w", err)
	}
	return exists, nil
}

// Exists reports whether the user has any income at all.
func (r *IncomeRepository) Exists(ctx context.Context, userID shared.UserID) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM incomes WHERE user_id = $1)
	`, userID.Int64()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check incomes: %w", err)
	}
	return exists, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GOAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GoalRepository implements finance.GoalRepository for PostgreSQL.
type GoalRepository struct {
	conn *Connection
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(conn *Connection) *GoalRepository {
	return &GoalRepository{conn: conn}
}

// Create inserts a new goal and fills in the generated ID.
func (r *GoalRepository) Create(ctx context.Context, goal *finance.Goal) error {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO goals (user_id, name, target, current, deadline, completed, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		goal.UserID.Int64(),
		goal.Name,
		goal.Target.Float64(),
		goal.Current,
		goal.Deadline,
		goal.Completed,
		string(goal.Type),
		goal.CreatedAt,
		goal.UpdatedAt,
	).Scan(&goal.ID)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// Save persists changes to an existing goal. Completion is monotonic at the
// storage level too: a completed row is never flipped back.
func (r *GoalRepository) Save(ctx context.Context, goal *finance.Goal) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE goals
		SET name = $3,
		    target = $4,
		    current = $5,
		    deadline = $6,
		    completed = goals.completed OR $7,
		    type = $8
		WHERE id = $1 AND user_id = $2
	`,
		goal.ID,
		goal.UserID.Int64(),
		goal.Name,
		goal.Target.Float64(),
		goal.Current,
		goal.Deadline,
		goal.Completed,
		string(goal.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

// GetByID returns one goal scoped to the owning user.
func (r *GoalRepository) GetByID(ctx context.Context, userID shared.UserID, id int64) (*finance.Goal, error) {
	goal, err := scanGoal(r.conn.QueryRow(ctx, `
		SELECT id, user_id, name, target, current, deadline, completed, type, created_at, updated_at
		FROM goals
		WHERE id = $1 AND user_id = $2
	`, id, userID.Int64()))
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// ListByUser returns all goals of the user.
func (r *GoalRepository) ListByUser(ctx context.Context, userID shared.UserID) ([]*finance.Goal, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, user_id, name, target, current, deadline, completed, type, created_at, updated_at
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*finance.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// Count returns the total and completed goal counts.
func (r *GoalRepository) Count(ctx context.Context, userID shared.UserID) (int, int, error) {
	var total, completed int
	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM goals
		WHERE user_id = $1
	`, userID.Int64()).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count goals: %w", err)
	}
	return total, completed, nil
}

// HasDeadlineOn reports whether any goal deadline falls on the given day.
func (r *GoalRepository) HasDeadlineOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM goals WHERE user_id = $1 AND deadline = $2)
	`, userID.Int64(), day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check goal deadlines: %w", err)
	}
	return exists, nil
}

func scanGoal(row rowScanner) (*finance.Goal, error) {
	var (
		g        finance.Goal
		target   float64
		goalType string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &target, &g.Current, &g.Deadline, &g.Completed, &goalType, &g.CreatedAt, &g.UpdatedAt)
	if IsNoRows(err) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan goal: %w", err)
	}
	g.Target = shared.Money(target)
	g.Type = finance.GoalType(goalType)
	return &g, nil
}
