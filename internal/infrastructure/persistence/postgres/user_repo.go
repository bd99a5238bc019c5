package postgres

import (
	"context"
	"fmt"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// Create inserts a new user and fills in the generated ID.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Email.String(), u.PasswordHash, u.Name, u.CreatedAt).Scan(&u.ID)
	if IsUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns the user with the given ID.
func (r *UserRepository) GetByID(ctx context.Context, id shared.UserID) (*user.User, error) {
	return r.scanOne(r.conn.QueryRow(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM users
		WHERE id = $1
	`, id.Int64()))
}

// GetByEmail returns the user with the given email.
func (r *UserRepository) GetByEmail(ctx context.Context, email shared.Email) (*user.User, error) {
	return r.scanOne(r.conn.QueryRow(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM users
		WHERE email = $1
	`, email.String()))
}

// listRecentlyActiveSQL unions the raw activity feeds. Expenses and incomes
// carry created_at; lesson_completions carries completed_at, aliased to match.
const listRecentlyActiveSQL = `
		SELECT user_id FROM (
			SELECT user_id, MAX(created_at) AS last_seen
			FROM (
				SELECT user_id, created_at FROM expenses
				UNION ALL
				SELECT user_id, created_at FROM incomes
				UNION ALL
				SELECT user_id, completed_at AS created_at FROM lesson_completions
			) activity
			GROUP BY user_id
			ORDER BY last_seen DESC
			LIMIT $1
		) recent
	`

// ListRecentlyActive returns IDs of users with recent raw activity, most
// recent first. Used by the background refresher.
func (r *UserRepository) ListRecentlyActive(ctx context.Context, limit int) ([]shared.UserID, error) {
	rows, err := r.conn.Query(ctx, listRecentlyActiveSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var ids []shared.UserID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, shared.UserID(id))
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *UserRepository) scanOne(row rowScanner) (*user.User, error) {
	var (
		u     user.User
		email string
	)
	err := row.Scan(&u.ID, &email, &u.PasswordHash, &u.Name, &u.CreatedAt)
	if IsNoRows(err) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Email = shared.Email(email)
	return &u, nil
}
