package user

import (
	"context"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// Repository управляет хранением пользователей.
type Repository interface {
	// Create сохраняет нового пользователя и заполняет его ID.
	// Возвращает shared.ErrAlreadyExists при занятом email.
	Create(ctx context.Context, u *User) error

	// GetByID возвращает пользователя по ID.
	GetByID(ctx context.Context, id shared.UserID) (*User, error)

	// GetByEmail возвращает пользователя по email.
	GetByEmail(ctx context.Context, email shared.Email) (*User, error)

	// ListRecentlyActive возвращает ID пользователей с недавней активностью,
	// от самых свежих, не более limit. Используется фоновым обновлением
	// прогресса.
	ListRecentlyActive(ctx context.Context, limit int) ([]shared.UserID, error)
}
