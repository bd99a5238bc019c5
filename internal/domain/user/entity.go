// Package user содержит доменную модель пользователя FinZen.
// Аутентификация и выдача сессий живут в application слое; здесь -
// только сущность и правила валидации.
package user

import (
	"strings"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// User представляет зарегистрированного пользователя.
type User struct {
	// ID - идентификатор пользователя.
	ID shared.UserID

	// Email - нормализованный email (уникален).
	Email shared.Email

	// PasswordHash - bcrypt-хеш пароля. Никогда не логируется.
	PasswordHash string

	// Name - отображаемое имя (для таблицы лидеров).
	Name string

	// CreatedAt - когда зарегистрирован.
	CreatedAt time.Time
}

// NewUserParams содержит параметры для регистрации пользователя.
type NewUserParams struct {
	Email        string
	PasswordHash string
	Name         string
}

// NewUser создаёт пользователя с валидацией.
func NewUser(params NewUserParams) (*User, error) {
	email, err := shared.NewEmail(params.Email)
	if err != nil {
		return nil, err
	}

	if params.PasswordHash == "" {
		return nil, shared.NewDomainError("user", "NewUser", shared.ErrEmptyValue, "password hash cannot be empty")
	}

	return &User{
		Email:        email,
		PasswordHash: params.PasswordHash,
		Name:         strings.TrimSpace(params.Name),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// DisplayName возвращает имя для отображения, подставляя email при
// отсутствии имени.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	at := strings.Index(u.Email.String(), "@")
	if at > 0 {
		return u.Email.String()[:at]
	}
	return u.Email.String()
}
