package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/internal/domain/user"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER / LOGIN COMMANDS
// Регистрация и проверка пароля. Хеширование - bcrypt; хеш никогда не
// покидает application слой.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the data to register a user.
type RegisterUserCommand struct {
	// Email is the login email (normalized to lowercase).
	Email string

	// Password is the plaintext password (hashed here, never stored).
	Password string

	// Name is the optional display name.
	Name string
}

// Validate validates the command.
func (c RegisterUserCommand) Validate() error {
	if c.Email == "" {
		return errors.New("register_user: email is required")
	}
	if len(c.Password) < 6 {
		return errors.New("register_user: password must be at least 6 characters")
	}
	return nil
}

// RegisterUserResult contains the result of registering a user.
type RegisterUserResult struct {
	// UserID of the created user.
	UserID shared.UserID

	// Email after normalization.
	Email string
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	userRepo   user.Repository
	sink       notification.Sink
	bcryptCost int
	log        *logger.Logger
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(
	userRepo user.Repository,
	sink notification.Sink,
	bcryptCost int,
	log *logger.Logger,
) *RegisterUserHandler {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &RegisterUserHandler{
		userRepo:   userRepo,
		sink:       sink,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Handle executes the register user command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_user: validation failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), h.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register_user: failed to hash password: %w", err)
	}

	u, err := user.NewUser(user.NewUserParams{
		Email:        cmd.Email,
		PasswordHash: string(hash),
		Name:         cmd.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("register_user: %w", err)
	}

	if err := h.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("register_user: failed to create user: %w", err)
	}

	h.log.Info("user registered", logger.UserID(u.ID.Int64()), logger.Email(u.Email.String()))

	h.appendWelcomeNotification(ctx, u)

	return &RegisterUserResult{UserID: u.ID, Email: u.Email.String()}, nil
}

// appendWelcomeNotification writes the welcome message; failures are
// logged and swallowed.
func (h *RegisterUserHandler) appendWelcomeNotification(ctx context.Context, u *user.User) {
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(uuid.NewString()),
		Type:        notification.NotificationTypeWelcome,
		RecipientID: notification.RecipientID(u.ID.Int64()),
		Title:       "👋 ¡Bienvenido a FinZen!",
		Message:     fmt.Sprintf("Hola %s, registra tus gastos y completa retos para ganar puntos", u.DisplayName()),
	})
	if err != nil {
		h.log.Warn("failed to build welcome notification", logger.Err(err), logger.UserID(u.ID.Int64()))
		return
	}
	if err := h.sink.Append(ctx, n); err != nil {
		h.log.Warn("failed to append welcome notification", logger.Err(err), logger.UserID(u.ID.Int64()))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN
// ══════════════════════════════════════════════════════════════════════════════

// LoginCommand contains the data to authenticate a user.
type LoginCommand struct {
	Email    string
	Password string
}

// Validate validates the command.
func (c LoginCommand) Validate() error {
	if c.Email == "" || c.Password == "" {
		return errors.New("login: email and password are required")
	}
	return nil
}

// LoginResult contains the result of a successful login.
type LoginResult struct {
	UserID shared.UserID
	Email  string
	Name   string
}

// LoginHandler handles the LoginCommand.
type LoginHandler struct {
	userRepo user.Repository
	log      *logger.Logger
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(userRepo user.Repository, log *logger.Logger) *LoginHandler {
	return &LoginHandler{userRepo: userRepo, log: log}
}

// Handle executes the login command. A wrong email and a wrong password
// both surface as shared.ErrInvalidCredentials.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("login: validation failed: %w", err)
	}

	email, err := shared.NewEmail(cmd.Email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	u, err := h.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(cmd.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	h.log.Info("user logged in", logger.UserID(u.ID.Int64()))

	return &LoginResult{UserID: u.ID, Email: u.Email.String(), Name: u.DisplayName()}, nil
}
