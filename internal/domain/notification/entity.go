// Package notification содержит доменную модель уведомлений FinZen.
// Движок геймификации только пишет уведомления (append-only) и никогда
// их не читает; чтением занимается интерфейсный слой.
package notification

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// NotificationID представляет уникальный идентификатор уведомления.
type NotificationID string

// IsValid проверяет, что ID не пустой.
func (id NotificationID) IsValid() bool {
	return len(id) > 0
}

// String возвращает строковое представление ID.
func (id NotificationID) String() string {
	return string(id)
}

// RecipientID представляет идентификатор получателя уведомления.
type RecipientID int64

// IsValid проверяет, что ID получателя положительный.
func (id RecipientID) IsValid() bool {
	return id > 0
}

// Int64 возвращает числовое представление.
func (id RecipientID) Int64() int64 {
	return int64(id)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// NotificationType определяет тип уведомления.
type NotificationType string

const (
	// NotificationTypeChallengeCompleted - завершён челлендж.
	// "🎉 ¡Reto Completado! Has completado 'Primer Ahorro' y ganado 100 puntos"
	NotificationTypeChallengeCompleted NotificationType = "challenge_completed"

	// NotificationTypeLevelUp - повышение уровня.
	// "⭐ ¡Nivel Alcanzado! Felicidades, has alcanzado el nivel 3"
	NotificationTypeLevelUp NotificationType = "level_up"

	// NotificationTypeBadgeEarned - получен значок.
	// "🏆 ¡Nueva Insignia! Has desbloqueado 'Racha de Fuego'"
	NotificationTypeBadgeEarned NotificationType = "badge_earned"

	// NotificationTypeStreakMilestone - серия достигла недельного рубежа.
	// "🔥 ¡Racha Semanal! Llevas 7 días seguidos registrando tus finanzas"
	NotificationTypeStreakMilestone NotificationType = "streak_milestone"

	// NotificationTypeGoalProgress - прогресс по цели накопления.
	// "📈 Tu meta 'Laptop nueva' va por el 80%"
	NotificationTypeGoalProgress NotificationType = "goal_progress"

	// NotificationTypeLessonCompleted - завершён урок.
	// "📚 Lección completada: Presupuesto básico"
	NotificationTypeLessonCompleted NotificationType = "lesson_completed"

	// NotificationTypeWelcome - приветственное сообщение.
	// "👋 ¡Bienvenido a FinZen!"
	NotificationTypeWelcome NotificationType = "welcome"

	// NotificationTypeSystemAlert - системное уведомление.
	NotificationTypeSystemAlert NotificationType = "system_alert"
)

// IsValid проверяет, что тип уведомления корректен.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeChallengeCompleted,
		NotificationTypeLevelUp,
		NotificationTypeBadgeEarned,
		NotificationTypeStreakMilestone,
		NotificationTypeGoalProgress,
		NotificationTypeLessonCompleted,
		NotificationTypeWelcome,
		NotificationTypeSystemAlert:
		return true
	default:
		return false
	}
}

// DefaultPriority возвращает приоритет по умолчанию для данного типа.
func (t NotificationType) DefaultPriority() Priority {
	switch t {
	case NotificationTypeLevelUp, NotificationTypeBadgeEarned, NotificationTypeWelcome:
		return PriorityHigh
	case NotificationTypeChallengeCompleted, NotificationTypeStreakMilestone:
		return PriorityMedium
	case NotificationTypeGoalProgress, NotificationTypeLessonCompleted:
		return PriorityLow
	case NotificationTypeSystemAlert:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Emoji возвращает эмодзи для данного типа уведомления.
func (t NotificationType) Emoji() string {
	switch t {
	case NotificationTypeChallengeCompleted:
		return "🎉"
	case NotificationTypeLevelUp:
		return "⭐"
	case NotificationTypeBadgeEarned:
		return "🏆"
	case NotificationTypeStreakMilestone:
		return "🔥"
	case NotificationTypeGoalProgress:
		return "📈"
	case NotificationTypeLessonCompleted:
		return "📚"
	case NotificationTypeWelcome:
		return "👋"
	case NotificationTypeSystemAlert:
		return "⚙️"
	default:
		return "📬"
	}
}

// String возвращает строковое представление типа.
func (t NotificationType) String() string {
	return string(t)
}

// ══════════════════════════════════════════════════════════════════════════════
// PRIORITY
// ══════════════════════════════════════════════════════════════════════════════

// Priority определяет приоритет уведомления.
type Priority int

const (
	// PriorityLow - низкий приоритет.
	PriorityLow Priority = 1

	// PriorityMedium - обычный приоритет.
	PriorityMedium Priority = 2

	// PriorityHigh - высокий приоритет (важное уведомление).
	PriorityHigh Priority = 3
)

// IsValid проверяет корректность приоритета.
func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// String возвращает строковое представление приоритета.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParsePriority разбирает строковое представление приоритета.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return 0, ErrInvalidPriority
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Notification представляет запись в ленте уведомлений пользователя.
type Notification struct {
	// ID - уникальный идентификатор уведомления.
	ID NotificationID

	// Type - тип уведомления.
	Type NotificationType

	// RecipientID - ID получателя.
	RecipientID RecipientID

	// Priority - приоритет уведомления.
	Priority Priority

	// Title - заголовок уведомления.
	Title string

	// Message - текст уведомления.
	Message string

	// IsRead - прочитано ли уведомление.
	IsRead bool

	// ReadAt - когда прочитано (nil = не прочитано).
	ReadAt *time.Time

	// CreatedAt - время создания.
	CreatedAt time.Time
}

// NewNotificationParams содержит параметры для создания уведомления.
type NewNotificationParams struct {
	ID          NotificationID
	Type        NotificationType
	RecipientID RecipientID
	Title       string
	Message     string
	Priority    *Priority
}

// NewNotification создаёт новое уведомление с валидацией.
func NewNotification(params NewNotificationParams) (*Notification, error) {
	if !params.ID.IsValid() {
		return nil, ErrInvalidNotificationID
	}

	if !params.Type.IsValid() {
		return nil, ErrInvalidNotificationType
	}

	if !params.RecipientID.IsValid() {
		return nil, ErrInvalidRecipientID
	}

	if params.Message == "" {
		return nil, ErrEmptyMessage
	}

	priority := params.Type.DefaultPriority()
	if params.Priority != nil && params.Priority.IsValid() {
		priority = *params.Priority
	}

	return &Notification{
		ID:          params.ID,
		Type:        params.Type,
		RecipientID: params.RecipientID,
		Priority:    priority,
		Title:       params.Title,
		Message:     params.Message,
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// MarkRead помечает уведомление прочитанным. Повторный вызов - no-op.
func (n *Notification) MarkRead() {
	if n.IsRead {
		return
	}
	n.IsRead = true
	now := time.Now().UTC()
	n.ReadAt = &now
}

// String возвращает строковое представление для логирования.
func (n *Notification) String() string {
	return fmt.Sprintf(
		"Notification{ID: %s, Type: %s, Recipient: %d, Priority: %s, Read: %t}",
		n.ID, n.Type, n.RecipientID, n.Priority, n.IsRead,
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidNotificationID - невалидный ID уведомления.
	ErrInvalidNotificationID = errors.New("invalid notification id: cannot be empty")

	// ErrInvalidNotificationType - невалидный тип уведомления.
	ErrInvalidNotificationType = errors.New("invalid notification type")

	// ErrInvalidRecipientID - невалидный ID получателя.
	ErrInvalidRecipientID = errors.New("invalid recipient id: must be positive")

	// ErrEmptyMessage - пустое сообщение.
	ErrEmptyMessage = errors.New("notification message cannot be empty")

	// ErrInvalidPriority - невалидный приоритет.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrNotificationNotFound - уведомление не найдено.
	ErrNotificationNotFound = errors.New("notification not found")
)
