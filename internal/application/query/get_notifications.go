package query

import (
	"context"
	"errors"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET NOTIFICATIONS QUERY
// Возвращает ленту уведомлений получателя и счётчик непрочитанных.
// ══════════════════════════════════════════════════════════════════════════════

// GetNotificationsQuery содержит параметры запроса уведомлений.
type GetNotificationsQuery struct {
	// RecipientID - чья лента запрашивается.
	RecipientID notification.RecipientID

	// Limit - количество записей (по умолчанию 50, максимум 200).
	Limit int

	// OnlyUnread - вернуть только непрочитанные.
	OnlyUnread bool
}

// Validate проверяет корректность параметров запроса.
func (q *GetNotificationsQuery) Validate() error {
	if !q.RecipientID.IsValid() {
		return errors.New("recipient_id is required")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.Limit == 0 {
		q.Limit = 50
	}
	return nil
}

// NotificationDTO - DTO уведомления.
type NotificationDTO struct {
	// ID - идентификатор уведомления.
	ID string `json:"id"`

	// Type - тип уведомления.
	Type string `json:"type"`

	// Priority - приоритет ("low", "medium", "high").
	Priority string `json:"priority"`

	// Title - заголовок.
	Title string `json:"title"`

	// Message - текст.
	Message string `json:"message"`

	// IsRead - прочитано ли.
	IsRead bool `json:"is_read"`

	// CreatedAt - время создания.
	CreatedAt time.Time `json:"created_at"`
}

// GetNotificationsResult содержит результат запроса уведомлений.
type GetNotificationsResult struct {
	// Notifications - уведомления (от новых к старым).
	Notifications []NotificationDTO `json:"notifications"`

	// UnreadCount - количество непрочитанных.
	UnreadCount int `json:"unread_count"`
}

// GetNotificationsHandler обрабатывает запросы ленты уведомлений.
type GetNotificationsHandler struct {
	repo notification.Repository
}

// NewGetNotificationsHandler создаёт новый обработчик запроса уведомлений.
func NewGetNotificationsHandler(repo notification.Repository) *GetNotificationsHandler {
	return &GetNotificationsHandler{repo: repo}
}

// Handle выполняет запрос уведомлений.
func (h *GetNotificationsHandler) Handle(ctx context.Context, query GetNotificationsQuery) (*GetNotificationsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetNotifications", shared.ErrValidation, err.Error(), err)
	}

	items, err := h.repo.GetByRecipient(ctx, query.RecipientID, query.Limit)
	if err != nil {
		return nil, shared.WrapError("query", "GetNotifications", shared.ErrExternalService, "failed to list notifications", err)
	}

	unread, err := h.repo.CountUnread(ctx, query.RecipientID)
	if err != nil {
		return nil, shared.WrapError("query", "GetNotifications", shared.ErrExternalService, "failed to count unread", err)
	}

	result := &GetNotificationsResult{
		Notifications: make([]NotificationDTO, 0, len(items)),
		UnreadCount:   unread,
	}

	for _, n := range items {
		if query.OnlyUnread && n.IsRead {
			continue
		}
		result.Notifications = append(result.Notifications, NotificationDTO{
			ID:        n.ID.String(),
			Type:      n.Type.String(),
			Priority:  n.Priority.String(),
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}

	return result, nil
}
