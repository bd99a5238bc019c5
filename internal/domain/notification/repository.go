// Package notification содержит доменную модель уведомлений FinZen.
package notification

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION SINK
// ══════════════════════════════════════════════════════════════════════════════

// Sink - append-only приёмник уведомлений для движка геймификации.
// Движок только пишет; ошибка записи логируется и проглатывается,
// она никогда не блокирует выдачу наград.
type Sink interface {
	// Append добавляет уведомление в ленту получателя.
	Append(ctx context.Context, notification *Notification) error
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет интерфейс для хранения и чтения уведомлений.
// Используется интерфейсным слоем; движок геймификации видит только Sink.
type Repository interface {
	Sink

	// GetByRecipient возвращает уведомления получателя (от новых к старым).
	GetByRecipient(ctx context.Context, recipientID RecipientID, limit int) ([]*Notification, error)

	// CountUnread возвращает количество непрочитанных уведомлений.
	CountUnread(ctx context.Context, recipientID RecipientID) (int, error)

	// MarkRead помечает уведомление прочитанным.
	MarkRead(ctx context.Context, recipientID RecipientID, id NotificationID) error

	// MarkAllRead помечает все уведомления получателя прочитанными.
	MarkAllRead(ctx context.Context, recipientID RecipientID) (int64, error)

	// ExistsRecent проверяет, было ли за окно window уже создано уведомление
	// с тем же типом и заголовком. Используется для дедупликации ленты.
	ExistsRecent(ctx context.Context, recipientID RecipientID, t NotificationType, title string, window time.Duration) (bool, error)

	// DeleteOlderThan удаляет уведомления старше указанной даты.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
