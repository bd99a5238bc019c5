package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NotificationRepository implements notification.Repository for PostgreSQL.
// The gamification engine only uses the embedded Sink part.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Append inserts a notification into the recipient's feed.
func (r *NotificationRepository) Append(ctx context.Context, n *notification.Notification) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, priority, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		n.ID.String(),
		n.RecipientID.Int64(),
		n.Type.String(),
		int(n.Priority),
		n.Title,
		n.Message,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}
	return nil
}

// GetByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepository) GetByRecipient(ctx context.Context, recipientID notification.RecipientID, limit int) ([]*notification.Notification, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, user_id, type, priority, title, message, is_read, read_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, recipientID.Int64(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var items []*notification.Notification
	for rows.Next() {
		var (
			n        notification.Notification
			id       string
			nType    string
			priority int
		)
		if err := rows.Scan(&id, &n.RecipientID, &nType, &priority, &n.Title, &n.Message, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.ID = notification.NotificationID(id)
		n.Type = notification.NotificationType(nType)
		n.Priority = notification.Priority(priority)
		items = append(items, &n)
	}
	return items, rows.Err()
}

// CountUnread returns the number of unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID notification.RecipientID) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`, recipientID.Int64()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID notification.RecipientID, id notification.NotificationID) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_read = FALSE
	`, id.String(), recipientID.Int64())
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either unknown ID or already read; check existence to distinguish
		var exists bool
		if err := r.conn.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2)
		`, id.String(), recipientID.Int64()).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check notification: %w", err)
		}
		if !exists {
			return notification.ErrNotificationNotFound
		}
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID notification.RecipientID) (int64, error) {
	tag, err := r.conn.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND is_read = FALSE
	`, recipientID.Int64())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ExistsRecent reports whether a notification of the same type and title was
// created within the window. Keeps repeated refreshes from flooding the feed.
func (r *NotificationRepository) ExistsRecent(
	ctx context.Context,
	recipientID notification.RecipientID,
	t notification.NotificationType,
	title string,
	window time.Duration,
) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND title = $3 AND created_at > $4
		)
	`, recipientID.Int64(), t.String(), title, time.Now().UTC().Add(-window)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recent notifications: %w", err)
	}
	return exists, nil
}

// DeleteOlderThan removes notifications created before the given time.
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.conn.Exec(ctx, `
		DELETE FROM notifications WHERE created_at < $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
