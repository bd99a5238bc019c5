package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK NOTIFICATION READ COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// MarkNotificationReadCommand contains the data to mark notifications read.
type MarkNotificationReadCommand struct {
	// RecipientID is whose notifications to update.
	RecipientID notification.RecipientID

	// NotificationID is the single notification to mark (empty with All=true).
	NotificationID notification.NotificationID

	// All marks every unread notification of the recipient.
	All bool
}

// Validate validates the command.
func (c MarkNotificationReadCommand) Validate() error {
	if !c.RecipientID.IsValid() {
		return errors.New("mark_notification_read: recipient_id is required")
	}
	if !c.All && !c.NotificationID.IsValid() {
		return errors.New("mark_notification_read: notification_id is required")
	}
	return nil
}

// MarkNotificationReadHandler handles the MarkNotificationReadCommand.
type MarkNotificationReadHandler struct {
	repo notification.Repository
	log  *logger.Logger
}

// NewMarkNotificationReadHandler creates a new MarkNotificationReadHandler.
func NewMarkNotificationReadHandler(repo notification.Repository, log *logger.Logger) *MarkNotificationReadHandler {
	return &MarkNotificationReadHandler{repo: repo, log: log}
}

// Handle executes the mark notification read command.
func (h *MarkNotificationReadHandler) Handle(ctx context.Context, cmd MarkNotificationReadCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("mark_notification_read: validation failed: %w", err)
	}

	if cmd.All {
		updated, err := h.repo.MarkAllRead(ctx, cmd.RecipientID)
		if err != nil {
			return fmt.Errorf("mark_notification_read: failed to mark all read: %w", err)
		}
		h.log.Debug("notifications marked read",
			logger.Int("count", int(updated)),
			logger.UserID(cmd.RecipientID.Int64()),
		)
		return nil
	}

	if err := h.repo.MarkRead(ctx, cmd.RecipientID, cmd.NotificationID); err != nil {
		return fmt.Errorf("mark_notification_read: failed to mark read: %w", err)
	}
	return nil
}
