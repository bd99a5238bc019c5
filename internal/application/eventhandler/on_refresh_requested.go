package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/finzen-app/finzen-engine/internal/application/command"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON REFRESH REQUESTED HANDLER
// Выполняет отложенный пересчёт прогресса по событию refresh.requested.
// Синхронные пути (HTTP, запись транзакции) вызывают пересчёт напрямую;
// сюда приходят фоновые запросы: первичный проход после регистрации и
// запросы от других процессов через Redis pub/sub.
// ═══════════════════════════════════════════════════════════════════════════

// refreshTimeout ограничивает один фоновый пересчёт.
const refreshTimeout = 30 * time.Second

// OnRefreshRequestedHandler запускает пересчёт прогресса пользователя.
type OnRefreshRequestedHandler struct {
	refresher *command.RefreshProgressHandler
	logger    *slog.Logger
}

// NewOnRefreshRequestedHandler создаёт новый обработчик.
func NewOnRefreshRequestedHandler(
	refresher *command.RefreshProgressHandler,
	logger *slog.Logger,
) *OnRefreshRequestedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnRefreshRequestedHandler{
		refresher: refresher,
		logger:    logger.With("handler", "on_refresh_requested"),
	}
}

// Handle обрабатывает событие. Реализует shared.EventHandler.
func (h *OnRefreshRequestedHandler) Handle(event shared.Event) error {
	req, ok := event.(shared.RefreshRequestedEvent)
	if !ok {
		h.logger.Warn("unexpected event type", "event_type", event.EventType())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	result, err := h.refresher.Handle(ctx, command.RefreshProgressCommand{
		UserID: shared.UserID(req.UserID),
		Reason: command.RefreshReason(req.Reason),
	})
	if err != nil {
		h.logger.Warn("background refresh failed",
			"user_id", req.UserID,
			"reason", req.Reason,
			"error", err,
		)
		return nil
	}

	h.logger.Debug("background refresh completed",
		"user_id", req.UserID,
		"reason", req.Reason,
		"challenges_completed", len(result.CompletedChallenges),
		"badges_earned", len(result.EarnedBadges),
	)
	return nil
}
