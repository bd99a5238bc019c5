// Package eventhandler содержит обработчики доменных событий.
// Эти обработчики реализуют реактивную часть системы: реагируют на
// изменения прогресса и обновляют производные проекции (кеш таблицы
// лидеров), не блокируя основной путь записи.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/internal/domain/user"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON POINTS AWARDED HANDLER
// Держит redis-проекцию таблицы лидеров в актуальном состоянии.
// Ошибки проекции логируются и не возвращаются наверх: кеш можно
// перестроить из основного хранилища в любой момент.
// ═══════════════════════════════════════════════════════════════════════════

// OnPointsAwardedHandler обновляет проекцию таблицы лидеров при
// начислении очков и изменении серии.
type OnPointsAwardedHandler struct {
	profileRepo gamification.ProfileRepository
	userRepo    user.Repository
	cache       gamification.LeaderboardCache
	logger      *slog.Logger
}

// NewOnPointsAwardedHandler создаёт новый обработчик.
func NewOnPointsAwardedHandler(
	profileRepo gamification.ProfileRepository,
	userRepo user.Repository,
	cache gamification.LeaderboardCache,
	logger *slog.Logger,
) *OnPointsAwardedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnPointsAwardedHandler{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		cache:       cache,
		logger:      logger.With("handler", "on_points_awarded"),
	}
}

// Handle обрабатывает событие. Реализует shared.EventHandler.
func (h *OnPointsAwardedHandler) Handle(event shared.Event) error {
	userID, ok := userIDOf(event)
	if !ok {
		h.logger.Warn("event without user reference", "event_type", event.EventType())
		return nil
	}

	ctx := context.Background()

	profile, err := h.profileRepo.GetOrCreate(ctx, shared.UserID(userID))
	if err != nil {
		h.logger.Warn("failed to load profile for projection",
			"user_id", userID, "error", err)
		return nil
	}

	displayName := ""
	if u, err := h.userRepo.GetByID(ctx, profile.UserID); err == nil {
		displayName = u.DisplayName()
	}

	entry := gamification.LeaderboardEntry{
		UserID:        profile.UserID,
		DisplayName:   displayName,
		Points:        profile.Points,
		Level:         profile.Level,
		CurrentStreak: profile.CurrentStreak,
	}

	if err := h.cache.Update(ctx, entry); err != nil {
		h.logger.Warn("failed to update leaderboard projection",
			"user_id", userID, "error", err)
		return nil
	}

	h.logger.Debug("leaderboard projection updated",
		"user_id", userID,
		"points", profile.Points.Int(),
	)
	return nil
}

// userIDOf извлекает ID пользователя из событий прогресса.
func userIDOf(event shared.Event) (int64, bool) {
	switch e := event.(type) {
	case shared.PointsAwardedEvent:
		return e.UserID, true
	case shared.StreakUpdatedEvent:
		return e.UserID, true
	case shared.LevelUpEvent:
		return e.UserID, true
	default:
		return 0, false
	}
}
