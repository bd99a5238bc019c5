package query

import (
	"context"
	"errors"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Получает топ-N пользователей по очкам. Сначала пробуем redis-проекцию,
// при промахе или ошибке читаем из основного хранилища.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery содержит параметры запроса таблицы лидеров.
type GetLeaderboardQuery struct {
	// Limit - количество записей (по умолчанию 20, максимум 100).
	Limit int

	// HighlightUserID - пользователь, которого надо отметить в результате
	// (0 = никого).
	HighlightUserID shared.UserID
}

// Validate проверяет корректность параметров запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	return nil
}

// LeaderboardEntryDTO - DTO записи таблицы лидеров.
type LeaderboardEntryDTO struct {
	// Rank - позиция в рейтинге (начиная с 1).
	Rank int `json:"rank"`

	// Medal - медаль для топ-3 (пустая строка для остальных).
	Medal string `json:"medal,omitempty"`

	// UserID - идентификатор пользователя.
	UserID int64 `json:"user_id"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"display_name"`

	// Points - накопленные очки.
	Points int `json:"points"`

	// Level - текущий уровень.
	Level int `json:"level"`

	// CurrentStreak - текущая серия дней.
	CurrentStreak int `json:"current_streak"`

	// IsYou - отмечает строку запрашивающего пользователя.
	IsYou bool `json:"is_you,omitempty"`
}

// GetLeaderboardResult содержит результат запроса таблицы лидеров.
type GetLeaderboardResult struct {
	// Entries - записи таблицы лидеров.
	Entries []LeaderboardEntryDTO `json:"entries"`

	// FromCache - обслужен ли запрос из кеша.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLeaderboardHandler обрабатывает запросы таблицы лидеров.
type GetLeaderboardHandler struct {
	profileRepo gamification.ProfileRepository
	cache       gamification.LeaderboardCache
	log         *logger.Logger
}

// NewGetLeaderboardHandler создаёт новый обработчик запроса таблицы лидеров.
func NewGetLeaderboardHandler(
	profileRepo gamification.ProfileRepository,
	cache gamification.LeaderboardCache,
	log *logger.Logger,
) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{profileRepo: profileRepo, cache: cache, log: log}
}

// Handle выполняет запрос таблицы лидеров.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrValidation, err.Error(), err)
	}

	entries, fromCache := h.loadTop(ctx, query.Limit)
	if entries == nil {
		var err error
		entries, err = h.profileRepo.Top(ctx, query.Limit)
		if err != nil {
			return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrExternalService, "failed to load leaderboard", err)
		}
	}

	result := &GetLeaderboardResult{
		Entries:     make([]LeaderboardEntryDTO, 0, len(entries)),
		FromCache:   fromCache,
		GeneratedAt: time.Now().UTC(),
	}

	for i, e := range entries {
		rank := shared.Rank(i + 1)
		result.Entries = append(result.Entries, LeaderboardEntryDTO{
			Rank:          rank.Int(),
			Medal:         rank.Medal(),
			UserID:        e.UserID.Int64(),
			DisplayName:   e.DisplayName,
			Points:        e.Points.Int(),
			Level:         e.Level.Int(),
			CurrentStreak: e.CurrentStreak,
			IsYou:         query.HighlightUserID.IsValid() && e.UserID == query.HighlightUserID,
		})
	}

	return result, nil
}

// loadTop пытается обслужить запрос из кеша. Возвращает (nil, false) при
// промахе или ошибке - ошибка кеша не фатальна.
func (h *GetLeaderboardHandler) loadTop(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, bool) {
	if h.cache == nil {
		return nil, false
	}

	entries, err := h.cache.GetTop(ctx, limit)
	if err != nil {
		h.log.Warn("leaderboard cache read failed", logger.Err(err))
		return nil, false
	}
	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}
