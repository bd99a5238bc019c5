// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// Возвращает профиль прогресса пользователя: очки, уровень, серии.
// Профиль создаётся лениво - у нового пользователя запрос вернёт нули,
// а не ошибку.
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileQuery содержит параметры запроса профиля.
type GetProfileQuery struct {
	// UserID - чей профиль запрашивается.
	UserID shared.UserID
}

// Validate проверяет корректность параметров запроса.
func (q *GetProfileQuery) Validate() error {
	if !q.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	return nil
}

// ProfileDTO - DTO профиля прогресса.
type ProfileDTO struct {
	// UserID - идентификатор пользователя.
	UserID int64 `json:"user_id"`

	// Points - накопленные очки.
	Points int `json:"points"`

	// Level - текущий уровень.
	Level int `json:"level"`

	// LevelTitle - испанское название уровня.
	LevelTitle string `json:"level_title"`

	// ProgressToNextLevel - очки, набранные внутри текущего уровня (0-999).
	ProgressToNextLevel int `json:"progress_to_next_level"`

	// PointsToNextLevel - сколько очков осталось до следующего уровня.
	PointsToNextLevel int `json:"points_to_next_level"`

	// CurrentStreak - текущая серия дней активности.
	CurrentStreak int `json:"current_streak"`

	// BestStreak - лучшая серия.
	BestStreak int `json:"best_streak"`

	// StreakActiveToday - учтена ли активность за сегодня.
	StreakActiveToday bool `json:"streak_active_today"`

	// StreakBroken - серия прервана: активности не было больше одного дня,
	// следующая запись начнёт серию заново.
	StreakBroken bool `json:"streak_broken"`

	// LastActivityDate - дата последней активности (nil = никогда).
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

// GetProfileHandler обрабатывает запросы профиля прогресса.
type GetProfileHandler struct {
	profileRepo gamification.ProfileRepository
}

// NewGetProfileHandler создаёт новый обработчик запроса профиля.
func NewGetProfileHandler(profileRepo gamification.ProfileRepository) *GetProfileHandler {
	return &GetProfileHandler{profileRepo: profileRepo}
}

// Handle выполняет запрос профиля.
func (h *GetProfileHandler) Handle(ctx context.Context, query GetProfileQuery) (*ProfileDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetProfile", shared.ErrValidation, err.Error(), err)
	}

	profile, err := h.profileRepo.GetOrCreate(ctx, query.UserID)
	if err != nil {
		return nil, shared.WrapError("query", "GetProfile", shared.ErrExternalService, "failed to load profile", err)
	}

	dto := &ProfileDTO{
		UserID:              profile.UserID.Int64(),
		Points:              profile.Points.Int(),
		Level:               profile.Level.Int(),
		LevelTitle:          profile.Level.Title(),
		ProgressToNextLevel: profile.Points.ProgressToNextLevel(),
		PointsToNextLevel:   profile.Points.PointsToNextLevel(),
		CurrentStreak:       profile.CurrentStreak,
		BestStreak:          profile.BestStreak,
		StreakActiveToday:   profile.HasActivityOn(timeutil.Now()),
		StreakBroken:        profile.IsStreakBroken(timeutil.Now()),
	}

	if !profile.LastActivityDate.IsZero() {
		last := profile.LastActivityDate
		dto.LastActivityDate = &last
	}

	return dto, nil
}
