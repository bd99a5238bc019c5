package query

import (
	"context"
	"errors"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CHALLENGES QUERY
// Возвращает каталог челленджей вместе с прогрессом пользователя.
// Для челленджей без записи прогресса возвращается ноль - запрос ничего
// не создаёт, записи появляются только при refresh.
// ══════════════════════════════════════════════════════════════════════════════

// GetChallengesQuery содержит параметры запроса челленджей.
type GetChallengesQuery struct {
	// UserID - чей прогресс запрашивается.
	UserID shared.UserID

	// OnlyActive - скрыть завершённые челленджи.
	OnlyActive bool
}

// Validate проверяет корректность параметров запроса.
func (q *GetChallengesQuery) Validate() error {
	if !q.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	return nil
}

// ChallengeDTO - DTO челленджа с прогрессом пользователя.
type ChallengeDTO struct {
	// ID - идентификатор челленджа из каталога.
	ID int `json:"id"`

	// Title - название челленджа.
	Title string `json:"title"`

	// Description - описание условия.
	Description string `json:"description"`

	// Icon - эмодзи челленджа.
	Icon string `json:"icon"`

	// Target - целевое значение.
	Target float64 `json:"target"`

	// RewardPoints - награда за завершение.
	RewardPoints int `json:"reward_points"`

	// Progress - текущий прогресс (обрезан по Target).
	Progress float64 `json:"progress"`

	// ProgressPercent - прогресс в процентах (0-100).
	ProgressPercent int `json:"progress_percent"`

	// Completed - завершён ли челлендж.
	Completed bool `json:"completed"`

	// CompletedAt - когда завершён (nil = не завершён).
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// GetChallengesResult содержит результат запроса челленджей.
type GetChallengesResult struct {
	// Challenges - челленджи каталога с прогрессом.
	Challenges []ChallengeDTO `json:"challenges"`

	// CompletedCount - сколько челленджей завершено.
	CompletedCount int `json:"completed_count"`

	// TotalRewardEarned - сумма наград за завершённые челленджи.
	TotalRewardEarned int `json:"total_reward_earned"`
}

// GetChallengesHandler обрабатывает запросы челленджей.
type GetChallengesHandler struct {
	challengeRepo gamification.ChallengeRepository
}

// NewGetChallengesHandler создаёт новый обработчик запроса челленджей.
func NewGetChallengesHandler(challengeRepo gamification.ChallengeRepository) *GetChallengesHandler {
	return &GetChallengesHandler{challengeRepo: challengeRepo}
}

// Handle выполняет запрос челленджей.
func (h *GetChallengesHandler) Handle(ctx context.Context, query GetChallengesQuery) (*GetChallengesResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetChallenges", shared.ErrValidation, err.Error(), err)
	}

	rows, err := h.challengeRepo.ListProgress(ctx, query.UserID)
	if err != nil {
		return nil, shared.WrapError("query", "GetChallenges", shared.ErrExternalService, "failed to list challenge progress", err)
	}

	byID := make(map[int]gamification.ChallengeProgress, len(rows))
	for _, row := range rows {
		byID[row.ChallengeID] = row
	}

	result := &GetChallengesResult{}
	for _, def := range gamification.GetChallengeDefinitions() {
		dto := ChallengeDTO{
			ID:           def.ID,
			Title:        def.Title,
			Description:  def.Description,
			Icon:         def.Icon,
			Target:       def.Target,
			RewardPoints: def.RewardPoints,
		}

		if row, ok := byID[def.ID]; ok {
			dto.Progress = row.Progress
			dto.Completed = row.Completed
			dto.CompletedAt = row.CompletedAt
		}

		if def.Target > 0 {
			dto.ProgressPercent = int(dto.Progress * 100 / def.Target)
			if dto.ProgressPercent > 100 {
				dto.ProgressPercent = 100
			}
		}

		if dto.Completed {
			result.CompletedCount++
			result.TotalRewardEarned += def.RewardPoints
			if query.OnlyActive {
				continue
			}
		}

		result.Challenges = append(result.Challenges, dto)
	}

	return result, nil
}
