package query

import (
	"context"
	"errors"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET BADGES QUERY
// Возвращает каталог значков с отметкой о получении. Значки постоянны:
// однажды полученный значок остаётся навсегда.
// ══════════════════════════════════════════════════════════════════════════════

// GetBadgesQuery содержит параметры запроса значков.
type GetBadgesQuery struct {
	// UserID - чьи значки запрашиваются.
	UserID shared.UserID

	// OnlyEarned - вернуть только полученные значки.
	OnlyEarned bool
}

// Validate проверяет корректность параметров запроса.
func (q *GetBadgesQuery) Validate() error {
	if !q.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	return nil
}

// BadgeDTO - DTO значка.
type BadgeDTO struct {
	// ID - идентификатор значка из каталога.
	ID int `json:"id"`

	// Name - название значка.
	Name string `json:"name"`

	// Description - описание условия получения.
	Description string `json:"description"`

	// Icon - эмодзи значка.
	Icon string `json:"icon"`

	// Earned - получен ли значок.
	Earned bool `json:"earned"`

	// EarnedAt - когда получен (nil = не получен).
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// GetBadgesResult содержит результат запроса значков.
type GetBadgesResult struct {
	// Badges - значки каталога.
	Badges []BadgeDTO `json:"badges"`

	// EarnedCount - сколько значков получено.
	EarnedCount int `json:"earned_count"`

	// TotalCount - размер каталога.
	TotalCount int `json:"total_count"`
}

// GetBadgesHandler обрабатывает запросы значков.
type GetBadgesHandler struct {
	badgeRepo gamification.BadgeRepository
}

// NewGetBadgesHandler создаёт новый обработчик запроса значков.
func NewGetBadgesHandler(badgeRepo gamification.BadgeRepository) *GetBadgesHandler {
	return &GetBadgesHandler{badgeRepo: badgeRepo}
}

// Handle выполняет запрос значков.
func (h *GetBadgesHandler) Handle(ctx context.Context, query GetBadgesQuery) (*GetBadgesResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetBadges", shared.ErrValidation, err.Error(), err)
	}

	earned, err := h.badgeRepo.ListEarned(ctx, query.UserID)
	if err != nil {
		return nil, shared.WrapError("query", "GetBadges", shared.ErrExternalService, "failed to list earned badges", err)
	}

	earnedAt := make(map[int]time.Time, len(earned))
	for _, b := range earned {
		earnedAt[b.BadgeID] = b.EarnedAt
	}

	defs := gamification.GetBadgeDefinitions()
	result := &GetBadgesResult{TotalCount: len(defs)}

	for _, def := range defs {
		dto := BadgeDTO{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
		}

		if at, ok := earnedAt[def.ID]; ok {
			dto.Earned = true
			t := at
			dto.EarnedAt = &t
			result.EarnedCount++
		} else if query.OnlyEarned {
			continue
		}

		result.Badges = append(result.Badges, dto)
	}

	return result, nil
}
