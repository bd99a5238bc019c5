package gamification

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY SNAPSHOT (Срез активности)
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot представляет срез производных фактов о финансовой активности
// пользователя. Вычисляется заново при каждом refresh, нигде не хранится.
type Snapshot struct {
	// TotalGoals - всего целей накопления.
	TotalGoals int

	// CompletedGoals - завершённых целей.
	CompletedGoals int

	// ConsecutiveExpenseDays - длина серии последовательных дней с расходами.
	ConsecutiveExpenseDays int

	// LessonsCompleted - завершённых уроков.
	LessonsCompleted int

	// HasAnyTransaction - есть ли хотя бы один расход или доход.
	HasAnyTransaction bool
}

// ConsecutiveDays вычисляет длину серии последовательных дней.
//
// На вход подаются дни с расходами (дубликаты допустимы). Скан идёт от самого
// свежего дня назад и останавливается на первом разрыве больше одного дня.
// Серия не обязана включать сегодняшний день.
func ConsecutiveDays(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}

	// Нормализуем до начала дня и убираем дубликаты
	seen := make(map[string]time.Time, len(days))
	for _, d := range days {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		seen[day.Format("2006-01-02")] = day
	}

	distinct := make([]time.Time, 0, len(seen))
	for _, day := range seen {
		distinct = append(distinct, day)
	}
	sort.Slice(distinct, func(i, j int) bool {
		return distinct[i].After(distinct[j])
	})

	run := 1
	for i := 0; i < len(distinct)-1; i++ {
		diff := int(distinct[i].Sub(distinct[i+1]).Hours() / 24)
		if diff != 1 {
			break
		}
		run++
	}
	return run
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATOR
// ══════════════════════════════════════════════════════════════════════════════

// ActivitySource даёт агрегатору доступ на чтение к сырым записям
// пользователя. Реализуется инфраструктурным слоем поверх хранилища
// расходов, доходов, целей и уроков.
type ActivitySource interface {
	// ExpenseDays возвращает дни, в которые были расходы (с дубликатами).
	ExpenseDays(ctx context.Context, userID shared.UserID) ([]time.Time, error)

	// CountGoals возвращает (всего целей, завершённых целей).
	CountGoals(ctx context.Context, userID shared.UserID) (total int, completed int, err error)

	// CountLessonsCompleted возвращает количество завершённых уроков.
	CountLessonsCompleted(ctx context.Context, userID shared.UserID) (int, error)

	// HasAnyTransaction проверяет наличие хотя бы одного расхода или дохода.
	HasAnyTransaction(ctx context.Context, userID shared.UserID) (bool, error)

	// HasActivityOn проверяет наличие сырой активности за указанный день
	// (расход, доход или дедлайн цели в этот день).
	HasActivityOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error)
}

// Aggregator вычисляет Snapshot по сырым записям. Не держит состояния.
type Aggregator struct {
	source ActivitySource
}

// NewAggregator создаёт агрегатор поверх источника записей.
func NewAggregator(source ActivitySource) *Aggregator {
	return &Aggregator{source: source}
}

// Aggregate строит полный срез активности пользователя.
// Любая ошибка чтения прерывает агрегацию целиком - частичный срез опаснее
// отсутствия среза.
func (a *Aggregator) Aggregate(ctx context.Context, userID shared.UserID) (Snapshot, error) {
	var snap Snapshot

	total, completed, err := a.source.CountGoals(ctx, userID)
	if err != nil {
		return snap, fmt.Errorf("failed to count goals: %w", err)
	}
	snap.TotalGoals = total
	snap.CompletedGoals = completed

	expenseDays, err := a.source.ExpenseDays(ctx, userID)
	if err != nil {
		return snap, fmt.Errorf("failed to load expense days: %w", err)
	}
	snap.ConsecutiveExpenseDays = ConsecutiveDays(expenseDays)

	lessons, err := a.source.CountLessonsCompleted(ctx, userID)
	if err != nil {
		return snap, fmt.Errorf("failed to count lessons: %w", err)
	}
	snap.LessonsCompleted = lessons

	hasTx, err := a.source.HasAnyTransaction(ctx, userID)
	if err != nil {
		return snap, fmt.Errorf("failed to check transactions: %w", err)
	}
	snap.HasAnyTransaction = hasTx

	return snap, nil
}
