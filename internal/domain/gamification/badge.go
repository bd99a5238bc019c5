package gamification

import (
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE CATALOG (Каталог значков)
// ══════════════════════════════════════════════════════════════════════════════

// BadgePredicate определяет условие получения значка.
type BadgePredicate string

const (
	// PredicateFirstTransaction - есть хотя бы один расход или доход.
	PredicateFirstTransaction BadgePredicate = "first_transaction"

	// PredicateFirstGoal - создана хотя бы одна цель накопления.
	PredicateFirstGoal BadgePredicate = "first_saving"

	// PredicateGoalCompleted - завершена хотя бы одна цель.
	PredicateGoalCompleted BadgePredicate = "goal_completed"

	// PredicateFiveGoals - завершено пять целей.
	PredicateFiveGoals BadgePredicate = "5_goals"

	// PredicateThreeLessons - завершено три урока.
	PredicateThreeLessons BadgePredicate = "3_lessons"

	// PredicateSevenDayStreak - серия достигла семи дней.
	PredicateSevenDayStreak BadgePredicate = "7_day_streak"
)

// BadgeDefinition описывает значок из фиксированного каталога.
type BadgeDefinition struct {
	ID          int
	Name        string
	Description string
	Icon        string
	Predicate   BadgePredicate
}

// GetBadgeDefinitions возвращает фиксированный каталог значков.
func GetBadgeDefinitions() []BadgeDefinition {
	return []BadgeDefinition{
		{1, "Principiante", "Registra tu primer movimiento", "🌟", PredicateFirstTransaction},
		{2, "Ahorrador Novato", "Crea tu primera meta de ahorro", "🐣", PredicateFirstGoal},
		{3, "Meta Cumplida", "Completa una meta de ahorro", "🎯", PredicateGoalCompleted},
		{4, "Maestro del Ahorro", "Completa 5 metas de ahorro", "👑", PredicateFiveGoals},
		{5, "Estudiante Financiero", "Completa 3 lecciones", "📖", PredicateThreeLessons},
		{6, "Racha de Fuego", "Mantén una racha de 7 días", "🔥", PredicateSevenDayStreak},
	}
}

// GetBadgeDefinition возвращает определение значка по ID.
func GetBadgeDefinition(id int) (BadgeDefinition, bool) {
	for _, def := range GetBadgeDefinitions() {
		if def.ID == id {
			return def, true
		}
	}
	return BadgeDefinition{}, false
}

// Evaluate проверяет условие значка по срезу активности и текущей серии.
// Условие оценивается на момент вызова: однажды выданный значок не
// отзывается, даже если условие позже перестало выполняться.
func (d BadgeDefinition) Evaluate(snap Snapshot, currentStreak int) bool {
	switch d.Predicate {
	case PredicateFirstTransaction:
		return snap.HasAnyTransaction
	case PredicateFirstGoal:
		return snap.TotalGoals > 0
	case PredicateGoalCompleted:
		return snap.CompletedGoals > 0
	case PredicateFiveGoals:
		return snap.CompletedGoals >= 5
	case PredicateThreeLessons:
		return snap.LessonsCompleted >= 3
	case PredicateSevenDayStreak:
		return currentStreak >= WeeklyStreakLength
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// USER BADGE (Полученный значок)
// ══════════════════════════════════════════════════════════════════════════════

// UserBadge представляет полученный пользователем значок.
// Существование записи = значок получен; записи никогда не удаляются.
type UserBadge struct {
	// UserID - идентификатор пользователя.
	UserID shared.UserID

	// BadgeID - идентификатор значка из каталога.
	BadgeID int

	// EarnedAt - когда получен.
	EarnedAt time.Time
}

// NewUserBadge создаёт запись о полученном значке.
func NewUserBadge(userID shared.UserID, badgeID int) *UserBadge {
	return &UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: time.Now().UTC(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// BadgeChecker находит значки, условия которых выполнены, но которые
// ещё не выданы пользователю.
type BadgeChecker struct{}

// NewBadgeChecker создаёт проверщик значков.
func NewBadgeChecker() *BadgeChecker {
	return &BadgeChecker{}
}

// CheckNewBadges возвращает определения значков, которые следует выдать.
func (bc *BadgeChecker) CheckNewBadges(
	snap Snapshot,
	currentStreak int,
	earned []UserBadge,
) []BadgeDefinition {
	existing := make(map[int]bool, len(earned))
	for _, b := range earned {
		existing[b.BadgeID] = true
	}

	var fresh []BadgeDefinition
	for _, def := range GetBadgeDefinitions() {
		if existing[def.ID] {
			continue
		}
		if def.Evaluate(snap, currentStreak) {
			fresh = append(fresh, def)
		}
	}
	return fresh
}
