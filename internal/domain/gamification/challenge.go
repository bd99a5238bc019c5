package gamification

import (
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHALLENGE CATALOG (Каталог челленджей)
// ══════════════════════════════════════════════════════════════════════════════

// ChallengeKind определяет, из какого поля среза считается прогресс.
type ChallengeKind string

const (
	// KindSavingsCount - количество созданных целей накопления.
	KindSavingsCount ChallengeKind = "savings"

	// KindGoalCount - количество завершённых целей.
	KindGoalCount ChallengeKind = "goals"

	// KindConsecutiveDays - серия последовательных дней с расходами.
	KindConsecutiveDays ChallengeKind = "expenses"

	// KindLessonCount - количество завершённых уроков.
	KindLessonCount ChallengeKind = "education"
)

// ChallengeDefinition описывает челлендж из фиксированного каталога.
type ChallengeDefinition struct {
	ID           int
	Title        string
	Description  string
	Target       float64
	RewardPoints int
	Kind         ChallengeKind
	Icon         string

	// Month ограничивает челлендж конкретным месяцем (пусто = бессрочный).
	Month string
}

// GetChallengeDefinitions возвращает фиксированный каталог челленджей.
func GetChallengeDefinitions() []ChallengeDefinition {
	return []ChallengeDefinition{
		{1, "Primer Ahorro", "Registra tu primer ahorro del mes", 1, 100, KindSavingsCount, "💰", ""},
		{2, "Ahorro Constante", "Ahorra 3 veces en un mes", 3, 200, KindSavingsCount, "🏦", ""},
		{3, "Control de Gastos", "Registra gastos durante 7 días seguidos", 7, 150, KindConsecutiveDays, "📝", ""},
		{4, "Meta Alcanzada", "Completa una meta de ahorro", 1, 500, KindGoalCount, "🎯", ""},
		{5, "Educación Financiera", "Completa 5 lecciones", 5, 300, KindLessonCount, "📚", ""},
	}
}

// GetChallengeDefinition возвращает определение челленджа по ID.
func GetChallengeDefinition(id int) (ChallengeDefinition, bool) {
	for _, def := range GetChallengeDefinitions() {
		if def.ID == id {
			return def, true
		}
	}
	return ChallengeDefinition{}, false
}

// ProgressFor вычисляет прогресс по срезу для этого челленджа.
// Значение обрезается по Target - в интерфейсе прогресс никогда
// не превышает цель.
func (d ChallengeDefinition) ProgressFor(snap Snapshot) float64 {
	var raw float64
	switch d.Kind {
	case KindSavingsCount:
		raw = float64(snap.TotalGoals)
	case KindGoalCount:
		raw = float64(snap.CompletedGoals)
	case KindConsecutiveDays:
		raw = float64(snap.ConsecutiveExpenseDays)
	case KindLessonCount:
		raw = float64(snap.LessonsCompleted)
	}
	if raw > d.Target {
		return d.Target
	}
	return raw
}

// ══════════════════════════════════════════════════════════════════════════════
// CHALLENGE PROGRESS (Прогресс пользователя по челленджу)
// ══════════════════════════════════════════════════════════════════════════════

// ChallengeProgress представляет прогресс пользователя по одному челленджу.
// Инварианты: Completed монотонно (true не откатывается); награда выдаётся
// ровно один раз, в момент перехода false -> true.
type ChallengeProgress struct {
	// UserID - идентификатор пользователя.
	UserID shared.UserID

	// ChallengeID - идентификатор челленджа из каталога.
	ChallengeID int

	// Progress - текущий прогресс (>= 0, обрезан по Target).
	Progress float64

	// Completed - завершён ли челлендж.
	Completed bool

	// CompletedAt - когда завершён (nil, если не завершён).
	CompletedAt *time.Time
}

// NewChallengeProgress создаёт запись прогресса.
// Если прогресс сразу достигает цели, запись рождается завершённой -
// это покрывает пользователей, выполнивших условие до первого refresh.
func NewChallengeProgress(userID shared.UserID, def ChallengeDefinition, progress float64) *ChallengeProgress {
	cp := &ChallengeProgress{
		UserID:      userID,
		ChallengeID: def.ID,
		Progress:    progress,
	}
	if cp.MeetsTarget(def) {
		now := time.Now().UTC()
		cp.Completed = true
		cp.CompletedAt = &now
	}
	return cp
}

// MeetsTarget проверяет числовое условие завершения.
func (cp *ChallengeProgress) MeetsTarget(def ChallengeDefinition) bool {
	return cp.Progress >= def.Target
}
