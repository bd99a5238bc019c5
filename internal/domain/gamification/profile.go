// Package gamification содержит ядро игровой механики FinZen:
// профиль прогресса (очки, уровни, серии), челленджи и значки.
// Все сущности пакета чистые - персистентность живёт в infrastructure.
package gamification

import (
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS PROFILE (Профиль прогресса)
// ══════════════════════════════════════════════════════════════════════════════

// Награды за ежедневную активность.
const (
	// DailyActivityReward - очки за обычный день активности.
	DailyActivityReward = 5

	// WeeklyStreakBonus - очки за каждый седьмой день серии.
	WeeklyStreakBonus = 50

	// WeeklyStreakLength - длина недельного цикла серии.
	WeeklyStreakLength = 7
)

// Profile представляет профиль прогресса пользователя.
// Один профиль на пользователя, создаётся лениво с нулевыми значениями.
type Profile struct {
	// UserID - идентификатор пользователя.
	UserID shared.UserID

	// Points - накопленные очки.
	Points shared.Points

	// Level - текущий уровень. Инвариант: Level == Points/1000 + 1.
	Level shared.Level

	// CurrentStreak - текущая серия дней активности.
	CurrentStreak int

	// BestStreak - лучшая серия. Инвариант: BestStreak >= CurrentStreak.
	BestStreak int

	// LastActivityDate - дата последней активности (нулевое время = никогда).
	LastActivityDate time.Time

	// CreatedAt - когда профиль создан.
	CreatedAt time.Time

	// UpdatedAt - когда профиль последний раз обновлялся.
	UpdatedAt time.Time
}

// NewProfile создаёт новый профиль с нулевыми значениями.
func NewProfile(userID shared.UserID) *Profile {
	now := time.Now().UTC()
	return &Profile{
		UserID:    userID,
		Points:    0,
		Level:     shared.MinLevel,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate проверяет инварианты профиля.
func (p *Profile) Validate() error {
	if !p.UserID.IsValid() {
		return shared.NewDomainError("gamification", "Validate", shared.ErrInvalidID, "profile user ID is invalid")
	}
	if p.Points < 0 {
		return shared.NewDomainError("gamification", "Validate", shared.ErrNegativeValue, "points cannot be negative")
	}
	if p.Level != p.Points.Level() {
		return shared.NewDomainError("gamification", "Validate", shared.ErrInvalidState, "level does not match points")
	}
	if p.BestStreak < p.CurrentStreak {
		return shared.NewDomainError("gamification", "Validate", shared.ErrInvalidState, "best streak below current streak")
	}
	return nil
}

// AwardResult описывает результат начисления очков.
type AwardResult struct {
	// OldLevel - уровень до начисления.
	OldLevel shared.Level

	// NewLevel - уровень после начисления.
	NewLevel shared.Level

	// NewTotal - итоговое количество очков.
	NewTotal shared.Points

	// LeveledUp - true, если уровень вырос.
	LeveledUp bool
}

// AddPoints начисляет очки и пересчитывает уровень.
// Каждый вызов начисляет amount - защита от повторных начислений
// лежит на вызывающей стороне (челлендж/значок выдаётся ровно один раз).
func (p *Profile) AddPoints(amount int) AwardResult {
	oldLevel := p.Level

	p.Points = p.Points.Add(amount)
	p.Level = p.Points.Level()
	p.UpdatedAt = time.Now().UTC()

	return AwardResult{
		OldLevel:  oldLevel,
		NewLevel:  p.Level,
		NewTotal:  p.Points,
		LeveledUp: p.Level > oldLevel,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STREAK STATE MACHINE (Серия активных дней)
// ══════════════════════════════════════════════════════════════════════════════

// StreakOutcome представляет исход записи дневной активности.
type StreakOutcome int

const (
	// StreakAlreadyRecorded - активность за сегодня уже учтена, ничего не меняем.
	StreakAlreadyRecorded StreakOutcome = iota

	// StreakContinued - активность на следующий день, серия продолжается.
	StreakContinued

	// StreakReset - пропуск дней или первая активность, серия начинается с 1.
	StreakReset
)

// String возвращает строковое представление исхода.
func (o StreakOutcome) String() string {
	switch o {
	case StreakAlreadyRecorded:
		return "already_recorded"
	case StreakContinued:
		return "continued"
	case StreakReset:
		return "reset"
	default:
		return "unknown"
	}
}

// ActivityResult описывает результат записи дневной активности.
type ActivityResult struct {
	// Outcome - исход state machine.
	Outcome StreakOutcome

	// CurrentStreak - серия после записи.
	CurrentStreak int

	// BestStreak - лучшая серия после записи.
	BestStreak int

	// RewardPoints - сколько очков положено за этот день
	// (0 при StreakAlreadyRecorded).
	RewardPoints int
}

// RecordActivity записывает активность за день date и обновляет серию.
//
// Правила:
//   - тот же день, что LastActivityDate: no-op;
//   - ровно следующий день: серия +1;
//   - иначе (пропуск или первая активность): серия = 1.
//
// Каждый седьмой день серии награждается WeeklyStreakBonus, остальные -
// DailyActivityReward. Повторный вызов в тот же день безопасен по построению.
func (p *Profile) RecordActivity(date time.Time) ActivityResult {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	if !p.LastActivityDate.IsZero() {
		last := time.Date(
			p.LastActivityDate.Year(),
			p.LastActivityDate.Month(),
			p.LastActivityDate.Day(),
			0, 0, 0, 0, time.UTC,
		)

		daysDiff := int(day.Sub(last).Hours() / 24)

		switch daysDiff {
		case 0:
			// Тот же день - ничего не меняем и не награждаем
			return ActivityResult{
				Outcome:       StreakAlreadyRecorded,
				CurrentStreak: p.CurrentStreak,
				BestStreak:    p.BestStreak,
				RewardPoints:  0,
			}
		case 1:
			// Следующий день - продолжаем серию
			p.CurrentStreak++
		default:
			// Пропущены дни - сбрасываем серию
			p.CurrentStreak = 1
		}
	} else {
		// Первая активность
		p.CurrentStreak = 1
	}

	if p.CurrentStreak > p.BestStreak {
		p.BestStreak = p.CurrentStreak
	}
	p.LastActivityDate = day
	p.UpdatedAt = time.Now().UTC()

	outcome := StreakReset
	if p.CurrentStreak > 1 {
		outcome = StreakContinued
	}

	reward := DailyActivityReward
	if p.CurrentStreak%WeeklyStreakLength == 0 {
		reward = WeeklyStreakBonus
	}

	return ActivityResult{
		Outcome:       outcome,
		CurrentStreak: p.CurrentStreak,
		BestStreak:    p.BestStreak,
		RewardPoints:  reward,
	}
}

// HasActivityOn проверяет, была ли активность учтена за указанный день.
func (p *Profile) HasActivityOn(date time.Time) bool {
	if p.LastActivityDate.IsZero() {
		return false
	}
	return p.LastActivityDate.Year() == date.Year() &&
		p.LastActivityDate.YearDay() == date.YearDay()
}

// IsStreakBroken проверяет, сломана ли серия относительно сегодняшнего дня.
func (p *Profile) IsStreakBroken(today time.Time) bool {
	if p.LastActivityDate.IsZero() {
		return false
	}
	todayOnly := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(
		p.LastActivityDate.Year(),
		p.LastActivityDate.Month(),
		p.LastActivityDate.Day(),
		0, 0, 0, 0, time.UTC,
	)
	return int(todayOnly.Sub(last).Hours()/24) > 1
}

// Clone возвращает глубокую копию профиля.
func (p *Profile) Clone() *Profile {
	clone := *p
	return &clone
}
