package gamification

import (
	"context"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository управляет хранением профилей прогресса.
type ProfileRepository interface {
	// GetOrCreate возвращает профиль, создавая пустой при первом обращении.
	GetOrCreate(ctx context.Context, userID shared.UserID) (*Profile, error)

	// Save сохраняет профиль (upsert). Лучшая серия в хранилище
	// никогда не уменьшается.
	Save(ctx context.Context, profile *Profile) error

	// Top возвращает лучшие профили по очкам (по убыванию).
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry - строка таблицы лидеров.
type LeaderboardEntry struct {
	UserID        shared.UserID
	DisplayName   string
	Points        shared.Points
	Level         shared.Level
	CurrentStreak int
}

// ChallengeRepository управляет хранением прогресса по челленджам.
type ChallengeRepository interface {
	// ListProgress возвращает все записи прогресса пользователя.
	ListProgress(ctx context.Context, userID shared.UserID) ([]ChallengeProgress, error)

	// GetProgress возвращает прогресс по одному челленджу.
	// Возвращает shared.ErrNotFound, если записи ещё нет.
	GetProgress(ctx context.Context, userID shared.UserID, challengeID int) (*ChallengeProgress, error)

	// CreateProgress вставляет новую запись. Возвращает created=false,
	// если запись уже существует (конкурентная вставка).
	CreateProgress(ctx context.Context, progress *ChallengeProgress) (created bool, err error)

	// UpdateProgress обновляет только числовой прогресс (для отображения).
	// Не трогает флаг завершения.
	UpdateProgress(ctx context.Context, userID shared.UserID, challengeID int, progress float64) error

	// TryComplete атомарно переводит запись из незавершённой в завершённую.
	// Возвращает won=true ровно для одного вызова на пару (user, challenge):
	// того, который выиграл переход false -> true. Все остальные вызовы,
	// включая конкурентные, получают won=false.
	TryComplete(ctx context.Context, userID shared.UserID, challengeID int, progress float64) (won bool, err error)
}

// LeaderboardCache - кеш таблицы лидеров (redis sorted set).
// Проекция обновляется подписчиком на события начисления очков;
// при промахе или ошибке читается ProfileRepository.Top.
type LeaderboardCache interface {
	// GetTop возвращает закешированный топ (пустой срез = промах).
	GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// Update обновляет позицию пользователя в кеше.
	Update(ctx context.Context, entry LeaderboardEntry) error

	// Invalidate сбрасывает кеш целиком.
	Invalidate(ctx context.Context) error
}

// BadgeRepository управляет хранением выданных значков.
type BadgeRepository interface {
	// ListEarned возвращает все значки пользователя.
	ListEarned(ctx context.Context, userID shared.UserID) ([]UserBadge, error)

	// TryAward вставляет запись о значке, если её ещё нет.
	// Возвращает awarded=true ровно для одного вызова на пару (user, badge).
	TryAward(ctx context.Context, badge *UserBadge) (awarded bool, err error)
}
