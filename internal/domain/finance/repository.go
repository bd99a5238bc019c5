package finance

import (
	"context"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ExpenseRepository управляет хранением расходов.
type ExpenseRepository interface {
	// Create сохраняет новый расход и заполняет его ID.
	Create(ctx context.Context, expense *Expense) error

	// ListByUser возвращает расходы пользователя (от новых к старым).
	ListByUser(ctx context.Context, userID shared.UserID, limit int) ([]*Expense, error)

	// DistinctDays возвращает различные дни с расходами (по убыванию).
	DistinctDays(ctx context.Context, userID shared.UserID) ([]time.Time, error)

	// ExistsOn проверяет наличие расхода в указанный день.
	ExistsOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error)

	// Exists проверяет наличие хотя бы одного расхода.
	Exists(ctx context.Context, userID shared.UserID) (bool, error)
}

// IncomeRepository управляет хранением доходов.
type IncomeRepository interface {
	// Create сохраняет новый доход и заполняет его ID.
	Create(ctx context.Context, income *Income) error

	// ListByUser возвращает доходы пользователя (от новых к старым).
	ListByUser(ctx context.Context, userID shared.UserID, limit int) ([]*Income, error)

	// ExistsOn проверяет наличие дохода в указанный день.
	ExistsOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error)

	// Exists проверяет наличие хотя бы одного дохода.
	Exists(ctx context.Context, userID shared.UserID) (bool, error)
}

// GoalRepository управляет хранением целей.
type GoalRepository interface {
	// Create сохраняет новую цель и заполняет её ID.
	Create(ctx context.Context, goal *Goal) error

	// Save сохраняет изменения существующей цели.
	Save(ctx context.Context, goal *Goal) error

	// GetByID возвращает цель по ID.
	GetByID(ctx context.Context, userID shared.UserID, id int64) (*Goal, error)

	// ListByUser возвращает цели пользователя.
	ListByUser(ctx context.Context, userID shared.UserID) ([]*Goal, error)

	// Count возвращает (всего целей, завершённых целей).
	Count(ctx context.Context, userID shared.UserID) (total int, completed int, err error)

	// HasDeadlineOn проверяет наличие цели с дедлайном в указанный день.
	HasDeadlineOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error)
}
