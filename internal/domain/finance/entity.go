// Package finance содержит доменную модель финансовых записей FinZen:
// расходы, доходы и цели накопления. Движок геймификации читает эти
// записи, но никогда их не изменяет.
package finance

import (
	"strings"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPENSE (Расход)
// ══════════════════════════════════════════════════════════════════════════════

// ExpenseCategory определяет категорию расхода.
type ExpenseCategory string

const (
	CategoryFood          ExpenseCategory = "comida"
	CategoryTransport     ExpenseCategory = "transporte"
	CategoryEducation     ExpenseCategory = "educacion"
	CategoryEntertainment ExpenseCategory = "entretenimiento"
	CategoryHealth        ExpenseCategory = "salud"
	CategoryOther         ExpenseCategory = "otros"
)

// IsValid проверяет корректность категории.
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryEducation,
		CategoryEntertainment, CategoryHealth, CategoryOther:
		return true
	default:
		return false
	}
}

// Expense представляет запись о расходе.
type Expense struct {
	ID          int64
	UserID      shared.UserID
	Amount      shared.Money
	Category    ExpenseCategory
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// NewExpenseParams содержит параметры для создания расхода.
type NewExpenseParams struct {
	UserID      shared.UserID
	Amount      float64
	Category    string
	Description string
	Date        time.Time
}

// NewExpense создаёт запись о расходе с валидацией.
func NewExpense(params NewExpenseParams) (*Expense, error) {
	if !params.UserID.IsValid() {
		return nil, shared.NewDomainError("finance", "NewExpense", shared.ErrInvalidID, "user ID must be positive")
	}

	amount, err := shared.NewMoney(params.Amount)
	if err != nil {
		return nil, err
	}

	category := ExpenseCategory(strings.ToLower(strings.TrimSpace(params.Category)))
	if !category.IsValid() {
		category = CategoryOther
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	return &Expense{
		UserID:      params.UserID,
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(params.Description),
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INCOME (Доход)
// ══════════════════════════════════════════════════════════════════════════════

// Income представляет запись о доходе.
type Income struct {
	ID          int64
	UserID      shared.UserID
	Amount      shared.Money
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// NewIncomeParams содержит параметры для создания дохода.
type NewIncomeParams struct {
	UserID      shared.UserID
	Amount      float64
	Description string
	Date        time.Time
}

// NewIncome создаёт запись о доходе с валидацией.
func NewIncome(params NewIncomeParams) (*Income, error) {
	if !params.UserID.IsValid() {
		return nil, shared.NewDomainError("finance", "NewIncome", shared.ErrInvalidID, "user ID must be positive")
	}

	amount, err := shared.NewMoney(params.Amount)
	if err != nil {
		return nil, err
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	return &Income{
		UserID:      params.UserID,
		Amount:      amount,
		Description: strings.TrimSpace(params.Description),
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GOAL (Цель накопления)
// ══════════════════════════════════════════════════════════════════════════════

// GoalType определяет тип цели.
type GoalType string

const (
	// GoalTypeSaving - цель накопления.
	GoalTypeSaving GoalType = "saving"

	// GoalTypeSpendingLimit - лимит трат.
	GoalTypeSpendingLimit GoalType = "spending_limit"
)

// Goal представляет цель накопления.
type Goal struct {
	ID        int64
	UserID    shared.UserID
	Name      string
	Target    shared.Money
	Current   float64
	Deadline  *time.Time
	Completed bool
	Type      GoalType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewGoalParams содержит параметры для создания цели.
type NewGoalParams struct {
	UserID   shared.UserID
	Name     string
	Target   float64
	Deadline *time.Time
	Type     GoalType
}

// NewGoal создаёт цель с валидацией.
func NewGoal(params NewGoalParams) (*Goal, error) {
	if !params.UserID.IsValid() {
		return nil, shared.NewDomainError("finance", "NewGoal", shared.ErrInvalidID, "user ID must be positive")
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, shared.NewDomainError("finance", "NewGoal", shared.ErrEmptyValue, "goal name cannot be empty")
	}

	target, err := shared.NewMoney(params.Target)
	if err != nil {
		return nil, err
	}

	goalType := params.Type
	if goalType == "" {
		goalType = GoalTypeSaving
	}

	now := time.Now().UTC()
	return &Goal{
		UserID:    params.UserID,
		Name:      name,
		Target:    target,
		Current:   0,
		Deadline:  params.Deadline,
		Completed: false,
		Type:      goalType,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddProgress увеличивает накопленную сумму и завершает цель при
// достижении цели. Завершение монотонно.
func (g *Goal) AddProgress(amount float64) {
	if amount <= 0 {
		return
	}
	g.Current += amount
	if g.Current >= g.Target.Float64() {
		g.Completed = true
	}
	g.UpdatedAt = time.Now().UTC()
}

// ProgressPercent возвращает прогресс в процентах (0-100).
func (g *Goal) ProgressPercent() int {
	if g.Target <= 0 {
		return 0
	}
	pct := int(g.Current * 100 / g.Target.Float64())
	if pct > 100 {
		return 100
	}
	return pct
}

// IsDueOn проверяет, приходится ли дедлайн цели на указанный день.
func (g *Goal) IsDueOn(day time.Time) bool {
	if g.Deadline == nil {
		return false
	}
	return g.Deadline.Year() == day.Year() && g.Deadline.YearDay() == day.YearDay()
}
