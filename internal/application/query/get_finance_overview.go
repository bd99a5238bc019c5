package query

import (
	"context"
	"errors"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/finance"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET FINANCE OVERVIEW QUERY
// Сводка по финансам: последние движения, баланс и цели накопления.
// ══════════════════════════════════════════════════════════════════════════════

// GetFinanceOverviewQuery содержит параметры запроса сводки.
type GetFinanceOverviewQuery struct {
	// UserID - чья сводка запрашивается.
	UserID shared.UserID

	// RecentLimit - сколько последних движений вернуть (по умолчанию 10).
	RecentLimit int
}

// Validate проверяет корректность параметров запроса.
func (q *GetFinanceOverviewQuery) Validate() error {
	if !q.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	if q.RecentLimit < 0 {
		return errors.New("recent_limit cannot be negative")
	}
	if q.RecentLimit == 0 {
		q.RecentLimit = 10
	}
	return nil
}

// ExpenseDTO - DTO расхода.
type ExpenseDTO struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	DateLabel   string    `json:"date_label"`
}

// IncomeDTO - DTO дохода.
type IncomeDTO struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	DateLabel   string    `json:"date_label"`
}

// GoalDTO - DTO цели накопления.
type GoalDTO struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Target          float64    `json:"target"`
	Current         float64    `json:"current"`
	ProgressPercent int        `json:"progress_percent"`
	Completed       bool       `json:"completed"`
	Deadline        *time.Time `json:"deadline,omitempty"`
}

// GetFinanceOverviewResult содержит результат запроса сводки.
type GetFinanceOverviewResult struct {
	// RecentExpenses - последние расходы (от новых к старым).
	RecentExpenses []ExpenseDTO `json:"recent_expenses"`

	// RecentIncomes - последние доходы (от новых к старым).
	RecentIncomes []IncomeDTO `json:"recent_incomes"`

	// Goals - цели пользователя.
	Goals []GoalDTO `json:"goals"`

	// TotalExpenses - сумма показанных расходов.
	TotalExpenses float64 `json:"total_expenses"`

	// TotalIncomes - сумма показанных доходов.
	TotalIncomes float64 `json:"total_incomes"`
}

// GetFinanceOverviewHandler обрабатывает запросы финансовой сводки.
type GetFinanceOverviewHandler struct {
	expenseRepo finance.ExpenseRepository
	incomeRepo  finance.IncomeRepository
	goalRepo    finance.GoalRepository
}

// NewGetFinanceOverviewHandler создаёт новый обработчик запроса сводки.
func NewGetFinanceOverviewHandler(
	expenseRepo finance.ExpenseRepository,
	incomeRepo finance.IncomeRepository,
	goalRepo finance.GoalRepository,
) *GetFinanceOverviewHandler {
	return &GetFinanceOverviewHandler{
		expenseRepo: expenseRepo,
		incomeRepo:  incomeRepo,
		goalRepo:    goalRepo,
	}
}

// Handle выполняет запрос сводки.
func (h *GetFinanceOverviewHandler) Handle(ctx context.Context, query GetFinanceOverviewQuery) (*GetFinanceOverviewResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetFinanceOverview", shared.ErrValidation, err.Error(), err)
	}

	expenses, err := h.expenseRepo.ListByUser(ctx, query.UserID, query.RecentLimit)
	if err != nil {
		return nil, shared.WrapError("query", "GetFinanceOverview", shared.ErrExternalService, "failed to list expenses", err)
	}

	incomes, err := h.incomeRepo.ListByUser(ctx, query.UserID, query.RecentLimit)
	if err != nil {
		return nil, shared.WrapError("query", "GetFinanceOverview", shared.ErrExternalService, "failed to list incomes", err)
	}

	goals, err := h.goalRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, shared.WrapError("query", "GetFinanceOverview", shared.ErrExternalService, "failed to list goals", err)
	}

	result := &GetFinanceOverviewResult{
		RecentExpenses: make([]ExpenseDTO, 0, len(expenses)),
		RecentIncomes:  make([]IncomeDTO, 0, len(incomes)),
		Goals:          make([]GoalDTO, 0, len(goals)),
	}

	for _, e := range expenses {
		result.RecentExpenses = append(result.RecentExpenses, ExpenseDTO{
			ID:          e.ID,
			Amount:      e.Amount.Float64(),
			Category:    string(e.Category),
			Description: e.Description,
			Date:        e.Date,
			DateLabel:   timeutil.FormatRelative(e.Date),
		})
		result.TotalExpenses += e.Amount.Float64()
	}

	for _, in := range incomes {
		result.RecentIncomes = append(result.RecentIncomes, IncomeDTO{
			ID:          in.ID,
			Amount:      in.Amount.Float64(),
			Description: in.Description,
			Date:        in.Date,
			DateLabel:   timeutil.FormatRelative(in.Date),
		})
		result.TotalIncomes += in.Amount.Float64()
	}

	for _, g := range goals {
		result.Goals = append(result.Goals, GoalDTO{
			ID:              g.ID,
			Name:            g.Name,
			Type:            string(g.Type),
			Target:          g.Target.Float64(),
			Current:         g.Current,
			ProgressPercent: g.ProgressPercent(),
			Completed:       g.Completed,
			Deadline:        g.Deadline,
		})
	}

	return result, nil
}
