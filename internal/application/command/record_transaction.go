package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/finance"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD EXPENSE / INCOME COMMANDS
// CRUD по транзакциям: запись фиксируется, затем синхронно запускается
// пересчёт прогресса. Ошибка пересчёта не откатывает транзакцию - она уже
// зафиксирована; следующий refresh доведёт производное состояние.
// ══════════════════════════════════════════════════════════════════════════════

// RecordExpenseCommand contains the data to record an expense.
type RecordExpenseCommand struct {
	UserID      shared.UserID
	Amount      float64
	Category    string
	Description string
	Date        time.Time
}

// Validate validates the command.
func (c RecordExpenseCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("record_expense: user_id is required")
	}
	if c.Amount <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// RecordExpenseResult contains the result of recording an expense.
type RecordExpenseResult struct {
	ExpenseID int64

	// Refresh is the progress refresh that ran after the write
	// (nil when the refresh itself failed).
	Refresh *RefreshProgressResult
}

// RecordExpenseHandler handles the RecordExpenseCommand.
type RecordExpenseHandler struct {
	expenseRepo finance.ExpenseRepository
	refresher   *RefreshProgressHandler
	publisher   shared.EventPublisher
	log         *logger.Logger
}

// NewRecordExpenseHandler creates a new RecordExpenseHandler.
func NewRecordExpenseHandler(
	expenseRepo finance.ExpenseRepository,
	refresher *RefreshProgressHandler,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RecordExpenseHandler {
	return &RecordExpenseHandler{
		expenseRepo: expenseRepo,
		refresher:   refresher,
		publisher:   publisher,
		log:         log,
	}
}

// Handle executes the record expense command.
func (h *RecordExpenseHandler) Handle(ctx context.Context, cmd RecordExpenseCommand) (*RecordExpenseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_expense: validation failed: %w", err)
	}

	expense, err := finance.NewExpense(finance.NewExpenseParams{
		UserID:      cmd.UserID,
		Amount:      cmd.Amount,
		Category:    cmd.Category,
		Description: cmd.Description,
		Date:        cmd.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("record_expense: %w", err)
	}

	if err := h.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("record_expense: failed to create expense: %w", err)
	}

	_ = h.publisher.Publish(shared.NewUserEvent(shared.EventExpenseRecorded, cmd.UserID.Int64()))

	result := &RecordExpenseResult{ExpenseID: expense.ID}
	result.Refresh = h.runRefresh(ctx, cmd.UserID, "record_expense")
	return result, nil
}

// runRefresh runs the synchronous post-write refresh, logging failures.
func (h *RecordExpenseHandler) runRefresh(ctx context.Context, userID shared.UserID, op string) *RefreshProgressResult {
	refresh, err := h.refresher.Handle(ctx, RefreshProgressCommand{
		UserID: userID,
		Reason: RefreshReasonTransaction,
	})
	if err != nil {
		h.log.Warn("post-write refresh failed",
			logger.UserID(userID.Int64()),
			logger.Operation(op),
			logger.Err(err),
		)
		return nil
	}
	return refresh
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD INCOME
// ══════════════════════════════════════════════════════════════════════════════

// RecordIncomeCommand contains the data to record an income.
type RecordIncomeCommand struct {
	UserID      shared.UserID
	Amount      float64
	Description string
	Date        time.Time
}

// Validate validates the command.
func (c RecordIncomeCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("record_income: user_id is required")
	}
	if c.Amount <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// RecordIncomeResult contains the result of recording an income.
type RecordIncomeResult struct {
	IncomeID int64
	Refresh  *RefreshProgressResult
}

// RecordIncomeHandler handles the RecordIncomeCommand.
type RecordIncomeHandler struct {
	incomeRepo finance.IncomeRepository
	refresher  *RefreshProgressHandler
	publisher  shared.EventPublisher
	log        *logger.Logger
}

// NewRecordIncomeHandler creates a new RecordIncomeHandler.
func NewRecordIncomeHandler(
	incomeRepo finance.IncomeRepository,
	refresher *RefreshProgressHandler,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RecordIncomeHandler {
	return &RecordIncomeHandler{
		incomeRepo: incomeRepo,
		refresher:  refresher,
		publisher:  publisher,
		log:        log,
	}
}

// Handle executes the record income command.
func (h *RecordIncomeHandler) Handle(ctx context.Context, cmd RecordIncomeCommand) (*RecordIncomeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_income: validation failed: %w", err)
	}

	income, err := finance.NewIncome(finance.NewIncomeParams{
		UserID:      cmd.UserID,
		Amount:      cmd.Amount,
		Description: cmd.Description,
		Date:        cmd.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("record_income: %w", err)
	}

	if err := h.incomeRepo.Create(ctx, income); err != nil {
		return nil, fmt.Errorf("record_income: failed to create income: %w", err)
	}

	_ = h.publisher.Publish(shared.NewUserEvent(shared.EventIncomeRecorded, cmd.UserID.Int64()))

	result := &RecordIncomeResult{IncomeID: income.ID}

	refresh, err := h.refresher.Handle(ctx, RefreshProgressCommand{
		UserID: cmd.UserID,
		Reason: RefreshReasonTransaction,
	})
	if err != nil {
		h.log.Warn("post-write refresh failed",
			logger.UserID(cmd.UserID.Int64()),
			logger.Operation("record_income"),
			logger.Err(err),
		)
		return result, nil
	}
	result.Refresh = refresh
	return result, nil
}
