package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finzen-app/finzen-engine/internal/domain/finance"
	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GOAL COMMANDS
// Создание цели накопления и пополнение прогресса по ней. Завершение цели
// монотонно; пересчёт прогресса запускается после каждой записи.
// ══════════════════════════════════════════════════════════════════════════════

// CreateGoalCommand contains the data to create a savings goal.
type CreateGoalCommand struct {
	UserID   shared.UserID
	Name     string
	Target   float64
	Deadline *time.Time
	Type     finance.GoalType
}

// Validate validates the command.
func (c CreateGoalCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("create_goal: user_id is required")
	}
	if c.Name == "" {
		return errors.New("create_goal: name is required")
	}
	if c.Target <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// CreateGoalResult contains the result of creating a goal.
type CreateGoalResult struct {
	GoalID  int64
	Refresh *RefreshProgressResult
}

// CreateGoalHandler handles the CreateGoalCommand.
type CreateGoalHandler struct {
	goalRepo  finance.GoalRepository
	refresher *RefreshProgressHandler
	log       *logger.Logger
}

// NewCreateGoalHandler creates a new CreateGoalHandler.
func NewCreateGoalHandler(
	goalRepo finance.GoalRepository,
	refresher *RefreshProgressHandler,
	log *logger.Logger,
) *CreateGoalHandler {
	return &CreateGoalHandler{goalRepo: goalRepo, refresher: refresher, log: log}
}

// Handle executes the create goal command.
func (h *CreateGoalHandler) Handle(ctx context.Context, cmd CreateGoalCommand) (*CreateGoalResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_goal: validation failed: %w", err)
	}

	goal, err := finance.NewGoal(finance.NewGoalParams{
		UserID:   cmd.UserID,
		Name:     cmd.Name,
		Target:   cmd.Target,
		Deadline: cmd.Deadline,
		Type:     cmd.Type,
	})
	if err != nil {
		return nil, fmt.Errorf("create_goal: %w", err)
	}

	if err := h.goalRepo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("create_goal: failed to create goal: %w", err)
	}

	result := &CreateGoalResult{GoalID: goal.ID}

	refresh, err := h.refresher.Handle(ctx, RefreshProgressCommand{
		UserID: cmd.UserID,
		Reason: RefreshReasonTransaction,
	})
	if err != nil {
		h.log.Warn("post-write refresh failed",
			logger.UserID(cmd.UserID.Int64()),
			logger.Operation("create_goal"),
			logger.Err(err),
		)
		return result, nil
	}
	result.Refresh = refresh
	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ADD GOAL PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// AddGoalProgressCommand contains the data to add money toward a goal.
type AddGoalProgressCommand struct {
	UserID shared.UserID
	GoalID int64
	Amount float64
}

// Validate validates the command.
func (c AddGoalProgressCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("add_goal_progress: user_id is required")
	}
	if c.GoalID <= 0 {
		return errors.New("add_goal_progress: goal_id is required")
	}
	if c.Amount <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// AddGoalProgressResult contains the result of adding goal progress.
type AddGoalProgressResult struct {
	Current         float64
	ProgressPercent int
	Completed       bool
	Refresh         *RefreshProgressResult
}

// AddGoalProgressHandler handles the AddGoalProgressCommand.
type AddGoalProgressHandler struct {
	goalRepo  finance.GoalRepository
	refresher *RefreshProgressHandler
	sink      notification.Sink
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewAddGoalProgressHandler creates a new AddGoalProgressHandler.
func NewAddGoalProgressHandler(
	goalRepo finance.GoalRepository,
	refresher *RefreshProgressHandler,
	sink notification.Sink,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *AddGoalProgressHandler {
	return &AddGoalProgressHandler{
		goalRepo:  goalRepo,
		refresher: refresher,
		sink:      sink,
		publisher: publisher,
		log:       log,
	}
}

// Handle executes the add goal progress command.
func (h *AddGoalProgressHandler) Handle(ctx context.Context, cmd AddGoalProgressCommand) (*AddGoalProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("add_goal_progress: validation failed: %w", err)
	}

	goal, err := h.goalRepo.GetByID(ctx, cmd.UserID, cmd.GoalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrGoalNotFound
		}
		return nil, fmt.Errorf("add_goal_progress: failed to load goal: %w", err)
	}

	wasCompleted := goal.Completed
	goal.AddProgress(cmd.Amount)

	if err := h.goalRepo.Save(ctx, goal); err != nil {
		return nil, fmt.Errorf("add_goal_progress: failed to save goal: %w", err)
	}

	if goal.Completed && !wasCompleted {
		_ = h.publisher.Publish(shared.NewUserEvent(shared.EventGoalCompleted, cmd.UserID.Int64()))
	} else if !goal.Completed && goal.ProgressPercent() >= 80 {
		h.appendGoalProgressNotification(ctx, goal)
	}

	result := &AddGoalProgressResult{
		Current:         goal.Current,
		ProgressPercent: goal.ProgressPercent(),
		Completed:       goal.Completed,
	}

	refresh, err := h.refresher.Handle(ctx, RefreshProgressCommand{
		UserID: cmd.UserID,
		Reason: RefreshReasonTransaction,
	})
	if err != nil {
		h.log.Warn("post-write refresh failed",
			logger.UserID(cmd.UserID.Int64()),
			logger.Operation("add_goal_progress"),
			logger.Err(err),
		)
		return result, nil
	}
	result.Refresh = refresh
	return result, nil
}

// appendGoalProgressNotification nudges the user when a goal is almost done.
// Sink failures are logged and swallowed.
func (h *AddGoalProgressHandler) appendGoalProgressNotification(ctx context.Context, goal *finance.Goal) {
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(uuid.NewString()),
		Type:        notification.NotificationTypeGoalProgress,
		RecipientID: notification.RecipientID(goal.UserID.Int64()),
		Title:       "📈 ¡Casi lo logras!",
		Message:     fmt.Sprintf("Tu meta '%s' va por el %d%%", goal.Name, goal.ProgressPercent()),
	})
	if err != nil {
		h.log.Warn("failed to build goal notification", logger.Err(err), logger.UserID(goal.UserID.Int64()))
		return
	}
	if err := h.sink.Append(ctx, n); err != nil {
		h.log.Warn("failed to append goal notification", logger.Err(err), logger.UserID(goal.UserID.Int64()))
	}
}
