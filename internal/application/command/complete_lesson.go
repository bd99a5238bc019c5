package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/finzen-app/finzen-engine/internal/domain/education"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE LESSON COMMAND
// Засчитывает урок ровно один раз на пару (пользователь, урок) и начисляет
// фиксированную награду. Повторное завершение - no-op без очков.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteLessonCommand contains the data to complete a lesson.
type CompleteLessonCommand struct {
	UserID    shared.UserID
	LessonID  int
	QuizScore *int
}

// Validate validates the command.
func (c CompleteLessonCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("complete_lesson: user_id is required")
	}
	if c.LessonID <= 0 {
		return errors.New("complete_lesson: lesson_id is required")
	}
	return nil
}

// CompleteLessonResult contains the result of completing a lesson.
type CompleteLessonResult struct {
	// AlreadyCompleted is true when the lesson was counted before.
	AlreadyCompleted bool

	// PointsAwarded is the lesson reward (0 on repeat completion).
	PointsAwarded int

	Refresh *RefreshProgressResult
}

// CompleteLessonHandler handles the CompleteLessonCommand.
type CompleteLessonHandler struct {
	educationRepo education.Repository
	awarder       *AwardPointsHandler
	refresher     *RefreshProgressHandler
	publisher     shared.EventPublisher
	log           *logger.Logger
}

// NewCompleteLessonHandler creates a new CompleteLessonHandler.
func NewCompleteLessonHandler(
	educationRepo education.Repository,
	awarder *AwardPointsHandler,
	refresher *RefreshProgressHandler,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *CompleteLessonHandler {
	return &CompleteLessonHandler{
		educationRepo: educationRepo,
		awarder:       awarder,
		refresher:     refresher,
		publisher:     publisher,
		log:           log,
	}
}

// Handle executes the complete lesson command.
func (h *CompleteLessonHandler) Handle(ctx context.Context, cmd CompleteLessonCommand) (*CompleteLessonResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("complete_lesson: validation failed: %w", err)
	}

	completion, err := education.NewLessonCompletion(education.NewLessonCompletionParams{
		UserID:    cmd.UserID,
		LessonID:  cmd.LessonID,
		QuizScore: cmd.QuizScore,
	})
	if err != nil {
		return nil, fmt.Errorf("complete_lesson: %w", err)
	}

	created, err := h.educationRepo.RecordCompletion(ctx, completion)
	if err != nil {
		return nil, fmt.Errorf("complete_lesson: failed to record completion: %w", err)
	}

	result := &CompleteLessonResult{AlreadyCompleted: !created}

	if created {
		// Награда за урок выдаётся один раз, вместе с первой записью
		if _, err := h.awarder.Handle(ctx, AwardPointsCommand{
			UserID: cmd.UserID,
			Amount: education.LessonPoints,
			Source: "lesson",
		}); err != nil {
			h.log.Warn("failed to award lesson points",
				logger.UserID(cmd.UserID.Int64()),
				logger.Int("lesson_id", cmd.LessonID),
				logger.Err(err),
			)
		} else {
			result.PointsAwarded = education.LessonPoints
		}

		_ = h.publisher.Publish(shared.NewUserEvent(shared.EventLessonCompleted, cmd.UserID.Int64()))
	}

	refresh, err := h.refresher.Handle(ctx, RefreshProgressCommand{
		UserID: cmd.UserID,
		Reason: RefreshReasonTransaction,
	})
	if err != nil {
		h.log.Warn("post-write refresh failed",
			logger.UserID(cmd.UserID.Int64()),
			logger.Operation("complete_lesson"),
			logger.Err(err),
		)
		return result, nil
	}
	result.Refresh = refresh
	return result, nil
}
