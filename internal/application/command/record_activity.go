package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/logger"
	"github.com/finzen-app/finzen-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ACTIVITY COMMAND
// Отмечает день активности: продлевает или сбрасывает серию и начисляет
// ежедневную награду. Повторный вызов в тот же день - no-op (очки не
// начисляются дважды).
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivityCommand contains the data to record a day of activity.
type RecordActivityCommand struct {
	// UserID is whose streak to update.
	UserID shared.UserID

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordActivityCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("record_activity: user_id is required")
	}
	return nil
}

// RecordActivityResult contains the result of recording activity.
type RecordActivityResult struct {
	// Outcome describes what happened to the streak.
	Outcome gamification.StreakOutcome

	// CurrentStreak after the update.
	CurrentStreak int

	// BestStreak after the update.
	BestStreak int

	// RewardPoints awarded for this activity (0 on repeat calls).
	RewardPoints int

	// NewLevel after the reward was applied.
	NewLevel int

	// LeveledUp indicates whether the reward pushed the user over a level.
	LeveledUp bool
}

// RecordActivityHandler handles the RecordActivityCommand.
type RecordActivityHandler struct {
	profileRepo gamification.ProfileRepository
	awarder     *AwardPointsHandler
	sink        notification.Sink
	publisher   shared.EventPublisher
	log         *logger.Logger
}

// NewRecordActivityHandler creates a new RecordActivityHandler.
func NewRecordActivityHandler(
	profileRepo gamification.ProfileRepository,
	awarder *AwardPointsHandler,
	sink notification.Sink,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RecordActivityHandler {
	return &RecordActivityHandler{
		profileRepo: profileRepo,
		awarder:     awarder,
		sink:        sink,
		publisher:   publisher,
		log:         log,
	}
}

// Handle executes the record activity command.
func (h *RecordActivityHandler) Handle(ctx context.Context, cmd RecordActivityCommand) (*RecordActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_activity: validation failed: %w", err)
	}

	profile, err := h.profileRepo.GetOrCreate(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("record_activity: failed to load profile: %w", err)
	}

	activity := profile.RecordActivity(timeutil.Now())

	result := &RecordActivityResult{
		Outcome:       activity.Outcome,
		CurrentStreak: activity.CurrentStreak,
		BestStreak:    activity.BestStreak,
		RewardPoints:  activity.RewardPoints,
		NewLevel:      profile.Points.Level().Int(),
	}

	if activity.Outcome == gamification.StreakAlreadyRecorded {
		return result, nil
	}

	if activity.RewardPoints > 0 {
		award := h.awarder.ApplyToProfile(ctx, profile, activity.RewardPoints, "streak")
		result.NewLevel = award.NewLevel.Int()
		result.LeveledUp = award.LeveledUp
	}

	if err := h.profileRepo.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("record_activity: failed to save profile: %w", err)
	}

	_ = h.publisher.Publish(shared.NewStreakUpdatedEvent(
		profile.UserID.Int64(),
		activity.CurrentStreak,
		activity.BestStreak,
		activity.Outcome == gamification.StreakReset,
	))

	if activity.CurrentStreak > 0 && activity.CurrentStreak%gamification.WeeklyStreakLength == 0 {
		h.appendStreakNotification(ctx, profile.UserID, activity.CurrentStreak)
	}

	h.log.Info("activity recorded",
		logger.UserID(profile.UserID.Int64()),
		logger.StreakLength(activity.CurrentStreak),
		logger.String("outcome", activity.Outcome.String()),
	)

	return result, nil
}

// appendStreakNotification writes the weekly streak milestone notification.
// Sink failures are logged and swallowed.
func (h *RecordActivityHandler) appendStreakNotification(ctx context.Context, userID shared.UserID, streak int) {
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(uuid.NewString()),
		Type:        notification.NotificationTypeStreakMilestone,
		RecipientID: notification.RecipientID(userID.Int64()),
		Title:       "🔥 ¡Racha Semanal!",
		Message:     fmt.Sprintf("Llevas %d días seguidos registrando tu actividad. +%d puntos", streak, gamification.WeeklyStreakBonus),
	})
	if err != nil {
		h.log.Warn("failed to build streak notification", logger.Err(err), logger.UserID(userID.Int64()))
		return
	}

	if err := h.sink.Append(ctx, n); err != nil {
		h.log.Warn("failed to append streak notification", logger.Err(err), logger.UserID(userID.Int64()))
	}
}
