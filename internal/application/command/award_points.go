// Package command contains write operations (CQRS - Commands).
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
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD POINTS COMMAND
// Начисляет очки пользователю и пересчитывает уровень. Каждый вызов
// начисляет amount: ровно-один-раз для наград обеспечивают ChallengeTracker
// и BadgeEvaluator, а не этот обработчик.
// ══════════════════════════════════════════════════════════════════════════════

// AwardPointsCommand contains the data to award points.
type AwardPointsCommand struct {
	// UserID is the recipient of the points.
	UserID shared.UserID

	// Amount is how many points to add (must be positive).
	Amount int

	// Source describes where the points came from (challenge, streak, lesson).
	Source string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c AwardPointsCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("award_points: user_id is required")
	}
	if c.Amount <= 0 {
		return shared.ErrInvalidPointsAmount
	}
	return nil
}

// AwardPointsResult contains the result of awarding points.
type AwardPointsResult struct {
	// NewTotal is the user's total points after the award.
	NewTotal int

	// NewLevel is the level after the award.
	NewLevel int

	// LeveledUp indicates whether the level increased.
	LeveledUp bool
}

// AwardPointsHandler handles the AwardPointsCommand.
type AwardPointsHandler struct {
	profileRepo gamification.ProfileRepository
	sink        notification.Sink
	publisher   shared.EventPublisher
	log         *logger.Logger
}

// NewAwardPointsHandler creates a new AwardPointsHandler.
func NewAwardPointsHandler(
	profileRepo gamification.ProfileRepository,
	sink notification.Sink,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *AwardPointsHandler {
	return &AwardPointsHandler{
		profileRepo: profileRepo,
		sink:        sink,
		publisher:   publisher,
		log:         log,
	}
}

// Handle executes the award points command.
func (h *AwardPointsHandler) Handle(ctx context.Context, cmd AwardPointsCommand) (*AwardPointsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("award_points: validation failed: %w", err)
	}

	profile, err := h.profileRepo.GetOrCreate(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("award_points: failed to load profile: %w", err)
	}

	award := h.ApplyToProfile(ctx, profile, cmd.Amount, cmd.Source)

	if err := h.profileRepo.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("award_points: failed to save profile: %w", err)
	}

	return &AwardPointsResult{
		NewTotal:  award.NewTotal.Int(),
		NewLevel:  award.NewLevel.Int(),
		LeveledUp: award.LeveledUp,
	}, nil
}

// ApplyToProfile mutates an already-loaded profile, emitting events and the
// level-up notification. The caller owns persistence; this keeps one
// fetch-save round trip per refresh step.
func (h *AwardPointsHandler) ApplyToProfile(
	ctx context.Context,
	profile *gamification.Profile,
	amount int,
	source string,
) gamification.AwardResult {
	award := profile.AddPoints(amount)

	h.log.Debug("points awarded",
		logger.UserID(profile.UserID.Int64()),
		logger.PointsAmount(amount),
		logger.String("source", source),
	)

	_ = h.publisher.Publish(shared.NewPointsAwardedEvent(
		profile.UserID.Int64(), amount, award.NewTotal.Int(), source,
	))

	if award.LeveledUp {
		_ = h.publisher.Publish(shared.NewLevelUpEvent(
			profile.UserID.Int64(),
			award.OldLevel.Int(),
			award.NewLevel.Int(),
			award.NewTotal.Int(),
		))
		h.appendLevelUpNotification(ctx, profile.UserID, award.NewLevel)
	}

	return award
}

// appendLevelUpNotification writes the level-up notification.
// Sink failures are logged and swallowed - a missed notification must never
// block the award itself.
func (h *AwardPointsHandler) appendLevelUpNotification(
	ctx context.Context,
	userID shared.UserID,
	level shared.Level,
) {
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(uuid.NewString()),
		Type:        notification.NotificationTypeLevelUp,
		RecipientID: notification.RecipientID(userID.Int64()),
		Title:       "⭐ ¡Nivel Alcanzado!",
		Message:     fmt.Sprintf("Felicidades, has alcanzado el nivel %d", level.Int()),
	})
	if err != nil {
		h.log.Warn("failed to build level-up notification", logger.Err(err), logger.UserID(userID.Int64()))
		return
	}

	if err := h.sink.Append(ctx, n); err != nil {
		h.log.Warn("failed to append level-up notification", logger.Err(err), logger.UserID(userID.Int64()))
	}
}
