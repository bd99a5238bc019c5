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
// REFRESH PROGRESS COMMAND
// Пересчитывает весь производный прогресс пользователя: срез активности,
// челленджи, значки и, при сырой активности за сегодня, серию дней.
// Вызывается после каждой мутации и по ручному запросу, поэтому обязан быть
// идемпотентным: повторный вызов без новых данных ничего не доначисляет.
// ══════════════════════════════════════════════════════════════════════════════

// RefreshReason describes what triggered the refresh.
type RefreshReason string

const (
	// RefreshReasonTransaction - a finance/education mutation committed.
	RefreshReasonTransaction RefreshReason = "transaction"

	// RefreshReasonManual - the user pressed refresh.
	RefreshReasonManual RefreshReason = "manual"

	// RefreshReasonScheduled - background re-run for active users.
	RefreshReasonScheduled RefreshReason = "scheduled"

	// RefreshReasonRegistration - initial pass right after signup.
	RefreshReasonRegistration RefreshReason = "registration"
)

// RefreshProgressCommand contains the data to refresh a user's progress.
type RefreshProgressCommand struct {
	// UserID is whose progress to recompute.
	UserID shared.UserID

	// Reason describes the trigger.
	Reason RefreshReason

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RefreshProgressCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("refresh_progress: user_id is required")
	}
	return nil
}

// RefreshProgressResult contains the outcome of one refresh pass.
type RefreshProgressResult struct {
	// Snapshot is the activity snapshot the pass was computed from.
	Snapshot gamification.Snapshot

	// CompletedChallenges lists challenge IDs completed by this pass.
	CompletedChallenges []int

	// EarnedBadges lists badge IDs earned by this pass.
	EarnedBadges []int

	// ActivityRecorded is true when the pass advanced the daily streak.
	ActivityRecorded bool
}

// RefreshProgressHandler handles the RefreshProgressCommand.
type RefreshProgressHandler struct {
	aggregator    *gamification.Aggregator
	source        gamification.ActivitySource
	badgeChecker  *gamification.BadgeChecker
	profileRepo   gamification.ProfileRepository
	challengeRepo gamification.ChallengeRepository
	badgeRepo     gamification.BadgeRepository
	awarder       *AwardPointsHandler
	recorder      *RecordActivityHandler
	sink          notification.Sink
	publisher     shared.EventPublisher
	log           *logger.Logger
}

// NewRefreshProgressHandler creates a new RefreshProgressHandler.
func NewRefreshProgressHandler(
	source gamification.ActivitySource,
	profileRepo gamification.ProfileRepository,
	challengeRepo gamification.ChallengeRepository,
	badgeRepo gamification.BadgeRepository,
	awarder *AwardPointsHandler,
	recorder *RecordActivityHandler,
	sink notification.Sink,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RefreshProgressHandler {
	return &RefreshProgressHandler{
		aggregator:    gamification.NewAggregator(source),
		source:        source,
		badgeChecker:  gamification.NewBadgeChecker(),
		profileRepo:   profileRepo,
		challengeRepo: challengeRepo,
		badgeRepo:     badgeRepo,
		awarder:       awarder,
		recorder:      recorder,
		sink:          sink,
		publisher:     publisher,
		log:           log,
	}
}

// Handle executes one full refresh pass:
//
//	срез -> челленджи -> значки -> (серия, если сегодня была сырая активность)
//
// Ошибка чтения среза прерывает весь проход - частичное состояние не пишется.
// Ошибка по одному челленджу или значку изолируется и не мешает остальным.
func (h *RefreshProgressHandler) Handle(ctx context.Context, cmd RefreshProgressCommand) (*RefreshProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("refresh_progress: validation failed: %w", err)
	}

	snap, err := h.aggregator.Aggregate(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh_progress: %w: %v", shared.ErrSnapshotReadFailed, err)
	}

	profile, err := h.profileRepo.GetOrCreate(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh_progress: failed to load profile: %w", err)
	}

	result := &RefreshProgressResult{Snapshot: snap}

	rewarded := h.refreshChallenges(ctx, profile, snap, result)

	// Значки оцениваются по серии ДО сегодняшней записи активности.
	h.refreshBadges(ctx, profile, snap, result)

	if rewarded {
		if err := h.profileRepo.Save(ctx, profile); err != nil {
			return result, fmt.Errorf("refresh_progress: failed to save profile: %w", err)
		}
	}

	h.recordTodayActivity(ctx, cmd.UserID, result)

	h.log.Debug("progress refreshed",
		logger.UserID(cmd.UserID.Int64()),
		logger.String("reason", string(cmd.Reason)),
		logger.Int("challenges_completed", len(result.CompletedChallenges)),
		logger.Int("badges_earned", len(result.EarnedBadges)),
	)

	return result, nil
}

// refreshChallenges walks the fixed catalog and reconciles each progress row.
// Returns true when at least one reward was applied to the profile.
func (h *RefreshProgressHandler) refreshChallenges(
	ctx context.Context,
	profile *gamification.Profile,
	snap gamification.Snapshot,
	result *RefreshProgressResult,
) bool {
	rewarded := false

	for _, def := range gamification.GetChallengeDefinitions() {
		won, err := h.refreshOneChallenge(ctx, profile, def, snap)
		if err != nil {
			h.log.Warn("challenge refresh failed",
				logger.UserID(profile.UserID.Int64()),
				logger.ChallengeID(def.ID),
				logger.Err(err),
			)
			continue
		}
		if won {
			rewarded = true
			result.CompletedChallenges = append(result.CompletedChallenges, def.ID)
		}
	}

	return rewarded
}

// refreshOneChallenge reconciles a single challenge row and returns whether
// this call won the completion reward.
func (h *RefreshProgressHandler) refreshOneChallenge(
	ctx context.Context,
	profile *gamification.Profile,
	def gamification.ChallengeDefinition,
	snap gamification.Snapshot,
) (bool, error) {
	progress := def.ProgressFor(snap)

	existing, err := h.challengeRepo.GetProgress(ctx, profile.UserID, def.ID)
	switch {
	case err == nil:
		// Запись есть
	case errors.Is(err, shared.ErrNotFound):
		cp := gamification.NewChallengeProgress(profile.UserID, def, progress)
		created, err := h.challengeRepo.CreateProgress(ctx, cp)
		if err != nil {
			return false, fmt.Errorf("failed to create progress: %w", err)
		}
		if created {
			if cp.Completed {
				// Условие выполнено ещё до первого refresh - награждаем сразу
				h.issueChallengeReward(ctx, profile, def)
				return true, nil
			}
			return false, nil
		}
		// Проиграли конкурентную вставку - перечитываем и идём по пути обновления
		existing, err = h.challengeRepo.GetProgress(ctx, profile.UserID, def.ID)
		if err != nil {
			return false, fmt.Errorf("failed to reload progress: %w", err)
		}
	default:
		return false, fmt.Errorf("failed to load progress: %w", err)
	}

	if existing.Completed {
		// Завершённые записи не трогаем: completed монотонен
		return false, nil
	}

	existing.Progress = progress
	if existing.MeetsTarget(def) {
		won, err := h.challengeRepo.TryComplete(ctx, profile.UserID, def.ID, progress)
		if err != nil {
			return false, fmt.Errorf("failed to complete challenge: %w", err)
		}
		if won {
			h.issueChallengeReward(ctx, profile, def)
		}
		return won, nil
	}

	if err := h.challengeRepo.UpdateProgress(ctx, profile.UserID, def.ID, progress); err != nil {
		return false, fmt.Errorf("failed to update progress: %w", err)
	}
	return false, nil
}

// issueChallengeReward applies the one-time challenge reward to the profile
// and emits the completion notification and event.
func (h *RefreshProgressHandler) issueChallengeReward(
	ctx context.Context,
	profile *gamification.Profile,
	def gamification.ChallengeDefinition,
) {
	h.awarder.ApplyToProfile(ctx, profile, def.RewardPoints, "challenge")

	_ = h.publisher.Publish(shared.NewChallengeCompletedEvent(
		profile.UserID.Int64(), def.ID, def.Title, def.RewardPoints,
	))

	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(uuid.NewString()),
		Type:        notification.NotificationTypeChallengeCompleted,
		RecipientID: notification.RecipientID(profile.UserID.Int64()),
		Title:       "🎉 ¡Reto Completado!",
		Message:     fmt.Sprintf("Has completado '%s' y ganado %d puntos", def.Title, def.RewardPoints),
	})
	if err != nil {
		h.log.Warn("failed to build challenge notification", logger.Err(err), logger.UserID(profile.UserID.Int64()))
		return
	}
	if err := h.sink.Append(ctx, n); err != nil {
		h.log.Warn("failed to append challenge notification", logger.Err(err), logger.UserID(profile.UserID.Int64()))
	}
}

// refreshBadges awards every badge whose predicate holds and which the user
// does not have yet. Badges carry no points, only a notification.
func (h *RefreshProgressHandler) refreshBadges(
	ctx context.Context,
	profile *gamification.Profile,
	snap gamification.Snapshot,
	result *RefreshProgressResult,
) {
	earned, err := h.badgeRepo.ListEarned(ctx, profile.UserID)
	if err != nil {
		h.log.Warn("failed to list earned badges, skipping badge pass",
			logger.UserID(profile.UserID.Int64()), logger.Err(err))
		return
	}

	for _, def := range h.badgeChecker.CheckNewBadges(snap, profile.CurrentStreak, earned) {
		awarded, err := h.badgeRepo.TryAward(ctx, gamification.NewUserBadge(profile.UserID, def.ID))
		if err != nil {
			h.log.Warn("badge award failed",
				logger.UserID(profile.UserID.Int64()),
				logger.BadgeID(def.ID),
				logger.Err(err),
			)
			continue
		}
		if !awarded {
			// Конкурентный refresh успел первым
			continue
		}

		result.EarnedBadges = append(result.EarnedBadges, def.ID)

		_ = h.publisher.Publish(shared.NewBadgeEarnedEvent(profile.UserID.Int64(), def.ID, def.Name))
		h.appendBadgeNotification(ctx, profile.UserID, def)
	}
}

// appendBadgeNotification writes the badge notification; failures are
// logged and swallowed.
func (h *RefreshProgressHandler) appendBadgeNotification(
	ctx context.Context,
	userID shared.UserID,
	def gamification.BadgeDefinition,
) {
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(uuid.NewString()),
		Type:        notification.NotificationTypeBadgeEarned,
		RecipientID: notification.RecipientID(userID.Int64()),
		Title:       "🏆 ¡Nueva Insignia!",
		Message:     fmt.Sprintf("Has desbloqueado '%s'", def.Name),
	})
	if err != nil {
		h.log.Warn("failed to build badge notification", logger.Err(err), logger.UserID(userID.Int64()))
		return
	}
	if err := h.sink.Append(ctx, n); err != nil {
		h.log.Warn("failed to append badge notification", logger.Err(err), logger.UserID(userID.Int64()))
	}
}

// recordTodayActivity advances the streak only when raw activity exists for
// today. A read failure here skips streak recording but does not fail the
// refresh: the next pass will pick it up.
func (h *RefreshProgressHandler) recordTodayActivity(
	ctx context.Context,
	userID shared.UserID,
	result *RefreshProgressResult,
) {
	hasToday, err := h.source.HasActivityOn(ctx, userID, timeutil.Now())
	if err != nil {
		h.log.Warn("failed to check today's activity",
			logger.UserID(userID.Int64()), logger.Err(err))
		return
	}
	if !hasToday {
		return
	}

	activity, err := h.recorder.Handle(ctx, RecordActivityCommand{UserID: userID})
	if err != nil {
		h.log.Warn("failed to record daily activity",
			logger.UserID(userID.Int64()), logger.Err(err))
		return
	}

	result.ActivityRecorded = activity.Outcome != gamification.StreakAlreadyRecorded
}
