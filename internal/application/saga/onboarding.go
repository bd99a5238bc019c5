// Package saga contains multi-step business processes that orchestrate
// several domain operations in a coordinated manner. Non-critical steps
// degrade gracefully instead of failing the whole process.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finzen-app/finzen-engine/internal/application/command"
	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ONBOARDING SAGA
// Flow: Validate → Register User → Initialize Progress Profile →
// Publish Event
// ══════════════════════════════════════════════════════════════════════════════

// OnboardingInput contains all data required to onboard a new user.
type OnboardingInput struct {
	// Email - email for authentication (required).
	Email string

	// Password - raw password, hashed during registration (required).
	Password string

	// Name - display name for the leaderboard (optional).
	Name string
}

// Validate checks if the input is valid for onboarding.
func (i OnboardingInput) Validate() error {
	if i.Email == "" {
		return errors.New("onboarding: email is required")
	}
	if i.Password == "" {
		return errors.New("onboarding: password is required")
	}
	return nil
}

// OnboardingResult contains the result of a successful onboarding.
type OnboardingResult struct {
	// UserID - ID of the newly registered user.
	UserID shared.UserID

	// Email - normalized email.
	Email string

	// Profile - the freshly initialized progress profile.
	Profile *gamification.Profile

	// OnboardedAt - timestamp of successful onboarding.
	OnboardedAt time.Time
}

// OnboardingStep represents a step in the onboarding process.
type OnboardingStep string

const (
	StepValidateInput      OnboardingStep = "validate_input"
	StepRegisterUser       OnboardingStep = "register_user"
	StepInitializeProgress OnboardingStep = "initialize_progress"
	StepPublishEvent       OnboardingStep = "publish_event"
	StepComplete           OnboardingStep = "complete"
)

// OnboardingSaga orchestrates the complete user registration process.
// Registration itself (hashing, uniqueness, welcome notification) is
// delegated to the register command; the saga adds the steps around it
// that the command alone does not cover: eager creation of the progress
// profile and the registration event for other components.
type OnboardingSaga struct {
	register  *command.RegisterUserHandler
	profiles  gamification.ProfileRepository
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewOnboardingSaga creates a new onboarding saga with all dependencies.
func NewOnboardingSaga(
	register *command.RegisterUserHandler,
	profiles gamification.ProfileRepository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *OnboardingSaga {
	if log == nil {
		log = logger.Default()
	}
	return &OnboardingSaga{
		register:  register,
		profiles:  profiles,
		publisher: publisher,
		log:       log,
	}
}

// Execute runs the complete onboarding process.
// It returns the result on success or an OnboardingError naming the
// failed step.
func (s *OnboardingSaga) Execute(ctx context.Context, input OnboardingInput) (*OnboardingResult, error) {
	// Step 1: Validate input
	if err := input.Validate(); err != nil {
		return nil, s.wrapError(StepValidateInput, err)
	}

	// Step 2: Register the user. The command owns hashing, the
	// uniqueness check and the welcome notification.
	registered, err := s.register.Handle(ctx, command.RegisterUserCommand{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
	})
	if err != nil {
		return nil, s.wrapError(StepRegisterUser, err)
	}

	// Step 3: Initialize the progress profile eagerly so the first
	// profile read never races the first transaction. The profile is
	// also created lazily on first use, so a failure here is logged
	// and does not abort the registration: the user already exists.
	profile, err := s.profiles.GetOrCreate(ctx, registered.UserID)
	if err != nil {
		s.log.Warn("onboarding: failed to initialize progress profile",
			logger.Err(err),
			logger.UserID(registered.UserID.Int64()),
		)
		profile = nil
	}

	// Step 4: Publish the registration event. Non-critical.
	if err := s.publishRegisteredEvent(registered); err != nil {
		s.log.Warn("onboarding: failed to publish registration event",
			logger.Err(err),
			logger.UserID(registered.UserID.Int64()),
		)
	}

	return &OnboardingResult{
		UserID:      registered.UserID,
		Email:       registered.Email,
		Profile:     profile,
		OnboardedAt: time.Now().UTC(),
	}, nil
}

// publishRegisteredEvent publishes the user.registered domain event and
// requests an initial background progress pass for the new account.
func (s *OnboardingSaga) publishRegisteredEvent(registered *command.RegisterUserResult) error {
	if s.publisher == nil {
		return nil
	}
	event := shared.NewUserRegisteredEvent(registered.UserID.Int64(), registered.Email)
	if err := s.publisher.Publish(event); err != nil {
		return err
	}
	refresh := shared.NewRefreshRequestedEvent(
		registered.UserID.Int64(),
		string(command.RefreshReasonRegistration),
	)
	return s.publisher.Publish(refresh)
}

// wrapError wraps an error with saga context.
func (s *OnboardingSaga) wrapError(step OnboardingStep, err error) error {
	return &OnboardingError{
		Step:  step,
		Cause: err,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// OnboardingError represents an error during the onboarding process.
type OnboardingError struct {
	Step  OnboardingStep
	Cause error
}

// Error implements the error interface.
func (e *OnboardingError) Error() string {
	return fmt.Sprintf("onboarding failed at step '%s': %v", e.Step, e.Cause)
}

// Unwrap returns the underlying error, keeping errors.Is checks against
// domain sentinels working through the saga boundary.
func (e *OnboardingError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error can be retried.
func (e *OnboardingError) IsRetryable() bool {
	if e.Step == StepValidateInput {
		return false
	}
	if errors.Is(e.Cause, shared.ErrAlreadyExists) {
		return false
	}
	return true
}
