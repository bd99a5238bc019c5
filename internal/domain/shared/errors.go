// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrFutureTimestamp = errors.New("timestamp cannot be in the future")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrExpired          = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "gamification", "finance", "education"
	Op      string // Operation that failed, e.g., "Create", "Refresh"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound       = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists  = NewDomainError("user", "Create", ErrAlreadyExists, "user already exists")
	ErrInvalidEmail       = NewDomainError("user", "Validate", ErrInvalidFormat, "invalid email")
	ErrInvalidCredentials = NewDomainError("user", "Authenticate", ErrUnauthorized, "invalid credentials")
)

// Gamification domain errors
var (
	ErrProfileNotFound        = NewDomainError("gamification", "Find", ErrNotFound, "progress profile not found")
	ErrChallengeNotFound      = NewDomainError("gamification", "FindChallenge", ErrNotFound, "challenge not found")
	ErrBadgeNotFound          = NewDomainError("gamification", "FindBadge", ErrNotFound, "badge not found")
	ErrChallengeAlreadyDone   = NewDomainError("gamification", "Complete", ErrAlreadyProcessed, "challenge already completed")
	ErrBadgeAlreadyEarned     = NewDomainError("gamification", "Award", ErrAlreadyExists, "badge already earned")
	ErrInvalidPointsAmount    = NewDomainError("gamification", "AwardPoints", ErrValueOutOfRange, "points amount must be positive")
	ErrSnapshotReadFailed     = NewDomainError("gamification", "Aggregate", ErrExternalService, "failed to read activity records")
	ErrActivityAlreadyCounted = NewDomainError("gamification", "RecordActivity", ErrAlreadyProcessed, "activity already recorded today")
)

// Finance domain errors
var (
	ErrExpenseNotFound = NewDomainError("finance", "FindExpense", ErrNotFound, "expense not found")
	ErrIncomeNotFound  = NewDomainError("finance", "FindIncome", ErrNotFound, "income not found")
	ErrGoalNotFound    = NewDomainError("finance", "FindGoal", ErrNotFound, "goal not found")
	ErrInvalidAmount   = NewDomainError("finance", "Validate", ErrValueOutOfRange, "amount must be positive")
)

// Education domain errors
var (
	ErrLessonNotFound         = NewDomainError("education", "FindLesson", ErrNotFound, "lesson not found")
	ErrLessonAlreadyCompleted = NewDomainError("education", "Complete", ErrAlreadyExists, "lesson already completed")
)

// Notification domain errors
var (
	ErrNotificationNotFound = NewDomainError("notification", "Find", ErrNotFound, "notification not found")
	ErrNotificationFailed   = NewDomainError("notification", "Append", ErrExternalService, "failed to append notification")
	ErrTooManyNotifications = NewDomainError("notification", "Append", ErrRateLimited, "too many notifications")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
