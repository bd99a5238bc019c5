// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// User events
	EventUserRegistered EventType = "user.registered"

	// Progress events
	EventPointsAwarded EventType = "progress.points_awarded"
	EventLevelUp       EventType = "progress.level_up"
	EventStreakUpdated EventType = "progress.streak_updated"

	// Challenge events
	EventChallengeCompleted EventType = "challenge.completed"

	// Badge events
	EventBadgeEarned EventType = "badge.earned"

	// Refresh events
	EventRefreshRequested EventType = "refresh.requested"

	// Finance events
	EventExpenseRecorded EventType = "finance.expense_recorded"
	EventIncomeRecorded  EventType = "finance.income_recorded"
	EventGoalCompleted   EventType = "finance.goal_completed"

	// Education events
	EventLessonCompleted EventType = "education.lesson_completed"

	// Notification events
	EventNotificationCreated EventType = "notification.created"
	EventNotificationFailed  EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// User Events
// ═══════════════════════════════════════════════════════════════════════════

// UserRegisteredEvent is emitted when a new user completes registration.
type UserRegisteredEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Payload implements Event interface.
func (e UserRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"email":   e.Email,
	}
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent.
func NewUserRegisteredEvent(userID int64, email string) UserRegisteredEvent {
	return UserRegisteredEvent{
		BaseEvent: NewBaseEvent(EventUserRegistered, formatUserID(userID)),
		UserID:    userID,
		Email:     email,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// PointsAwardedEvent is emitted when a user is awarded points.
type PointsAwardedEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Amount   int    `json:"amount"`
	NewTotal int    `json:"new_total"`
	Source   string `json:"source"` // e.g., "challenge", "streak", "lesson"
}

// Payload implements Event interface.
func (e PointsAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"amount":    e.Amount,
		"new_total": e.NewTotal,
		"source":    e.Source,
	}
}

// NewPointsAwardedEvent creates a new PointsAwardedEvent.
func NewPointsAwardedEvent(userID int64, amount, newTotal int, source string) PointsAwardedEvent {
	return PointsAwardedEvent{
		BaseEvent: NewBaseEvent(EventPointsAwarded, formatUserID(userID)),
		UserID:    userID,
		Amount:    amount,
		NewTotal:  newTotal,
		Source:    source,
	}
}

// LevelUpEvent is emitted when a user reaches a new level.
type LevelUpEvent struct {
	BaseEvent
	UserID   int64 `json:"user_id"`
	OldLevel int   `json:"old_level"`
	NewLevel int   `json:"new_level"`
	Points   int   `json:"points"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
		"points":    e.Points,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(userID int64, oldLevel, newLevel, points int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, formatUserID(userID)),
		UserID:    userID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		Points:    points,
	}
}

// StreakUpdatedEvent is emitted when a user's streak advances or resets.
type StreakUpdatedEvent struct {
	BaseEvent
	UserID        int64 `json:"user_id"`
	CurrentStreak int   `json:"current_streak"`
	BestStreak    int   `json:"best_streak"`
	WasReset      bool  `json:"was_reset"`
}

// Payload implements Event interface.
func (e StreakUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"current_streak": e.CurrentStreak,
		"best_streak":    e.BestStreak,
		"was_reset":      e.WasReset,
	}
}

// NewStreakUpdatedEvent creates a new StreakUpdatedEvent.
func NewStreakUpdatedEvent(userID int64, current, best int, wasReset bool) StreakUpdatedEvent {
	return StreakUpdatedEvent{
		BaseEvent:     NewBaseEvent(EventStreakUpdated, formatUserID(userID)),
		UserID:        userID,
		CurrentStreak: current,
		BestStreak:    best,
		WasReset:      wasReset,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Challenge and Badge Events
// ═══════════════════════════════════════════════════════════════════════════

// ChallengeCompletedEvent is emitted exactly once per (user, challenge).
type ChallengeCompletedEvent struct {
	BaseEvent
	UserID       int64  `json:"user_id"`
	ChallengeID  int    `json:"challenge_id"`
	Title        string `json:"title"`
	RewardPoints int    `json:"reward_points"`
}

// Payload implements Event interface.
func (e ChallengeCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       e.UserID,
		"challenge_id":  e.ChallengeID,
		"title":         e.Title,
		"reward_points": e.RewardPoints,
	}
}

// NewChallengeCompletedEvent creates a new ChallengeCompletedEvent.
func NewChallengeCompletedEvent(userID int64, challengeID int, title string, rewardPoints int) ChallengeCompletedEvent {
	return ChallengeCompletedEvent{
		BaseEvent:    NewBaseEvent(EventChallengeCompleted, formatUserID(userID)),
		UserID:       userID,
		ChallengeID:  challengeID,
		Title:        title,
		RewardPoints: rewardPoints,
	}
}

// BadgeEarnedEvent is emitted exactly once per (user, badge).
type BadgeEarnedEvent struct {
	BaseEvent
	UserID  int64  `json:"user_id"`
	BadgeID int    `json:"badge_id"`
	Name    string `json:"name"`
}

// Payload implements Event interface.
func (e BadgeEarnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserID,
		"badge_id": e.BadgeID,
		"name":     e.Name,
	}
}

// NewBadgeEarnedEvent creates a new BadgeEarnedEvent.
func NewBadgeEarnedEvent(userID int64, badgeID int, name string) BadgeEarnedEvent {
	return BadgeEarnedEvent{
		BaseEvent: NewBaseEvent(EventBadgeEarned, formatUserID(userID)),
		UserID:    userID,
		BadgeID:   badgeID,
		Name:      name,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Refresh Events
// ═══════════════════════════════════════════════════════════════════════════

// RefreshRequestedEvent asks the engine to recompute all derived state for a user.
type RefreshRequestedEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"` // e.g., "transaction", "manual", "scheduled"
}

// Payload implements Event interface.
func (e RefreshRequestedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"reason":  e.Reason,
	}
}

// NewRefreshRequestedEvent creates a new RefreshRequestedEvent.
func NewRefreshRequestedEvent(userID int64, reason string) RefreshRequestedEvent {
	return RefreshRequestedEvent{
		BaseEvent: NewBaseEvent(EventRefreshRequested, formatUserID(userID)),
		UserID:    userID,
		Reason:    reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// User-Scoped Event
// ═══════════════════════════════════════════════════════════════════════════

// UserEvent is a minimal event carrying only the user reference. Used for
// raw-record mutations (expense/income/goal/lesson) where subscribers only
// need to know that something changed for the user.
type UserEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
}

// Payload implements Event interface.
func (e UserEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
	}
}

// NewUserEvent creates a user-scoped event of the given type.
func NewUserEvent(eventType EventType, userID int64) UserEvent {
	return UserEvent{
		BaseEvent: NewBaseEvent(eventType, formatUserID(userID)),
		UserID:    userID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
