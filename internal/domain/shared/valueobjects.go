// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UserID represents a unique user identifier.
type UserID int64

// IsValid checks if the user ID is valid (positive number).
func (u UserID) IsValid() bool {
	return u > 0
}

// Int64 returns the underlying int64 value.
func (u UserID) Int64() int64 {
	return int64(u)
}

// String returns the string representation.
func (u UserID) String() string {
	return fmt.Sprintf("%d", u)
}

// NewUserID creates a new UserID with validation.
func NewUserID(id int64) (UserID, error) {
	if id <= 0 {
		return 0, NewDomainError("shared", "NewUserID", ErrInvalidID, "user ID must be positive")
	}
	return UserID(id), nil
}

func formatUserID(id int64) string {
	return fmt.Sprintf("%d", id)
}

// Email represents a user email address.
type Email string

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValid checks if the email format is valid.
func (e Email) IsValid() bool {
	return emailRegex.MatchString(string(e))
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// Normalize returns a normalized (lowercase, trimmed) version of the email.
func (e Email) Normalize() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

// NewEmail creates a new Email with validation.
func NewEmail(value string) (Email, error) {
	e := Email(value).Normalize()
	if !e.IsValid() {
		return "", ErrInvalidEmail
	}
	return e, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Points Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Points represents gamification points earned by a user.
type Points int

const (
	// Points boundaries
	MinPoints Points = 0
	MaxPoints Points = 1000000 // 1 million points cap

	// PointsPerLevel is how many points each level spans.
	PointsPerLevel = 1000
)

// IsValid checks if the points value is within valid range.
func (p Points) IsValid() bool {
	return p >= MinPoints && p <= MaxPoints
}

// Int returns the underlying int value.
func (p Points) Int() int {
	return int(p)
}

// Add adds points and returns the result, capped at MaxPoints.
func (p Points) Add(amount int) Points {
	result := Points(int(p) + amount)
	if result > MaxPoints {
		return MaxPoints
	}
	if result < MinPoints {
		return MinPoints
	}
	return result
}

// Level calculates the level for this amount of points.
// Level 1 covers 0-999, level 2 covers 1000-1999, and so on.
func (p Points) Level() Level {
	if p <= 0 {
		return MinLevel
	}
	return Level(int(p)/PointsPerLevel + 1)
}

// ProgressToNextLevel returns percentage progress within the current level (0-100).
func (p Points) ProgressToNextLevel() int {
	within := int(p) % PointsPerLevel
	return (within * 100) / PointsPerLevel
}

// PointsToNextLevel returns how many points remain until the next level.
func (p Points) PointsToNextLevel() int {
	return PointsPerLevel - int(p)%PointsPerLevel
}

// NewPoints creates a new Points value with validation.
func NewPoints(amount int) (Points, error) {
	if amount < int(MinPoints) {
		return 0, NewDomainError("shared", "NewPoints", ErrNegativeValue, "points cannot be negative")
	}
	if amount > int(MaxPoints) {
		return MaxPoints, nil // Cap at max
	}
	return Points(amount), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Level Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Level represents a user's gamification level.
type Level int

const (
	MinLevel Level = 1
	MaxLevel Level = 1000
)

// IsValid checks if the level is within valid range.
func (l Level) IsValid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// Int returns the underlying int value.
func (l Level) Int() int {
	return int(l)
}

// RequiredPoints returns the total points required to reach this level.
func (l Level) RequiredPoints() int {
	if l <= MinLevel {
		return 0
	}
	return (int(l) - 1) * PointsPerLevel
}

// Title returns a human-readable title for the level.
func (l Level) Title() string {
	switch {
	case l < 3:
		return "Principiante"
	case l < 5:
		return "Aprendiz"
	case l < 10:
		return "Ahorrador"
	case l < 20:
		return "Planificador"
	case l < 50:
		return "Experto"
	default:
		return "Maestro"
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Rank Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Rank represents a user's position in the leaderboard.
type Rank int

const (
	MinRank  Rank = 1
	Unranked Rank = 0 // Not yet ranked
)

// IsValid checks if the rank is valid.
func (r Rank) IsValid() bool {
	return r >= MinRank
}

// Int returns the underlying int value.
func (r Rank) Int() int {
	return int(r)
}

// IsUnranked checks if the user is not yet ranked.
func (r Rank) IsUnranked() bool {
	return r == Unranked
}

// IsTop returns true if the rank is in the top N.
func (r Rank) IsTop(n int) bool {
	return r.IsValid() && int(r) <= n
}

// Medal returns a medal emoji for top ranks.
func (r Rank) Medal() string {
	switch r {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return ""
	}
}

// NewRank creates a new Rank with validation.
func NewRank(position int) (Rank, error) {
	if position < 0 {
		return Unranked, NewDomainError("shared", "NewRank", ErrNegativeValue, "rank cannot be negative")
	}
	return Rank(position), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Money Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Money represents a monetary amount. Stored as float to match the ledger
// records the engine reads; the engine itself never does money arithmetic
// beyond counting records.
type Money float64

// IsValid checks that the amount is positive.
func (m Money) IsValid() bool {
	return m > 0
}

// Float64 returns the underlying float64 value.
func (m Money) Float64() float64 {
	return float64(m)
}

// NewMoney creates a new Money value with validation.
func NewMoney(amount float64) (Money, error) {
	m := Money(amount)
	if !m.IsValid() {
		return 0, ErrInvalidAmount
	}
	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && !t.From.After(t.To)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.To.Sub(t.From)
}

// Contains checks if a time is within the range.
func (t TimeRange) Contains(tm time.Time) bool {
	return (tm.Equal(t.From) || tm.After(t.From)) && (tm.Equal(t.To) || tm.Before(t.To))
}

// NewTimeRange creates a new TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, NewDomainError("shared", "NewTimeRange", ErrInvalidInput, "'from' must be before 'to'")
	}
	return tr, nil
}

// LastNDays returns a TimeRange for the last N days.
func LastNDays(n int) TimeRange {
	now := time.Now()
	return TimeRange{
		From: now.AddDate(0, 0, -n),
		To:   now,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
