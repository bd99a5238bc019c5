package gamification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

func TestConsecutiveDays_Empty(t *testing.T) {
	assert.Equal(t, 0, ConsecutiveDays(nil))
}

func TestConsecutiveDays_SingleDay(t *testing.T) {
	assert.Equal(t, 1, ConsecutiveDays([]time.Time{day(2026, 8, 10)}))
}

func TestConsecutiveDays_Run(t *testing.T) {
	days := []time.Time{
		day(2026, 8, 10),
		day(2026, 8, 11),
		day(2026, 8, 12),
	}
	assert.Equal(t, 3, ConsecutiveDays(days))
}

func TestConsecutiveDays_StopsAtGap(t *testing.T) {
	days := []time.Time{
		day(2026, 8, 5),
		day(2026, 8, 6),
		// gap
		day(2026, 8, 11),
		day(2026, 8, 12),
	}
	assert.Equal(t, 2, ConsecutiveDays(days), "the scan counts back from the most recent day only")
}

func TestConsecutiveDays_DuplicatesAndOrder(t *testing.T) {
	days := []time.Time{
		day(2026, 8, 12),
		day(2026, 8, 10),
		day(2026, 8, 11),
		time.Date(2026, 8, 11, 8, 0, 0, 0, time.UTC), // same day, another record
	}
	assert.Equal(t, 3, ConsecutiveDays(days))
}

// stubActivitySource is a test double returning fixed values.
type stubActivitySource struct {
	expenseDays []time.Time
	totalGoals  int
	doneGoals   int
	lessons     int
	hasTx       bool
	failOn      string
}

var errStubSource = errors.New("source unavailable")

func (s *stubActivitySource) ExpenseDays(ctx context.Context, userID shared.UserID) ([]time.Time, error) {
	if s.failOn == "expenses" {
		return nil, errStubSource
	}
	return s.expenseDays, nil
}

func (s *stubActivitySource) CountGoals(ctx context.Context, userID shared.UserID) (int, int, error) {
	if s.failOn == "goals" {
		return 0, 0, errStubSource
	}
	return s.totalGoals, s.doneGoals, nil
}

func (s *stubActivitySource) CountLessonsCompleted(ctx context.Context, userID shared.UserID) (int, error) {
	if s.failOn == "lessons" {
		return 0, errStubSource
	}
	return s.lessons, nil
}

func (s *stubActivitySource) HasAnyTransaction(ctx context.Context, userID shared.UserID) (bool, error) {
	if s.failOn == "tx" {
		return false, errStubSource
	}
	return s.hasTx, nil
}

func (s *stubActivitySource) HasActivityOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error) {
	return false, nil
}

func TestAggregator_Aggregate(t *testing.T) {
	source := &stubActivitySource{
		expenseDays: []time.Time{day(2026, 8, 10), day(2026, 8, 11)},
		totalGoals:  4,
		doneGoals:   2,
		lessons:     3,
		hasTx:       true,
	}

	snap, err := NewAggregator(source).Aggregate(context.Background(), shared.UserID(1))

	assert.NoError(t, err)
	assert.Equal(t, 4, snap.TotalGoals)
	assert.Equal(t, 2, snap.CompletedGoals)
	assert.Equal(t, 2, snap.ConsecutiveExpenseDays)
	assert.Equal(t, 3, snap.LessonsCompleted)
	assert.True(t, snap.HasAnyTransaction)
}

func TestAggregator_Aggregate_AnyReadFailureAborts(t *testing.T) {
	for _, failOn := range []string{"goals", "expenses", "lessons", "tx"} {
		source := &stubActivitySource{failOn: failOn}

		_, err := NewAggregator(source).Aggregate(context.Background(), shared.UserID(1))

		assert.ErrorIs(t, err, errStubSource, "failure on %s must abort aggregation", failOn)
	}
}
