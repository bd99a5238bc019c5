package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

func day(yyyy, mm, dd int) time.Time {
	return time.Date(yyyy, time.Month(mm), dd, 12, 30, 0, 0, time.UTC)
}

func TestProfile_AddPoints_LevelFormula(t *testing.T) {
	p := NewProfile(shared.UserID(1))

	r := p.AddPoints(999)
	assert.Equal(t, shared.Points(999), r.NewTotal)
	assert.Equal(t, shared.Level(1), r.NewLevel)
	assert.False(t, r.LeveledUp)

	r = p.AddPoints(1)
	assert.Equal(t, shared.Points(1000), r.NewTotal)
	assert.Equal(t, shared.Level(2), r.NewLevel)
	assert.True(t, r.LeveledUp)
	assert.Equal(t, shared.Level(1), r.OldLevel)

	r = p.AddPoints(1500)
	assert.Equal(t, shared.Points(2500), r.NewTotal)
	assert.Equal(t, shared.Level(3), r.NewLevel)
}

func TestProfile_AddPoints_ZeroPointsIsLevelOne(t *testing.T) {
	p := NewProfile(shared.UserID(1))
	assert.Equal(t, shared.Points(0), p.Points)
	assert.Equal(t, shared.MinLevel, p.Level)
	assert.NoError(t, p.Validate())
}

func TestProfile_RecordActivity_FirstActivityStartsStreak(t *testing.T) {
	p := NewProfile(shared.UserID(1))

	r := p.RecordActivity(day(2026, 8, 10))

	assert.Equal(t, StreakReset, r.Outcome)
	assert.Equal(t, 1, r.CurrentStreak)
	assert.Equal(t, 1, r.BestStreak)
	assert.Equal(t, DailyActivityReward, r.RewardPoints)
}

func TestProfile_RecordActivity_SameDayIsNoop(t *testing.T) {
	p := NewProfile(shared.UserID(1))
	p.RecordActivity(day(2026, 8, 10))

	// Same calendar day, different hour
	r := p.RecordActivity(time.Date(2026, 8, 10, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, StreakAlreadyRecorded, r.Outcome)
	assert.Equal(t, 1, r.CurrentStreak)
	assert.Equal(t, 0, r.RewardPoints)
}

func TestProfile_RecordActivity_NextDayContinuesStreak(t *testing.T) {
	p := NewProfile(shared.UserID(1))
	p.RecordActivity(day(2026, 8, 10))

	r := p.RecordActivity(day(2026, 8, 11))

	assert.Equal(t, StreakContinued, r.Outcome)
	assert.Equal(t, 2, r.CurrentStreak)
	assert.Equal(t, 2, r.BestStreak)
	assert.Equal(t, DailyActivityReward, r.RewardPoints)
}

func TestProfile_RecordActivity_GapResetsStreak(t *testing.T) {
	p := NewProfile(shared.UserID(1))
	p.RecordActivity(day(2026, 8, 10))
	p.RecordActivity(day(2026, 8, 11))
	p.RecordActivity(day(2026, 8, 12))

	// Two-day gap
	r := p.RecordActivity(day(2026, 8, 15))

	assert.Equal(t, StreakReset, r.Outcome)
	assert.Equal(t, 1, r.CurrentStreak)
	assert.Equal(t, 3, r.BestStreak, "best streak survives the reset")
}

func TestProfile_RecordActivity_WeeklyBonus(t *testing.T) {
	p := NewProfile(shared.UserID(1))

	var last ActivityResult
	for i := 0; i < 7; i++ {
		last = p.RecordActivity(day(2026, 8, 10+i))
	}

	assert.Equal(t, 7, last.CurrentStreak)
	assert.Equal(t, WeeklyStreakBonus, last.RewardPoints, "day 7 pays the weekly bonus")

	// Day 8 back to the normal reward
	r := p.RecordActivity(day(2026, 8, 17))
	assert.Equal(t, 8, r.CurrentStreak)
	assert.Equal(t, DailyActivityReward, r.RewardPoints)

	// Day 14 pays the bonus again
	for i := 0; i < 5; i++ {
		p.RecordActivity(day(2026, 8, 18+i))
	}
	r = p.RecordActivity(day(2026, 8, 23))
	assert.Equal(t, 14, r.CurrentStreak)
	assert.Equal(t, WeeklyStreakBonus, r.RewardPoints)
}

func TestProfile_HasActivityOn(t *testing.T) {
	p := NewProfile(shared.UserID(1))
	assert.False(t, p.HasActivityOn(day(2026, 8, 10)))

	p.RecordActivity(day(2026, 8, 10))

	assert.True(t, p.HasActivityOn(day(2026, 8, 10)))
	assert.False(t, p.HasActivityOn(day(2026, 8, 11)))
}

func TestProfile_IsStreakBroken(t *testing.T) {
	p := NewProfile(shared.UserID(1))
	assert.False(t, p.IsStreakBroken(day(2026, 8, 10)), "no activity yet means nothing to break")

	p.RecordActivity(day(2026, 8, 10))

	assert.False(t, p.IsStreakBroken(day(2026, 8, 10)))
	assert.False(t, p.IsStreakBroken(day(2026, 8, 11)), "streak is still alive on the next day")
	assert.True(t, p.IsStreakBroken(day(2026, 8, 12)))
}

func TestProfile_Validate_DetectsLevelMismatch(t *testing.T) {
	p := NewProfile(shared.UserID(1))
	p.AddPoints(2500)
	assert.NoError(t, p.Validate())

	p.Level = 10
	assert.Error(t, p.Validate())
}

func TestProfile_Clone(t *testing.T) {
	p := NewProfile(shared.UserID(1))
	p.AddPoints(100)

	clone := p.Clone()
	clone.AddPoints(900)

	assert.Equal(t, shared.Points(100), p.Points)
	assert.Equal(t, shared.Points(1000), clone.Points)
}
