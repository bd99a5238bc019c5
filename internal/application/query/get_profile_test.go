package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/timeutil"
)

func TestGetProfile_NewUserGetsZeroProfile(t *testing.T) {
	h := NewGetProfileHandler(&stubProfileRepo{})

	dto, err := h.Handle(context.Background(), GetProfileQuery{UserID: shared.UserID(7)})

	assert.NoError(t, err)
	assert.Equal(t, 0, dto.Points)
	assert.Equal(t, 1, dto.Level)
	assert.Equal(t, 0, dto.CurrentStreak)
	assert.False(t, dto.StreakActiveToday)
	assert.False(t, dto.StreakBroken, "a profile without activity has no streak to break")
	assert.Nil(t, dto.LastActivityDate)
}

func TestGetProfile_ActiveToday(t *testing.T) {
	p := gamification.NewProfile(shared.UserID(7))
	p.Points = shared.Points(2500)
	p.Level = p.Points.Level()
	p.CurrentStreak = 4
	p.BestStreak = 9
	p.LastActivityDate = timeutil.Now()

	h := NewGetProfileHandler(&stubProfileRepo{profile: p})

	dto, err := h.Handle(context.Background(), GetProfileQuery{UserID: shared.UserID(7)})

	assert.NoError(t, err)
	assert.Equal(t, 3, dto.Level)
	assert.Equal(t, 500, dto.ProgressToNextLevel)
	assert.Equal(t, 500, dto.PointsToNextLevel)
	assert.True(t, dto.StreakActiveToday)
	assert.False(t, dto.StreakBroken)
}

func TestGetProfile_StaleActivityShowsBrokenStreak(t *testing.T) {
	p := gamification.NewProfile(shared.UserID(7))
	p.CurrentStreak = 4
	p.BestStreak = 4
	p.LastActivityDate = timeutil.Now().AddDate(0, 0, -3)

	h := NewGetProfileHandler(&stubProfileRepo{profile: p})

	dto, err := h.Handle(context.Background(), GetProfileQuery{UserID: shared.UserID(7)})

	assert.NoError(t, err)
	assert.False(t, dto.StreakActiveToday)
	assert.True(t, dto.StreakBroken, "a gap of more than one day breaks the streak")
}

func TestGetProfile_InvalidUserID(t *testing.T) {
	h := NewGetProfileHandler(&stubProfileRepo{})

	_, err := h.Handle(context.Background(), GetProfileQuery{})

	assert.Error(t, err)
}
