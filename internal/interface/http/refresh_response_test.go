package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/application/command"
)

func TestNewRefreshResponse_ResolvesCatalogNames(t *testing.T) {
	result := &command.RefreshProgressResult{
		CompletedChallenges: []int{1, 4},
		EarnedBadges:        []int{3},
		ActivityRecorded:    true,
	}

	resp := newRefreshResponse(result)

	assert.True(t, resp.ActivityRecorded)
	assert.Len(t, resp.CompletedChallenges, 2)
	assert.Equal(t, "Primer Ahorro", resp.CompletedChallenges[0].Name)
	assert.Equal(t, "Meta Alcanzada", resp.CompletedChallenges[1].Name)
	assert.Len(t, resp.EarnedBadges, 1)
	assert.Equal(t, "Meta Cumplida", resp.EarnedBadges[0].Name)
}

func TestNewRefreshResponse_UnknownIDKeepsBareEntry(t *testing.T) {
	result := &command.RefreshProgressResult{
		CompletedChallenges: []int{999},
	}

	resp := newRefreshResponse(result)

	assert.Len(t, resp.CompletedChallenges, 1)
	assert.Equal(t, 999, resp.CompletedChallenges[0].ID)
	assert.Equal(t, "", resp.CompletedChallenges[0].Name)
}

func TestNewRefreshResponse_EmptyPassSerializesToArrays(t *testing.T) {
	resp := newRefreshResponse(&command.RefreshProgressResult{})

	assert.NotNil(t, resp.CompletedChallenges)
	assert.NotNil(t, resp.EarnedBadges)
	assert.False(t, resp.ActivityRecorded)
}
