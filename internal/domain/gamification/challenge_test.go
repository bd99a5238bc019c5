package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

func TestChallengeDefinition_ProgressFor_CapsAtTarget(t *testing.T) {
	def, ok := GetChallengeDefinition(2) // "Ahorro Constante", target 3
	assert.True(t, ok)

	snap := Snapshot{TotalGoals: 10}
	assert.Equal(t, 3.0, def.ProgressFor(snap))

	snap = Snapshot{TotalGoals: 2}
	assert.Equal(t, 2.0, def.ProgressFor(snap))
}

func TestChallengeDefinition_ProgressFor_KindSelection(t *testing.T) {
	snap := Snapshot{
		TotalGoals:             1,
		CompletedGoals:         1,
		ConsecutiveExpenseDays: 4,
		LessonsCompleted:       2,
	}

	savings, _ := GetChallengeDefinition(1)
	assert.Equal(t, 1.0, savings.ProgressFor(snap))

	expenses, _ := GetChallengeDefinition(3)
	assert.Equal(t, 4.0, expenses.ProgressFor(snap))

	goals, _ := GetChallengeDefinition(4)
	assert.Equal(t, 1.0, goals.ProgressFor(snap))

	lessons, _ := GetChallengeDefinition(5)
	assert.Equal(t, 2.0, lessons.ProgressFor(snap))
}

func TestNewChallengeProgress_BornCompleted(t *testing.T) {
	def, _ := GetChallengeDefinition(1) // target 1

	cp := NewChallengeProgress(shared.UserID(7), def, 1)

	assert.True(t, cp.Completed)
	assert.NotNil(t, cp.CompletedAt)
	assert.True(t, cp.MeetsTarget(def))
}

func TestNewChallengeProgress_InProgress(t *testing.T) {
	def, _ := GetChallengeDefinition(3) // target 7

	cp := NewChallengeProgress(shared.UserID(7), def, 4)

	assert.False(t, cp.Completed)
	assert.Nil(t, cp.CompletedAt)
	assert.False(t, cp.MeetsTarget(def))
}

func TestGetChallengeDefinition_UnknownID(t *testing.T) {
	_, ok := GetChallengeDefinition(999)
	assert.False(t, ok)
}

func TestGetChallengeDefinitions_CatalogIsStable(t *testing.T) {
	defs := GetChallengeDefinitions()
	assert.Len(t, defs, 5)

	seen := make(map[int]bool)
	for _, def := range defs {
		assert.False(t, seen[def.ID], "duplicate challenge ID %d", def.ID)
		seen[def.ID] = true
		assert.Greater(t, def.Target, 0.0)
		assert.Greater(t, def.RewardPoints, 0)
	}
}
