package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

func TestBadgeDefinition_Evaluate(t *testing.T) {
	snap := Snapshot{
		TotalGoals:        1,
		CompletedGoals:    5,
		LessonsCompleted:  3,
		HasAnyTransaction: true,
	}

	for _, def := range GetBadgeDefinitions() {
		switch def.Predicate {
		case PredicateSevenDayStreak:
			assert.False(t, def.Evaluate(snap, 6), "%s below streak threshold", def.Name)
			assert.True(t, def.Evaluate(snap, 7), "%s at streak threshold", def.Name)
		default:
			assert.True(t, def.Evaluate(snap, 0), "%s should be earned with this snapshot", def.Name)
		}
	}
}

func TestBadgeDefinition_Evaluate_EmptySnapshot(t *testing.T) {
	snap := Snapshot{}

	for _, def := range GetBadgeDefinitions() {
		assert.False(t, def.Evaluate(snap, 0), "%s should not be earned with an empty snapshot", def.Name)
	}
}

func TestBadgeChecker_SkipsAlreadyEarned(t *testing.T) {
	checker := NewBadgeChecker()
	snap := Snapshot{HasAnyTransaction: true, TotalGoals: 1}

	earned := []UserBadge{
		{UserID: shared.UserID(1), BadgeID: 1},
	}

	fresh := checker.CheckNewBadges(snap, 0, earned)

	assert.Len(t, fresh, 1)
	assert.Equal(t, 2, fresh[0].ID, "only the first-goal badge is new")
}

func TestBadgeChecker_NothingNewWhenAllEarned(t *testing.T) {
	checker := NewBadgeChecker()
	snap := Snapshot{
		TotalGoals:        10,
		CompletedGoals:    10,
		LessonsCompleted:  10,
		HasAnyTransaction: true,
	}

	var earned []UserBadge
	for _, def := range GetBadgeDefinitions() {
		earned = append(earned, UserBadge{UserID: shared.UserID(1), BadgeID: def.ID})
	}

	fresh := checker.CheckNewBadges(snap, 30, earned)
	assert.Empty(t, fresh)
}

func TestGetBadgeDefinitions_CatalogIsStable(t *testing.T) {
	defs := GetBadgeDefinitions()
	assert.Len(t, defs, 6)

	seen := make(map[int]bool)
	for _, def := range defs {
		assert.False(t, seen[def.ID], "duplicate badge ID %d", def.ID)
		seen[def.ID] = true
	}

	def, ok := GetBadgeDefinition(6)
	assert.True(t, ok)
	assert.Equal(t, PredicateSevenDayStreak, def.Predicate)
}
