package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_UnlocksInCatalogOrder(t *testing.T) {
	got := Evaluate(nil, Facts{Tasks: 4, Completed: 3, Streak: 3})
	assert.Equal(t, []string{FirstTask, ThreeDone, Streak3}, got)
}

func TestEvaluate_IsMonotonic(t *testing.T) {
	unlocked := Evaluate(nil, Facts{Tasks: 3, Completed: 3})
	assert.Contains(t, unlocked, ThreeDone)

	again := Evaluate(unlocked, Facts{Tasks: 3, Completed: 2})
	assert.Equal(t, unlocked, again)
}

func TestEvaluate_KeepsUnknownIDsAndDoesNotAlias(t *testing.T) {
	prev := []string{"legacy_badge"}
	got := Evaluate(prev, Facts{Tasks: 1})
	assert.Equal(t, []string{"legacy_badge", FirstTask}, got)
	assert.Equal(t, []string{"legacy_badge"}, prev)
}

func TestEvaluate_AddedRules(t *testing.T) {
	got := Evaluate(nil, Facts{Level: 1, FinishedFocus: 1, Schedule: 5})
	assert.Equal(t, []string{Level1, FocusFirst, Planner}, got)
}

func TestBoard_FollowsCatalogOrder(t *testing.T) {
	b := Board([]string{Streak3, FirstTask})
	assert.Len(t, b, len(Catalog))
	assert.Equal(t, FirstTask, b[0].ID)
	assert.True(t, b[0].Unlocked)
	assert.False(t, b[1].Unlocked)
	assert.True(t, b[3].Unlocked)
}

func TestNewly(t *testing.T) {
	assert.Equal(t, []string{ThreeDone}, Newly([]string{FirstTask}, []string{FirstTask, ThreeDone}))
	assert.Empty(t, Newly([]string{FirstTask}, []string{FirstTask}))
}
