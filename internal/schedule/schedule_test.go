package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidatesDraft(t *testing.T) {
	e, err := New(Draft{Day: " Monday ", Time: "09:30", Place: " Gym ", Task: "Legs"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, Monday, e.Day)
	assert.Equal(t, "Gym", e.Place)

	for name, d := range map[string]Draft{
		"bad day":  {Day: "funday", Time: "09:30", Task: "x"},
		"bad time": {Day: Monday, Time: "25:00", Task: "x"},
		"no task":  {Day: Monday, Time: "09:30"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New(d)
			assert.ErrorIs(t, err, ErrInvalidDraft)
		})
	}
}

func TestNormalize_DropsUnplaceableEntries(t *testing.T) {
	ok := Entry{Day: "FRIDAY", Time: "18:00", Task: "Cinema"}
	assert.True(t, Normalize(&ok))
	assert.Equal(t, Friday, ok.Day)
	assert.NotEmpty(t, ok.ID)

	bad := Entry{ID: "x", Day: "someday", Time: "18:00"}
	assert.False(t, Normalize(&bad))
	badTime := Entry{ID: "y", Day: Friday, Time: "6pm"}
	assert.False(t, Normalize(&badTime))
}

func TestGrid_GroupsAndSorts(t *testing.T) {
	entries := []Entry{
		{ID: "3", Day: Sunday, Time: "10:00"},
		{ID: "2", Day: Monday, Time: "18:00"},
		{ID: "1", Day: Monday, Time: "08:00"},
	}
	g := Grid(entries)
	assert.Len(t, g, 7)
	require.Len(t, g[Monday], 2)
	assert.Equal(t, "1", g[Monday][0].ID)
	assert.Equal(t, "2", g[Monday][1].ID)
	assert.Empty(t, g[Tuesday])
	assert.Equal(t, "3", entries[0].ID, "grid must not reorder the input")
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, Thursday, WeekdayOf(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))
}
