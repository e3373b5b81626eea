package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_AdvanceKeepsWallTime(t *testing.T) {
	start := time.Date(2026, 10, 31, 22, 15, 0, 0, time.UTC)
	c := NewFake(start)

	c.AdvanceDays(1)
	assert.Equal(t, time.Date(2026, 11, 1, 22, 15, 0, 0, time.UTC), c.Now())

	c.Advance(2 * time.Hour)
	assert.Equal(t, time.Date(2026, 11, 2, 0, 15, 0, 0, time.UTC), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	ts := time.Date(2026, 10, 15, 1, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, loc), StartOfDay(ts))
	assert.Equal(t, time.Date(2026, 10, 15, 23, 59, 59, 0, loc), EndOfDay(ts))
	assert.Equal(t, "2026-10-15", DayKey(ts, loc))
	assert.Equal(t, "2026-10-15", DayKey(ts, time.UTC))
	assert.Equal(t, "2026-10-14", DayKey(time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC), loc))
}
