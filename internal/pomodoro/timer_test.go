package pomodoro

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_StartPauseReset(t *testing.T) {
	tm := New()
	assert.Equal(t, Timer{Mode: ModeFocus, Remaining: FocusSeconds}, tm)

	tm = tm.Start().Start()
	assert.True(t, tm.Running)

	tm = tm.Tick().Tick()
	assert.Equal(t, FocusSeconds-2, tm.Remaining)

	tm = tm.Pause()
	tm = tm.Tick()
	assert.False(t, tm.Running)
	assert.Equal(t, FocusSeconds-2, tm.Remaining, "paused timer must not decrement")

	tm = tm.Start().Reset()
	assert.False(t, tm.Running)
	assert.Equal(t, FocusSeconds, tm.Remaining)
}

func TestTimer_PhaseEndFlipsModeAndStops(t *testing.T) {
	tm := Timer{Mode: ModeFocus, Remaining: 1, Running: true}
	tm = tm.Tick()
	assert.Equal(t, ModeBreak, tm.Mode)
	assert.Equal(t, BreakSeconds, tm.Remaining)
	assert.False(t, tm.Running, "next phase must be started manually")
	assert.Equal(t, 1, tm.FinishedFocus)

	tm = Timer{Mode: ModeBreak, Remaining: 1, Running: true}.Tick()
	assert.Equal(t, ModeFocus, tm.Mode)
	assert.Equal(t, FocusSeconds, tm.Remaining)
	assert.Equal(t, 0, tm.FinishedFocus)
}

func TestTimer_SetModeAndNormalize(t *testing.T) {
	tm := New().Start().SetMode(ModeBreak)
	assert.Equal(t, Timer{Mode: ModeBreak, Remaining: BreakSeconds}, tm)
	assert.Equal(t, tm, tm.SetMode("nap"))

	assert.Equal(t, Timer{Mode: ModeBreak, Remaining: BreakSeconds}, Timer{Mode: ModeBreak, Remaining: 9999}.Normalize())
	assert.Equal(t, Timer{Mode: ModeFocus, Remaining: 0}, Timer{Mode: "x", Remaining: -4}.Normalize())
	assert.InDelta(t, 0.5, Timer{Mode: ModeBreak, Remaining: BreakSeconds / 2}.Progress(), 0.001)
}

func TestRunner_TicksUntilTimerStops(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(time.Millisecond, func(context.Context) (bool, error) {
		return calls.Add(1) < 3, nil
	}, nil)

	r.Arm(context.Background())
	r.Arm(context.Background())

	require.Eventually(t, func() bool { return !r.Armed() }, time.Second, time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRunner_DisarmStopsTicking(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(time.Millisecond, func(context.Context) (bool, error) {
		calls.Add(1)
		return true, nil
	}, nil)

	r.Arm(context.Background())
	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)
	r.Disarm()
	assert.False(t, r.Armed())

	seen := calls.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, seen, calls.Load())

	r.Disarm()
}

func TestRunner_StopsOnTickError(t *testing.T) {
	r := NewRunner(time.Millisecond, func(context.Context) (bool, error) {
		return true, errors.New("disk full")
	}, nil)
	r.Arm(context.Background())
	require.Eventually(t, func() bool { return !r.Armed() }, time.Second, time.Millisecond)
}

func TestRunner_CloseRefusesToArm(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(time.Millisecond, func(context.Context) (bool, error) {
		calls.Add(1)
		return true, nil
	}, nil)

	r.Arm(context.Background())
	r.Close()
	assert.False(t, r.Armed())

	r.Arm(context.Background())
	assert.False(t, r.Armed())
}
