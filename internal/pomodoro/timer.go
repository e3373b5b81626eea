package pomodoro

import "errors"

type Mode string

const (
	ModeFocus Mode = "focus"
	ModeBreak Mode = "break"
)

var ErrUnknownMode = errors.New("unknown pomodoro mode")

const (
	FocusSeconds = 25 * 60
	BreakSeconds = 5 * 60
)

func (m Mode) Valid() bool {
	return m == ModeFocus || m == ModeBreak
}

// Duration is the full length of a phase in seconds.
func (m Mode) Duration() int {
	if m == ModeBreak {
		return BreakSeconds
	}
	return FocusSeconds
}

func (m Mode) Next() Mode {
	if m == ModeFocus {
		return ModeBreak
	}
	return ModeFocus
}

// Timer is the persisted pomodoro state. Remaining stays within
// [0, Mode.Duration()].
type Timer struct {
	Mode          Mode `json:"mode"`
	Remaining     int  `json:"remaining"`
	Running       bool `json:"running"`
	FinishedFocus int  `json:"finishedFocus"`
}

func New() Timer {
	return Timer{Mode: ModeFocus, Remaining: FocusSeconds}
}

// Start is a no-op when already running.
func (t Timer) Start() Timer {
	t.Running = true
	return t
}

func (t Timer) Pause() Timer {
	t.Running = false
	return t
}

// Reset stops the timer and restores the full duration of the current mode.
func (t Timer) Reset() Timer {
	t.Running = false
	t.Remaining = t.Mode.Duration()
	return t
}

func (t Timer) SetMode(m Mode) Timer {
	if !m.Valid() {
		return t
	}
	t.Mode = m
	return t.Reset()
}

// Tick advances a running timer by one second. A phase that reaches zero
// flips the mode, refills it and stops; the next phase needs an explicit Start.
func (t Timer) Tick() Timer {
	if !t.Running {
		return t
	}
	t.Remaining--
	if t.Remaining > 0 {
		return t
	}
	if t.Mode == ModeFocus {
		t.FinishedFocus++
	}
	t.Mode = t.Mode.Next()
	t.Remaining = t.Mode.Duration()
	t.Running = false
	return t
}

// Normalize clamps a loaded timer back into its invariants.
func (t Timer) Normalize() Timer {
	if !t.Mode.Valid() {
		t.Mode = ModeFocus
	}
	if t.Remaining < 0 {
		t.Remaining = 0
	}
	if d := t.Mode.Duration(); t.Remaining > d {
		t.Remaining = d
	}
	if t.FinishedFocus < 0 {
		t.FinishedFocus = 0
	}
	return t
}

// Progress is the elapsed share of the current phase in [0, 1].
func (t Timer) Progress() float64 {
	d := t.Mode.Duration()
	return float64(d-t.Remaining) / float64(d)
}
