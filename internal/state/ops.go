package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"safetasks/internal/pomodoro"
	"safetasks/internal/schedule"
	"safetasks/internal/task"
	"safetasks/internal/xp"
)

// Operation names, as seen by subscribers.
const (
	OpAddTask        = "task.add"
	OpToggleTask     = "task.toggle"
	OpEditTask       = "task.edit"
	OpDeleteTask     = "task.delete"
	OpAddSchedule    = "schedule.add"
	OpRemoveSchedule = "schedule.remove"
	OpPomodoroStart  = "pomodoro.start"
	OpPomodoroPause  = "pomodoro.pause"
	OpPomodoroReset  = "pomodoro.reset"
	OpPomodoroMode   = "pomodoro.mode"
	OpPomodoroTick   = "pomodoro.tick"
	OpPreferences    = "preferences"
	OpImport         = "import"
	OpReset          = "reset"
)

var ErrInvalidPreference = errors.New("invalid preference")

func (s *Store) AddTask(ctx context.Context, d task.Draft) (task.Task, error) {
	t, err := task.New(d, s.clock.Now())
	if err != nil {
		return task.Task{}, err
	}
	err = s.Update(ctx, OpAddTask, func(draft *State) error {
		draft.Tasks = append(draft.Tasks, t)
		return nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// ToggleTask flips completion and moves the task's reward in or out of the
// XP total.
func (s *Store) ToggleTask(ctx context.Context, id string) error {
	return s.Update(ctx, OpToggleTask, func(draft *State) error {
		i, ok := task.Find(draft.Tasks, id)
		if !ok {
			return ErrUnchanged
		}
		t := &draft.Tasks[i]
		t.Toggle(s.clock.Now())
		if t.Completed {
			draft.XP.Total += xp.Reward(t.Type)
		} else {
			draft.XP.Total -= xp.Reward(t.Type)
		}
		return nil
	})
}

// EditTask applies p. Changing the type of a completed task re-prices the
// XP it earned.
func (s *Store) EditTask(ctx context.Context, id string, p task.Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Empty() {
		return nil
	}
	return s.Update(ctx, OpEditTask, func(draft *State) error {
		i, ok := task.Find(draft.Tasks, id)
		if !ok {
			return ErrUnchanged
		}
		t := &draft.Tasks[i]
		before := t.Type
		t.Apply(p, s.clock.Now().Location())
		if t.Completed && t.Type != before {
			draft.XP.Total += xp.Reward(t.Type) - xp.Reward(before)
		}
		return nil
	})
}

// DeleteTask removes a pending task. Completed tasks are kept.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.Update(ctx, OpDeleteTask, func(draft *State) error {
		i, ok := task.Find(draft.Tasks, id)
		if !ok || draft.Tasks[i].Completed {
			return ErrUnchanged
		}
		draft.Tasks = append(draft.Tasks[:i], draft.Tasks[i+1:]...)
		return nil
	})
}

func (s *Store) AddScheduleEntry(ctx context.Context, d schedule.Draft) (schedule.Entry, error) {
	e, err := schedule.New(d)
	if err != nil {
		return schedule.Entry{}, err
	}
	err = s.Update(ctx, OpAddSchedule, func(draft *State) error {
		draft.Schedule = append(draft.Schedule, e)
		return nil
	})
	if err != nil {
		return schedule.Entry{}, err
	}
	return e, nil
}

func (s *Store) RemoveScheduleEntry(ctx context.Context, id string) error {
	return s.Update(ctx, OpRemoveSchedule, func(draft *State) error {
		i, ok := schedule.Find(draft.Schedule, id)
		if !ok {
			return ErrUnchanged
		}
		draft.Schedule = append(draft.Schedule[:i], draft.Schedule[i+1:]...)
		return nil
	})
}

func (s *Store) PomodoroStart(ctx context.Context) error {
	return s.Update(ctx, OpPomodoroStart, func(draft *State) error {
		if draft.Pomodoro.Running {
			return ErrUnchanged
		}
		draft.Pomodoro = draft.Pomodoro.Start()
		return nil
	})
}

func (s *Store) PomodoroPause(ctx context.Context) error {
	return s.Update(ctx, OpPomodoroPause, func(draft *State) error {
		if !draft.Pomodoro.Running {
			return ErrUnchanged
		}
		draft.Pomodoro = draft.Pomodoro.Pause()
		return nil
	})
}

func (s *Store) PomodoroReset(ctx context.Context) error {
	return s.Update(ctx, OpPomodoroReset, func(draft *State) error {
		draft.Pomodoro = draft.Pomodoro.Reset()
		return nil
	})
}

func (s *Store) PomodoroSetMode(ctx context.Context, m pomodoro.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", pomodoro.ErrUnknownMode, m)
	}
	return s.Update(ctx, OpPomodoroMode, func(draft *State) error {
		draft.Pomodoro = draft.Pomodoro.SetMode(m)
		return nil
	})
}

// PomodoroTick advances a running timer by one second and reports whether it
// is still running afterwards.
func (s *Store) PomodoroTick(ctx context.Context) (bool, error) {
	var running bool
	err := s.Update(ctx, OpPomodoroTick, func(draft *State) error {
		if !draft.Pomodoro.Running {
			return ErrUnchanged
		}
		draft.Pomodoro = draft.Pomodoro.Tick()
		running = draft.Pomodoro.Running
		return nil
	})
	return running, err
}

// Preferences is a partial update of the UI settings.
// nil / empty => "no change"
type Preferences struct {
	Theme   *Theme          `json:"theme,omitempty"`
	Filters *Filters        `json:"filters,omitempty"`
	Modules map[string]bool `json:"modules,omitempty"`
}

func (p Preferences) Validate() error {
	if p.Theme != nil && !p.Theme.Valid() {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidPreference, *p.Theme)
	}
	var probe Modules
	for name := range p.Modules {
		if !probe.Set(name, true) {
			return fmt.Errorf("%w: unknown module %q (want one of %s)",
				ErrInvalidPreference, name, strings.Join(ModuleNames, ", "))
		}
	}
	return nil
}

func (s *Store) SetPreferences(ctx context.Context, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.Update(ctx, OpPreferences, func(draft *State) error {
		if p.Theme != nil {
			draft.UI.Theme = *p.Theme
		}
		if p.Filters != nil {
			draft.Filters = *p.Filters
		}
		for name, visible := range p.Modules {
			draft.Modules.Set(name, visible)
		}
		return nil
	})
}

func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	return s.SetPreferences(ctx, Preferences{Theme: &t})
}

func (s *Store) SetFilters(ctx context.Context, f Filters) error {
	return s.SetPreferences(ctx, Preferences{Filters: &f})
}

func (s *Store) SetModule(ctx context.Context, name string, visible bool) error {
	return s.SetPreferences(ctx, Preferences{Modules: map[string]bool{name: visible}})
}

// Import replaces the whole state with a validated document. A rejected
// document leaves the state untouched.
func (s *Store) Import(ctx context.Context, raw []byte) error {
	if err := ValidateImport(raw); err != nil {
		return err
	}
	return s.Update(ctx, OpImport, func(draft *State) error {
		*draft = Normalize(raw, s.clock.Now())
		return nil
	})
}

// Reset returns to the default state. Unlocks are evaluated again against
// the empty state, so nothing stays unlocked.
func (s *Store) Reset(ctx context.Context) error {
	return s.Update(ctx, OpReset, func(draft *State) error {
		*draft = Default()
		return nil
	})
}
