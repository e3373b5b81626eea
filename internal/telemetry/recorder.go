package telemetry

import (
	"log/slog"

	"safetasks/internal/achievement"
	"safetasks/internal/state"
	"safetasks/internal/task"
	"safetasks/internal/xp"
)

// Recorder turns committed state changes into events. Register Observe with
// state.Store.Subscribe.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Observe(c state.Change) {
	for _, e := range Diff(c) {
		if err := r.repo.RecordEvent(e.Type, e.Metadata); err != nil {
			r.logger.Warn("record telemetry event", "type", e.Type, "err", err)
		}
	}
}

type PendingEvent struct {
	Type     EventType
	Metadata EventMetadata
}

// Diff derives the events a change represents. Imports and resets replace
// the whole state and are reported as one event instead of per-task noise.
func Diff(c state.Change) []PendingEvent {
	var out []PendingEvent
	add := func(t EventType, md EventMetadata) {
		out = append(out, PendingEvent{Type: t, Metadata: md})
	}

	switch c.Op {
	case state.OpImport:
		add(EventImported, EventMetadata{
			"tasks":    len(c.Next.Tasks),
			"schedule": len(c.Next.Schedule),
			"xp":       c.Next.XP.Total,
		})
	case state.OpReset:
		add(EventReset, EventMetadata{"tasks_dropped": len(c.Prev.Tasks)})
	default:
		out = append(out, taskEvents(c.Prev.Tasks, c.Next.Tasks)...)

		if d := len(c.Next.Schedule) - len(c.Prev.Schedule); d > 0 {
			add(EventScheduleAdded, EventMetadata{"entries": len(c.Next.Schedule)})
		} else if d < 0 {
			add(EventScheduleRemoved, EventMetadata{"entries": len(c.Next.Schedule)})
		}

		if prev, next := c.Prev.Pomodoro, c.Next.Pomodoro; c.Op == state.OpPomodoroTick && prev.Mode != next.Mode {
			add(EventPomodoroFinished, EventMetadata{
				"mode":           string(prev.Mode),
				"finished_focus": next.FinishedFocus,
			})
		}
	}

	for _, id := range achievement.Newly(c.Prev.Achievements.Unlocked, c.Next.Achievements.Unlocked) {
		add(EventAchievementUnlocked, EventMetadata{"achievement": id})
	}
	return out
}

func taskEvents(prev, next []task.Task) []PendingEvent {
	var out []PendingEvent
	before := make(map[string]task.Task, len(prev))
	for _, t := range prev {
		before[t.ID] = t
	}

	for _, t := range next {
		md := EventMetadata{"task_id": t.ID, "task_type": string(t.Type)}
		old, ok := before[t.ID]
		delete(before, t.ID)
		switch {
		case !ok:
			out = append(out, PendingEvent{Type: EventTaskCreated, Metadata: md})
		case !old.Completed && t.Completed:
			md["xp"] = xp.Reward(t.Type)
			out = append(out, PendingEvent{Type: EventTaskCompleted, Metadata: md})
		case old.Completed && !t.Completed:
			md["xp"] = xp.Reward(t.Type)
			out = append(out, PendingEvent{Type: EventTaskReopened, Metadata: md})
		case old.Title != t.Title || old.Type != t.Type || old.Priority != t.Priority || !equalTags(old.Tags, t.Tags):
			out = append(out, PendingEvent{Type: EventTaskEdited, Metadata: md})
		}
	}

	for _, t := range prev {
		if _, gone := before[t.ID]; gone {
			out = append(out, PendingEvent{
				Type:     EventTaskDeleted,
				Metadata: EventMetadata{"task_id": t.ID, "task_type": string(t.Type)},
			})
		}
	}
	return out
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
