package telemetry

import "time"

type EventType string

const (
	EventTaskCreated         EventType = "task_created"
	EventTaskCompleted       EventType = "task_completed"
	EventTaskReopened        EventType = "task_reopened"
	EventTaskDeleted         EventType = "task_deleted"
	EventTaskEdited          EventType = "task_edited"
	EventScheduleAdded       EventType = "schedule_added"
	EventScheduleRemoved     EventType = "schedule_removed"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventPomodoroFinished    EventType = "pomodoro_finished"
	EventImported            EventType = "state_imported"
	EventReset               EventType = "state_reset"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
