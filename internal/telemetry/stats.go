package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Since                string            `json:"since"`
	EventCounts          map[EventType]int `json:"event_counts"`
	TasksCreated         int               `json:"tasks_created"`
	TaskCompletions      int               `json:"task_completions"`
	TaskReopens          int               `json:"task_reopens"`
	CompletionsByType    map[string]int    `json:"completions_by_type"`
	XPEarned             int               `json:"xp_earned"`
	FocusSessions        int               `json:"focus_sessions"`
	AchievementsUnlocked []string          `json:"achievements_unlocked"`
}

// CalculateStats summarizes the activity in events.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Since:                since.Format("2006-01-02"),
		EventCounts:          make(map[EventType]int),
		CompletionsByType:    make(map[string]int),
		AchievementsUnlocked: []string{},
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTaskCreated:
			stats.TasksCreated++
		case EventTaskCompleted:
			stats.TaskCompletions++
			if typ, ok := metadata["task_type"].(string); ok {
				stats.CompletionsByType[typ]++
			}
			if reward, ok := metadata["xp"].(float64); ok {
				stats.XPEarned += int(reward)
			}
		case EventTaskReopened:
			stats.TaskReopens++
			if reward, ok := metadata["xp"].(float64); ok {
				stats.XPEarned -= int(reward)
			}
		case EventPomodoroFinished:
			if mode, ok := metadata["mode"].(string); ok && mode == "focus" {
				stats.FocusSessions++
			}
		case EventAchievementUnlocked:
			if id, ok := metadata["achievement"].(string); ok {
				stats.AchievementsUnlocked = append(stats.AchievementsUnlocked, id)
			}
		}
	}
	return stats, nil
}
