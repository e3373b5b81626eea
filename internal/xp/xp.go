package xp

import "safetasks/internal/task"

// LevelSize is the number of points per level; leveling is linear.
const LevelSize = 500

// Rewards is the fixed per-type payout for completing a task.
var Rewards = map[task.Type]int{
	task.TypeDaily:   10,
	task.TypeWeekly:  30,
	task.TypeMonthly: 100,
	task.TypeYearly:  100,
}

func Reward(t task.Type) int {
	return Rewards[t]
}

// FromTasks re-derives the total from completed-task history.
func FromTasks(tasks []task.Task) int {
	total := 0
	for _, t := range tasks {
		if t.Completed {
			total += Reward(t.Type)
		}
	}
	return total
}

func Level(total int) int {
	if total <= 0 {
		return 0
	}
	return total / LevelSize
}

// Progress is the number of points earned toward the next level.
func Progress(total int) int {
	if total <= 0 {
		return 0
	}
	return total % LevelSize
}

type Standing struct {
	Total    int `json:"total"`
	Level    int `json:"level"`
	Progress int `json:"progress"`
	Next     int `json:"next"`
}

func StandingOf(total int) Standing {
	if total < 0 {
		total = 0
	}
	return Standing{
		Total:    total,
		Level:    Level(total),
		Progress: Progress(total),
		Next:     LevelSize,
	}
}
