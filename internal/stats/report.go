package stats

import (
	"time"

	"safetasks/internal/task"
)

// Window selects how far back each aggregate looks.
type Window struct {
	PeriodDays  int `json:"periodDays"`
	DailyDays   int `json:"dailyDays"`
	WeeklyWeeks int `json:"weeklyWeeks"`
	HeatmapDays int `json:"heatmapDays"`
}

// Report bundles every aggregate shown on the dashboard.
type Report struct {
	Summary Summary    `json:"summary"`
	Daily   []DayCount `json:"daily"`
	Weekly  []WeekRate `json:"weekly"`
	Heatmap []HeatCell `json:"heatmap"`
}

func Build(tasks []task.Task, xpTotal int, w Window, now time.Time) Report {
	return Report{
		Summary: Summarize(tasks, xpTotal, w.PeriodDays, now),
		Daily:   DailyCompletions(tasks, w.DailyDays, now),
		Weekly:  WeeklyProductivity(tasks, w.WeeklyWeeks, now),
		Heatmap: Heatmap(tasks, w.HeatmapDays, now),
	}
}
