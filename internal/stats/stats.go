// Package stats derives streaks, completion rates and activity buckets from
// task history. Every function is pure: "today" is the calendar day of the
// supplied now, in now's location.
package stats

import (
	"math"
	"time"

	"safetasks/internal/clock"
	"safetasks/internal/task"
	"safetasks/internal/xp"
)

type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

type WeekRate struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Rate  int       `json:"rate"`
}

type HeatCell struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
	Level int       `json:"level"`
}

type Summary struct {
	Total         int `json:"total"`
	Completed     int `json:"completed"`
	Pending       int `json:"pending"`
	Overdue       int `json:"overdue"`
	Streak        int `json:"streak"`
	Rate          int `json:"rate"`
	PeriodDays    int `json:"periodDays"`
	XP            int `json:"xp"`
	Level         int `json:"level"`
	LevelProgress int `json:"levelProgress"`
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	return clock.StartOfDay(t.In(loc))
}

const dayLayout = "2006-01-02"

// completionDays counts completions per calendar day, keyed YYYY-MM-DD.
func completionDays(tasks []task.Task, loc *time.Location) map[string]int {
	days := map[string]int{}
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		days[clock.DayKey(*t.CompletedAt, loc)]++
	}
	return days
}

// Streak counts consecutive days with a completion, ending today. A day
// without completions today zeroes the streak even if yesterday counted.
func Streak(tasks []task.Task, now time.Time) int {
	days := completionDays(tasks, now.Location())
	streak := 0
	for cur := clock.StartOfDay(now); days[cur.Format(dayLayout)] > 0; cur = cur.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// percent rounds done/total to a whole percentage; 0 when total is 0.
func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// createdBetween reports the tasks whose creation day is in [start, end].
func createdBetween(tasks []task.Task, start, end time.Time) (done, total int) {
	loc := end.Location()
	for _, t := range tasks {
		created := dayOf(t.CreatedAt, loc)
		if created.Before(start) || created.After(end) {
			continue
		}
		total++
		if t.Completed {
			done++
		}
	}
	return done, total
}

// CompletionRate is the share of tasks created in the trailing periodDays
// (today included) that are completed.
func CompletionRate(tasks []task.Task, periodDays int, now time.Time) int {
	if periodDays < 1 {
		periodDays = 1
	}
	today := clock.StartOfDay(now)
	start := today.AddDate(0, 0, -(periodDays - 1))
	return percent(createdBetween(tasks, start, today))
}

// DailyCompletions buckets completions by completion day, oldest first.
func DailyCompletions(tasks []task.Task, days int, now time.Time) []DayCount {
	if days < 1 {
		return []DayCount{}
	}
	counts := completionDays(tasks, now.Location())
	today := clock.StartOfDay(now)
	out := make([]DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		out = append(out, DayCount{Date: d, Count: counts[d.Format(dayLayout)]})
	}
	return out
}

// WeeklyProductivity rates 7-day windows ending today by task creation day,
// oldest first. Unlike DailyCompletions, bucketing follows CreatedAt.
func WeeklyProductivity(tasks []task.Task, weeks int, now time.Time) []WeekRate {
	if weeks < 1 {
		return []WeekRate{}
	}
	today := clock.StartOfDay(now)
	out := make([]WeekRate, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		end := today.AddDate(0, 0, -7*i)
		start := end.AddDate(0, 0, -6)
		out = append(out, WeekRate{Start: start, End: end, Rate: percent(createdBetween(tasks, start, end))})
	}
	return out
}

// Heatmap is DailyCompletions with an intensity level 0-4 relative to the
// busiest day in range.
func Heatmap(tasks []task.Task, days int, now time.Time) []HeatCell {
	daily := DailyCompletions(tasks, days, now)
	peak := 0
	for _, d := range daily {
		peak = max(peak, d.Count)
	}
	out := make([]HeatCell, 0, len(daily))
	for _, d := range daily {
		out = append(out, HeatCell{Date: d.Date, Count: d.Count, Level: heatLevel(d.Count, peak)})
	}
	return out
}

func heatLevel(count, peak int) int {
	if count == 0 || peak == 0 {
		return 0
	}
	return int(math.Ceil(4 * float64(count) / float64(peak)))
}

func Summarize(tasks []task.Task, xpTotal, periodDays int, now time.Time) Summary {
	s := Summary{
		Total:      len(tasks),
		Streak:     Streak(tasks, now),
		Rate:       CompletionRate(tasks, periodDays, now),
		PeriodDays: max(periodDays, 1),
		XP:         xpTotal,
	}
	for _, t := range tasks {
		switch {
		case t.Completed:
			s.Completed++
		case t.IsOverdue(now):
			s.Overdue++
			s.Pending++
		default:
			s.Pending++
		}
	}
	st := xp.StandingOf(xpTotal)
	s.Level = st.Level
	s.LevelProgress = st.Progress
	return s
}
