// Package state owns the persisted SafeTasks document: its schema, the
// normalizer that repairs any loaded payload, and the Store through which
// every mutation flows.
package state

import (
	"slices"
	"time"

	"safetasks/internal/achievement"
	"safetasks/internal/pomodoro"
	"safetasks/internal/schedule"
	"safetasks/internal/stats"
	"safetasks/internal/task"
	"safetasks/internal/xp"
)

type Achievements struct {
	Unlocked []string `json:"unlocked"`
}

type XP struct {
	Total int `json:"total"`
}

// Modules toggles dashboard sections. Hidden modules keep their data.
type Modules struct {
	Pomodoro     bool `json:"pomodoro"`
	XP           bool `json:"xp"`
	Achievements bool `json:"achievements"`
	Stats        bool `json:"stats"`
	Heatmap      bool `json:"heatmap"`
}

// ModuleNames lists the keys accepted by Modules.Set.
var ModuleNames = []string{"pomodoro", "xp", "achievements", "stats", "heatmap"}

func (m *Modules) Set(name string, visible bool) bool {
	switch name {
	case "pomodoro":
		m.Pomodoro = visible
	case "xp":
		m.XP = visible
	case "achievements":
		m.Achievements = visible
	case "stats":
		m.Stats = visible
	case "heatmap":
		m.Heatmap = visible
	default:
		return false
	}
	return true
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

type UI struct {
	Theme Theme `json:"theme"`
}

// Filters are the persisted task list filters of the dashboard.
type Filters struct {
	Search string `json:"search"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

func (f Filters) TaskFilter() task.Filter {
	return task.Filter{Query: f.Search, Type: f.Type, Status: f.Status}
}

type State struct {
	Tasks        []task.Task      `json:"tasks"`
	Schedule     []schedule.Entry `json:"schedule"`
	Achievements Achievements     `json:"achievements"`
	Pomodoro     pomodoro.Timer   `json:"pomodoro"`
	XP           XP               `json:"xp"`
	Modules      Modules          `json:"modules"`
	UI           UI               `json:"ui"`
	Filters      Filters          `json:"filters"`
}

func Default() State {
	return State{
		Tasks:        []task.Task{},
		Schedule:     []schedule.Entry{},
		Achievements: Achievements{Unlocked: []string{}},
		Pomodoro:     pomodoro.New(),
		Modules: Modules{
			Pomodoro:     true,
			XP:           true,
			Achievements: true,
			Stats:        true,
			Heatmap:      true,
		},
		UI:      UI{Theme: ThemeDark},
		Filters: Filters{Type: "all", Status: "all"},
	}
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	out := s
	out.Tasks = make([]task.Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		out.Tasks = append(out.Tasks, t.Clone())
	}
	out.Schedule = append([]schedule.Entry{}, s.Schedule...)
	out.Achievements.Unlocked = append([]string{}, s.Achievements.Unlocked...)
	return out
}

// Facts is what achievement rules see of s at time now.
func (s State) Facts(now time.Time) achievement.Facts {
	return achievement.Facts{
		Tasks:         len(s.Tasks),
		Completed:     len(task.Completed(s.Tasks)),
		Streak:        stats.Streak(s.Tasks, now),
		XP:            s.XP.Total,
		Level:         xp.Level(s.XP.Total),
		FinishedFocus: s.Pomodoro.FinishedFocus,
		Schedule:      len(s.Schedule),
	}
}

func (s State) Task(id string) (task.Task, bool) {
	i, ok := task.Find(s.Tasks, id)
	if !ok {
		return task.Task{}, false
	}
	return s.Tasks[i].Clone(), true
}

func (s State) Unlocked(id string) bool {
	return slices.Contains(s.Achievements.Unlocked, id)
}
