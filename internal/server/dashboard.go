package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"safetasks/internal/achievement"
	"safetasks/internal/pomodoro"
	"safetasks/internal/schedule"
	"safetasks/internal/state"
	"safetasks/internal/stats"
	"safetasks/internal/task"
	"safetasks/internal/xp"
)

//go:generate templ generate -f dashboard.templ

type DashboardData struct {
	State  state.State
	Report stats.Report
	XP     xp.Standing
	Tasks  []task.Task
	Board  []achievement.Status
	Grid   map[schedule.Weekday][]schedule.Entry
	Now    time.Time
}

// GET /
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	now := h.store.Now()
	data := DashboardData{
		State:  snap,
		Report: stats.Build(snap.Tasks, snap.XP.Total, h.window, now),
		XP:     xp.StandingOf(snap.XP.Total),
		Tasks:  task.List(snap.Tasks, snap.Filters.TaskFilter()),
		Board:  achievement.Board(snap.Achievements.Unlocked),
		Grid:   schedule.Grid(snap.Schedule),
		Now:    now,
	}
	templ.Handler(Dashboard(data)).ServeHTTP(w, r)
}

func filtered(f state.Filters) bool {
	return f.Search != "" || f.Type != "all" || f.Status != "all"
}

func filterNote(f state.Filters) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", f.Type, f.Status, f.Search))
}

func taskClass(t task.Task, now time.Time) string {
	switch {
	case t.Completed:
		return "task done"
	case t.IsOverdue(now):
		return "task overdue"
	default:
		return "task"
	}
}

func weekRange(w stats.WeekRate) string {
	return w.Start.Format("02 Jan") + " - " + w.End.Format("02 Jan")
}

func heatClass(c stats.HeatCell) string {
	return fmt.Sprintf("cell l%d", c.Level)
}

func heatTitle(c stats.HeatCell) string {
	return fmt.Sprintf("%s: %d", c.Date.Format("2006-01-02"), c.Count)
}

func clockFace(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func timerState(t pomodoro.Timer) string {
	if t.Running {
		return string(t.Mode) + " · running"
	}
	return string(t.Mode) + " · paused"
}
