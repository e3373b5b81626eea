package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"safetasks/internal/achievement"
	"safetasks/internal/pomodoro"
	"safetasks/internal/schedule"
	"safetasks/internal/state"
	"safetasks/internal/stats"
	"safetasks/internal/task"
	"safetasks/internal/telemetry"
	"safetasks/internal/xp"
)

// maxImportBytes caps POST /api/import bodies.
const maxImportBytes = 10 << 20

// Ticker drives a running pomodoro timer; *pomodoro.Runner implements it.
type Ticker interface {
	Arm(ctx context.Context)
	Disarm()
}

type Options struct {
	Store  *state.Store
	Events telemetry.Repository
	Ticker Ticker
	// TickerCtx bounds the ticker's lifetime; requests end too early to own it.
	TickerCtx context.Context
	Window    stats.Window
	Logger    *slog.Logger
}

type Handler struct {
	store     *state.Store
	events    telemetry.Repository
	ticker    Ticker
	tickerCtx context.Context
	window    stats.Window
	logger    *slog.Logger
	router    *Router
}

func NewHandler(opts Options) *Handler {
	if opts.TickerCtx == nil {
		opts.TickerCtx = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		store:     opts.Store,
		events:    opts.Events,
		ticker:    opts.Ticker,
		tickerCtx: opts.TickerCtx,
		window:    opts.Window,
		logger:    opts.Logger,
	}
}

// Register mounts the JSON API and the dashboard on mux.
func (h *Handler) Register(mux *http.ServeMux) *Router {
	rt := NewRouter(mux)
	h.router = rt

	rt.Handle("GET /api/state", "full state document", "", h.State)
	rt.Handle("GET /api/tasks", "list tasks; q, type, status, priority, tag filter", "", h.ListTasks)
	rt.Handle("POST /api/tasks", "create a task", `{"title":"Water plants","type":"daily","priority":"low","tags":["home"]}`, h.CreateTask)
	rt.Handle("PATCH /api/tasks/{id}", "edit title, type, priority or tags", `{"type":"weekly"}`, h.EditTask)
	rt.Handle("POST /api/tasks/{id}/toggle", "toggle completion", "", h.ToggleTask)
	rt.Handle("DELETE /api/tasks/{id}", "delete a pending task", "", h.DeleteTask)
	rt.Handle("GET /api/schedule", "schedule entries and weekday grid", "", h.Schedule)
	rt.Handle("POST /api/schedule", "add a schedule entry", `{"day":"monday","time":"09:30","place":"gym","task":"swim"}`, h.AddScheduleEntry)
	rt.Handle("DELETE /api/schedule/{id}", "remove a schedule entry", "", h.RemoveScheduleEntry)
	rt.Handle("POST /api/pomodoro/{action}", "start, pause, reset, focus or break", "", h.Pomodoro)
	rt.Handle("GET /api/stats", "summary, daily, weekly and heatmap aggregates", "", h.Stats)
	rt.Handle("GET /api/achievements", "achievement catalog with unlock flags", "", h.Achievements)
	rt.Handle("PUT /api/preferences", "theme, filters and module visibility", `{"theme":"light","modules":{"heatmap":false}}`, h.Preferences)
	rt.Handle("GET /api/export", "download a backup document", "", h.Export)
	rt.Handle("POST /api/import", "replace state with a backup document", "", h.Import)
	rt.Handle("GET /api/events", "telemetry event log and derived stats", "", h.Events)
	rt.Handle("GET /api/routes", "this listing", "", h.Routes)
	rt.Handle("GET /{$}", "dashboard", "", h.Dashboard)
	return rt
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// fail maps domain errors to status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, task.ErrInvalidDraft),
		errors.Is(err, schedule.ErrInvalidDraft),
		errors.Is(err, state.ErrInvalidPreference),
		errors.Is(err, state.ErrInvalidImport),
		errors.Is(err, pomodoro.ErrUnknownMode):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeErr(w, http.StatusInternalServerError, "could not update state")
	}
}

// GET /api/state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// GET /api/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := task.Filter{
		Query:    q.Get("q"),
		Type:     q.Get("type"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Tag:      q.Get("tag"),
	}
	writeJSON(w, http.StatusOK, task.List(h.store.Snapshot().Tasks, f))
}

// POST /api/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in task.Draft
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	t, err := h.store.AddTask(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// PATCH /api/tasks/{id}
func (h *Handler) EditTask(w http.ResponseWriter, r *http.Request) {
	var in task.Patch
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := h.store.EditTask(r.Context(), r.PathValue("id"), in); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// POST /api/tasks/{id}/toggle
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ToggleTask(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// DELETE /api/tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

type scheduleResponse struct {
	Entries []schedule.Entry                      `json:"entries"`
	Grid    map[schedule.Weekday][]schedule.Entry `json:"grid"`
}

// GET /api/schedule
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	entries := h.store.Snapshot().Schedule
	schedule.Sort(entries)
	writeJSON(w, http.StatusOK, scheduleResponse{Entries: entries, Grid: schedule.Grid(entries)})
}

// POST /api/schedule
func (h *Handler) AddScheduleEntry(w http.ResponseWriter, r *http.Request) {
	var in schedule.Draft
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	e, err := h.store.AddScheduleEntry(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// DELETE /api/schedule/{id}
func (h *Handler) RemoveScheduleEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveScheduleEntry(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

type pomodoroResponse struct {
	Timer    pomodoro.Timer `json:"timer"`
	Progress float64        `json:"progress"`
}

// POST /api/pomodoro/{action}
func (h *Handler) Pomodoro(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	switch action := r.PathValue("action"); action {
	case "start":
		err = h.store.PomodoroStart(ctx)
	case "pause":
		err = h.store.PomodoroPause(ctx)
	case "reset":
		err = h.store.PomodoroReset(ctx)
	case string(pomodoro.ModeFocus), string(pomodoro.ModeBreak):
		err = h.store.PomodoroSetMode(ctx, pomodoro.Mode(action))
	default:
		writeErr(w, http.StatusNotFound, "unknown pomodoro action "+strconv.Quote(action))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	timer := h.store.Snapshot().Pomodoro
	h.syncTicker(timer.Running)
	writeJSON(w, http.StatusOK, pomodoroResponse{Timer: timer, Progress: timer.Progress()})
}

// syncTicker arms the ticker for a running timer and stops it otherwise.
func (h *Handler) syncTicker(running bool) {
	if h.ticker == nil {
		return
	}
	if running {
		h.ticker.Arm(h.tickerCtx)
		return
	}
	h.ticker.Disarm()
}

type statsResponse struct {
	stats.Report
	XP     xp.Standing  `json:"xp"`
	Window stats.Window `json:"window"`
}

// GET /api/stats?period=7&days=7&weeks=4&heatmap=84
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	win := stats.Window{
		PeriodDays:  intParam(q.Get("period"), h.window.PeriodDays, 1, 366),
		DailyDays:   intParam(q.Get("days"), h.window.DailyDays, 1, 366),
		WeeklyWeeks: intParam(q.Get("weeks"), h.window.WeeklyWeeks, 1, 53),
		HeatmapDays: intParam(q.Get("heatmap"), h.window.HeatmapDays, 1, 366),
	}
	snap := h.store.Snapshot()
	writeJSON(w, http.StatusOK, statsResponse{
		Report: stats.Build(snap.Tasks, snap.XP.Total, win, h.store.Now()),
		XP:     xp.StandingOf(snap.XP.Total),
		Window: win,
	})
}

func intParam(raw string, def, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = def
	}
	return min(max(n, lo), hi)
}

// GET /api/achievements
func (h *Handler) Achievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, achievement.Board(h.store.Snapshot().Achievements.Unlocked))
}

// PUT /api/preferences
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	var in state.Preferences
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := h.store.SetPreferences(r.Context(), in); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// GET /api/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	name, doc, err := h.store.Export()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// POST /api/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeErr(w, http.StatusRequestEntityTooLarge, "import too large")
		return
	}
	if err := h.store.Import(r.Context(), raw); err != nil {
		h.fail(w, r, err)
		return
	}
	snap := h.store.Snapshot()
	h.syncTicker(snap.Pomodoro.Running)
	writeJSON(w, http.StatusOK, snap)
}

type eventsResponse struct {
	Events []telemetry.Event `json:"events"`
	Stats  telemetry.Stats   `json:"stats"`
}

// GET /api/events?since=2026-10-01T00:00:00Z&type=task_completed,task_created
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeErr(w, http.StatusNotFound, "telemetry disabled")
		return
	}
	q := r.URL.Query()
	var since time.Time
	if raw := strings.TrimSpace(q.Get("since")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
		since = t
	}
	var types []telemetry.EventType
	for _, s := range strings.Split(q.Get("type"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			types = append(types, telemetry.EventType(s))
		}
	}

	events, err := h.events.GetEvents(since, types)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st, err := telemetry.CalculateStats(events, since)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events, Stats: st})
}

// GET /api/routes
func (h *Handler) Routes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.router.Routes())
}
