package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetasks/internal/clock"
	"safetasks/internal/state"
	"safetasks/internal/storage"
	"safetasks/internal/task"
)

var start = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func TestMemoryRepository_FiltersByTimeAndType(t *testing.T) {
	clk := clock.NewFake(start)
	repo := NewMemoryRepository(clk, 0)

	require.NoError(t, repo.RecordEvent(EventTaskCreated, EventMetadata{"task_id": "a"}))
	clk.Advance(time.Hour)
	require.NoError(t, repo.RecordEvent(EventTaskCompleted, EventMetadata{"task_id": "a"}))
	require.NoError(t, repo.RecordEvent(EventTaskCreated, EventMetadata{"task_id": "b"}))

	all, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})

	recent, err := repo.GetEvents(start.Add(30*time.Minute), nil)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	created, err := repo.GetEvents(time.Time{}, []EventType{EventTaskCreated})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	require.NoError(t, repo.Clear())
	all, _ = repo.GetEvents(time.Time{}, nil)
	assert.Empty(t, all)
}

func TestMemoryRepository_DropsOldestOverLimit(t *testing.T) {
	repo := NewMemoryRepository(clock.NewFake(start), 2)
	for range 5 {
		require.NoError(t, repo.RecordEvent(EventTaskCreated, nil))
	}
	all, _ := repo.GetEvents(time.Time{}, nil)
	require.Len(t, all, 2)
	assert.Equal(t, 4, all[0].ID)
	assert.Equal(t, 5, all[1].ID)
}

func newStore(t *testing.T, clk clock.Clock) *state.Store {
	t.Helper()
	s, err := state.Open(context.Background(), state.Options{Backend: storage.NewMemory(), Clock: clk})
	require.NoError(t, err)
	return s
}

func TestRecorder_TracksTaskLifecycle(t *testing.T) {
	clk := clock.NewFake(start)
	repo := NewMemoryRepository(clk, 0)
	s := newStore(t, clk)
	s.Subscribe(NewRecorder(repo, nil).Observe)
	ctx := context.Background()

	a, err := s.AddTask(ctx, task.Draft{Title: "a", Type: task.TypeWeekly})
	require.NoError(t, err)
	b, err := s.AddTask(ctx, task.Draft{Title: "b", Type: task.TypeDaily})
	require.NoError(t, err)
	require.NoError(t, s.ToggleTask(ctx, a.ID))
	require.NoError(t, s.ToggleTask(ctx, a.ID))
	title := "b2"
	require.NoError(t, s.EditTask(ctx, b.ID, task.Patch{Title: &title}))
	require.NoError(t, s.DeleteTask(ctx, b.ID))

	events, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	var types []EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{
		EventTaskCreated,
		EventAchievementUnlocked,
		EventTaskCreated,
		EventTaskCompleted,
		EventTaskReopened,
		EventTaskEdited,
		EventTaskDeleted,
	}, types)

	st, err := CalculateStats(events, start)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TasksCreated)
	assert.Equal(t, 1, st.TaskCompletions)
	assert.Equal(t, 1, st.TaskReopens)
	assert.Equal(t, 0, st.XPEarned)
	assert.Equal(t, 1, st.CompletionsByType["weekly"])
	assert.Equal(t, []string{"first_task"}, st.AchievementsUnlocked)
	assert.Equal(t, "2026-10-15", st.Since)
}

func TestDiff_ImportIsOneEvent(t *testing.T) {
	prev := state.Default()
	next := state.Normalize([]byte(`{"tasks":[{"id":"x","title":"x","type":"daily","createdAt":"2026-10-15T08:00:00Z"}]}`), start)

	got := Diff(state.Change{Op: state.OpImport, Prev: prev, Next: next})
	require.Len(t, got, 1)
	assert.Equal(t, EventImported, got[0].Type)
	assert.Equal(t, 1, got[0].Metadata["tasks"])
}

func TestDiff_PomodoroPhaseFinished(t *testing.T) {
	prev := state.Default()
	prev.Pomodoro.Remaining = 1
	prev.Pomodoro.Running = true
	next := prev.Clone()
	next.Pomodoro = prev.Pomodoro.Tick()

	got := Diff(state.Change{Op: state.OpPomodoroTick, Prev: prev, Next: next})
	require.Len(t, got, 1)
	assert.Equal(t, EventPomodoroFinished, got[0].Type)
	assert.Equal(t, "focus", got[0].Metadata["mode"])

	next2 := next.Clone()
	next2.Pomodoro = next.Pomodoro.Start().Tick()
	assert.Empty(t, Diff(state.Change{Op: state.OpPomodoroTick, Prev: next, Next: next2}))
}

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	clk := clock.NewFake(start)
	s := newStore(t, clk)
	s.Subscribe(m.Observe)
	ctx := context.Background()

	a, err := s.AddTask(ctx, task.Draft{Title: "a", Type: task.TypeMonthly})
	require.NoError(t, err)
	_, err = s.AddTask(ctx, task.Draft{Title: "b", Type: task.TypeDaily})
	require.NoError(t, err)
	require.NoError(t, s.ToggleTask(ctx, a.ID))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.updates.WithLabelValues(state.OpAddTask)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.updates.WithLabelValues(state.OpToggleTask)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues(string(EventTaskCompleted))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasks.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasks.WithLabelValues("pending")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.xpTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.level))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.achievements))
}
