package ops

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetasks/internal/achievement"
	"safetasks/internal/clock"
	"safetasks/internal/state"
	"safetasks/internal/stats"
	"safetasks/internal/storage"
	"safetasks/internal/task"
	"safetasks/internal/xp"
)

var now = time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)

func newStore(t *testing.T) *state.Store {
	t.Helper()
	s, err := state.Open(context.Background(), state.Options{Backend: storage.NewMemory(), Clock: clock.NewFake(now)})
	require.NoError(t, err)
	return s
}

func TestDrill_DigestsMatch(t *testing.T) {
	data := t.TempDir()
	writeTree(t, data, map[string]string{
		"safetasks-data.json": `{"tasks":[]}`,
		"badger/MANIFEST":     "m",
	})

	res, err := Drill(data, t.TempDir(), now)
	require.NoError(t, err)
	assert.FileExists(t, res.Archive)
	assert.DirExists(t, res.RestoreDir)
	assert.Equal(t, "safetasks-drill-20261015T143000Z.tar.gz", filepath.Base(res.Archive))

	want, err := DirDigest(data)
	require.NoError(t, err)
	assert.Equal(t, want, res.Digest)
}

func TestDirDigest_SensitiveToContentAndNames(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"x.json": "1"})
	writeTree(t, b, map[string]string{"x.json": "1"})

	da, err := DirDigest(a)
	require.NoError(t, err)
	db, err := DirDigest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)

	require.NoError(t, os.WriteFile(filepath.Join(b, "x.json"), []byte("2"), 0o644))
	db, err = DirDigest(b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db)

	require.NoError(t, os.Rename(filepath.Join(b, "x.json"), filepath.Join(b, "y.json")))
	require.NoError(t, os.WriteFile(filepath.Join(b, "y.json"), []byte("1"), 0o644))
	db, err = DirDigest(b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}

func TestBackupName(t *testing.T) {
	assert.Equal(t, "safetasks-20261015T143000Z.tar.gz", BackupName(now))
}

func TestExportImportFile(t *testing.T) {
	ctx := context.Background()
	src := newStore(t)
	_, err := src.AddTask(ctx, task.Draft{Title: "Pay rent", Type: task.TypeMonthly})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "exports")
	path, err := ExportFile(src, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "safetasks-backup-2026-10-15.json"), path)

	dst := newStore(t)
	require.NoError(t, ImportFile(ctx, dst, path))
	require.Len(t, dst.Snapshot().Tasks, 1)
	assert.Equal(t, "Pay rent", dst.Snapshot().Tasks[0].Title)
}

func TestImportFile_RejectsBadDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":"nope"}`), 0o644))

	s := newStore(t)
	err := ImportFile(ctx, s, path)
	assert.ErrorIs(t, err, state.ErrInvalidImport)
	assert.Contains(t, err.Error(), "bad.json")

	assert.Error(t, ImportFile(ctx, s, filepath.Join(t.TempDir(), "missing.json")))
}

func TestRenderReport(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tk, err := s.AddTask(ctx, task.Draft{Title: "a", Type: task.TypeDaily})
	require.NoError(t, err)
	require.NoError(t, s.ToggleTask(ctx, tk.ID))

	snap := s.Snapshot()
	r := stats.Build(snap.Tasks, snap.XP.Total, stats.Window{PeriodDays: 7, DailyDays: 3, WeeklyWeeks: 2, HeatmapDays: 7}, now)

	var out bytes.Buffer
	require.NoError(t, RenderReport(&out, r, xp.StandingOf(snap.XP.Total), achievement.Board(snap.Achievements.Unlocked)))

	text := out.String()
	assert.Contains(t, text, "Daily completions")
	assert.Contains(t, text, "100% over 7 days")
	assert.Contains(t, text, "(10/500 XP)")
	assert.Contains(t, text, "✓ First Step")
	assert.Contains(t, text, "· Triumph 3")
}
