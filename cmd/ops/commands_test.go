package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

const doc = `{
  "tasks": [
    {"id": "t1", "title": "Laundry", "type": "weekly", "createdAt": "2026-10-14T09:00:00Z", "completed": true, "completedAt": "2026-10-14T10:00:00Z"},
    {"id": "t2", "title": "Pay rent", "type": "monthly", "createdAt": "2026-10-14T09:00:00Z"}
  ],
  "schedule": [{"id": "s1", "day": "monday", "time": "09:30", "task": "swim"}],
  "pomodoro": {"mode": "focus", "remaining": 1500, "running": false},
  "achievements": {"unlocked": []},
  "modules": {},
  "xp": {"total": 30}
}`

func TestImportExportStats(t *testing.T) {
	for _, driver := range []string{"file", "sqlite", "badger"} {
		t.Run(driver, func(t *testing.T) {
			dataDir := t.TempDir()
			in := filepath.Join(t.TempDir(), "in.json")
			require.NoError(t, os.WriteFile(in, []byte(doc), 0o644))

			out, err := run(t, "--storage", driver, "--data-dir", dataDir, "import", in)
			require.NoError(t, err)
			assert.Contains(t, out, "imported 2 tasks, 1 schedule entries, 30 XP")

			exports := t.TempDir()
			out, err = run(t, "--storage", driver, "--data-dir", dataDir, "export", "--out", exports)
			require.NoError(t, err)
			path := strings.TrimSpace(out)
			assert.Equal(t, exports, filepath.Dir(path))
			b, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(b), `"Pay rent"`)

			out, err = run(t, "--storage", driver, "--data-dir", dataDir, "stats", "--days", "3")
			require.NoError(t, err)
			assert.Contains(t, out, "Daily completions")
			assert.Contains(t, out, "Achievements")
		})
	}
}

func TestImport_RejectsBadDocument(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"tasks": {}}`), 0o644))

	_, err := run(t, "--data-dir", t.TempDir(), "import", in)
	assert.ErrorContains(t, err, "tasks must be")
}

func TestBackupRestoreDrill(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "safetasks-data.json"), []byte(doc), 0o644))

	archive := filepath.Join(t.TempDir(), "b.tar.gz")
	out, err := run(t, "--data-dir", dataDir, "backup", "--out", archive)
	require.NoError(t, err)
	assert.Equal(t, archive, strings.TrimSpace(out))

	target := filepath.Join(t.TempDir(), "restored")
	_, err = run(t, "restore", "--archive", archive, "--target-dir", target)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(target, "safetasks-data.json"))

	out, err = run(t, "--data-dir", dataDir, "drill", "--work-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "digest:")

	_, err = run(t, "restore")
	assert.Error(t, err)
}

func TestUnknownDriverRejected(t *testing.T) {
	_, err := run(t, "--storage", "floppy", "--data-dir", t.TempDir(), "stats")
	assert.ErrorContains(t, err, "unknown driver")
}
