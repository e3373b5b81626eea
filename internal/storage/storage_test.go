package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	bdg, err := NewBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)

	lite, err := NewSQLite(filepath.Join(t.TempDir(), "db", "safetasks.db"))
	require.NoError(t, err)

	out := map[string]Backend{
		DriverFile:   file,
		DriverBadger: bdg,
		DriverSQLite: lite,
		DriverMemory: NewMemory(),
	}
	t.Cleanup(func() {
		for _, b := range out {
			_ = b.Close()
		}
	})
	return out
}

func TestBackends_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Load(ctx)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Save(ctx, []byte(`{"tasks":[]}`)))
			require.NoError(t, b.Save(ctx, []byte(`{"tasks":[1]}`)))

			got, err := b.Load(ctx)
			require.NoError(t, err)
			assert.JSONEq(t, `{"tasks":[1]}`, string(got))
		})
	}
}

func TestFile_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.Save(context.Background(), []byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "safetasks-data.json", entries[0].Name())
}

func TestBadger_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b, err := NewBadger(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, []byte(`{"xp":{"total":40}}`)))
	require.NoError(t, b.Close())

	b, err = NewBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer b.Close()
	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"xp":{"total":40}}`, string(got))
}

func TestMemory_FailSaves(t *testing.T) {
	m := NewMemory()
	boom := errors.New("quota exceeded")
	m.FailSaves(boom)
	assert.ErrorIs(t, m.Save(context.Background(), []byte(`{}`)), boom)
	assert.Equal(t, 0, m.Saves())

	m.FailSaves(nil)
	assert.NoError(t, m.Save(context.Background(), []byte(`{}`)))
	assert.Equal(t, 1, m.Saves())
}

func TestOpen_SelectsDriver(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(Options{Driver: "file", DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &File{}, b)

	b, err = Open(Options{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	b, err = Open(Options{Driver: "sqlite", DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, b)
	require.NoError(t, b.Close())

	_, err = Open(Options{Driver: "redis"})
	assert.Error(t, err)
}
