package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetasks/internal/config"
	"safetasks/internal/serverapp"
	"safetasks/internal/state"
	"safetasks/internal/storage"
)

func TestServer_ProjectConfigLoads(t *testing.T) {
	cfg := loadTestConfig(t)
	assert.Equal(t, storage.DriverFile, cfg.Storage.Driver)
	assert.Equal(t, 84, cfg.Stats.HeatmapDays)
}

func TestServer_StatePersistsAcrossRestarts(t *testing.T) {
	for _, driver := range []string{storage.DriverFile, storage.DriverBadger, storage.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			dataDir := t.TempDir()

			app := newTestApp(t, driver, dataDir)
			res := app.json(http.MethodPost, "/api/tasks", map[string]any{"title": "Water plants", "type": "daily"})
			require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
			var created struct {
				ID string `json:"id"`
			}
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))

			res = app.request(http.MethodPost, "/api/tasks/"+created.ID+"/toggle", nil)
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())
			res = app.json(http.MethodPut, "/api/preferences", map[string]any{"theme": "light"})
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())
			app.close()

			again := newTestApp(t, driver, dataDir)
			res = again.request(http.MethodGet, "/api/state", nil)
			require.Equal(t, http.StatusOK, res.Code)
			var snap state.State
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &snap))

			require.Len(t, snap.Tasks, 1)
			assert.True(t, snap.Tasks[0].Completed)
			assert.Equal(t, 10, snap.XP.Total)
			assert.Equal(t, state.ThemeLight, snap.UI.Theme)
			assert.Contains(t, snap.Achievements.Unlocked, "first_task")
		})
	}
}

func TestServer_ExportThenImportIntoFreshDataDir(t *testing.T) {
	src := newTestApp(t, storage.DriverFile, t.TempDir())
	src.json(http.MethodPost, "/api/schedule", map[string]any{"day": "monday", "time": "09:30", "task": "swim"})
	exp := src.request(http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, exp.Code)

	dst := newTestApp(t, storage.DriverSQLite, t.TempDir())
	res := dst.request(http.MethodPost, "/api/import", bytes.NewReader(exp.Body.Bytes()))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var snap state.State
	require.NoError(t, json.Unmarshal(dst.request(http.MethodGet, "/api/state", nil).Body.Bytes(), &snap))
	require.Len(t, snap.Schedule, 1)
	assert.Equal(t, "swim", snap.Schedule[0].Task)
}

type testApp struct {
	app  *serverapp.App
	logs *bytes.Buffer
}

func newTestApp(t *testing.T, driver, dataDir string) *testApp {
	t.Helper()

	cfg := loadTestConfig(t)
	cfg.Storage.Driver = driver
	cfg.Storage.DataDir = dataDir

	var logs bytes.Buffer
	app, err := serverapp.New(context.Background(), serverapp.Options{
		Config:    cfg,
		StaticDir: filepath.Join(projectRoot(t), "static"),
		Logger:    slog.New(slog.NewJSONHandler(&logs, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return &testApp{app: app, logs: &logs}
}

func (a *testApp) close() { a.app.Close() }

func (a *testApp) json(method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	return a.request(method, path, bytes.NewReader(b))
}

func (a *testApp) request(method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.app.Handler().ServeHTTP(rec, req)
	return rec
}

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfgPath := filepath.Join(projectRoot(t), "safetasks_config.yml")
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err, "load config %s", cfgPath)
	return cfg
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
