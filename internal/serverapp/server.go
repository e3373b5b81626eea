package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"safetasks/internal/clock"
	"safetasks/internal/config"
	"safetasks/internal/httpmw"
	"safetasks/internal/pomodoro"
	"safetasks/internal/server"
	"safetasks/internal/state"
	"safetasks/internal/storage"
	"safetasks/internal/telemetry"
	"safetasks/static"
)

type Options struct {
	Config *config.Config
	// Backend overrides the one selected by Config.Storage.
	Backend       storage.Backend
	Clock         clock.Clock
	StaticDir     string
	UseDiskStatic bool
	Logger        *slog.Logger
}

// App owns the store, the pomodoro runner and the HTTP surface of one
// process.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	backend  storage.Backend
	store    *state.Store
	events   *telemetry.MemoryRepository
	runner   *pomodoro.Runner
	registry *prometheus.Registry
	handler  http.Handler

	// ctx bounds the runner; canceled by Close.
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cfg := opts.Config

	backend := opts.Backend
	if backend == nil {
		b, err := storage.Open(storage.Options{
			Driver:  cfg.Storage.Driver,
			DataDir: cfg.Storage.DataDir,
			Logger:  opts.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		backend = b
	}

	store, err := state.Open(ctx, state.Options{Backend: backend, Clock: opts.Clock, Logger: opts.Logger})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	events := telemetry.NewMemoryRepository(opts.Clock, telemetry.DefaultEventLimit)
	metrics := telemetry.NewMetrics(registry)
	metrics.Set(store.Snapshot())
	store.Subscribe(telemetry.NewRecorder(events, opts.Logger).Observe)
	store.Subscribe(metrics.Observe)

	runner := pomodoro.NewRunner(cfg.Pomodoro.Tick, store.PomodoroTick, opts.Logger)

	appCtx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		logger:   opts.Logger,
		backend:  backend,
		store:    store,
		events:   events,
		runner:   runner,
		registry: registry,
		ctx:      appCtx,
		cancel:   cancel,
	}
	a.handler = a.routes(opts)

	// A timer persisted as running resumes where it stopped.
	if store.Snapshot().Pomodoro.Running {
		a.logger.Info("resuming pomodoro timer")
		runner.Arm(appCtx)
	}
	return a, nil
}

func (a *App) routes(opts Options) http.Handler {
	mux := http.NewServeMux()

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if opts.UseDiskStatic {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticHandler))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "safetasks",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.store.Ping(r.Context()); err != nil {
			a.logger.Warn("readiness probe failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "safetasks",
			"storage": a.cfg.Storage.Driver,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	server.NewHandler(server.Options{
		Store:     a.store,
		Events:    a.events,
		Ticker:    a.runner,
		TickerCtx: a.ctx,
		Window:    a.cfg.Stats.Window(),
		Logger:    a.logger,
	}).Register(mux)

	return httpmw.Chain(
		mux,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(a.logger),
		httpmw.WithMetrics(a.registry),
		httpmw.WithRecover(a.logger),
	)
}

func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Store() *state.Store { return a.store }

// Run serves on cfg.Server.Addr until ctx is done, then shuts down within
// cfg.Server.ShutdownTimeout and closes the app.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		a.Close()
		return fmt.Errorf("listen %s: %w", a.cfg.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer a.Close()

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", "addr", "http://"+ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close stops the pomodoro runner and releases the backend. The persisted
// timer keeps its running flag for the next start.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.cancel()
		a.runner.Close()
		if err := a.backend.Close(); err != nil {
			a.logger.Warn("close storage", "err", err)
		}
	})
}

func UseDiskStaticByEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SAFETASKS_DEV_STATIC"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
