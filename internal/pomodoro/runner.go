package pomodoro

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TickFunc advances the persisted timer by one step and reports whether it is
// still running.
type TickFunc func(ctx context.Context) (running bool, err error)

// Runner is the host-owned repeating task that drives a running timer.
// Persisted running=true does not tick by itself; the host must Arm.
type Runner struct {
	interval time.Duration
	tick     TickFunc
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

func NewRunner(interval time.Duration, tick TickFunc, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{interval: interval, tick: tick, logger: logger}
}

// Arm starts ticking unless already armed or closed. The loop ends when ctx
// is done, on Disarm, or once the timer reports it stopped.
func (r *Runner) Arm(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil || r.closed {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	go r.loop(loopCtx, done)
}

// Disarm stops ticking and waits for an in-flight tick to finish.
func (r *Runner) Disarm() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Close disarms the runner for good; later Arm calls do nothing.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.Disarm()
}

func (r *Runner) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer r.release(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			running, err := r.tick(ctx)
			if err != nil {
				if ctx.Err() == nil {
					r.logger.Error("pomodoro tick failed", "error", err)
				}
				return
			}
			if !running {
				return
			}
		}
	}
}

// release forgets the loop if it is still the current one.
func (r *Runner) release(done chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == done {
		r.cancel()
		r.cancel, r.done = nil, nil
	}
}
