package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"safetasks/internal/achievement"
	"safetasks/internal/clock"
	"safetasks/internal/storage"
)

// ErrUnchanged aborts an update without committing or notifying. Updaters
// return it for mutations that have nothing to do, like toggling an unknown id.
var ErrUnchanged = errors.New("state unchanged")

// Change is delivered to subscribers after a committed update. Prev and Next
// are shared with the Store and must not be modified.
type Change struct {
	Op   string
	Prev State
	Next State
}

type Options struct {
	Backend storage.Backend
	Clock   clock.Clock
	Logger  *slog.Logger
}

// Store is the single owner of the canonical State. Update is the only way to
// change it.
type Store struct {
	// updateMu serializes updates, notifications included.
	updateMu sync.Mutex

	mu      sync.RWMutex
	current State

	backend storage.Backend
	clock   clock.Clock
	logger  *slog.Logger

	subsMu sync.RWMutex
	subs   []func(Change)
}

// Open loads the persisted document. A missing document starts from
// defaults; an unreadable one is logged and replaced by defaults.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Backend == nil {
		return nil, errors.New("state: backend is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Store{
		backend: opts.Backend,
		clock:   opts.Clock,
		logger:  opts.Logger,
	}

	now := s.clock.Now()
	raw, err := s.backend.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.current = Default()
		NormalizeState(&s.current, now)
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	default:
		st, decodeErr := decode(raw, now)
		if decodeErr != nil {
			s.logger.Warn("persisted state unreadable, using defaults", "err", decodeErr)
		}
		s.current = st
	}
	return s, nil
}

// Snapshot returns a deep copy of the canonical state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// Ping checks that the backend can still be read.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.backend.Load(ctx); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// Subscribe registers fn for every committed change. fn runs on the
// updating goroutine, in commit order, and must not call Update.
func (s *Store) Subscribe(fn func(Change)) {
	s.subsMu.Lock()
	s.subs = append(s.subs, fn)
	s.subsMu.Unlock()
}

// Update runs fn on a private copy of the state, then normalizes it,
// evaluates achievements, persists it and makes it canonical. Nothing is
// committed if fn or the save fails.
func (s *Store) Update(ctx context.Context, op string, fn func(draft *State) error) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	// Only Update writes current, so it can be read here without mu.
	prev := s.current
	draft := prev.Clone()
	if err := fn(&draft); err != nil {
		if errors.Is(err, ErrUnchanged) {
			return nil
		}
		return err
	}

	now := s.clock.Now()
	NormalizeState(&draft, now)
	draft.Achievements.Unlocked = achievement.Evaluate(draft.Achievements.Unlocked, draft.Facts(now))

	doc, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("%s: encode state: %w", op, err)
	}
	if err := s.backend.Save(ctx, doc); err != nil {
		s.logger.Error("persist state failed", "op", op, "err", err)
		return fmt.Errorf("%s: persist state: %w", op, err)
	}

	s.mu.Lock()
	s.current = draft
	s.mu.Unlock()

	s.subsMu.RLock()
	subs := append([]func(Change){}, s.subs...)
	s.subsMu.RUnlock()

	change := Change{Op: op, Prev: prev, Next: draft}
	for _, sub := range subs {
		sub(change)
	}
	return nil
}

// ExportName is the download name of a backup taken at now.
func ExportName(now time.Time) string {
	return "safetasks-backup-" + now.UTC().Format("2006-01-02") + ".json"
}

// Export serializes the whole state as an indented JSON document.
func (s *Store) Export() (name string, doc []byte, err error) {
	snap := s.Snapshot()
	doc, err = json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode export: %w", err)
	}
	return ExportName(s.clock.Now()), doc, nil
}
