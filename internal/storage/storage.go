// Package storage persists the serialized state document. Every backend holds
// exactly one document under Key; the last Save wins.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Key names the state document, like the browser's local storage key.
const Key = "safetasks-data"

var ErrNotFound = errors.New("state document not found")

type Backend interface {
	// Load returns ErrNotFound when nothing was saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
	Close() error
}

const (
	DriverFile   = "file"
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Options struct {
	Driver  string
	DataDir string
	Logger  *slog.Logger
}

func Open(opts Options) (Backend, error) {
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = "data"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverFile:
		return NewFile(opts.DataDir)
	case DriverBadger:
		return NewBadger(BadgerConfig{Path: filepath.Join(opts.DataDir, "badger"), SyncWrites: true, Logger: opts.Logger})
	case DriverSQLite:
		return NewSQLite(filepath.Join(opts.DataDir, "safetasks.db"))
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
