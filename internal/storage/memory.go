package storage

import (
	"context"
	"sync"
)

// Memory is a process-local backend for tests and throwaway runs.
type Memory struct {
	mu      sync.Mutex
	doc     []byte
	saves   int
	saveErr error
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return nil, ErrNotFound
	}
	return append([]byte{}, m.doc...), nil
}

func (m *Memory) Save(_ context.Context, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.doc = append([]byte{}, doc...)
	m.saves++
	return nil
}

func (m *Memory) Close() error { return nil }

// Saves reports how many writes succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailSaves makes every following Save return err; nil restores writes.
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}
