package telemetry

import (
	"encoding/json"
	"sync"
	"time"

	"safetasks/internal/clock"
)

// Repository stores telemetry events
type Repository interface {
	RecordEvent(eventType EventType, metadata EventMetadata) error
	GetEvents(since time.Time, eventTypes []EventType) ([]Event, error)
	Clear() error
}

// MemoryRepository keeps the most recent events in memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	clock  clock.Clock
	limit  int
	events []Event
	nextID int
}

// DefaultEventLimit bounds the in-memory log of a long-running process.
const DefaultEventLimit = 5000

func NewMemoryRepository(c clock.Clock, limit int) *MemoryRepository {
	if c == nil {
		c = clock.Real{}
	}
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	return &MemoryRepository{
		clock:  c,
		limit:  limit,
		events: make([]Event, 0),
		nextID: 1,
	}
}

func (r *MemoryRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Event{
		ID:        r.nextID,
		Type:      eventType,
		Timestamp: r.clock.Now(),
		Metadata:  string(metadataJSON),
	})
	r.nextID++

	if over := len(r.events) - r.limit; over > 0 {
		r.events = append(make([]Event, 0, r.limit), r.events[over:]...)
	}
	return nil
}

func (r *MemoryRepository) GetEvents(since time.Time, eventTypes []EventType) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeFilter := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		typeFilter[t] = true
	}

	result := make([]Event, 0)
	for _, event := range r.events {
		if event.Timestamp.Before(since) {
			continue
		}
		if len(eventTypes) > 0 && !typeFilter[event.Type] {
			continue
		}
		result = append(result, event)
	}
	return result, nil
}

func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = make([]Event, 0)
	r.nextID = 1
	return nil
}
