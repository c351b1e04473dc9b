package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"aquasim/internal/models"

	"github.com/google/uuid"
)

// defaultEventCap bounds the in-memory event log; the oldest entries are
// evicted once the cap is reached.
const defaultEventCap = 1024

type memoryEvents struct {
	mu     sync.RWMutex
	cap    int
	events []models.DeviceEvent
}

func newMemoryEvents(capacity int) *memoryEvents {
	return &memoryEvents{cap: capacity}
}

// Append records a new event. Empty EventID and zero OccurredAt are filled in.
func (m *memoryEvents) Append(_ context.Context, e models.DeviceEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}
	e.Type = strings.ToUpper(strings.TrimSpace(e.Type))

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) >= m.cap {
		m.events = m.events[1:]
	}
	m.events = append(m.events, e)
	return nil
}

// List returns events within [from, to] (inclusive, zero means unbounded)
// matching typ ("" matches all), in append order.
func (m *memoryEvents) List(_ context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error) {
	typ = strings.ToUpper(strings.TrimSpace(typ))

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DeviceEvent, 0, len(m.events))
	for _, e := range m.events {
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type memoryReadings struct {
	mu   sync.RWMutex
	last models.SensorReading
	set  bool
}

func (m *memoryReadings) SetLast(r models.SensorReading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = r
	m.set = true
}

func (m *memoryReadings) Last() (models.SensorReading, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.set
}
