package store

import (
	"context"
	"time"

	"aquasim/internal/models"
)

// EventRepo is an append-only device event log with filtered listing.
type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error)
}

// ReadingRepo keeps the most recent published telemetry sample so the
// status API can serve it without touching the simulation.
type ReadingRepo interface {
	SetLast(r models.SensorReading)
	Last() (models.SensorReading, bool)
}

// Store aggregates the repositories the services depend on. All
// implementations are in-memory: simulation history is not persisted.
type Store struct {
	Events   EventRepo
	Readings ReadingRepo
}

// New returns a Store backed by in-memory repositories.
func New() *Store {
	return &Store{
		Events:   newMemoryEvents(defaultEventCap),
		Readings: &memoryReadings{},
	}
}
