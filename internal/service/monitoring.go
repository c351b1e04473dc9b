package service

import (
	"context"

	"aquasim/internal/models"
	"aquasim/internal/store"
)

// MonitoringService exposes read-only views of the device for the status API.
type MonitoringService struct {
	proc     *FiltrationService
	readings store.ReadingRepo
}

func NewMonitoringService(proc *FiltrationService, readings store.ReadingRepo) *MonitoringService {
	return &MonitoringService{proc: proc, readings: readings}
}

// State returns the current device snapshot.
func (s *MonitoringService) State(_ context.Context) (models.DeviceState, error) {
	return s.proc.Snapshot(), nil
}

// LastReading returns the most recently published telemetry sample, if any.
func (s *MonitoringService) LastReading(_ context.Context) (models.SensorReading, bool) {
	return s.readings.Last()
}
