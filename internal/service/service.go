package service

import (
	"context"
	"time"

	"aquasim/internal/logger"
	"aquasim/internal/models"
	"aquasim/internal/store"
)

// Telemetry runs the periodic reading-publication loop.
type Telemetry interface {
	Run(ctx context.Context, tick time.Duration)
}

// Commands consumes inbound command payloads from the transport.
type Commands interface {
	HandleRaw(ctx context.Context, payload []byte)
}

// Monitoring exposes read-only device state for the status API.
type Monitoring interface {
	State(ctx context.Context) (models.DeviceState, error)
	LastReading(ctx context.Context) (models.SensorReading, bool)
}

// EventLog exposes the append-only device event history.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// Scenario replays a fixed step list through the live tick path.
type Scenario interface {
	Run(ctx context.Context, steps []ScenarioStep, interval time.Duration) error
}

// LogFilter bounds an event log query. Zero times mean unbounded; an empty
// type matches all event types.
type LogFilter struct {
	From time.Time
	To   time.Time
	Type string
}

// Service aggregates the sub-services around one shared FiltrationService.
type Service struct {
	Telemetry
	Commands
	Monitoring
	EventLog
	Scenario

	Filtration *FiltrationService
}

// Deps carries everything needed to assemble the service graph.
type Deps struct {
	DeviceID    string
	DefaultMode models.FilterMode
	SettleDelay time.Duration
	Seed        uint64 // 0 seeds the noise source from the clock

	Store     *store.Store
	Readings  TelemetryPublisher
	Responses ResponsePublisher
	Log       *logger.Logger
}

// NewService wires the sub-services together. The device starts idle; the
// caller kicks off the boot-time run via Filtration.Start.
func NewService(d Deps) *Service {
	proc := NewFiltrationService(d.DeviceID, d.DefaultMode, d.Store.Events, d.Log)
	sensors := NewSensorModel(proc, NewNoise(d.Seed))
	sim := NewSimulatorService(sensors, d.Store.Readings, d.Store.Events, d.Readings, d.Log)

	return &Service{
		Telemetry:  sim,
		Commands:   NewCommandService(proc, d.Store.Events, d.Responses, d.SettleDelay, d.Log),
		Monitoring: NewMonitoringService(proc, d.Store.Readings),
		EventLog:   NewEventLogService(d.Store.Events),
		Scenario:   NewScenarioRunner(proc, sim, d.Log),
		Filtration: proc,
	}
}
