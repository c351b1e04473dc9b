package service

import (
	"context"
	"time"

	"aquasim/internal/logger"
	"aquasim/internal/metrics"
	"aquasim/internal/models"
	"aquasim/internal/store"
)

// TelemetryPublisher delivers sensor readings to the telemetry topic.
type TelemetryPublisher interface {
	PublishReading(r models.SensorReading) error
}

// SimulatorService runs the periodic telemetry loop: on every tick it
// generates a reading (which advances the filtration run) and hands it to
// the transport. Publication is fire-and-forget; delivery failures never
// roll back the tick.
type SimulatorService struct {
	sensors  *SensorModel
	readings store.ReadingRepo
	events   store.EventRepo
	pub      TelemetryPublisher
	log      *logger.Logger
}

func NewSimulatorService(sensors *SensorModel, readings store.ReadingRepo, events store.EventRepo, pub TelemetryPublisher, log *logger.Logger) *SimulatorService {
	return &SimulatorService{
		sensors:  sensors,
		readings: readings,
		events:   events,
		pub:      pub,
		log:      log,
	}
}

// Run publishes readings at the given interval until ctx is canceled.
// Cancellation between ticks abandons the pending tick; no partial tick is
// ever applied.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()

	s.log.Infow("telemetry loop started", "interval", tick)
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("telemetry loop stopped")
			return
		case <-t.C:
			s.publishOnce(ctx)
		}
	}
}

// publishOnce performs one tick: generate, record, publish.
func (s *SimulatorService) publishOnce(ctx context.Context) {
	reading, err := s.sensors.Generate(ctx)
	if err != nil {
		// A corrupt snapshot is an internal bug; abort this tick loudly
		// rather than publishing a normalized value.
		s.log.Errorw("tick aborted", "err", err)
		_ = s.events.Append(ctx, models.DeviceEvent{
			Type:        models.EventError,
			Description: err.Error(),
		})
		return
	}

	s.readings.SetLast(reading)
	if err := s.pub.PublishReading(reading); err != nil {
		// Delivery is the transport's problem; the tick already advanced.
		s.log.Errorw("reading publish failed", "err", err)
		return
	}
	metrics.ReadingsPublished.Inc()

	if reading.Progress != nil {
		s.log.Infow("published reading",
			"flow", reading.Flow,
			"progress", reading.Progress.Percent,
			"processed_volume", reading.Progress.ProcessedVolume,
			"target_volume", reading.Progress.TargetVolume)
	} else {
		s.log.Infow("published reading",
			"flow", reading.Flow,
			"ph", reading.Ph,
			"turbidity", reading.Turbidity,
			"tds", reading.TDS)
	}
}
