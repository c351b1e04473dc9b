package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"aquasim/internal/logger"
	"aquasim/internal/models"
	"aquasim/internal/store"
)

// ErrStateCorrupt signals an impossible filtration snapshot (processed volume
// past the target, or an active run without a target). It is unreachable from
// valid input; a tick that detects it must abort instead of normalizing.
var ErrStateCorrupt = errors.New("filtration state corrupt")

// FiltrationService owns the mutable state of one simulated device. All
// reads and mutations go through its mutex; the telemetry tick and the
// command path never see a half-updated snapshot.
type FiltrationService struct {
	mu     sync.Mutex
	state  models.DeviceState
	events store.EventRepo
	log    *logger.Logger
}

// NewFiltrationService returns an idle device in the given default mode.
// The first run is started explicitly by the caller (the device auto-starts
// a run at boot, mirroring the real hardware).
func NewFiltrationService(deviceID string, mode models.FilterMode, events store.EventRepo, log *logger.Logger) *FiltrationService {
	return &FiltrationService{
		state: models.DeviceState{
			DeviceID:  deviceID,
			Mode:      mode,
			UpdatedAt: time.Now().UTC(),
		},
		events: events,
		log:    log,
	}
}

// Start begins a new filtration run in the given mode, resetting progress.
// A targetOverride > 0 replaces the mode's default target volume; scenario
// replay uses this, live commands never do. Valid from any state.
func (s *FiltrationService) Start(ctx context.Context, mode models.FilterMode, targetOverride float64) models.DeviceState {
	now := time.Now().UTC()
	target := mode.DefaultTarget()
	if targetOverride > 0 {
		target = targetOverride
	}

	s.mu.Lock()
	s.state.Mode = mode
	s.state.Active = true
	s.state.StartedAt = now
	s.state.TargetVolume = target
	s.state.ProcessedVolume = 0
	s.state.UpdatedAt = now
	st := s.state
	s.mu.Unlock()

	s.log.Infow("filtration started", "mode", mode, "target_volume", st.TargetVolume)
	_ = s.events.Append(ctx, models.DeviceEvent{
		Type:        models.EventStart,
		OccurredAt:  now,
		Description: "Filtration run started",
		Metadata: map[string]any{
			"mode":          string(mode),
			"target_volume": st.TargetVolume,
		},
	})
	return st
}

// Tick advances the active run by flowRate L/min over elapsedMinutes,
// clamping to the target volume. Returns the post-tick snapshot and whether
// the run completed on this tick. A tick while idle is a no-op.
func (s *FiltrationService) Tick(elapsedMinutes, flowRate float64) (models.DeviceState, bool) {
	now := time.Now().UTC()
	s.mu.Lock()
	completed := s.tickLocked(flowRate*elapsedMinutes, now)
	st := s.state
	s.mu.Unlock()
	return st, completed
}

// Snapshot returns a copy of the current device state.
func (s *FiltrationService) Snapshot() models.DeviceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// tickLocked applies addedVolume liters to the active run. Caller holds s.mu.
func (s *FiltrationService) tickLocked(addedVolume float64, now time.Time) bool {
	if !s.state.Active {
		return false
	}
	s.state.ProcessedVolume += addedVolume
	s.state.UpdatedAt = now
	if s.state.ProcessedVolume >= s.state.TargetVolume {
		s.state.ProcessedVolume = s.state.TargetVolume
		s.state.Active = false
		return true
	}
	return false
}
