package service

import (
	"context"
	"time"

	"aquasim/internal/logger"
	"aquasim/internal/models"
)

// ScenarioStep is one deterministic replay step: a run in the given mode
// with an explicit target volume, bounded by a wall-clock budget.
type ScenarioStep struct {
	Name         string
	Mode         models.FilterMode
	TargetVolume float64
	Budget       time.Duration
}

// DefaultScenarios is the fixed three-step replay list used by batch runs.
func DefaultScenarios() []ScenarioStep {
	return []ScenarioStep{
		{Name: "Quick Drinking Water Cycle", Mode: models.ModeDrinkingWater, TargetVolume: 20.0, Budget: 3 * time.Minute},
		{Name: "Household Water Full Cycle", Mode: models.ModeHouseholdWater, TargetVolume: 40.0, Budget: 5 * time.Minute},
		{Name: "High Volume Processing", Mode: models.ModeDrinkingWater, TargetVolume: 100.0, Budget: 8 * time.Minute},
	}
}

// ScenarioRunner replays scenario steps through the exact same tick path as
// live mode: Start with an override, then Generate-and-publish until the run
// completes or the step budget elapses.
type ScenarioRunner struct {
	proc *FiltrationService
	sim  *SimulatorService
	log  *logger.Logger
}

func NewScenarioRunner(proc *FiltrationService, sim *SimulatorService, log *logger.Logger) *ScenarioRunner {
	return &ScenarioRunner{proc: proc, sim: sim, log: log}
}

// Run replays the steps in order. Returns the context error if canceled
// mid-replay.
func (s *ScenarioRunner) Run(ctx context.Context, steps []ScenarioStep, interval time.Duration) error {
	for i, step := range steps {
		s.log.Infow("scenario step started",
			"step", i+1,
			"name", step.Name,
			"mode", step.Mode,
			"target_volume", step.TargetVolume,
			"budget", step.Budget)

		s.proc.Start(ctx, step.Mode, step.TargetVolume)
		if err := s.runStep(ctx, step, interval); err != nil {
			return err
		}

		final := s.proc.Snapshot()
		s.log.Infow("scenario step finished",
			"step", i+1,
			"processed_volume", final.ProcessedVolume,
			"completed", !final.Active)
	}
	return nil
}

func (s *ScenarioRunner) runStep(ctx context.Context, step ScenarioStep, interval time.Duration) error {
	budget := time.NewTimer(step.Budget)
	defer budget.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-budget.C:
			return nil
		case <-tick.C:
			s.sim.publishOnce(ctx)
			if !s.proc.Snapshot().Active {
				return nil
			}
		}
	}
}
