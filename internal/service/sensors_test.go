package service

import (
	"context"
	"errors"
	"testing"

	"aquasim/internal/models"
)

func newTestModel(mode models.FilterMode, noise Noise) (*SensorModel, *FiltrationService, *eventRepoStub) {
	proc, events := newTestProc(mode)
	return NewSensorModel(proc, noise), proc, events
}

func TestGenerate_ActiveFlowStartsAtBaseAndDegrades(t *testing.T) {
	ctx := context.Background()
	m, proc, _ := newTestModel(models.ModeDrinkingWater, zeroNoise{})
	proc.Start(ctx, models.ModeDrinkingWater, 20.0)

	first, err := m.Generate(ctx)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first.Flow != 2.5 {
		t.Fatalf("first flow: got %.2f, want 2.50", first.Flow)
	}
	if first.Progress == nil {
		t.Fatalf("expected progress metadata while active")
	}
	if first.Progress.ProcessedVolume != 1.25 {
		t.Fatalf("first tick processed: got %.2f, want 1.25", first.Progress.ProcessedVolume)
	}
	if first.Progress.TargetVolume != 20.0 {
		t.Fatalf("target in metadata: got %.1f, want 20.0", first.Progress.TargetVolume)
	}

	prev := first.Flow
	for proc.Snapshot().Active {
		reading, err := m.Generate(ctx)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if reading.Flow > prev {
			t.Fatalf("flow increased %.2f -> %.2f with zero noise", prev, reading.Flow)
		}
		prev = reading.Flow
	}
	if prev < 1.75 {
		t.Fatalf("final active flow %.2f below the degradation floor 1.75", prev)
	}
}

func TestGenerate_CompletesAfterSimulatedRecurrence(t *testing.T) {
	// 20 L at 2.5 L/min base flow, 0.5 min per reading, 30% degradation:
	// the recurrence needs 19 readings, not the 16 a linear estimate gives.
	ctx := context.Background()
	m, proc, events := newTestModel(models.ModeDrinkingWater, zeroNoise{})
	proc.Start(ctx, models.ModeDrinkingWater, 20.0)

	ticks := 0
	for proc.Snapshot().Active {
		if _, err := m.Generate(ctx); err != nil {
			t.Fatalf("generate: %v", err)
		}
		ticks++
		if ticks > 100 {
			t.Fatalf("run did not complete")
		}
	}

	if ticks != 19 {
		t.Fatalf("got %d ticks to completion, want 19", ticks)
	}
	st := proc.Snapshot()
	if st.ProcessedVolume != st.TargetVolume {
		t.Fatalf("expected exact clamp, processed %.6f of %.6f", st.ProcessedVolume, st.TargetVolume)
	}
	if got := len(events.byType(models.EventCompleted)); got != 1 {
		t.Fatalf("expected 1 COMPLETED event, got %d", got)
	}
}

func TestGenerate_CompletingReadingDropsProgress(t *testing.T) {
	ctx := context.Background()
	m, proc, _ := newTestModel(models.ModeDrinkingWater, zeroNoise{})
	proc.Start(ctx, models.ModeDrinkingWater, 1.0)

	reading, err := m.Generate(ctx)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if proc.Snapshot().Active {
		t.Fatalf("expected completion on first reading")
	}
	// The run ended on this tick, so the reading already reports idle.
	if reading.Progress != nil {
		t.Fatalf("expected no progress metadata on the completing reading")
	}
}

func TestGenerate_IdleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m, proc, _ := newTestModel(models.ModeDrinkingWater, zeroNoise{})
	proc.Start(ctx, models.ModeDrinkingWater, 1.0)
	if _, err := m.Generate(ctx); err != nil {
		t.Fatalf("generate: %v", err)
	}

	for i := 0; i < 5; i++ {
		reading, err := m.Generate(ctx)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		st := proc.Snapshot()
		if st.Active || st.ProcessedVolume != st.TargetVolume {
			t.Fatalf("idle generate mutated state: %+v", st)
		}
		if reading.Flow < 0 || reading.Flow > 0.1 {
			t.Fatalf("idle flow %.2f outside [0, 0.1]", reading.Flow)
		}
		if reading.Progress != nil {
			t.Fatalf("unexpected progress metadata while idle")
		}
	}
}

func TestGenerate_PhBandsByMode(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		mode   models.FilterMode
		wantPh float64
	}{
		{models.ModeDrinkingWater, 7.0},
		{models.ModeHouseholdWater, 7.5},
	}

	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			m, proc, _ := newTestModel(tc.mode, zeroNoise{})
			proc.Start(ctx, tc.mode, 0)
			reading, err := m.Generate(ctx)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if reading.Ph != tc.wantPh {
				t.Fatalf("got pH %.2f, want %.2f with zero noise", reading.Ph, tc.wantPh)
			}
		})
	}
}

func TestGenerate_BoundsWithSeededNoise(t *testing.T) {
	ctx := context.Background()
	m, proc, _ := newTestModel(models.ModeHouseholdWater, NewNoise(42))
	proc.Start(ctx, models.ModeHouseholdWater, 40.0)

	for i := 0; i < 300; i++ {
		activeBefore := proc.Snapshot().Active
		reading, err := m.Generate(ctx)
		if err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
		if activeBefore && reading.Flow < 0.5 {
			t.Fatalf("reading %d: active flow %.2f below floor", i, reading.Flow)
		}
		if !activeBefore && reading.Flow > 0.1 {
			t.Fatalf("reading %d: idle flow %.2f above 0.1", i, reading.Flow)
		}
		if reading.Turbidity < 0 {
			t.Fatalf("reading %d: negative turbidity %.2f", i, reading.Turbidity)
		}
		if reading.TDS < 0 {
			t.Fatalf("reading %d: negative TDS %.1f", i, reading.TDS)
		}
	}
}

func TestGenerate_CorruptStateAbortsTick(t *testing.T) {
	ctx := context.Background()
	m, proc, _ := newTestModel(models.ModeDrinkingWater, zeroNoise{})

	proc.mu.Lock()
	proc.state.Active = true
	proc.state.TargetVolume = 0
	proc.mu.Unlock()

	if _, err := m.Generate(ctx); !errors.Is(err, ErrStateCorrupt) {
		t.Fatalf("got err %v, want ErrStateCorrupt", err)
	}
}
