package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aquasim/internal/models"
)

func newTestSimulator(pub *publisherStub) (*SimulatorService, *FiltrationService, *eventRepoStub, *readingRepoStub) {
	proc, events := newTestProc(models.ModeDrinkingWater)
	readings := &readingRepoStub{}
	sensors := NewSensorModel(proc, zeroNoise{})
	sim := NewSimulatorService(sensors, readings, events, pub, testLogger())
	return sim, proc, events, readings
}

func TestPublishOnce_RecordsAndPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &publisherStub{}
	sim, proc, _, readings := newTestSimulator(pub)
	proc.Start(ctx, models.ModeDrinkingWater, 20.0)

	sim.publishOnce(ctx)

	last, ok := readings.Last()
	if !ok {
		t.Fatalf("expected last reading recorded")
	}
	if last.Flow != 2.5 {
		t.Fatalf("got flow %.2f, want 2.50", last.Flow)
	}
	if len(pub.readings) != 1 {
		t.Fatalf("got %d published readings, want 1", len(pub.readings))
	}
}

func TestPublishOnce_PublishFailureDoesNotRollBackTick(t *testing.T) {
	ctx := context.Background()
	pub := &publisherStub{err: errors.New("broker gone")}
	sim, proc, events, readings := newTestSimulator(pub)
	proc.Start(ctx, models.ModeDrinkingWater, 20.0)

	sim.publishOnce(ctx)

	if _, ok := readings.Last(); !ok {
		t.Fatalf("expected last reading recorded despite publish failure")
	}
	if st := proc.Snapshot(); st.ProcessedVolume == 0 {
		t.Fatalf("expected the tick to advance despite publish failure")
	}
	if got := len(events.byType(models.EventError)); got != 0 {
		t.Fatalf("publish failure appended %d ERROR events", got)
	}
}

func TestPublishOnce_CorruptStateAppendsErrorEvent(t *testing.T) {
	ctx := context.Background()
	pub := &publisherStub{}
	sim, proc, events, readings := newTestSimulator(pub)

	proc.mu.Lock()
	proc.state.Active = true
	proc.state.TargetVolume = 0
	proc.mu.Unlock()

	sim.publishOnce(ctx)

	if _, ok := readings.Last(); ok {
		t.Fatalf("aborted tick still recorded a reading")
	}
	if len(pub.readings) != 0 {
		t.Fatalf("aborted tick still published %d readings", len(pub.readings))
	}
	if got := len(events.byType(models.EventError)); got != 1 {
		t.Fatalf("expected 1 ERROR event, got %d", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	pub := &publisherStub{}
	sim, proc, _, _ := newTestSimulator(pub)
	proc.Start(context.Background(), models.ModeDrinkingWater, 1000.0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("telemetry loop did not stop after cancel")
	}
	if st := proc.Snapshot(); st.ProcessedVolume == 0 {
		t.Fatalf("telemetry loop never ticked")
	}
}
