package service

import (
	"context"
	"sync"
	"time"

	"aquasim/internal/logger"
	"aquasim/internal/models"
)

// Shared test doubles for the service package.

// zeroNoise removes randomness entirely: symmetric bands draw 0, one-sided
// bands draw their lower bound.
type zeroNoise struct{}

func (zeroNoise) Uniform(lo, hi float64) float64 {
	if lo < 0 && hi > 0 {
		return 0
	}
	return lo
}

// eventRepoStub records appended events in memory.
type eventRepoStub struct {
	mu      sync.Mutex
	appends []models.DeviceEvent
}

func (e *eventRepoStub) Append(_ context.Context, ev models.DeviceEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.appends = append(e.appends, ev)
	return nil
}

func (e *eventRepoStub) List(_ context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []models.DeviceEvent
	for _, ev := range e.appends {
		if typ != "" && ev.Type != typ {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (e *eventRepoStub) byType(typ string) []models.DeviceEvent {
	out, _ := e.List(context.Background(), time.Time{}, time.Time{}, typ)
	return out
}

// readingRepoStub records the last reading set.
type readingRepoStub struct {
	mu   sync.Mutex
	last models.SensorReading
	set  bool
}

func (r *readingRepoStub) SetLast(reading models.SensorReading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = reading
	r.set = true
}

func (r *readingRepoStub) Last() (models.SensorReading, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.set
}

// publisherStub captures published readings and responses; it can be told
// to fail.
type publisherStub struct {
	mu        sync.Mutex
	readings  []models.SensorReading
	responses []models.CommandResponse
	err       error
}

func (p *publisherStub) PublishReading(r models.SensorReading) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.readings = append(p.readings, r)
	return nil
}

func (p *publisherStub) PublishResponse(resp models.CommandResponse) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.responses = append(p.responses, resp)
	return nil
}

func (p *publisherStub) responseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.responses)
}

func (p *publisherStub) responseStatuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.responses))
	for i, r := range p.responses {
		out[i] = r.Status
	}
	return out
}

func testLogger() *logger.Logger {
	return logger.Get(logger.ErrorLevel)
}

// newTestProc returns a filtration service with stub dependencies.
func newTestProc(mode models.FilterMode) (*FiltrationService, *eventRepoStub) {
	events := &eventRepoStub{}
	proc := NewFiltrationService("test_device_001", mode, events, testLogger())
	return proc, events
}
