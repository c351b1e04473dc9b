package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"aquasim/internal/models"
)

// Sensor baselines and response curves of the simulated device.
const (
	baseFlowRate  = 2.5   // L/min with a fresh filter
	baseTurbidity = 1.2   // NTU at the inlet
	baseTDS       = 280.0 // ppm at the inlet

	flowDegradation = 0.3 // flow loss at full filter load
	turbidityGain   = 0.7 // turbidity improvement at end of run
	tdsGain         = 0.4 // TDS improvement at end of run

	minActiveFlow = 0.5 // L/min residual trickle while active
	idleFlowMax   = 0.1 // L/min upper bound while idle

	// readingMinutes is how much simulated filtration time one reading
	// covers. The same flow sample that goes into the reading advances
	// the processed volume by flow*readingMinutes.
	readingMinutes = 0.5
)

// Noise is a bounded randomness source. Injectable so tests can run with a
// fixed seed or no noise at all.
type Noise interface {
	// Uniform returns a value drawn uniformly from [lo, hi).
	Uniform(lo, hi float64) float64
}

type randomNoise struct {
	r *rand.Rand
}

// NewNoise returns a seedable noise source. Seed 0 seeds from the clock.
func NewNoise(seed uint64) Noise {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &randomNoise{r: rand.New(rand.NewSource(int64(seed)))}
}

func (n *randomNoise) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*n.r.Float64()
}

// SensorModel derives sensor readings from the current filtration state.
type SensorModel struct {
	proc  *FiltrationService
	noise Noise

	baseFlow      float64
	baseTurbidity float64
	baseTDS       float64
	tickMinutes   float64
}

// NewSensorModel returns a model with the reference device baselines.
func NewSensorModel(proc *FiltrationService, noise Noise) *SensorModel {
	return &SensorModel{
		proc:          proc,
		noise:         noise,
		baseFlow:      baseFlowRate,
		baseTurbidity: baseTurbidity,
		baseTDS:       baseTDS,
		tickMinutes:   readingMinutes,
	}
}

// Generate produces one reading and, while a run is active, advances the
// processed volume by the same unrounded flow sample. Read, compute and
// tick happen under a single lock acquisition so the published flow and
// the progress increment always agree.
func (m *SensorModel) Generate(ctx context.Context) (models.SensorReading, error) {
	now := time.Now().UTC()
	p := m.proc
	p.mu.Lock()

	st := p.state
	var flow float64
	completed := false
	if st.Active {
		if st.TargetVolume <= 0 || st.ProcessedVolume > st.TargetVolume {
			p.mu.Unlock()
			return models.SensorReading{}, fmt.Errorf("%w: processed %.3f L of %.3f L",
				ErrStateCorrupt, st.ProcessedVolume, st.TargetVolume)
		}
		// Flow degrades as the filter loads, floored at a residual trickle.
		r := st.ProcessedVolume / st.TargetVolume
		flow = m.baseFlow*(1-flowDegradation*r) + m.noise.Uniform(-0.2, 0.2)
		if flow < minActiveFlow {
			flow = minActiveFlow
		}
		completed = p.tickLocked(flow*m.tickMinutes, now)
	} else {
		flow = m.noise.Uniform(0, idleFlowMax)
	}

	// pH: one draw for the mode's target band, a second for reading noise.
	var phTarget float64
	if st.Mode == models.ModeHouseholdWater {
		phTarget = 7.5 + m.noise.Uniform(-0.5, 0.5)
	} else {
		phTarget = 7.0 + m.noise.Uniform(-0.3, 0.3)
	}
	ph := phTarget + m.noise.Uniform(-0.1, 0.1)

	// Turbidity and TDS follow the post-tick state: a run that completed
	// on this tick already reads as idle.
	cur := p.state
	var turbidity, tds float64
	if cur.Active {
		r := cur.Progress()
		turbidity = m.baseTurbidity*(1-turbidityGain*r) + m.noise.Uniform(-0.1, 0.1)
		tds = m.baseTDS*(1-tdsGain*r) + m.noise.Uniform(-10, 10)
	} else {
		turbidity = m.baseTurbidity + m.noise.Uniform(-0.2, 0.2)
		tds = m.baseTDS + m.noise.Uniform(-15, 15)
	}

	reading := models.SensorReading{
		Flow:      max(0, round2(flow)),
		Ph:        round2(ph),
		Turbidity: max(0, round2(turbidity)),
		TDS:       max(0, round1(tds)),
	}
	if cur.Active {
		reading.Progress = &models.FiltrationProgress{
			FiltrationActive: true,
			ProcessedVolume:  round2(cur.ProcessedVolume),
			TargetVolume:     cur.TargetVolume,
			Percent:          round1(cur.Progress() * 100),
			ElapsedMinutes:   round1(now.Sub(cur.StartedAt).Minutes()),
		}
	}
	p.mu.Unlock()

	if completed {
		p.log.Infow("filtration completed", "mode", st.Mode, "target_volume", st.TargetVolume)
		_ = p.events.Append(ctx, models.DeviceEvent{
			Type:        models.EventCompleted,
			OccurredAt:  now,
			Description: "Filtration run completed",
			Metadata: map[string]any{
				"mode":             string(st.Mode),
				"processed_volume": st.TargetVolume,
			},
		})
	}
	return reading, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
