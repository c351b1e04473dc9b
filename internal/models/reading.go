package models

// SensorReading is one published telemetry sample. Values are rounded for
// presentation (flow/pH/turbidity to 2 decimals, TDS to 1); the simulation
// keeps full precision internally.
type SensorReading struct {
	Flow      float64 `json:"flow"`      // L/min
	Ph        float64 `json:"ph"`
	Turbidity float64 `json:"turbidity"` // NTU
	TDS       float64 `json:"tds"`       // ppm

	// Progress is attached only while a filtration run is active.
	Progress *FiltrationProgress `json:"_meta,omitempty"`
}

// FiltrationProgress describes how far the active run has come.
type FiltrationProgress struct {
	FiltrationActive bool    `json:"filtration_active"`
	ProcessedVolume  float64 `json:"processed_volume"` // liters
	TargetVolume     float64 `json:"target_volume"`    // liters
	Percent          float64 `json:"progress"`         // 0..100
	ElapsedMinutes   float64 `json:"elapsed_minutes"`
}
