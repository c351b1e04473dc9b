package models

import "time"

// FilterMode selects the filtration program of the device.
type FilterMode string

const (
	ModeDrinkingWater  FilterMode = "drinking_water"
	ModeHouseholdWater FilterMode = "household_water"
)

// Default target volumes per mode, in liters.
const (
	drinkingTargetL  = 50.0
	householdTargetL = 75.0
)

// Valid reports whether m is a recognized filter mode.
func (m FilterMode) Valid() bool {
	return m == ModeDrinkingWater || m == ModeHouseholdWater
}

// DefaultTarget returns the default target volume for the mode in liters.
// Unknown modes fall back to the drinking water target.
func (m FilterMode) DefaultTarget() float64 {
	if m == ModeHouseholdWater {
		return householdTargetL
	}
	return drinkingTargetL
}

// DeviceState is the current snapshot of one simulated filtration device.
type DeviceState struct {
	DeviceID        string     `json:"device_id"`
	Mode            FilterMode `json:"mode"`                       // drinking_water | household_water
	Active          bool       `json:"active"`                     // a filtration run is in progress
	StartedAt       time.Time  `json:"started_at,omitempty"`       // set when a run starts
	TargetVolume    float64    `json:"target_volume"`              // liters
	ProcessedVolume float64    `json:"processed_volume"`           // liters, 0..TargetVolume
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Progress returns the processed/target ratio of the current run in [0, 1].
func (s DeviceState) Progress() float64 {
	if s.TargetVolume <= 0 {
		return 0
	}
	return s.ProcessedVolume / s.TargetVolume
}
