package models

import "time"

// Device event types.
const (
	EventStart      = "START"
	EventModeChange = "MODE_CHANGE"
	EventCompleted  = "COMPLETED"
	EventError      = "ERROR"
)

// DeviceEvent is a single entry in the device event log.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | MODE_CHANGE | COMPLETED | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
