package models

// Known inbound commands. Unrecognized commands are dropped silently so the
// topic can be shared with future command types.
const (
	CommandSetFilterMode = "set_filter_mode"
)

// Command response statuses.
const (
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusError      = "error"
)

// CommandMessage is an inbound command received from the command topic.
type CommandMessage struct {
	Command string `json:"command"`
	Mode    string `json:"mode"`
}

// CommandResponse is published on the device response topic while a command
// is being applied. One command yields either a single error response or a
// processing response followed by a success response, in that order.
type CommandResponse struct {
	Command   string `json:"command"`
	Status    string `json:"status"` // processing | success | error
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"` // RFC 3339
}
