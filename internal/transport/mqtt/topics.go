package mqtt

import "fmt"

// DefaultNamespace is the topic namespace the reference deployment uses.
const DefaultNamespace = "aquasmart"

// Topics builds the topic names for one device within a namespace.
type Topics struct {
	namespace string
	deviceID  string
}

func NewTopics(namespace, deviceID string) Topics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Topics{namespace: namespace, deviceID: deviceID}
}

// SensorData is the telemetry publish topic: <ns>/sensors/<device>/data.
func (t Topics) SensorData() string {
	return fmt.Sprintf("%s/sensors/%s/data", t.namespace, t.deviceID)
}

// FilterCommand is the shared command subscribe topic: <ns>/commands/filter.
func (t Topics) FilterCommand() string {
	return fmt.Sprintf("%s/commands/filter", t.namespace)
}

// CommandResponse is the per-device response publish topic:
// <ns>/commands/<device>/response.
func (t Topics) CommandResponse() string {
	return fmt.Sprintf("%s/commands/%s/response", t.namespace, t.deviceID)
}
