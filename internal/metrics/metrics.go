// Package metrics defines the prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReadingsPublished counts sensor readings delivered to the transport.
	ReadingsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aquasim_readings_published_total",
		Help: "Number of sensor readings published to the telemetry topic.",
	})

	// CommandsHandled counts inbound commands by outcome
	// (success, error, dropped).
	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aquasim_commands_handled_total",
		Help: "Number of inbound filter commands handled, by outcome.",
	}, []string{"status"})
)
