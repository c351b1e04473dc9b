package mqtt

import (
	"encoding/json"
	"fmt"

	"aquasim/internal/logger"
	"aquasim/internal/models"
)

// publishQoS: at-least-once. Duplicate delivery is harmless downstream
// because state advances once per tick, not per delivery.
const publishQoS = 1

// Publisher sends telemetry and command responses for one device.
type Publisher struct {
	client *Client
	topics Topics
	log    *logger.Logger
}

func NewPublisher(client *Client, topics Topics, log *logger.Logger) *Publisher {
	return &Publisher{client: client, topics: topics, log: log}
}

// PublishReading sends one sensor reading to the telemetry topic.
func (p *Publisher) PublishReading(r models.SensorReading) error {
	return p.publishJSON(p.topics.SensorData(), r)
}

// PublishResponse sends one command response to the device response topic.
func (p *Publisher) PublishResponse(resp models.CommandResponse) error {
	return p.publishJSON(p.topics.CommandResponse(), resp)
}

func (p *Publisher) publishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}
	token := p.client.client.Publish(topic, publishQoS, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	return nil
}
