package mqtt

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"aquasim/internal/logger"
)

// CommandHandler consumes raw command payloads from the command topic.
type CommandHandler interface {
	HandleRaw(ctx context.Context, payload []byte)
}

// Subscriber routes inbound command messages to the handler.
type Subscriber struct {
	client  *Client
	topics  Topics
	handler CommandHandler
	log     *logger.Logger
}

func NewSubscriber(client *Client, topics Topics, handler CommandHandler, log *logger.Logger) *Subscriber {
	return &Subscriber{client: client, topics: topics, handler: handler, log: log}
}

// Subscribe attaches to the shared command topic. Handling runs off the
// paho callback goroutine so a mode-switch settle window never stalls the
// broker connection; the handler serializes commands itself.
func (s *Subscriber) Subscribe(ctx context.Context) error {
	topic := s.topics.FilterCommand()
	token := s.client.client.Subscribe(topic, publishQoS, func(_ mqtt.Client, msg mqtt.Message) {
		payload := make([]byte, len(msg.Payload()))
		copy(payload, msg.Payload())
		go s.handler.HandleRaw(ctx, payload)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}
	s.log.Infow("subscribed to command topic", "topic", topic)
	return nil
}
