package mqtt

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"aquasim/internal/logger"
)

// ClientConfig holds broker connection settings.
type ClientConfig struct {
	BrokerURL string // tcp://host:port or ssl://host:port
	ClientID  string
	Username  string
	Password  string
}

// Client manages the broker connection. Publishing and subscribing live in
// Publisher and Subscriber; the core never sees this type.
type Client struct {
	client mqtt.Client
	log    *logger.Logger
}

// NewClient connects to the broker. Reconnection after a dropped link is
// handled by paho; the simulator keeps ticking through outages.
func NewClient(cfg ClientConfig, log *logger.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(30 * time.Second)
	opts.SetWriteTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Infow("mqtt connected", "broker", cfg.BrokerURL)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Errorw("mqtt connection lost, reconnecting", "err", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.BrokerURL, token.Error())
	}

	return &Client{client: client, log: log}, nil
}

// IsConnected reports whether the broker link is currently up.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (c *Client) Close() {
	c.client.Disconnect(250)
	c.log.Infow("mqtt disconnected")
}
