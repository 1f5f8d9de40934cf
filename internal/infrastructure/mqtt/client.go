package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/config"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
)

// Client is the converter's broker connection.
//
// While connected it holds the retained status topic at "online"; the
// broker flips it to "offline" through the will if the process dies.
// Command subscriptions survive reconnects, and a panicking handler is
// logged instead of taking the process down.
type Client struct {
	client  pahomqtt.Client
	cfg     config.MQTTConfig
	logger  *logging.Logger
	version string

	mu            sync.RWMutex
	connected     bool
	subscriptions map[string]subscription
}

type subscription struct {
	qos     byte
	handler MessageHandler
}

// MessageHandler handles one inbound message. Paho calls it on its own
// goroutine. A returned error is logged; the message is acknowledged
// either way.
type MessageHandler func(topic string, payload []byte) error

// Connect dials the broker described by cfg and waits for the first
// connection. version is reported in every status message. A nil logger
// means logging.Default().
func Connect(cfg config.MQTTConfig, logger *logging.Logger, version string) (*Client, error) {
	c := newClient(cfg, logger, version)

	opts := buildClientOptions(cfg, c.statusPayload(StatusOffline, "unexpected_disconnect"))
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.onConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.onConnectionLost(err) })
	opts.SetReconnectingHandler(func(pahomqtt.Client, *pahomqtt.ClientOptions) {
		c.logger.Warn("MQTT reconnecting", "broker", brokerURL(cfg))
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: %s: timeout after %v", ErrConnectionFailed, brokerURL(cfg), defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, brokerURL(cfg), err)
	}

	// The OnConnect handler runs asynchronously; callers may publish
	// straight away.
	c.setConnected(true)
	return c, nil
}

func newClient(cfg config.MQTTConfig, logger *logging.Logger, version string) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		cfg:           cfg,
		logger:        logger.With("component", "mqtt"),
		version:       version,
		subscriptions: make(map[string]subscription),
	}
}

func (c *Client) onConnect() {
	c.setConnected(true)

	c.mu.RLock()
	subs := make(map[string]subscription, len(c.subscriptions))
	for topic, sub := range c.subscriptions {
		subs[topic] = sub
	}
	c.mu.RUnlock()

	for topic, sub := range subs {
		if err := wait(c.client.Subscribe(topic, sub.qos, c.dispatch(sub.handler)), ErrSubscribeFailed); err != nil {
			c.logger.Error("restoring subscription failed", "topic", topic, "error", err)
		}
	}

	if err := c.publishStatus(StatusOnline, ""); err != nil {
		c.logger.Warn("publishing online status failed", "error", err)
	}
}

func (c *Client) onConnectionLost(err error) {
	c.setConnected(false)
	c.logger.Warn("MQTT connection lost, conversion events are dropped until reconnect", "error", err)
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func (c *Client) publishStatus(state, reason string) error {
	token := c.client.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true, c.statusPayload(state, reason))
	return wait(token, ErrPublishFailed)
}

// Close marks the converter offline on the status topic and disconnects.
// Calling it again, or on a client that never connected, is a no-op.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		if err := c.publishStatus(StatusOffline, "graceful_shutdown"); err != nil {
			c.logger.Warn("publishing offline status failed", "error", err)
		}
	}
	// Also stops a reconnect loop that is still running.
	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setConnected(false)
	return nil
}

// HealthCheck reports ErrNotConnected while the broker is unreachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether the client is currently connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// dispatch adapts a MessageHandler to paho, logging handler errors and
// recovering panics.
func (c *Client) dispatch(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("MQTT handler panicked", "topic", msg.Topic(), "panic", r)
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.logger.Warn("MQTT handler failed", "topic", msg.Topic(), "error", err)
		}
	}
}

// wait blocks on token for at most defaultOperationTimeout and wraps any
// failure in failed.
func wait(token pahomqtt.Token, failed error) error {
	if !token.WaitTimeout(defaultOperationTimeout) {
		return fmt.Errorf("%w: timeout after %v", failed, defaultOperationTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", failed, err)
	}
	return nil
}
