package mqtt

import "errors"

// Sentinel errors returned by Client. Callers match them with errors.Is;
// the wrapped text carries the broker or timeout detail.
var (
	ErrNotConnected      = errors.New("mqtt: not connected to broker")
	ErrConnectionFailed  = errors.New("mqtt: connecting to broker failed")
	ErrPublishFailed     = errors.New("mqtt: publish failed")
	ErrSubscribeFailed   = errors.New("mqtt: subscribe failed")
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")
	ErrInvalidQoS        = errors.New("mqtt: QoS must be 0, 1 or 2")
	ErrInvalidTopic      = errors.New("mqtt: empty topic")

	// ErrPayloadTooLarge guards the broker against a whole converted table
	// being pushed as one message.
	ErrPayloadTooLarge = errors.New("mqtt: payload exceeds 1 MiB")
)
