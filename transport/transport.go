// Package transport builds the watermill publishers dispatched events are
// mirrored to. Each backend lives in its own sub-package and registers
// itself with the registry.
package transport

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Transport is what a builder produces. Subscriber is only set by backends
// that can read their own output in-process (the channel transport).
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Close releases the publisher and, when distinct, the subscriber.
func (t Transport) Close() error {
	var err error
	if t.Publisher != nil {
		err = t.Publisher.Close()
	}
	if t.Subscriber != nil && any(t.Subscriber) != any(t.Publisher) {
		if subErr := t.Subscriber.Close(); err == nil {
			err = subErr
		}
	}
	return err
}

// Builder creates a transport from config.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error)

// Config provides the values transports need without depending on the full
// config package.
type Config interface {
	// GetMirrorTransport returns the transport name.
	GetMirrorTransport() string

	// Kafka
	GetKafkaBrokers() []string
	GetKafkaClientID() string

	// RabbitMQ
	GetRabbitMQURL() string

	// NATS
	GetNATSURL() string

	// HTTP
	GetHTTPPublisherURL() string
}
