package transport

// Capabilities describes what a mirror backend guarantees.
type Capabilities struct {
	Name string

	// Durable backends keep mirrored events after the bot restarts.
	Durable bool

	// SupportsOrdering indicates events on one topic arrive in publish order.
	SupportsOrdering bool

	// SupportsTracing indicates metadata travels with the payload.
	SupportsTracing bool

	SupportsPartitioning bool

	// MaxMessageSize is the largest payload in bytes (0 = unlimited/unknown).
	MaxMessageSize int64
}

// Accepts reports whether a payload of size bytes fits the backend.
func (c Capabilities) Accepts(size int) bool {
	return c.MaxMessageSize <= 0 || int64(size) <= c.MaxMessageSize
}

var (
	ChannelCapabilities = Capabilities{
		Name:             "channel",
		SupportsOrdering: true,
	}

	KafkaCapabilities = Capabilities{
		Name:                 "kafka",
		Durable:              true,
		SupportsOrdering:     true,
		SupportsTracing:      true,
		SupportsPartitioning: true,
		MaxMessageSize:       1048576, // Default 1MB
	}

	RabbitMQCapabilities = Capabilities{
		Name:             "rabbitmq",
		Durable:          true,
		SupportsOrdering: true,
		SupportsTracing:  true,
	}

	NATSCapabilities = Capabilities{
		Name:            "nats",
		SupportsTracing: true,
		MaxMessageSize:  1048576, // Default 1MB
	}

	HTTPCapabilities = Capabilities{
		Name:            "http",
		SupportsTracing: true,
	}
)

// GetCapabilities returns the capabilities registered for a transport, or a
// zero value carrying only the name.
func GetCapabilities(transportName string) Capabilities {
	return DefaultRegistry.GetCapabilities(transportName)
}
