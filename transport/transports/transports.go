// Package transports imports every built-in mirror transport so they
// register with the default registry.
package transports

import (
	_ "github.com/dayflower/hiptail-bot/transport/channel"
	_ "github.com/dayflower/hiptail-bot/transport/http"
	_ "github.com/dayflower/hiptail-bot/transport/kafka"
	_ "github.com/dayflower/hiptail-bot/transport/nats"
	_ "github.com/dayflower/hiptail-bot/transport/rabbitmq"
)
