package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflower/hiptail-bot/transport"
)

type mockConfig struct {
	brokers  []string
	clientID string
}

func (m *mockConfig) GetMirrorTransport() string  { return TransportName }
func (m *mockConfig) GetKafkaBrokers() []string   { return m.brokers }
func (m *mockConfig) GetKafkaClientID() string    { return m.clientID }
func (m *mockConfig) GetRabbitMQURL() string      { return "" }
func (m *mockConfig) GetNATSURL() string          { return "" }
func (m *mockConfig) GetHTTPPublisherURL() string { return "" }

type mockPublisher struct{}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error { return nil }
func (m *mockPublisher) Close() error                                             { return nil }

func TestRegister(t *testing.T) {
	transport.DefaultRegistry = transport.NewRegistry()
	Register()

	caps := transport.GetCapabilities(TransportName)
	assert.Equal(t, "kafka", caps.Name)
	assert.True(t, caps.Durable)
	assert.True(t, caps.SupportsPartitioning)
	assert.Equal(t, transport.KafkaCapabilities, Capabilities())
}

func TestBuild(t *testing.T) {
	t.Run("creates publisher with mocked factory", func(t *testing.T) {
		original := PublisherFactory
		defer func() { PublisherFactory = original }()

		mockPub := &mockPublisher{}
		PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
			require.NotNil(t, cfg.OverwriteSaramaConfig)
			assert.Equal(t, "hiptail", cfg.OverwriteSaramaConfig.ClientID)
			return mockPub, nil
		}

		tr, err := Build(context.Background(), &mockConfig{brokers: []string{"localhost:9092"}, clientID: "hiptail"}, watermill.NopLogger{})
		require.NoError(t, err)
		assert.Equal(t, mockPub, tr.Publisher)
		assert.Nil(t, tr.Subscriber)
	})

	t.Run("returns error when publisher factory fails", func(t *testing.T) {
		original := PublisherFactory
		defer func() { PublisherFactory = original }()

		PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			return nil, errors.New("publisher error")
		}

		_, err := Build(context.Background(), &mockConfig{brokers: []string{"localhost:9092"}}, watermill.NopLogger{})
		assert.EqualError(t, err, "publisher error")
	})

	t.Run("requires brokers", func(t *testing.T) {
		_, err := Build(context.Background(), &mockConfig{}, watermill.NopLogger{})
		assert.Error(t, err)
	})
}
