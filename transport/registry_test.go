package transport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfig struct {
	mirrorTransport string
}

func (m *mockConfig) GetMirrorTransport() string  { return m.mirrorTransport }
func (m *mockConfig) GetKafkaBrokers() []string   { return nil }
func (m *mockConfig) GetKafkaClientID() string    { return "" }
func (m *mockConfig) GetRabbitMQURL() string      { return "" }
func (m *mockConfig) GetNATSURL() string          { return "" }
func (m *mockConfig) GetHTTPPublisherURL() string { return "" }

type mockPublisher struct {
	closed bool
}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	return nil
}

func (m *mockPublisher) Close() error {
	m.closed = true
	return nil
}

type mockSubscriber struct {
	closed bool
}

func (m *mockSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (m *mockSubscriber) Close() error {
	m.closed = true
	return nil
}

func okBuilder(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error) {
	return Transport{Publisher: &mockPublisher{}}, nil
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.NotNil(t, reg)
	assert.Empty(t, reg.Names())
}

func TestRegistry_RegisterWithCapabilities(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterWithCapabilities("test-transport", okBuilder, Capabilities{Name: "test-transport", Durable: true})

	assert.True(t, reg.Has("test-transport"))
	caps := reg.GetCapabilities("test-transport")
	assert.Equal(t, "test-transport", caps.Name)
	assert.True(t, caps.Durable)
}

func TestRegistry_GetCapabilities_Unknown(t *testing.T) {
	caps := NewRegistry().GetCapabilities("unknown")
	assert.Equal(t, "unknown", caps.Name)
	assert.False(t, caps.Durable)
}

func TestRegistry_Build(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test-transport", okBuilder)

	tr, err := reg.Build(context.Background(), &mockConfig{mirrorTransport: "Test-Transport"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, tr.Publisher)
	assert.Nil(t, tr.Subscriber)
}

func TestRegistry_BuildErrors(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Build(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrMirrorConfigRequired)

	reg.Register("channel", okBuilder)
	_, err = reg.Build(context.Background(), &mockConfig{mirrorTransport: "nope"}, nil)
	assert.ErrorIs(t, err, ErrUnknownTransport)
	assert.ErrorContains(t, err, "linked in: channel")

	expected := errors.New("builder error")
	reg.Register("failing", func(context.Context, Config, watermill.LoggerAdapter) (Transport, error) {
		return Transport{}, expected
	})
	_, err = reg.Build(context.Background(), &mockConfig{mirrorTransport: "failing"}, nil)
	assert.Equal(t, expected, err)
}

func TestRegistry_NamesAreCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterWithCapabilities(" Kafka", okBuilder, Capabilities{Name: "kafka", MaxMessageSize: 1 << 20})

	assert.True(t, reg.Has("KAFKA"))
	assert.Equal(t, int64(1<<20), reg.GetCapabilities("kafka ").MaxMessageSize)
	assert.Equal(t, "unknown", reg.GetCapabilities("Unknown").Name)
	assert.Equal(t, []string{"kafka"}, reg.Names())
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register("nats", okBuilder)
	reg.Register("channel", okBuilder)
	reg.Register("kafka", okBuilder)
	assert.Equal(t, []string{"channel", "kafka", "nats"}, reg.Names())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Register("transport", okBuilder)
				reg.Has("transport")
				reg.Names()
				reg.GetCapabilities("transport")
			}
		}()
	}
	wg.Wait()
	assert.True(t, reg.Has("transport"))
}

func TestPackageLevelRegisterWithCapabilities(t *testing.T) {
	RegisterWithCapabilities("test-pkg-caps-transport", okBuilder, Capabilities{Name: "test-pkg-caps-transport", SupportsOrdering: true})

	assert.True(t, DefaultRegistry.Has("test-pkg-caps-transport"))
	assert.True(t, GetCapabilities("test-pkg-caps-transport").SupportsOrdering)

	_, err := Build(context.Background(), &mockConfig{mirrorTransport: "nonexistent"}, nil)
	assert.Error(t, err)
}

func TestCapabilitiesAccepts(t *testing.T) {
	assert.True(t, ChannelCapabilities.Accepts(10<<20))
	assert.True(t, KafkaCapabilities.Accepts(1024))
	assert.False(t, KafkaCapabilities.Accepts(2<<20))
}

func TestTransportClose(t *testing.T) {
	pub := &mockPublisher{}
	sub := &mockSubscriber{}
	require.NoError(t, Transport{Publisher: pub, Subscriber: sub}.Close())
	assert.True(t, pub.closed)
	assert.True(t, sub.closed)

	assert.NoError(t, Transport{}.Close())
}
