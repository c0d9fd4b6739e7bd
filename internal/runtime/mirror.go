package runtime

import (
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	"github.com/dayflower/hiptail-bot/internal/runtime/ids"
	"github.com/dayflower/hiptail-bot/internal/runtime/jsoncodec"
	loggingpkg "github.com/dayflower/hiptail-bot/internal/runtime/logging"
	metadatapkg "github.com/dayflower/hiptail-bot/internal/runtime/metadata"
	"github.com/dayflower/hiptail-bot/internal/runtime/web"
	"github.com/dayflower/hiptail-bot/transport"
)

// MirrorEnvelope is the payload published for each mirrored dispatch.
type MirrorEnvelope struct {
	ID             string    `json:"id"`
	Key            HookKey   `json:"key"`
	OccurredAt     time.Time `json:"occurred_at"`
	Event          any       `json:"event"`
	ResultDeclined bool      `json:"result_declined"`
}

// Mirror publishes successful dispatches to a watermill publisher.
// Publishing failures are logged and never reach the dispatch caller.
type Mirror struct {
	publisher message.Publisher
	topic     string
	caps      transport.Capabilities
	logger    loggingpkg.ServiceLogger
}

// NewMirror validates its collaborators. caps is used to drop envelopes the
// backend would reject anyway.
func NewMirror(publisher message.Publisher, topic string, caps transport.Capabilities, logger loggingpkg.ServiceLogger) (*Mirror, error) {
	if publisher == nil {
		return nil, errspkg.ErrPublisherRequired
	}
	if topic == "" {
		return nil, errspkg.ErrTopicRequired
	}
	if logger == nil {
		logger = loggingpkg.NewNopLogger()
	}
	return &Mirror{
		publisher: publisher,
		topic:     topic,
		caps:      caps,
		logger:    logger.With(loggingpkg.LogFields{"component": "mirror", "topic": topic}),
	}, nil
}

// Hooks returns the dispatch hooks that feed the mirror.
func (m *Mirror) Hooks() DispatchHooks {
	return DispatchHooks{OnDispatchDone: m.publish}
}

func (m *Mirror) publish(info DispatchInfo) {
	if info.Key == HookSetup || info.Key == HookAuthorityProvider {
		return
	}

	event := info.Event
	if auth, ok := event.(hipchat.Authority); ok {
		auth.OAuthSecret = ""
		event = auth
	}

	envelope := MirrorEnvelope{
		ID:             ids.CreateULIDAt(info.StartedAt),
		Key:            info.Key,
		OccurredAt:     info.StartedAt.UTC(),
		Event:          event,
		ResultDeclined: info.Declined,
	}
	payload, err := jsoncodec.Marshal(envelope)
	if err != nil {
		m.logger.Error("Failed to encode mirrored event", err, loggingpkg.LogFields{"hook": info.Key})
		return
	}
	if !m.caps.Accepts(len(payload)) {
		m.logger.Info("Mirrored event exceeds transport limit, dropping", loggingpkg.LogFields{
			"hook":      info.Key,
			"size":      len(payload),
			"limit":     m.caps.MaxMessageSize,
			"transport": m.caps.Name,
		})
		return
	}

	msg := message.NewMessage(envelope.ID, payload)
	msg.Metadata = metadatapkg.ToWatermill(mirrorMetadata(info))
	if info.Context != nil {
		msg.SetContext(info.Context)
	}
	if err := m.publisher.Publish(m.topic, msg); err != nil {
		m.logger.Error("Failed to mirror event", err, loggingpkg.LogFields{
			"hook":     info.Key,
			"event_id": envelope.ID,
		})
	}
}

func mirrorMetadata(info DispatchInfo) metadatapkg.Metadata {
	md := metadatapkg.New(metadatapkg.KeyHook, info.Key.String())
	if info.Context != nil {
		if id := web.RequestIDFromContext(info.Context); id != "" {
			md[metadatapkg.KeyRequestID] = id
		}
		if sc := trace.SpanContextFromContext(info.Context); sc.HasTraceID() {
			md[metadatapkg.KeyTraceID] = sc.TraceID().String()
		}
	}
	switch ev := info.Event.(type) {
	case hipchat.Authority:
		md[metadatapkg.KeyOAuthID] = ev.OAuthID
	case string:
		md[metadatapkg.KeyOAuthID] = ev
	case hipchat.Event:
		base := hipchat.Base(ev)
		md[metadatapkg.KeyOAuthID] = base.OAuthClientID
		md[metadatapkg.KeyRoomID] = strconv.FormatInt(base.Room.ID, 10)
	}
	return md
}
