package hipchat

import (
	"fmt"
	"time"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	jsoncodec "github.com/dayflower/hiptail-bot/internal/runtime/jsoncodec"
)

// wire shapes of the HipChat webhook payloads.
type webhookEnvelope struct {
	Event         EventType   `json:"event"`
	OAuthClientID string      `json:"oauth_client_id"`
	WebhookID     int64       `json:"webhook_id"`
	Item          webhookItem `json:"item"`
}

type webhookItem struct {
	Room    Room            `json:"room"`
	Message *webhookMessage `json:"message"`
	Sender  *User           `json:"sender"`
	Topic   string          `json:"topic"`
}

type webhookMessage struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Color   string `json:"color"`
	Date    string `json:"date"`
	// From is a user object for room_message and a plain label for
	// room_notification.
	From any `json:"from"`
}

type installPayload struct {
	OAuthID         string `json:"oauthId"`
	OAuthSecret     string `json:"oauthSecret"`
	CapabilitiesURL string `json:"capabilitiesUrl"`
	RoomID          int64  `json:"roomId"`
	GroupID         int64  `json:"groupId"`
}

// ParseInstallation decodes the body HipChat posts to the installed callback.
func ParseInstallation(body []byte, now time.Time) (Authority, error) {
	var payload installPayload
	if err := jsoncodec.Unmarshal(body, &payload); err != nil {
		return Authority{}, fmt.Errorf("%w: %v", errspkg.ErrMalformedPayload, err)
	}
	return Authority{
		OAuthID:         payload.OAuthID,
		OAuthSecret:     payload.OAuthSecret,
		CapabilitiesURL: payload.CapabilitiesURL,
		RoomID:          payload.RoomID,
		GroupID:         payload.GroupID,
		InstalledAt:     now.UTC(),
	}, nil
}

// ParseWebhook decodes a webhook body into one of the typed room events.
func ParseWebhook(body []byte) (Event, error) {
	var env webhookEnvelope
	if err := jsoncodec.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errspkg.ErrMalformedPayload, err)
	}

	base := EventBase{
		Type:          env.Event,
		OAuthClientID: env.OAuthClientID,
		WebhookID:     env.WebhookID,
		Room:          env.Item.Room,
	}

	switch env.Event {
	case EventRoomMessage:
		msg, from := convertMessage(env.Item.Message)
		ev := &RoomMessageEvent{EventBase: base, Message: msg}
		if u, ok := from.(User); ok {
			ev.Sender = u
		}
		return ev, nil
	case EventRoomNotification:
		msg, from := convertMessage(env.Item.Message)
		ev := &RoomNotificationEvent{EventBase: base, Message: msg}
		if label, ok := from.(string); ok {
			ev.Sender = label
		}
		return ev, nil
	case EventRoomTopicChange:
		return &RoomTopicChangeEvent{EventBase: base, Topic: env.Item.Topic, Sender: senderOf(env.Item)}, nil
	case EventRoomEnter:
		return &RoomEnterEvent{EventBase: base, Sender: senderOf(env.Item)}, nil
	case EventRoomExit:
		return &RoomExitEvent{EventBase: base, Sender: senderOf(env.Item)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errspkg.ErrUnknownEvent, env.Event)
	}
}

func senderOf(item webhookItem) User {
	if item.Sender == nil {
		return User{}
	}
	return *item.Sender
}

func convertMessage(raw *webhookMessage) (Message, any) {
	if raw == nil {
		return Message{}, nil
	}
	msg := Message{
		ID:    raw.ID,
		Text:  raw.Message,
		Type:  raw.Type,
		Color: raw.Color,
	}
	if raw.Date != "" {
		if at, err := time.Parse(time.RFC3339Nano, raw.Date); err == nil {
			msg.Date = at
		}
	}

	switch from := raw.From.(type) {
	case string:
		return msg, from
	case map[string]any:
		return msg, userFromMap(from)
	default:
		return msg, nil
	}
}

func userFromMap(m map[string]any) User {
	u := User{}
	if id, ok := m["id"].(float64); ok {
		u.ID = int64(id)
	}
	if name, ok := m["name"].(string); ok {
		u.Name = name
	}
	if mention, ok := m["mention_name"].(string); ok {
		u.MentionName = mention
	}
	return u
}
