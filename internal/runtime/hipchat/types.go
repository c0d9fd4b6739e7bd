// Package hipchat holds the HipChat Connect data model the bot works with:
// installations, rooms, users, webhook events and the reply/descriptor
// documents sent back to HipChat.
package hipchat

import "time"

// EventType names a HipChat webhook event.
type EventType string

const (
	EventRoomMessage      EventType = "room_message"
	EventRoomNotification EventType = "room_notification"
	EventRoomTopicChange  EventType = "room_topic_change"
	EventRoomEnter        EventType = "room_enter"
	EventRoomExit         EventType = "room_exit"
)

// EventTypes lists every webhook event in the order they appear in the
// capabilities descriptor.
var EventTypes = []EventType{
	EventRoomMessage,
	EventRoomNotification,
	EventRoomTopicChange,
	EventRoomEnter,
	EventRoomExit,
}

// Authority is the per-installation credential HipChat hands over on install.
type Authority struct {
	OAuthID         string    `json:"oauthId" validate:"required"`
	OAuthSecret     string    `json:"oauthSecret" validate:"required"`
	CapabilitiesURL string    `json:"capabilitiesUrl,omitempty" validate:"omitempty,url"`
	RoomID          int64     `json:"roomId,omitempty" validate:"gte=0"`
	GroupID         int64     `json:"groupId,omitempty" validate:"gte=0"`
	InstalledAt     time.Time `json:"installedAt"`
}

// ForRoom reports whether the installation is scoped to a single room.
func (a Authority) ForRoom() bool {
	return a.RoomID != 0
}

type Room struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	MentionName string `json:"mention_name"`
}

type Message struct {
	ID    string    `json:"id"`
	Text  string    `json:"message"`
	Type  string    `json:"type,omitempty"`
	Color string    `json:"color,omitempty"`
	Date  time.Time `json:"date"`
}

// EventBase is embedded in every webhook event.
type EventBase struct {
	Type          EventType `json:"event"`
	OAuthClientID string    `json:"oauth_client_id"`
	WebhookID     int64     `json:"webhook_id"`
	Room          Room      `json:"room"`
	Authority     Authority `json:"-"`
}

func (e *EventBase) base() *EventBase { return e }

// Event is implemented by every webhook event type.
type Event interface {
	base() *EventBase
}

// Base returns the common part of any webhook event.
func Base(ev Event) *EventBase {
	return ev.base()
}

// RoomMessageEvent is a user message posted in a room.
type RoomMessageEvent struct {
	EventBase
	Message Message `json:"message"`
	Sender  User    `json:"sender"`
}

func (e *RoomMessageEvent) MessageText() string { return e.Message.Text }

// RoomNotificationEvent is a notification posted by an integration. The
// sender is a free-form label rather than a user.
type RoomNotificationEvent struct {
	EventBase
	Message Message `json:"message"`
	Sender  string  `json:"sender"`
}

func (e *RoomNotificationEvent) MessageText() string { return e.Message.Text }

type RoomTopicChangeEvent struct {
	EventBase
	Topic  string `json:"topic"`
	Sender User   `json:"sender"`
}

func (e *RoomTopicChangeEvent) TopicText() string { return e.Topic }

type RoomEnterEvent struct {
	EventBase
	Sender User `json:"sender"`
}

type RoomExitEvent struct {
	EventBase
	Sender User `json:"sender"`
}
