package hiptailbot

import (
	runtimepkg "github.com/dayflower/hiptail-bot/internal/runtime"
	"github.com/dayflower/hiptail-bot/internal/runtime/authority"
	configpkg "github.com/dayflower/hiptail-bot/internal/runtime/config"
	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	idspkg "github.com/dayflower/hiptail-bot/internal/runtime/ids"
	jsoncodec "github.com/dayflower/hiptail-bot/internal/runtime/jsoncodec"
	loggingpkg "github.com/dayflower/hiptail-bot/internal/runtime/logging"
	"github.com/dayflower/hiptail-bot/internal/runtime/manager"
	metadatapkg "github.com/dayflower/hiptail-bot/internal/runtime/metadata"
	"github.com/dayflower/hiptail-bot/internal/runtime/web"
	"github.com/dayflower/hiptail-bot/transport"
)

type (
	Bot             = runtimepkg.Bot
	BotDependencies = runtimepkg.BotDependencies
	Config          = configpkg.Config
	WebConfig       = web.Config
	ManagerConfig   = manager.Config

	HookKey   = runtimepkg.HookKey
	Call      = runtimepkg.Call
	Result    = runtimepkg.Result
	Callback  = runtimepkg.Callback
	HookEntry = runtimepkg.HookEntry
	Registry  = runtimepkg.Registry
	Matcher   = runtimepkg.Matcher

	HookContext[T any]    = runtimepkg.HookContext[T]
	Handler[T any]        = runtimepkg.Handler[T]
	SetupFunc             = runtimepkg.SetupFunc
	AuthorityProviderFunc = runtimepkg.AuthorityProviderFunc

	DSL       = runtimepkg.DSL
	Delegator = runtimepkg.Delegator
	Namespace = runtimepkg.Namespace
	Overrides = runtimepkg.Overrides

	Middleware             = runtimepkg.Middleware
	MiddlewareBuilder      = runtimepkg.MiddlewareBuilder
	MiddlewareRegistration = runtimepkg.MiddlewareRegistration

	// Dispatch lifecycle hooks
	DispatchInfo  = runtimepkg.DispatchInfo
	DispatchHooks = runtimepkg.DispatchHooks

	HookInfo       = runtimepkg.HookInfo
	HookStats      = runtimepkg.HookStats
	LatencyMetrics = runtimepkg.LatencyMetrics

	Mirror         = runtimepkg.Mirror
	MirrorEnvelope = runtimepkg.MirrorEnvelope

	// Installations
	Authority      = hipchat.Authority
	Provider       = authority.Provider
	MemoryProvider = authority.MemoryProvider
	BadgerProvider = authority.BadgerProvider

	// HipChat events and replies
	EventType             = hipchat.EventType
	Event                 = hipchat.Event
	EventBase             = hipchat.EventBase
	RoomMessageEvent      = hipchat.RoomMessageEvent
	RoomNotificationEvent = hipchat.RoomNotificationEvent
	RoomTopicChangeEvent  = hipchat.RoomTopicChangeEvent
	RoomEnterEvent        = hipchat.RoomEnterEvent
	RoomExitEvent         = hipchat.RoomExitEvent
	Room                  = hipchat.Room
	User                  = hipchat.User
	Message               = hipchat.Message
	Reply                 = hipchat.Reply
	Descriptor            = hipchat.Descriptor

	Metadata = metadatapkg.Metadata

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	ConfigValidationError = errspkg.ConfigValidationError

	// Mirror transports
	Transport             = transport.Transport
	TransportBuilder      = transport.Builder
	TransportConfig       = transport.Config
	TransportRegistry     = transport.Registry
	TransportCapabilities = transport.Capabilities
)

var (
	NewBot      = runtimepkg.NewBot
	NewRegistry = runtimepkg.NewRegistry

	Continue = runtimepkg.Continue
	Decline  = runtimepkg.Decline

	Any          = runtimepkg.Any
	Exact        = runtimepkg.Exact
	Pattern      = runtimepkg.Pattern
	MustPattern  = runtimepkg.MustPattern
	ParseMatcher = runtimepkg.ParseMatcher

	NewDelegator = runtimepkg.NewDelegator
	NewNamespace = runtimepkg.NewNamespace

	DefaultMiddlewares       = runtimepkg.DefaultMiddlewares
	LogInvocationsMiddleware = runtimepkg.LogInvocationsMiddleware
	TracerMiddleware         = runtimepkg.TracerMiddleware
	MetricsMiddleware        = runtimepkg.MetricsMiddleware

	// Dispatch lifecycle hooks
	LoggingHooks  = runtimepkg.LoggingHooks
	AlertingHooks = runtimepkg.AlertingHooks

	NewMirror = runtimepkg.NewMirror

	NewMemoryProvider  = authority.NewMemoryProvider
	NewBadgerProvider  = authority.NewBadgerProvider
	OpenBadgerProvider = authority.OpenBadgerProvider

	OpenBadgerProviderReadOnly = authority.OpenBadgerProviderReadOnly

	TextReply   = hipchat.TextReply
	SignRequest = manager.SignRequest

	DefaultConfig  = configpkg.Default
	LoadConfig     = configpkg.Load
	DecodeConfig   = configpkg.Decode
	ValidateConfig = configpkg.ValidateConfig

	// Transport registry. Import individual transports via
	// _ "github.com/dayflower/hiptail-bot/transport/kafka"
	DefaultTransportRegistry = transport.DefaultRegistry
	RegisterTransport        = transport.Register
	BuildTransport           = transport.Build
	GetCapabilities          = transport.GetCapabilities
	NormalizeTransportName   = transport.Normalize

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	Decode        = jsoncodec.Decode

	ErrBotRequired              = errspkg.ErrBotRequired
	ErrHandlerRequired          = errspkg.ErrHandlerRequired
	ErrInvalidHookKey           = errspkg.ErrInvalidHookKey
	ErrUnsupportedMatcher       = errspkg.ErrUnsupportedMatcher
	ErrUnsupportedEvent         = errspkg.ErrUnsupportedEvent
	ErrInvalidAuthorityProvider = errspkg.ErrInvalidAuthorityProvider
	ErrAuthorityProviderNeeded  = errspkg.ErrAuthorityProviderNeeded
	ErrAuthorityNotFound        = errspkg.ErrAuthorityNotFound
	ErrManagerRequired          = errspkg.ErrManagerRequired
	ErrInvalidSignature         = errspkg.ErrInvalidSignature
	ErrMalformedPayload         = errspkg.ErrMalformedPayload
	ErrUnknownEvent             = errspkg.ErrUnknownEvent
	ErrConfigRequired           = errspkg.ErrConfigRequired
	ErrPublisherRequired        = errspkg.ErrPublisherRequired
	ErrTopicRequired            = errspkg.ErrTopicRequired
	ErrGatewayBuilding          = errspkg.ErrGatewayBuilding
	ErrUnknownTransport         = transport.ErrUnknownTransport

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	NewTextLogger        = loggingpkg.NewTextLogger
	NewNopLogger         = loggingpkg.NewNopLogger
	NewWatermillAdapter  = loggingpkg.NewWatermillAdapter

	NewMetadata = metadatapkg.New

	CreateULID = idspkg.CreateULID
)

// Hook keys.
const (
	HookSetup             = runtimepkg.HookSetup
	HookAuthorityProvider = runtimepkg.HookAuthorityProvider
	HookOnInstalled       = runtimepkg.HookOnInstalled
	HookOnUninstalled     = runtimepkg.HookOnUninstalled
	HookOnMessage         = runtimepkg.HookOnMessage
	HookOnNotification    = runtimepkg.HookOnNotification
	HookOnTopic           = runtimepkg.HookOnTopic
	HookOnRoomEnter       = runtimepkg.HookOnRoomEnter
	HookOnRoomExit        = runtimepkg.HookOnRoomExit
)

// HipChat event types.
const (
	EventRoomMessage      = hipchat.EventRoomMessage
	EventRoomNotification = hipchat.EventRoomNotification
	EventRoomTopicChange  = hipchat.EventRoomTopicChange
	EventRoomEnter        = hipchat.EventRoomEnter
	EventRoomExit         = hipchat.EventRoomExit
)

// Metadata keys set on mirrored messages.
const (
	MetadataKeyHook      = metadatapkg.KeyHook
	MetadataKeyRequestID = metadatapkg.KeyRequestID
	MetadataKeyOAuthID   = metadatapkg.KeyOAuthID
	MetadataKeyRoomID    = metadatapkg.KeyRoomID
	MetadataKeyTraceID   = metadatapkg.KeyTraceID
)
