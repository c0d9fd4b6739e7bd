package hiptailbot

import (
	runtimepkg "github.com/dayflower/hiptail-bot/internal/runtime"
)

var (
	defaultBot = runtimepkg.NewBot(runtimepkg.BotDependencies{})
	delegator  = runtimepkg.NewDelegator(defaultBot)
	namespace  = runtimepkg.NewNamespace(delegator, runtimepkg.Overrides{})
)

// DefaultBot returns the bot the package-level DSL targets unless
// SetDelegationTarget says otherwise.
func DefaultBot() *Bot { return defaultBot }

// SetDelegationTarget redirects the package-level DSL. Nil restores
// DefaultBot.
func SetDelegationTarget(target DSL) { delegator.SetTarget(target) }

// DelegationTarget returns the current target of the package-level DSL.
func DelegationTarget() DSL { return delegator.Target() }

func Setup(fn SetupFunc) error { return namespace.Setup(fn) }

func Configure(cfg WebConfig) { namespace.Configure(cfg) }

func ConfigureManager(cfg ManagerConfig) { namespace.ConfigureManager(cfg) }

func AuthorityProvider(fn AuthorityProviderFunc) error { return namespace.AuthorityProvider(fn) }

func OnInstalled(h Handler[Authority], args ...any) error {
	return namespace.OnInstalled(h, args...)
}

func OnUninstalled(h Handler[string], args ...any) error {
	return namespace.OnUninstalled(h, args...)
}

// OnMessage registers h for room messages matching matcher: nil, a string
// for exact text or a *regexp.Regexp.
func OnMessage(matcher any, h Handler[*RoomMessageEvent], args ...any) error {
	return namespace.OnMessage(matcher, h, args...)
}

func OnNotification(matcher any, h Handler[*RoomNotificationEvent], args ...any) error {
	return namespace.OnNotification(matcher, h, args...)
}

func OnTopic(matcher any, h Handler[*RoomTopicChangeEvent], args ...any) error {
	return namespace.OnTopic(matcher, h, args...)
}

func OnRoomEnter(h Handler[*RoomEnterEvent], args ...any) error {
	return namespace.OnRoomEnter(h, args...)
}

func OnRoomExit(h Handler[*RoomExitEvent], args ...any) error {
	return namespace.OnRoomExit(h, args...)
}
