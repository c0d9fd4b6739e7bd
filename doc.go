// Package hiptailbot is a small framework for HipChat Connect bots. A bot
// registers hooks (on_message, on_topic, on_installed and friends) and the
// package takes care of the rest: it serves the capabilities descriptor,
// stores installations in an authority provider, verifies signed webhook
// requests and dispatches each event to the matching hooks in registration
// order.
//
// Message, notification and topic hooks take a matcher as their first
// argument: nil matches everything, a string matches the exact text and a
// *regexp.Regexp matches anywhere in the text. The value returned by the last
// hook that ran becomes the webhook response; a hook can return Decline to
// answer immediately and skip the hooks registered after it.
//
// The quickest way in is the package-level DSL, which forwards to DefaultBot:
//
//	hiptailbot.OnMessage("ping", func(ctx context.Context, hc hiptailbot.HookContext[*hiptailbot.RoomMessageEvent]) (hiptailbot.Result, error) {
//		return hiptailbot.Continue(hiptailbot.TextReply("pong")), nil
//	})
//	hiptailbot.DefaultBot().Start(ctx, ":8080")
//
// Programs that need more than one bot create them with NewBot and point the
// DSL at one of them with SetDelegationTarget.
//
// # Manager and gateway
//
// The manager and the HTTP gateway are built lazily, the first time a request
// reaches the bot or Gateway is called. The setup hook runs right before
// that, so it can still Configure the bot. When no authority provider has
// been configured the authority_provider hook is asked for one; without any,
// installations are kept in memory. Config.BadgerPath switches to a BadgerDB
// store.
//
// # Middleware and hooks
//
// Each hook invocation passes through a middleware chain. DefaultMiddlewares
// logs invocations, opens an OpenTelemetry span and records Prometheus
// metrics; BotDependencies.Middlewares appends more. DispatchHooks observe
// whole dispatches and power the /api/hooks introspection endpoint.
//
// # Event mirror
//
// Dispatched events can be mirrored to a Watermill publisher selected by
// Config.MirrorTransport: channel, http, kafka, nats or rabbitmq. Import the
// transports you need, or all of them through
// github.com/dayflower/hiptail-bot/transport/transports.
package hiptailbot
