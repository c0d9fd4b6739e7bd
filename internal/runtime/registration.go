package runtime

import (
	"context"
	"fmt"

	"github.com/dayflower/hiptail-bot/internal/runtime/authority"
	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	loggingpkg "github.com/dayflower/hiptail-bot/internal/runtime/logging"
	"github.com/dayflower/hiptail-bot/internal/runtime/manager"
	"github.com/dayflower/hiptail-bot/internal/runtime/web"
)

// HookContext is what a typed handler receives.
type HookContext[T any] struct {
	Key   HookKey
	Event T
	// Args are the extra registration arguments, matcher excluded.
	Args []any
	// Matches holds the submatches of a pattern matcher.
	Matches []string
	Logger  loggingpkg.ServiceLogger
}

// Handler is the typed form of a hook callback.
type Handler[T any] func(ctx context.Context, hc HookContext[T]) (Result, error)

// SetupFunc runs once before the gateway is built. It may still configure
// the bot.
type SetupFunc func(ctx context.Context, b *Bot) error

// AuthorityProviderFunc supplies the authority provider when none is
// configured. Returning nil selects the in-memory provider.
type AuthorityProviderFunc func(ctx context.Context) (authority.Provider, error)

func typedCallback[T any](b *Bot, key HookKey, h Handler[T]) Callback {
	return func(ctx context.Context, call Call) (Result, error) {
		ev, ok := call.Event.(T)
		if !ok {
			var want T
			return Result{}, fmt.Errorf("%w: %s expects %T, got %T", errspkg.ErrUnsupportedEvent, key, want, call.Event)
		}
		return h(ctx, HookContext[T]{
			Key:     key,
			Event:   ev,
			Args:    call.Args,
			Matches: call.Matches,
			Logger:  b.Logger.With(loggingpkg.LogFields{"hook": key}),
		})
	}
}

func registerTyped[T any](b *Bot, key HookKey, h Handler[T], args []any) error {
	if b == nil {
		return errspkg.ErrBotRequired
	}
	if h == nil {
		return errspkg.NewConfigValidationError(fmt.Errorf("%w: %s", errspkg.ErrHandlerRequired, key))
	}
	return b.registry.Register(key, args, typedCallback(b, key, h))
}

func withMatcher(matcher any, args []any) []any {
	out := make([]any, 0, len(args)+1)
	out = append(out, matcher)
	return append(out, args...)
}

// Setup registers fn to run when the gateway is first built. Its result is
// ignored; an error aborts the build.
func (b *Bot) Setup(fn SetupFunc) error {
	if b == nil {
		return errspkg.ErrBotRequired
	}
	if fn == nil {
		return errspkg.NewConfigValidationError(fmt.Errorf("%w: %s", errspkg.ErrHandlerRequired, HookSetup))
	}
	return b.registry.Register(HookSetup, nil, func(ctx context.Context, _ Call) (Result, error) {
		return Continue(nil), fn(ctx, b)
	})
}

// AuthorityProvider registers fn as the source of the authority provider.
// With several registrations the last one wins.
func (b *Bot) AuthorityProvider(fn AuthorityProviderFunc) error {
	if b == nil {
		return errspkg.ErrBotRequired
	}
	if fn == nil {
		return errspkg.NewConfigValidationError(fmt.Errorf("%w: %s", errspkg.ErrHandlerRequired, HookAuthorityProvider))
	}
	return b.registry.Register(HookAuthorityProvider, nil, func(ctx context.Context, _ Call) (Result, error) {
		provider, err := fn(ctx)
		if err != nil {
			return Result{}, err
		}
		if provider == nil {
			return Continue(nil), nil
		}
		return Continue(provider), nil
	})
}

// Configure merges cfg into the gateway settings. Later non-zero fields
// win. The settings are copied when the gateway is built. A nil bot ignores
// the call.
func (b *Bot) Configure(cfg web.Config) {
	if b == nil {
		return
	}
	b.cfgMu.Lock()
	defer b.cfgMu.Unlock()
	b.webCfg = b.webCfg.Merge(cfg)
}

// ConfigureManager merges cfg into the manager settings. A nil bot ignores
// the call.
func (b *Bot) ConfigureManager(cfg manager.Config) {
	if b == nil {
		return
	}
	b.cfgMu.Lock()
	defer b.cfgMu.Unlock()
	b.managerCfg = b.managerCfg.Merge(cfg)
}

// OnInstalled runs h for every new installation.
func (b *Bot) OnInstalled(h Handler[hipchat.Authority], args ...any) error {
	return registerTyped(b, HookOnInstalled, h, args)
}

// OnUninstalled runs h with the OAuth id of a removed installation.
func (b *Bot) OnUninstalled(h Handler[string], args ...any) error {
	return registerTyped(b, HookOnUninstalled, h, args)
}

// OnMessage runs h for room messages whose text satisfies matcher (nil,
// a string, a *regexp.Regexp or a Matcher).
func (b *Bot) OnMessage(matcher any, h Handler[*hipchat.RoomMessageEvent], args ...any) error {
	return registerTyped(b, HookOnMessage, h, withMatcher(matcher, args))
}

// OnNotification runs h for room notifications whose text satisfies matcher.
func (b *Bot) OnNotification(matcher any, h Handler[*hipchat.RoomNotificationEvent], args ...any) error {
	return registerTyped(b, HookOnNotification, h, withMatcher(matcher, args))
}

// OnTopic runs h for topic changes whose new topic satisfies matcher.
func (b *Bot) OnTopic(matcher any, h Handler[*hipchat.RoomTopicChangeEvent], args ...any) error {
	return registerTyped(b, HookOnTopic, h, withMatcher(matcher, args))
}

func (b *Bot) OnRoomEnter(h Handler[*hipchat.RoomEnterEvent], args ...any) error {
	return registerTyped(b, HookOnRoomEnter, h, args)
}

func (b *Bot) OnRoomExit(h Handler[*hipchat.RoomExitEvent], args ...any) error {
	return registerTyped(b, HookOnRoomExit, h, args)
}
