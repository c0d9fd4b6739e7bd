package runtime

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflower/hiptail-bot/internal/runtime/authority"
	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	"github.com/dayflower/hiptail-bot/internal/runtime/manager"
	"github.com/dayflower/hiptail-bot/internal/runtime/web"
)

func TestTypedHandlersReceiveContext(t *testing.T) {
	b := newBareBot(t)

	var got HookContext[*hipchat.RoomMessageEvent]
	require.NoError(t, b.OnMessage(regexp.MustCompile(`^echo (.*)`), func(_ context.Context, hc HookContext[*hipchat.RoomMessageEvent]) (Result, error) {
		got = hc
		return Continue(hipchat.TextReply(hc.Matches[1])), nil
	}, "extra"))

	result, err := b.Dispatch(context.Background(), HookOnMessage, messageEvent("echo hi there"))
	require.NoError(t, err)
	assert.Equal(t, hipchat.TextReply("hi there"), result)
	assert.Equal(t, HookOnMessage, got.Key)
	assert.Equal(t, "echo hi there", got.Event.Message.Text)
	assert.Equal(t, []any{"extra"}, got.Args)
	assert.NotNil(t, got.Logger)
}

func TestTypedHandlersRejectWrongEvent(t *testing.T) {
	b := newBareBot(t)
	require.NoError(t, b.OnRoomEnter(func(context.Context, HookContext[*hipchat.RoomEnterEvent]) (Result, error) {
		return Continue(nil), nil
	}))

	_, err := b.Dispatch(context.Background(), HookOnRoomEnter, &hipchat.RoomExitEvent{})
	assert.ErrorIs(t, err, errspkg.ErrUnsupportedEvent)
}

func TestEveryRegistrationTargetsItsKey(t *testing.T) {
	b := newBareBot(t)
	ok := func(v any) Result { return Continue(v) }

	require.NoError(t, b.OnInstalled(func(_ context.Context, hc HookContext[hipchat.Authority]) (Result, error) {
		return ok(hc.Event.OAuthID), nil
	}))
	require.NoError(t, b.OnUninstalled(func(_ context.Context, hc HookContext[string]) (Result, error) {
		return ok("bye " + hc.Event), nil
	}))
	require.NoError(t, b.OnNotification("build passed", func(_ context.Context, hc HookContext[*hipchat.RoomNotificationEvent]) (Result, error) {
		return ok(hc.Event.Sender), nil
	}))
	require.NoError(t, b.OnTopic(nil, func(_ context.Context, hc HookContext[*hipchat.RoomTopicChangeEvent]) (Result, error) {
		return ok(hc.Event.Topic), nil
	}))
	require.NoError(t, b.OnRoomEnter(func(_ context.Context, hc HookContext[*hipchat.RoomEnterEvent]) (Result, error) {
		return ok("hello " + hc.Event.Sender.Name), nil
	}))
	require.NoError(t, b.OnRoomExit(func(_ context.Context, hc HookContext[*hipchat.RoomExitEvent]) (Result, error) {
		return ok("goodbye " + hc.Event.Sender.Name), nil
	}))

	tests := []struct {
		key   HookKey
		event any
		want  any
	}{
		{HookOnInstalled, hipchat.Authority{OAuthID: "oid"}, "oid"},
		{HookOnUninstalled, "oid", "bye oid"},
		{HookOnNotification, &hipchat.RoomNotificationEvent{Sender: "CI", Message: hipchat.Message{Text: "build passed"}}, "CI"},
		{HookOnTopic, &hipchat.RoomTopicChangeEvent{Topic: "new topic"}, "new topic"},
		{HookOnRoomEnter, &hipchat.RoomEnterEvent{Sender: hipchat.User{Name: "Alice"}}, "hello Alice"},
		{HookOnRoomExit, &hipchat.RoomExitEvent{Sender: hipchat.User{Name: "Bob"}}, "goodbye Bob"},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			result, err := b.Dispatch(context.Background(), tt.key, tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestRegistrationRejectsInvalidInput(t *testing.T) {
	b := newBareBot(t)

	var cfgErr errspkg.ConfigValidationError
	err := b.OnMessage(42, func(context.Context, HookContext[*hipchat.RoomMessageEvent]) (Result, error) {
		return Continue(nil), nil
	})
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, errspkg.ErrUnsupportedMatcher)

	err = b.OnRoomExit(nil)
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, errspkg.ErrHandlerRequired)

	assert.ErrorIs(t, b.Setup(nil), errspkg.ErrHandlerRequired)
	assert.ErrorIs(t, b.AuthorityProvider(nil), errspkg.ErrHandlerRequired)
	assert.Equal(t, 0, b.registry.Len(HookOnMessage))
}

func TestSetupErrorsPropagate(t *testing.T) {
	b := newBareBot(t)
	boom := errors.New("boom")
	require.NoError(t, b.Setup(func(context.Context, *Bot) error { return boom }))

	_, err := b.Dispatch(context.Background(), HookSetup, b)
	assert.ErrorIs(t, err, boom)
}

func TestConfigureMerges(t *testing.T) {
	b := newBareBot(t)
	b.Configure(web.Config{BaseURL: "https://bot.example.com", CORSAllowedOrigins: []string{"a"}})
	b.Configure(web.Config{MetricsEnabled: true})
	b.ConfigureManager(manager.Config{Key: "first", Name: "bot"})
	b.ConfigureManager(manager.Config{Key: "second"})

	b.cfgMu.Lock()
	defer b.cfgMu.Unlock()
	assert.Equal(t, "https://bot.example.com", b.webCfg.BaseURL)
	assert.True(t, b.webCfg.MetricsEnabled)
	assert.Equal(t, []string{"a"}, b.webCfg.CORSAllowedOrigins)
	assert.Equal(t, "second", b.managerCfg.Key)
	assert.Equal(t, "bot", b.managerCfg.Name)
}

func TestNilBotRejectsRegistration(t *testing.T) {
	var b *Bot
	var target DSL = b
	noop := func(context.Context, HookContext[*hipchat.RoomMessageEvent]) (Result, error) { return Continue(nil), nil }

	assert.ErrorIs(t, target.Setup(func(context.Context, *Bot) error { return nil }), errspkg.ErrBotRequired)
	assert.ErrorIs(t, target.AuthorityProvider(func(context.Context) (authority.Provider, error) { return nil, nil }), errspkg.ErrBotRequired)
	assert.ErrorIs(t, target.OnMessage(nil, noop), errspkg.ErrBotRequired)
	assert.NotPanics(t, func() {
		target.Configure(web.Config{BaseURL: "https://bot.example.com"})
		target.ConfigureManager(manager.Config{Name: "nil"})
	})
}
