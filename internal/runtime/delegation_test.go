package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflower/hiptail-bot/internal/runtime/authority"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	"github.com/dayflower/hiptail-bot/internal/runtime/manager"
	"github.com/dayflower/hiptail-bot/internal/runtime/web"
)

func noopMessageHandler(context.Context, HookContext[*hipchat.RoomMessageEvent]) (Result, error) {
	return Continue(nil), nil
}

func TestNamespaceForwardsToCurrentTarget(t *testing.T) {
	primary := newBareBot(t)
	secondary := newBareBot(t)

	d := NewDelegator(primary)
	ns := NewNamespace(d, Overrides{})

	require.NoError(t, ns.OnMessage("ping", noopMessageHandler))
	assert.Equal(t, 1, primary.registry.Len(HookOnMessage))

	d.SetTarget(secondary)
	assert.Same(t, secondary, d.Target())
	require.NoError(t, ns.OnMessage("ping", noopMessageHandler))
	assert.Equal(t, 1, primary.registry.Len(HookOnMessage))
	assert.Equal(t, 1, secondary.registry.Len(HookOnMessage))

	d.SetTarget(nil)
	assert.Same(t, primary, d.Target())
}

func TestNamespaceForwardsArgumentsUnchanged(t *testing.T) {
	b := newBareBot(t)
	ns := NewNamespace(NewDelegator(b), Overrides{})

	require.NoError(t, ns.OnTopic("standup", func(context.Context, HookContext[*hipchat.RoomTopicChangeEvent]) (Result, error) {
		return Continue(nil), nil
	}, "x", 2))
	entries := b.registry.Entries(HookOnTopic)
	require.Len(t, entries, 1)
	assert.Equal(t, []any{"standup", "x", 2}, entries[0].Args)

	ns.Configure(web.Config{BaseURL: "https://example.com"})
	ns.ConfigureManager(manager.Config{Name: "delegated"})
	assert.Equal(t, "https://example.com", b.webCfg.BaseURL)
	assert.Equal(t, "delegated", b.managerCfg.Name)

	require.NoError(t, ns.Setup(func(context.Context, *Bot) error { return nil }))
	require.NoError(t, ns.AuthorityProvider(func(context.Context) (authority.Provider, error) { return nil, nil }))
	require.NoError(t, ns.OnInstalled(func(context.Context, HookContext[hipchat.Authority]) (Result, error) { return Continue(nil), nil }))
	require.NoError(t, ns.OnUninstalled(func(context.Context, HookContext[string]) (Result, error) { return Continue(nil), nil }))
	require.NoError(t, ns.OnNotification(nil, func(context.Context, HookContext[*hipchat.RoomNotificationEvent]) (Result, error) { return Continue(nil), nil }))
	require.NoError(t, ns.OnRoomEnter(func(context.Context, HookContext[*hipchat.RoomEnterEvent]) (Result, error) { return Continue(nil), nil }))
	require.NoError(t, ns.OnRoomExit(func(context.Context, HookContext[*hipchat.RoomExitEvent]) (Result, error) { return Continue(nil), nil }))

	assert.Equal(t, []HookKey{
		HookSetup, HookAuthorityProvider, HookOnInstalled, HookOnUninstalled,
		HookOnNotification, HookOnTopic, HookOnRoomEnter, HookOnRoomExit,
	}, b.registry.Keys())
}

func TestNamespaceOverridesWin(t *testing.T) {
	b := newBareBot(t)
	var overridden []any
	ns := NewNamespace(NewDelegator(b), Overrides{
		OnMessage: func(matcher any, _ Handler[*hipchat.RoomMessageEvent], args ...any) error {
			overridden = append([]any{matcher}, args...)
			return nil
		},
	})

	require.NoError(t, ns.OnMessage("ping", noopMessageHandler, 1))
	assert.Equal(t, []any{"ping", 1}, overridden)
	assert.Equal(t, 0, b.registry.Len(HookOnMessage))

	require.NoError(t, ns.OnRoomEnter(func(context.Context, HookContext[*hipchat.RoomEnterEvent]) (Result, error) { return Continue(nil), nil }))
	assert.Equal(t, 1, b.registry.Len(HookOnRoomEnter))
}
