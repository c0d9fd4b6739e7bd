package runtime

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loggingpkg "github.com/dayflower/hiptail-bot/internal/runtime/logging"
)

func newBareBot(t *testing.T) *Bot {
	t.Helper()
	return NewBot(BotDependencies{DisableDefaultMiddlewares: true})
}

func TestRegisterMiddlewareRequiresMiddlewareOrBuilder(t *testing.T) {
	b := newBareBot(t)
	assert.Error(t, b.RegisterMiddleware(MiddlewareRegistration{Name: "empty"}))

	builderErr := errors.New("cannot build")
	err := b.RegisterMiddleware(MiddlewareRegistration{
		Name:    "failing",
		Builder: func(*Bot) (Middleware, error) { return nil, builderErr },
	})
	assert.ErrorIs(t, err, builderErr)
}

func TestRegisterMiddlewareWrapsCallbacks(t *testing.T) {
	b := newBareBot(t)
	require.NoError(t, b.RegisterMiddleware(MiddlewareRegistration{
		Name: "upper",
		Middleware: func(next Callback) Callback {
			return func(ctx context.Context, call Call) (Result, error) {
				res, err := next(ctx, call)
				return Continue(res.Value().(string) + "!"), err
			}
		},
	}))
	require.NoError(t, b.registry.Register(HookOnRoomEnter, nil, constCallback("hello")))

	result, err := b.Dispatch(context.Background(), HookOnRoomEnter, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello!", result)
}

func TestLogInvocationsMiddleware(t *testing.T) {
	var buf bytes.Buffer
	b := newBareBot(t)
	require.NoError(t, b.RegisterMiddleware(LogInvocationsMiddleware(loggingpkg.NewTextLogger(&buf, "debug"))))
	require.NoError(t, b.registry.Register(HookOnUninstalled, []any{"x"}, constCallback(nil)))

	_, err := b.Dispatch(context.Background(), HookOnUninstalled, "oid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Invoking hook")
	assert.Contains(t, buf.String(), "on_uninstalled")
}

func TestTracerMiddlewarePassesThrough(t *testing.T) {
	b := newBareBot(t)
	require.NoError(t, b.RegisterMiddleware(TracerMiddleware()))

	boom := errors.New("boom")
	require.NoError(t, b.registry.Register(HookOnRoomEnter, nil, constCallback("ok")))
	require.NoError(t, b.registry.Register(HookOnRoomExit, nil, func(context.Context, Call) (Result, error) {
		return Result{}, boom
	}))

	result, err := b.Dispatch(context.Background(), HookOnRoomEnter, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)

	_, err = b.Dispatch(context.Background(), HookOnRoomExit, nil)
	assert.ErrorIs(t, err, boom)
}

func TestMetricsMiddlewareCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewBot(BotDependencies{DisableDefaultMiddlewares: true, MetricsRegistry: reg})
	require.NoError(t, b.RegisterMiddleware(MetricsMiddleware()))

	require.NoError(t, b.registry.Register(HookOnMessage, nil, constCallback(1)))
	require.NoError(t, b.registry.Register(HookOnMessage, nil, func(context.Context, Call) (Result, error) {
		return Decline(2), nil
	}))
	require.NoError(t, b.registry.Register(HookOnRoomExit, nil, func(context.Context, Call) (Result, error) {
		return Result{}, errors.New("boom")
	}))

	_, err := b.Dispatch(context.Background(), HookOnMessage, messageEvent("hi"))
	require.NoError(t, err)
	_, err = b.Dispatch(context.Background(), HookOnRoomExit, nil)
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "hiptail_hook_invocations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.Error(t, b.RegisterMiddleware(MetricsMiddleware()), "collectors are registered once per registry")
}

func TestDefaultMiddlewaresNames(t *testing.T) {
	var names []string
	for _, reg := range DefaultMiddlewares() {
		names = append(names, reg.Name)
	}
	assert.Equal(t, []string{"log_invocations", "tracer", "metrics"}, names)
}

func TestNewBotPanicsOnBrokenMiddleware(t *testing.T) {
	assert.Panics(t, func() {
		NewBot(BotDependencies{
			DisableDefaultMiddlewares: true,
			Middlewares:               []MiddlewareRegistration{{Name: "broken"}},
		})
	})
}
