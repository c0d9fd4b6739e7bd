package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	loggingpkg "github.com/dayflower/hiptail-bot/internal/runtime/logging"
)

// Middleware wraps every callback invocation.
type Middleware func(Callback) Callback

// MiddlewareBuilder constructs a middleware for the given bot.
type MiddlewareBuilder func(*Bot) (Middleware, error)

// MiddlewareRegistration captures how a middleware is added to a bot.
type MiddlewareRegistration struct {
	Name       string
	Middleware Middleware
	Builder    MiddlewareBuilder
}

// DefaultMiddlewares returns the chain NewBot installs unless disabled.
func DefaultMiddlewares() []MiddlewareRegistration {
	return []MiddlewareRegistration{
		LogInvocationsMiddleware(nil),
		TracerMiddleware(),
		MetricsMiddleware(),
	}
}

// RegisterMiddleware appends a middleware to the bot's chain.
func (b *Bot) RegisterMiddleware(reg MiddlewareRegistration) error {
	var mw Middleware
	switch {
	case reg.Middleware != nil:
		mw = reg.Middleware
	case reg.Builder != nil:
		var err error
		mw, err = reg.Builder(b)
		if err != nil {
			return err
		}
	default:
		return errors.New("middleware registration requires Middleware or Builder")
	}

	if mw == nil {
		return nil
	}
	b.dispatcher.Use(mw)
	return nil
}

// LogInvocationsMiddleware logs every callback invocation at debug level.
func LogInvocationsMiddleware(logger loggingpkg.ServiceLogger) MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "log_invocations",
		Builder: func(b *Bot) (Middleware, error) {
			l := logger
			if l == nil {
				l = b.Logger
			}
			if l == nil {
				return nil, errors.New("log invocations middleware requires a logger")
			}
			return logInvocationsMiddleware(l), nil
		},
	}
}

func logInvocationsMiddleware(logger loggingpkg.ServiceLogger) Middleware {
	return func(next Callback) Callback {
		return func(ctx context.Context, call Call) (Result, error) {
			logger.Debug("Invoking hook", loggingpkg.LogFields{
				"hook":       call.Key,
				"event_type": fmt.Sprintf("%T", call.Event),
				"args":       len(call.Args),
			})
			return next(ctx, call)
		}
	}
}

// TracerMiddleware wraps each invocation in an OpenTelemetry span.
func TracerMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "tracer",
		Builder: func(*Bot) (Middleware, error) {
			return tracerMiddleware(), nil
		},
	}
}

func tracerMiddleware() Middleware {
	return func(next Callback) Callback {
		return func(ctx context.Context, call Call) (Result, error) {
			tracer := otel.Tracer("hiptail-bot")
			ctx, span := tracer.Start(ctx, "hook "+call.Key.String())
			defer span.End()

			span.SetAttributes(
				attribute.String("hook.key", call.Key.String()),
				attribute.String("hook.event_type", fmt.Sprintf("%T", call.Event)),
				attribute.Int("hook.args", len(call.Args)),
			)
			res, err := next(ctx, call)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return res, err
			}
			span.SetAttributes(attribute.Bool("hook.declined", res.Declined()))
			return res, nil
		}
	}
}

// MetricsMiddleware records invocation counts and latencies in the bot's
// Prometheus registry.
func MetricsMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "metrics",
		Builder: func(b *Bot) (Middleware, error) {
			m, err := newHookMetrics(b.metrics)
			if err != nil {
				return nil, err
			}
			return m.middleware(), nil
		},
	}
}

type hookMetrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newHookMetrics(reg prometheus.Registerer) (*hookMetrics, error) {
	m := &hookMetrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiptail",
			Name:      "hook_invocations_total",
			Help:      "Hook callback invocations by hook key and outcome.",
		}, []string{"hook", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hiptail",
			Name:      "hook_duration_seconds",
			Help:      "Hook callback latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"hook"}),
	}
	for _, c := range []prometheus.Collector{m.invocations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register hook metrics: %w", err)
		}
	}
	return m, nil
}

func (m *hookMetrics) middleware() Middleware {
	return func(next Callback) Callback {
		return func(ctx context.Context, call Call) (Result, error) {
			start := time.Now()
			res, err := next(ctx, call)
			m.duration.WithLabelValues(call.Key.String()).Observe(time.Since(start).Seconds())

			outcome := "continue"
			switch {
			case err != nil:
				outcome = "error"
			case res.Declined():
				outcome = "decline"
			}
			m.invocations.WithLabelValues(call.Key.String(), outcome).Inc()
			return res, err
		}
	}
}
