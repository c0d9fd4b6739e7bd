package runtime

import (
	"context"
	"time"

	loggingpkg "github.com/dayflower/hiptail-bot/internal/runtime/logging"
)

// DispatchInfo describes one dispatch to hooks.
type DispatchInfo struct {
	Key   HookKey
	Event any
	// Context is the context the dispatch runs under.
	Context   context.Context
	StartedAt time.Time
	// Duration is only set in OnDispatchDone and OnDispatchError.
	Duration time.Duration
	// Entries is how many entries were registered for the key.
	Entries int
	// Invoked and Skipped count entries that ran or whose matcher failed.
	Invoked  int
	Skipped  int
	Declined bool
	// Result is the value the dispatch returned (OnDispatchDone only).
	Result any
}

// DispatchHooks defines callbacks around each dispatch. Nil hooks are
// simply not called. Dispatches of keys without entries are not reported.
type DispatchHooks struct {
	OnDispatchStart func(info DispatchInfo)
	OnDispatchDone  func(info DispatchInfo)
	OnDispatchError func(info DispatchInfo, err error)
}

// Merge combines two DispatchHooks. The hooks from 'other' run after the
// hooks from 'h'.
func (h DispatchHooks) Merge(other DispatchHooks) DispatchHooks {
	return DispatchHooks{
		OnDispatchStart: chainInfoHooks(h.OnDispatchStart, other.OnDispatchStart),
		OnDispatchDone:  chainInfoHooks(h.OnDispatchDone, other.OnDispatchDone),
		OnDispatchError: chainErrorHooks(h.OnDispatchError, other.OnDispatchError),
	}
}

func chainInfoHooks(a, b func(DispatchInfo)) func(DispatchInfo) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(info DispatchInfo) {
		a(info)
		b(info)
	}
}

func chainErrorHooks(a, b func(DispatchInfo, error)) func(DispatchInfo, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(info DispatchInfo, err error) {
		a(info, err)
		b(info, err)
	}
}

func (h DispatchHooks) start(info DispatchInfo) {
	if h.OnDispatchStart != nil {
		h.OnDispatchStart(info)
	}
}

func (h DispatchHooks) done(info DispatchInfo) {
	if h.OnDispatchDone != nil {
		h.OnDispatchDone(info)
	}
}

func (h DispatchHooks) fail(info DispatchInfo, err error) {
	if h.OnDispatchError != nil {
		h.OnDispatchError(info, err)
	}
}

// LoggingHooks returns hooks that log each dispatch.
func LoggingHooks(logger loggingpkg.ServiceLogger) DispatchHooks {
	return DispatchHooks{
		OnDispatchStart: func(info DispatchInfo) {
			logger.Debug("Dispatch started", loggingpkg.LogFields{
				"hook":    info.Key,
				"entries": info.Entries,
			})
		},
		OnDispatchDone: func(info DispatchInfo) {
			logger.Debug("Dispatch completed", loggingpkg.LogFields{
				"hook":        info.Key,
				"invoked":     info.Invoked,
				"skipped":     info.Skipped,
				"declined":    info.Declined,
				"duration_ms": info.Duration.Milliseconds(),
			})
		},
		OnDispatchError: func(info DispatchInfo, err error) {
			logger.Error("Dispatch failed", err, loggingpkg.LogFields{
				"hook":        info.Key,
				"invoked":     info.Invoked,
				"duration_ms": info.Duration.Milliseconds(),
			})
		},
	}
}

// AlertingHooks returns hooks that only report failed dispatches.
func AlertingHooks(alertFunc func(info DispatchInfo, err error)) DispatchHooks {
	return DispatchHooks{OnDispatchError: alertFunc}
}
