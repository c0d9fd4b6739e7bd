package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
)

type messageSubject interface {
	MessageText() string
}

type topicSubject interface {
	TopicText() string
}

// subjectFor extracts the text a matcher is checked against.
func subjectFor(key HookKey, event any) (string, bool) {
	switch key {
	case HookOnMessage, HookOnNotification:
		if ev, ok := event.(messageSubject); ok {
			return ev.MessageText(), true
		}
	case HookOnTopic:
		if ev, ok := event.(topicSubject); ok {
			return ev.TopicText(), true
		}
	}
	return "", false
}

// Dispatcher runs the entries registered for a key against an event.
type Dispatcher struct {
	registry *Registry

	mu          sync.RWMutex
	middlewares []Middleware
	hooks       DispatchHooks
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Use appends middleware. The first added is the outermost.
func (d *Dispatcher) Use(mw ...Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range mw {
		if m != nil {
			d.middlewares = append(d.middlewares, m)
		}
	}
}

// AddHooks merges hooks after the ones already installed.
func (d *Dispatcher) AddHooks(h DispatchHooks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = d.hooks.Merge(h)
}

func (d *Dispatcher) snapshot() ([]Middleware, DispatchHooks) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Middleware(nil), d.middlewares...), d.hooks
}

// Dispatch invokes the entries for key in registration order.
//
// For message, notification and topic keys each entry's leading argument is
// a matcher; entries whose matcher rejects the event's subject are skipped
// and the matcher is stripped from the arguments the callback sees. A
// declined result ends the dispatch with its value. Otherwise the value of
// the last invoked entry is returned, or nil when nothing ran. Callback
// errors are returned as is.
func (d *Dispatcher) Dispatch(ctx context.Context, key HookKey, event any) (any, error) {
	entries := d.registry.Entries(key)
	if len(entries) == 0 {
		return nil, nil
	}

	usesMatcher := key.SupportsMatcher()
	var subject string
	if usesMatcher {
		s, ok := subjectFor(key, event)
		if !ok {
			return nil, fmt.Errorf("%w: %s cannot match %T", errspkg.ErrUnsupportedEvent, key, event)
		}
		subject = s
	}

	middlewares, hooks := d.snapshot()
	info := DispatchInfo{
		Key:       key,
		Event:     event,
		Context:   ctx,
		StartedAt: time.Now(),
		Entries:   len(entries),
	}
	hooks.start(info)

	var result any
	for _, entry := range entries {
		call := Call{Key: key, Event: event, Args: entry.Args}
		if usesMatcher {
			var first any
			if len(call.Args) > 0 {
				first = call.Args[0]
				call.Args = call.Args[1:]
			}
			matcher, err := ParseMatcher(first)
			if err != nil {
				info.Duration = time.Since(info.StartedAt)
				hooks.fail(info, err)
				return nil, err
			}
			if !matcher.Match(subject) {
				info.Skipped++
				continue
			}
			call.Matches = matcher.groups(subject)
		}

		res, err := chain(entry.Callback, middlewares)(ctx, call)
		if err != nil {
			info.Duration = time.Since(info.StartedAt)
			hooks.fail(info, err)
			return nil, err
		}
		info.Invoked++
		result = res.Value()
		if res.Declined() {
			info.Declined = true
			break
		}
	}

	info.Duration = time.Since(info.StartedAt)
	info.Result = result
	hooks.done(info)
	return result, nil
}

func chain(cb Callback, middlewares []Middleware) Callback {
	for i := len(middlewares) - 1; i >= 0; i-- {
		cb = middlewares[i](cb)
	}
	return cb
}
