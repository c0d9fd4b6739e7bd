package runtime

import (
	"context"
	"fmt"
	"sync"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
)

// HookKey names a hook slot.
type HookKey string

const (
	HookSetup             HookKey = "setup"
	HookAuthorityProvider HookKey = "authority_provider"
	HookOnInstalled       HookKey = "on_installed"
	HookOnUninstalled     HookKey = "on_uninstalled"
	HookOnMessage         HookKey = "on_message"
	HookOnNotification    HookKey = "on_notification"
	HookOnTopic           HookKey = "on_topic"
	HookOnRoomEnter       HookKey = "on_room_enter"
	HookOnRoomExit        HookKey = "on_room_exit"
)

// HookKeys lists every key in a stable order.
var HookKeys = []HookKey{
	HookSetup,
	HookAuthorityProvider,
	HookOnInstalled,
	HookOnUninstalled,
	HookOnMessage,
	HookOnNotification,
	HookOnTopic,
	HookOnRoomEnter,
	HookOnRoomExit,
}

func (k HookKey) Valid() bool {
	for _, key := range HookKeys {
		if k == key {
			return true
		}
	}
	return false
}

// SupportsMatcher reports whether entries for k take a leading matcher
// argument.
func (k HookKey) SupportsMatcher() bool {
	switch k {
	case HookOnMessage, HookOnNotification, HookOnTopic:
		return true
	default:
		return false
	}
}

func (k HookKey) String() string { return string(k) }

// Call is what a callback receives for one invocation.
type Call struct {
	Key   HookKey
	Event any
	// Args are the registration arguments, without the matcher.
	Args []any
	// Matches holds the submatches of a pattern matcher (the subject itself
	// for an exact matcher, nil otherwise).
	Matches []string
}

// Result is a callback's outcome. A declined result stops the dispatch of
// the remaining entries.
type Result struct {
	value    any
	declined bool
}

// Continue returns v and lets dispatch move on to the next entry.
func Continue(v any) Result { return Result{value: v} }

// Decline returns v as the dispatch result and skips the remaining entries.
func Decline(v any) Result { return Result{value: v, declined: true} }

func (r Result) Value() any     { return r.value }
func (r Result) Declined() bool { return r.declined }

// Callback is the untyped form every hook is stored as.
type Callback func(ctx context.Context, call Call) (Result, error)

// HookEntry is one registration. Args are kept as given, matcher included.
type HookEntry struct {
	Callback Callback
	Args     []any
}

// Registry keeps hook entries per key in registration order. Entries are
// only ever appended.
type Registry struct {
	mu      sync.RWMutex
	entries map[HookKey][]HookEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[HookKey][]HookEntry)}
}

// Register appends an entry. Failures are ConfigValidationErrors.
func (r *Registry) Register(key HookKey, args []any, cb Callback) error {
	if !key.Valid() {
		return errspkg.NewConfigValidationError(fmt.Errorf("%w: %q", errspkg.ErrInvalidHookKey, key))
	}
	if cb == nil {
		return errspkg.NewConfigValidationError(fmt.Errorf("%w: %s", errspkg.ErrHandlerRequired, key))
	}
	if key.SupportsMatcher() && len(args) > 0 {
		if _, err := ParseMatcher(args[0]); err != nil {
			return errspkg.NewConfigValidationError(fmt.Errorf("%s: %w", key, err))
		}
	}

	entry := HookEntry{Callback: cb, Args: append([]any(nil), args...)}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = append(r.entries[key], entry)
	return nil
}

// Entries returns a snapshot of the entries for key.
func (r *Registry) Entries(key HookKey) []HookEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.entries[key]
	if len(entries) == 0 {
		return nil
	}
	out := make([]HookEntry, len(entries))
	copy(out, entries)
	return out
}

// Len returns the number of entries for key.
func (r *Registry) Len(key HookKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[key])
}

// Keys returns the keys that have at least one entry, in HookKeys order.
func (r *Registry) Keys() []HookKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []HookKey
	for _, key := range HookKeys {
		if len(r.entries[key]) > 0 {
			out = append(out, key)
		}
	}
	return out
}
