package transport

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
)

var (
	ErrMirrorConfigRequired = errors.New("hiptail: mirror transport config is required")
	ErrUnknownTransport     = errors.New("hiptail: unknown mirror transport")
)

// Registry maps mirror transport names ("channel", "kafka", ...) to the
// builder of their publisher and to what the backend accepts. Names are
// case-insensitive: they come straight from MirrorTransport in the bot
// configuration.
type Registry struct {
	mu           sync.RWMutex
	builders     map[string]Builder
	capabilities map[string]Capabilities
}

// DefaultRegistry holds the transports linked into the binary. Backend
// packages add themselves from init.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		builders:     make(map[string]Builder),
		capabilities: make(map[string]Capabilities),
	}
}

// Normalize turns a configured transport name into its registry key.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a mirror sink without declared limits. A later registration
// under the same name replaces the builder.
func (r *Registry) Register(name string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[Normalize(name)] = builder
}

// RegisterWithCapabilities adds a mirror sink together with its limits, which
// the mirror uses to drop envelopes the backend would refuse.
func (r *Registry) RegisterWithCapabilities(name string, builder Builder, caps Capabilities) {
	key := Normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[key] = builder
	r.capabilities[key] = caps
}

// GetCapabilities returns the limits of the named sink. Unknown sinks get
// unlimited capabilities carrying only the name.
func (r *Registry) GetCapabilities(name string) Capabilities {
	key := Normalize(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if caps, ok := r.capabilities[key]; ok {
		return caps
	}
	return Capabilities{Name: key}
}

// Build creates the publisher for cfg.GetMirrorTransport(). Unknown names
// fail with ErrUnknownTransport and list what the binary links in.
func (r *Registry) Build(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error) {
	if cfg == nil {
		return Transport{}, ErrMirrorConfigRequired
	}

	name := Normalize(cfg.GetMirrorTransport())

	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return Transport{}, fmt.Errorf("%w %q (linked in: %s)", ErrUnknownTransport, name, strings.Join(r.Names(), ", "))
	}

	return builder(ctx, cfg, logger)
}

// Names lists the registered sinks, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[Normalize(name)]
	return ok
}

// Register adds a mirror sink to DefaultRegistry.
func Register(name string, builder Builder) {
	DefaultRegistry.Register(name, builder)
}

// RegisterWithCapabilities adds a mirror sink and its limits to
// DefaultRegistry.
func RegisterWithCapabilities(name string, builder Builder, caps Capabilities) {
	DefaultRegistry.RegisterWithCapabilities(name, builder, caps)
}

// Build creates a mirror publisher from DefaultRegistry.
func Build(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error) {
	return DefaultRegistry.Build(ctx, cfg, logger)
}
