package runtime

import (
	"sync/atomic"

	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	"github.com/dayflower/hiptail-bot/internal/runtime/manager"
	"github.com/dayflower/hiptail-bot/internal/runtime/web"
)

// DSL is the registration surface shared by Bot and Namespace.
type DSL interface {
	Setup(fn SetupFunc) error
	Configure(cfg web.Config)
	ConfigureManager(cfg manager.Config)
	AuthorityProvider(fn AuthorityProviderFunc) error
	OnInstalled(h Handler[hipchat.Authority], args ...any) error
	OnUninstalled(h Handler[string], args ...any) error
	OnMessage(matcher any, h Handler[*hipchat.RoomMessageEvent], args ...any) error
	OnNotification(matcher any, h Handler[*hipchat.RoomNotificationEvent], args ...any) error
	OnTopic(matcher any, h Handler[*hipchat.RoomTopicChangeEvent], args ...any) error
	OnRoomEnter(h Handler[*hipchat.RoomEnterEvent], args ...any) error
	OnRoomExit(h Handler[*hipchat.RoomExitEvent], args ...any) error
}

var _ DSL = (*Bot)(nil)
var _ DSL = (*Namespace)(nil)

// Delegator holds the DSL a Namespace forwards to. The target can be
// swapped at any time; calls already forwarded are not affected.
type Delegator struct {
	primary DSL
	target  atomic.Pointer[DSL]
}

// NewDelegator returns a Delegator targeting primary.
func NewDelegator(primary DSL) *Delegator {
	d := &Delegator{primary: primary}
	d.target.Store(&primary)
	return d
}

// SetTarget redirects forwarded calls to target. A nil target restores the
// primary one.
func (d *Delegator) SetTarget(target DSL) {
	if target == nil {
		target = d.primary
	}
	d.target.Store(&target)
}

// Target returns the current delegation target.
func (d *Delegator) Target() DSL {
	return *d.target.Load()
}

// Overrides replaces individual Namespace operations. Nil fields forward
// to the delegation target.
type Overrides struct {
	Setup             func(fn SetupFunc) error
	Configure         func(cfg web.Config)
	ConfigureManager  func(cfg manager.Config)
	AuthorityProvider func(fn AuthorityProviderFunc) error
	OnInstalled       func(h Handler[hipchat.Authority], args ...any) error
	OnUninstalled     func(h Handler[string], args ...any) error
	OnMessage         func(matcher any, h Handler[*hipchat.RoomMessageEvent], args ...any) error
	OnNotification    func(matcher any, h Handler[*hipchat.RoomNotificationEvent], args ...any) error
	OnTopic           func(matcher any, h Handler[*hipchat.RoomTopicChangeEvent], args ...any) error
	OnRoomEnter       func(h Handler[*hipchat.RoomEnterEvent], args ...any) error
	OnRoomExit        func(h Handler[*hipchat.RoomExitEvent], args ...any) error
}

// Namespace exposes the DSL through a Delegator. Each operation is fixed
// when the namespace is built: the override when one is given, otherwise a
// forwarder that calls the same operation on the current target.
type Namespace struct {
	ops Overrides
}

// NewNamespace composes a Namespace over d.
func NewNamespace(d *Delegator, o Overrides) *Namespace {
	ops := o
	if ops.Setup == nil {
		ops.Setup = func(fn SetupFunc) error { return d.Target().Setup(fn) }
	}
	if ops.Configure == nil {
		ops.Configure = func(cfg web.Config) { d.Target().Configure(cfg) }
	}
	if ops.ConfigureManager == nil {
		ops.ConfigureManager = func(cfg manager.Config) { d.Target().ConfigureManager(cfg) }
	}
	if ops.AuthorityProvider == nil {
		ops.AuthorityProvider = func(fn AuthorityProviderFunc) error { return d.Target().AuthorityProvider(fn) }
	}
	if ops.OnInstalled == nil {
		ops.OnInstalled = func(h Handler[hipchat.Authority], args ...any) error {
			return d.Target().OnInstalled(h, args...)
		}
	}
	if ops.OnUninstalled == nil {
		ops.OnUninstalled = func(h Handler[string], args ...any) error {
			return d.Target().OnUninstalled(h, args...)
		}
	}
	if ops.OnMessage == nil {
		ops.OnMessage = func(matcher any, h Handler[*hipchat.RoomMessageEvent], args ...any) error {
			return d.Target().OnMessage(matcher, h, args...)
		}
	}
	if ops.OnNotification == nil {
		ops.OnNotification = func(matcher any, h Handler[*hipchat.RoomNotificationEvent], args ...any) error {
			return d.Target().OnNotification(matcher, h, args...)
		}
	}
	if ops.OnTopic == nil {
		ops.OnTopic = func(matcher any, h Handler[*hipchat.RoomTopicChangeEvent], args ...any) error {
			return d.Target().OnTopic(matcher, h, args...)
		}
	}
	if ops.OnRoomEnter == nil {
		ops.OnRoomEnter = func(h Handler[*hipchat.RoomEnterEvent], args ...any) error {
			return d.Target().OnRoomEnter(h, args...)
		}
	}
	if ops.OnRoomExit == nil {
		ops.OnRoomExit = func(h Handler[*hipchat.RoomExitEvent], args ...any) error {
			return d.Target().OnRoomExit(h, args...)
		}
	}
	return &Namespace{ops: ops}
}

func (n *Namespace) Setup(fn SetupFunc) error { return n.ops.Setup(fn) }

func (n *Namespace) Configure(cfg web.Config) { n.ops.Configure(cfg) }

func (n *Namespace) ConfigureManager(cfg manager.Config) { n.ops.ConfigureManager(cfg) }

func (n *Namespace) AuthorityProvider(fn AuthorityProviderFunc) error {
	return n.ops.AuthorityProvider(fn)
}

func (n *Namespace) OnInstalled(h Handler[hipchat.Authority], args ...any) error {
	return n.ops.OnInstalled(h, args...)
}

func (n *Namespace) OnUninstalled(h Handler[string], args ...any) error {
	return n.ops.OnUninstalled(h, args...)
}

func (n *Namespace) OnMessage(matcher any, h Handler[*hipchat.RoomMessageEvent], args ...any) error {
	return n.ops.OnMessage(matcher, h, args...)
}

func (n *Namespace) OnNotification(matcher any, h Handler[*hipchat.RoomNotificationEvent], args ...any) error {
	return n.ops.OnNotification(matcher, h, args...)
}

func (n *Namespace) OnTopic(matcher any, h Handler[*hipchat.RoomTopicChangeEvent], args ...any) error {
	return n.ops.OnTopic(matcher, h, args...)
}

func (n *Namespace) OnRoomEnter(h Handler[*hipchat.RoomEnterEvent], args ...any) error {
	return n.ops.OnRoomEnter(h, args...)
}

func (n *Namespace) OnRoomExit(h Handler[*hipchat.RoomExitEvent], args ...any) error {
	return n.ops.OnRoomExit(h, args...)
}
