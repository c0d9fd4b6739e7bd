// Package manager turns HipChat installation and webhook requests into
// callbacks: it keeps installations in an authority provider, verifies
// signed requests and routes each event to the callback registered for it.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dayflower/hiptail-bot/internal/runtime/authority"
	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	"github.com/dayflower/hiptail-bot/internal/runtime/logging"
)

type (
	InstallCallback   func(ctx context.Context, auth hipchat.Authority) (any, error)
	UninstallCallback func(ctx context.Context, oauthID string) (any, error)
	EventCallback     func(ctx context.Context, ev hipchat.Event) (any, error)
)

// Manager owns one callback per installation or event kind.
type Manager struct {
	cfg      Config
	provider authority.Provider
	logger   logging.ServiceLogger

	mu          sync.RWMutex
	onInstall   InstallCallback
	onUninstall UninstallCallback
	onEvent     map[hipchat.EventType]EventCallback
}

// New builds a manager. An authority provider is mandatory.
func New(cfg Config) (*Manager, error) {
	cfg = cfg.Clone()
	if cfg.AuthorityProvider == nil {
		return nil, errspkg.ErrAuthorityProviderNeeded
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Manager{
		cfg:      cfg,
		provider: cfg.AuthorityProvider,
		logger:   cfg.Logger.With(logging.LogFields{"component": "manager"}),
		onEvent:  make(map[hipchat.EventType]EventCallback, len(hipchat.EventTypes)),
	}, nil
}

// Config returns the settings the manager was built with.
func (m *Manager) Config() Config {
	return m.cfg.Clone()
}

func (m *Manager) OnInstall(cb InstallCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onInstall = cb
}

func (m *Manager) OnUninstall(cb UninstallCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUninstall = cb
}

func (m *Manager) OnRoomMessage(cb EventCallback) { m.setEvent(hipchat.EventRoomMessage, cb) }

func (m *Manager) OnRoomNotification(cb EventCallback) {
	m.setEvent(hipchat.EventRoomNotification, cb)
}

func (m *Manager) OnRoomTopicChange(cb EventCallback) {
	m.setEvent(hipchat.EventRoomTopicChange, cb)
}

func (m *Manager) OnRoomEnter(cb EventCallback) { m.setEvent(hipchat.EventRoomEnter, cb) }

func (m *Manager) OnRoomExit(cb EventCallback) { m.setEvent(hipchat.EventRoomExit, cb) }

func (m *Manager) setEvent(typ hipchat.EventType, cb EventCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cb == nil {
		delete(m.onEvent, typ)
		return
	}
	m.onEvent[typ] = cb
}

// HandledEvents lists the event types with a registered callback, in
// descriptor order.
func (m *Manager) HandledEvents() []hipchat.EventType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]hipchat.EventType, 0, len(m.onEvent))
	for _, typ := range hipchat.EventTypes {
		if _, ok := m.onEvent[typ]; ok {
			out = append(out, typ)
		}
	}
	return out
}

// HandleInstall stores the installation carried by body and runs the
// install callback.
func (m *Manager) HandleInstall(ctx context.Context, body []byte) (hipchat.Authority, error) {
	auth, err := hipchat.ParseInstallation(body, m.cfg.Clock())
	if err != nil {
		return hipchat.Authority{}, err
	}
	if err := m.provider.Register(ctx, auth); err != nil {
		return hipchat.Authority{}, fmt.Errorf("register installation %q: %w", auth.OAuthID, err)
	}
	m.logger.Info("Installation registered", logging.LogFields{
		"oauth_id": auth.OAuthID,
		"room_id":  auth.RoomID,
		"group_id": auth.GroupID,
	})

	m.mu.RLock()
	cb := m.onInstall
	m.mu.RUnlock()
	if cb != nil {
		if _, err := cb(ctx, auth); err != nil {
			return auth, err
		}
	}
	return auth, nil
}

// HandleUninstall forgets the installation and runs the uninstall callback.
func (m *Manager) HandleUninstall(ctx context.Context, oauthID string) error {
	if oauthID == "" {
		return fmt.Errorf("%w: empty oauth id", errspkg.ErrMalformedPayload)
	}
	if _, err := m.provider.Get(ctx, oauthID); err != nil {
		return err
	}
	if err := m.provider.Unregister(ctx, oauthID); err != nil {
		return err
	}
	m.logger.Info("Installation removed", logging.LogFields{"oauth_id": oauthID})

	m.mu.RLock()
	cb := m.onUninstall
	m.mu.RUnlock()
	if cb != nil {
		if _, err := cb(ctx, oauthID); err != nil {
			return err
		}
	}
	return nil
}

// HandleEvent parses a webhook body, authenticates it and returns whatever
// the matching callback returned. Events without a callback yield nil.
func (m *Manager) HandleEvent(ctx context.Context, body []byte, signedRequest string) (any, error) {
	ev, err := hipchat.ParseWebhook(body)
	if err != nil {
		return nil, err
	}
	base := hipchat.Base(ev)

	auth, err := m.provider.Get(ctx, base.OAuthClientID)
	if err != nil {
		return nil, err
	}
	if !m.cfg.SkipSignatureVerification {
		if err := verifySignedRequest(signedRequest, auth); err != nil {
			m.logger.Error("Rejected webhook", err, logging.LogFields{
				"oauth_id": auth.OAuthID,
				"event":    base.Type,
			})
			return nil, err
		}
	}
	base.Authority = auth

	m.mu.RLock()
	cb := m.onEvent[base.Type]
	m.mu.RUnlock()
	if cb == nil {
		m.logger.Debug("No callback for event", logging.LogFields{"event": base.Type})
		return nil, nil
	}
	return cb(ctx, ev)
}
