package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dayflower/hiptail-bot/internal/runtime/authority"
	configpkg "github.com/dayflower/hiptail-bot/internal/runtime/config"
	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	loggingpkg "github.com/dayflower/hiptail-bot/internal/runtime/logging"
	"github.com/dayflower/hiptail-bot/internal/runtime/manager"
	"github.com/dayflower/hiptail-bot/internal/runtime/web"
	"github.com/dayflower/hiptail-bot/transport"
)

const shutdownTimeout = 10 * time.Second

// buildingKey marks the context handed to the setup and authority provider
// hooks while the gateway is built.
type buildingKey struct{}

// BotDependencies holds the optional collaborators a Bot can use. Leave
// fields nil to get the defaults.
type BotDependencies struct {
	Logger                    loggingpkg.ServiceLogger
	Middlewares               []MiddlewareRegistration // Appended after the default middleware chain.
	DisableDefaultMiddlewares bool                     // Skips registering the default middleware chain when true.
	Hooks                     DispatchHooks
	// MetricsRegistry receives the hook metrics. A private registry is
	// created when nil.
	MetricsRegistry *prometheus.Registry
	// TransportBuilder builds mirror transports. Defaults to transport.Build,
	// which only knows the transports linked into the binary.
	TransportBuilder transport.Builder
}

// Bot owns the hook registry and lazily builds the manager and web gateway
// the first time a request needs them.
type Bot struct {
	Logger loggingpkg.ServiceLogger

	registry   *Registry
	dispatcher *Dispatcher
	metrics    *prometheus.Registry
	stats      *statsTracker

	transportBuilder transport.Builder

	cfgMu      sync.Mutex
	webCfg     web.Config
	managerCfg manager.Config

	buildMu sync.Mutex
	gateway atomic.Pointer[web.Gateway]

	closersMu sync.Mutex
	closers   []func() error
}

// NewBot constructs a Bot. It panics when a middleware fails to register.
func NewBot(deps BotDependencies) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = loggingpkg.NewNopLogger()
	}
	metrics := deps.MetricsRegistry
	if metrics == nil {
		metrics = prometheus.NewRegistry()
	}
	builder := deps.TransportBuilder
	if builder == nil {
		builder = transport.Build
	}

	registry := NewRegistry()
	b := &Bot{
		Logger:           logger,
		registry:         registry,
		dispatcher:       NewDispatcher(registry),
		metrics:          metrics,
		stats:            newStatsTracker(),
		transportBuilder: builder,
	}
	b.dispatcher.AddHooks(b.stats.hooks())
	b.dispatcher.AddHooks(deps.Hooks)
	b.registerConfiguredMiddlewares(deps)
	return b
}

func (b *Bot) registerConfiguredMiddlewares(deps BotDependencies) {
	var defaults []MiddlewareRegistration
	if !deps.DisableDefaultMiddlewares {
		defaults = DefaultMiddlewares()
	}
	registrations := make([]MiddlewareRegistration, 0, len(defaults)+len(deps.Middlewares))
	registrations = append(registrations, defaults...)
	registrations = append(registrations, deps.Middlewares...)

	for _, reg := range registrations {
		if err := b.RegisterMiddleware(reg); err != nil {
			name := reg.Name
			if name == "" {
				name = "anonymous_middleware"
			}
			panic(fmt.Sprintf("failed to register middleware %s: %v", name, err))
		}
	}
}

// Registry exposes the hook registry.
func (b *Bot) Registry() *Registry { return b.registry }

// Metrics exposes the Prometheus registry the hook metrics live in.
func (b *Bot) Metrics() *prometheus.Registry { return b.metrics }

// AddHooks installs additional dispatch hooks.
func (b *Bot) AddHooks(h DispatchHooks) { b.dispatcher.AddHooks(h) }

// Dispatch runs the entries registered for key against event.
func (b *Bot) Dispatch(ctx context.Context, key HookKey, event any) (any, error) {
	return b.dispatcher.Dispatch(ctx, key, event)
}

// Gateway returns the web gateway, building it on first use. The setup
// hook, the authority provider hook and manager construction run once per
// successful build. A failed build caches nothing. Calling Gateway from a
// setup or authority provider hook with the context it was given fails with
// ErrGatewayBuilding.
func (b *Bot) Gateway(ctx context.Context) (*web.Gateway, error) {
	if gw := b.gateway.Load(); gw != nil {
		return gw, nil
	}
	if owner, _ := ctx.Value(buildingKey{}).(*Bot); owner == b {
		return nil, errspkg.ErrGatewayBuilding
	}

	b.buildMu.Lock()
	defer b.buildMu.Unlock()
	if gw := b.gateway.Load(); gw != nil {
		return gw, nil
	}

	gw, err := b.buildGateway(ctx)
	if err != nil {
		return nil, err
	}
	b.gateway.Store(gw)
	return gw, nil
}

func (b *Bot) buildGateway(ctx context.Context) (*web.Gateway, error) {
	ctx = context.WithValue(ctx, buildingKey{}, b)
	if _, err := b.Dispatch(ctx, HookSetup, b); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}

	b.cfgMu.Lock()
	webCfg := b.webCfg.Clone()
	managerCfg := b.managerCfg.Clone()
	b.cfgMu.Unlock()

	if webCfg.Logger == nil {
		webCfg.Logger = b.Logger
	}
	if webCfg.Manager == nil {
		mgr, err := b.buildManager(ctx, managerCfg)
		if err != nil {
			return nil, err
		}
		webCfg.Manager = mgr
	}
	if webCfg.MetricsEnabled && webCfg.MetricsGatherer == nil {
		webCfg.MetricsGatherer = b.metrics
	}
	if webCfg.IntrospectionEnabled && webCfg.Introspection == nil {
		webCfg.Introspection = b.IntrospectionHandler()
	}

	gw, err := web.New(webCfg)
	if err != nil {
		return nil, err
	}
	b.Logger.Info("Gateway ready", loggingpkg.LogFields{
		"hooks":         b.registry.Keys(),
		"metrics":       webCfg.MetricsEnabled,
		"introspection": webCfg.IntrospectionEnabled,
	})
	return gw, nil
}

func (b *Bot) buildManager(ctx context.Context, cfg manager.Config) (*manager.Manager, error) {
	if cfg.AuthorityProvider == nil {
		provider, err := b.resolveAuthorityProvider(ctx)
		if err != nil {
			return nil, err
		}
		cfg.AuthorityProvider = provider
	}
	if cfg.Logger == nil {
		cfg.Logger = b.Logger
	}

	mgr, err := manager.New(cfg)
	if err != nil {
		return nil, err
	}
	b.wireManager(mgr)
	return mgr, nil
}

func (b *Bot) resolveAuthorityProvider(ctx context.Context) (authority.Provider, error) {
	result, err := b.Dispatch(ctx, HookAuthorityProvider, nil)
	if err != nil {
		return nil, fmt.Errorf("authority provider: %w", err)
	}
	switch provider := result.(type) {
	case nil:
		b.Logger.Debug("Using in-memory authority provider", nil)
		return authority.NewMemoryProvider(), nil
	case authority.Provider:
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %T", errspkg.ErrInvalidAuthorityProvider, result)
	}
}

// wireManager forwards every manager callback to the matching hook key.
func (b *Bot) wireManager(mgr *manager.Manager) {
	mgr.OnInstall(func(ctx context.Context, auth hipchat.Authority) (any, error) {
		return b.Dispatch(ctx, HookOnInstalled, auth)
	})
	mgr.OnUninstall(func(ctx context.Context, oauthID string) (any, error) {
		return b.Dispatch(ctx, HookOnUninstalled, oauthID)
	})
	mgr.OnRoomMessage(b.forwardEvent(HookOnMessage))
	mgr.OnRoomNotification(b.forwardEvent(HookOnNotification))
	mgr.OnRoomTopicChange(b.forwardEvent(HookOnTopic))
	mgr.OnRoomEnter(b.forwardEvent(HookOnRoomEnter))
	mgr.OnRoomExit(b.forwardEvent(HookOnRoomExit))
}

func (b *Bot) forwardEvent(key HookKey) manager.EventCallback {
	return func(ctx context.Context, ev hipchat.Event) (any, error) {
		return b.Dispatch(ctx, key, ev)
	}
}

// ServeHTTP makes the bot an http.Handler.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gw, err := b.Gateway(r.Context())
	if err != nil {
		b.Logger.Error("Failed to build gateway", err, loggingpkg.LogFields{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	gw.ServeHTTP(w, r)
}

// Start serves the bot on addr until ctx is cancelled, then shuts the
// server down gracefully. The gateway is built before listening so that
// configuration errors surface immediately.
func (b *Bot) Start(ctx context.Context, addr string) error {
	if _, err := b.Gateway(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           b,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		b.Logger.Info("Starting HTTP server", loggingpkg.LogFields{"address": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		b.Logger.Info("Shutting down HTTP server", loggingpkg.LogFields{"address": addr})
		return srv.Shutdown(shutdownCtx)
	}
}

// ApplyConfig turns a process configuration into gateway and manager
// settings, opens the BadgerDB authority store and enables the event
// mirror when configured. Call it before the gateway is built.
func (b *Bot) ApplyConfig(ctx context.Context, cfg *configpkg.Config) error {
	if cfg == nil {
		return errspkg.ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	b.Configure(web.Config{
		BaseURL:              cfg.BaseURL,
		MetricsEnabled:       cfg.MetricsEnabled,
		IntrospectionEnabled: cfg.IntrospectionEnabled,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
	})

	managerCfg := manager.Config{
		SkipSignatureVerification: cfg.SkipSignatureVerification,
		Key:                       cfg.Key,
		Name:                      cfg.Name,
		Description:               cfg.Description,
		VendorName:                cfg.VendorName,
		VendorURL:                 cfg.VendorURL,
		Homepage:                  cfg.Homepage,
		Scopes:                    cfg.Scopes,
		AllowRoom:                 cfg.AllowRoom,
		AllowGlobal:               cfg.AllowGlobal,
	}
	if cfg.BadgerPath != "" {
		provider, err := authority.OpenBadgerProvider(cfg.BadgerPath)
		if err != nil {
			return fmt.Errorf("open authority store: %w", err)
		}
		b.addCloser(provider.Close)
		managerCfg.AuthorityProvider = provider
		b.Logger.Info("Using BadgerDB authority provider", loggingpkg.LogFields{"path": cfg.BadgerPath})
	}
	b.ConfigureManager(managerCfg)

	if cfg.MirrorTransport != "" {
		if err := b.EnableMirror(ctx, cfg, cfg.MirrorTopic); err != nil {
			return err
		}
	}
	return nil
}

// EnableMirror builds the transport named by cfg and publishes every
// successful dispatch to topic.
func (b *Bot) EnableMirror(ctx context.Context, cfg transport.Config, topic string) error {
	t, err := b.transportBuilder(ctx, cfg, loggingpkg.NewWatermillAdapter(b.Logger))
	if err != nil {
		return fmt.Errorf("build mirror transport: %w", err)
	}
	mirror, err := NewMirror(t.Publisher, topic, transport.GetCapabilities(cfg.GetMirrorTransport()), b.Logger)
	if err != nil {
		_ = t.Close()
		return err
	}
	b.addCloser(t.Close)
	b.dispatcher.AddHooks(mirror.Hooks())
	b.Logger.Info("Mirroring dispatched events", loggingpkg.LogFields{
		"transport": cfg.GetMirrorTransport(),
		"topic":     topic,
	})
	return nil
}

func (b *Bot) addCloser(fn func() error) {
	b.closersMu.Lock()
	defer b.closersMu.Unlock()
	b.closers = append(b.closers, fn)
}

// Close releases the resources opened by ApplyConfig and EnableMirror, most
// recent first.
func (b *Bot) Close() error {
	b.closersMu.Lock()
	closers := b.closers
	b.closers = nil
	b.closersMu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
