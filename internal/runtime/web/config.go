package web

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"

	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	"github.com/dayflower/hiptail-bot/internal/runtime/logging"
)

// EventManager is what the gateway needs from the manager.
type EventManager interface {
	HandleInstall(ctx context.Context, body []byte) (hipchat.Authority, error)
	HandleUninstall(ctx context.Context, oauthID string) error
	HandleEvent(ctx context.Context, body []byte, signedRequest string) (any, error)
	Descriptor(baseURL string) hipchat.Descriptor
}

// Config holds the gateway settings. Leave Manager nil to let the bot build
// one.
type Config struct {
	Manager EventManager
	// BaseURL is advertised in the capabilities document. When empty it is
	// derived from each request.
	BaseURL string
	Logger  logging.ServiceLogger

	MetricsEnabled  bool
	MetricsGatherer prometheus.Gatherer

	IntrospectionEnabled bool
	Introspection        http.Handler
	CORSAllowedOrigins   []string

	// MaxBodyBytes caps request bodies. Zero means 1 MiB.
	MaxBodyBytes int64
}

// Merge overlays the non-zero fields of other onto c.
func (c Config) Merge(other Config) Config {
	out := c
	out.Manager = lo.Ternary(other.Manager != nil, other.Manager, c.Manager)
	out.Logger = lo.Ternary(other.Logger != nil, other.Logger, c.Logger)
	out.MetricsGatherer = lo.Ternary(other.MetricsGatherer != nil, other.MetricsGatherer, c.MetricsGatherer)
	out.Introspection = lo.Ternary(other.Introspection != nil, other.Introspection, c.Introspection)
	out.BaseURL = lo.CoalesceOrEmpty(other.BaseURL, c.BaseURL)
	out.MaxBodyBytes = lo.CoalesceOrEmpty(other.MaxBodyBytes, c.MaxBodyBytes)
	out.MetricsEnabled = c.MetricsEnabled || other.MetricsEnabled
	out.IntrospectionEnabled = c.IntrospectionEnabled || other.IntrospectionEnabled

	out.CORSAllowedOrigins = append([]string(nil), c.CORSAllowedOrigins...)
	if len(other.CORSAllowedOrigins) > 0 {
		out.CORSAllowedOrigins = append([]string(nil), other.CORSAllowedOrigins...)
	}
	return out
}

// Clone returns a copy that shares no slices with c.
func (c Config) Clone() Config {
	return Config{}.Merge(c)
}
