// Package web exposes the manager over HTTP: the capabilities document, the
// installation callbacks and the webhook endpoint HipChat posts events to.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	"github.com/dayflower/hiptail-bot/internal/runtime/ids"
	jsoncodec "github.com/dayflower/hiptail-bot/internal/runtime/jsoncodec"
	"github.com/dayflower/hiptail-bot/internal/runtime/logging"
)

const (
	RequestIDHeader     = "X-Request-Id"
	defaultMaxBodyBytes = 1 << 20
)

type requestIDKey struct{}

// RequestIDFromContext returns the id the gateway assigned to the request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestID stores id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Gateway is the http.Handler HipChat talks to.
type Gateway struct {
	cfg     Config
	manager EventManager
	logger  logging.ServiceLogger
	router  chi.Router
}

func New(cfg Config) (*Gateway, error) {
	cfg = cfg.Clone()
	if cfg.Manager == nil {
		return nil, errspkg.ErrManagerRequired
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	g := &Gateway{
		cfg:     cfg,
		manager: cfg.Manager,
		logger:  cfg.Logger.With(logging.LogFields{"component": "web"}),
	}
	g.router = g.routes()
	return g, nil
}

func (g *Gateway) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(g.requestID)
	r.Use(middleware.Recoverer)

	r.Get("/capabilities", g.handleCapabilities)
	r.Post("/installed", g.handleInstalled)
	r.Delete("/installed/{oauthId}", g.handleUninstalled)
	r.Post("/event", g.handleEvent)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	if g.cfg.MetricsEnabled {
		gatherer := g.cfg.MetricsGatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	if g.cfg.IntrospectionEnabled && g.cfg.Introspection != nil {
		hooks := g.withCORS(g.cfg.Introspection)
		r.Method(http.MethodGet, "/api/hooks", hooks)
		r.Method(http.MethodOptions, "/api/hooks", hooks)
	}
	return r
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

func (g *Gateway) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = ids.CreateULID()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(WithRequestID(r.Context(), id)))

		g.logger.Debug("Handled request", logging.LogFields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
		})
	})
}

func (g *Gateway) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, r, http.StatusOK, g.manager.Descriptor(g.baseURL(r)))
}

func (g *Gateway) handleInstalled(w http.ResponseWriter, r *http.Request) {
	body, err := g.readBody(w, r)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	if _, err := g.manager.HandleInstall(r.Context(), body); err != nil {
		g.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (g *Gateway) handleUninstalled(w http.ResponseWriter, r *http.Request) {
	if err := g.manager.HandleUninstall(r.Context(), chi.URLParam(r, "oauthId")); err != nil {
		g.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := g.readBody(w, r)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	result, err := g.manager.HandleEvent(r.Context(), body, SignedRequest(r))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	g.writeResult(w, r, result)
}

// SignedRequest extracts the HipChat JWT from the Authorization header
// ("JWT <token>") or the signed_request query parameter.
func SignedRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "JWT") {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("signed_request")
}

func (g *Gateway) writeResult(w http.ResponseWriter, r *http.Request, result any) {
	switch v := result.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case hipchat.Reply:
		g.writeJSON(w, r, http.StatusOK, v)
	case *hipchat.Reply:
		if v == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		g.writeJSON(w, r, http.StatusOK, v)
	case string:
		g.writeJSON(w, r, http.StatusOK, hipchat.TextReply(v))
	default:
		g.writeJSON(w, r, http.StatusOK, v)
	}
}

// StatusFor maps manager and dispatch errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errspkg.ErrMalformedPayload), errors.Is(err, errspkg.ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.Is(err, errspkg.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, errspkg.ErrAuthorityNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	fields := logging.LogFields{
		"request_id": RequestIDFromContext(r.Context()),
		"path":       r.URL.Path,
		"status":     status,
	}
	if status >= http.StatusInternalServerError {
		g.logger.Error("Request failed", err, fields)
		http.Error(w, http.StatusText(status), status)
		return
	}
	fields["error"] = err.Error()
	g.logger.Info("Request rejected", fields)
	http.Error(w, err.Error(), status)
}

func (g *Gateway) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	payload, err := jsoncodec.Marshal(v)
	if err != nil {
		g.logger.Error("Failed to encode response", err, logging.LogFields{
			"request_id": RequestIDFromContext(r.Context()),
		})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func (g *Gateway) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, g.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errspkg.ErrMalformedPayload, err)
	}
	return body, nil
}

func (g *Gateway) baseURL(r *http.Request) string {
	if g.cfg.BaseURL != "" {
		return g.cfg.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}

// withCORS sets CORS headers for the configured origins and answers
// preflight requests.
func (g *Gateway) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowed := g.allowedOrigin(r.Header.Get("Origin")); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) allowedOrigin(requestOrigin string) string {
	for _, allowed := range g.cfg.CORSAllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if strings.EqualFold(allowed, requestOrigin) {
			return requestOrigin
		}
	}
	return ""
}
