/*
Package runtime implements the hook registry, the dispatcher and the Bot that
lazily assembles the HipChat manager and web gateway around them.

# Package Structure

## Hooks (matcher.go, registry.go, dispatch.go)

Hook entries are stored per HookKey in registration order. Message,
notification and topic entries carry a Matcher as their first argument; the
Dispatcher skips entries whose matcher rejects the event text and strips the
matcher before invoking the callback.

## Bot (bot.go, registration.go)

Bot owns the registry and builds the gateway on first use: it runs the setup
hook, resolves the authority provider, wires the manager callbacks to
Dispatch and hands the manager to the web gateway. The typed On* methods wrap
Handler[T] values into untyped callbacks.

## Delegation (delegation.go)

Namespace forwards the registration DSL to a replaceable target held by a
Delegator, with optional per-operation overrides.

## Middleware and dispatch hooks (middleware.go, hooks.go)

Middleware wraps each callback invocation (logging, tracing, metrics).
DispatchHooks observe whole dispatches; stats (models.go), introspection
(webui.go) and the event mirror (mirror.go) are built on them.

# Sub-packages

  - authority/: installation stores (memory, BadgerDB)
  - config/: process configuration with TOML, environment and validation
  - errors/: sentinel errors and ConfigValidationError
  - hipchat/: HipChat data model and payload parsing
  - ids/: ULID generation for request and event ids
  - jsoncodec/: JSON marshaling utilities
  - logging/: logger interface and adapters
  - manager/: installation and webhook handling, signed request checks
  - metadata/: mirrored message metadata
  - web/: chi based HTTP gateway
*/
package runtime
