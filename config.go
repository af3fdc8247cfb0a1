package featurehub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/JorgeRod2594/feature-hub/pkg/manager"
	"github.com/JorgeRod2594/feature-hub/pkg/server"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the main application configuration.
// This is the user-friendly entry point for configuring a feature hub.
type Config struct {
	// Loader resolves module sources to feature app definitions.
	// Required. Usually one of the pkg/source backends, or a Mux over
	// several.
	Loader ModuleLoader

	// Pages is the route table: each page hosts one feature app.
	Pages []Page

	// Static configures asset serving for module bundles (manifests,
	// wasm binaries, stylesheets).
	Static StaticConfig

	// Manager tunes definition loading.
	Manager ManagerConfig

	// Env is handed to every instantiated feature app. Use it to expose
	// shared services and host configuration.
	Env Env

	// Metrics instruments module loads and exposes /metrics.
	Metrics bool

	// Tracing wraps module loads in OpenTelemetry spans.
	Tracing bool

	// RenderTimeout bounds how long a page request waits for its module
	// before rendering. Default: server.DefaultRenderTimeout.
	RenderTimeout time.Duration

	// CheckOrigin validates WebSocket origins.
	// Default: same-origin only.
	CheckOrigin func(*http.Request) bool

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// ManagerConfig tunes how module definitions are loaded.
type ManagerConfig struct {
	// Timeout bounds a single load attempt.
	// Default: DefaultLoadTimeout.
	Timeout time.Duration

	// Retries is the number of additional attempts after a failed load.
	// Default: 0 (one attempt).
	Retries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// StaticConfig configures asset serving.
type StaticConfig struct {
	// Dir is the directory containing assets (e.g., "public").
	// Files in this directory are served at the URL prefix.
	Dir string

	// Prefix is the URL path prefix for assets (e.g., "/").
	// A file at public/checkout.json with Prefix="/" is served at
	// /checkout.json. Default: "/".
	Prefix string

	// CacheControl determines caching behavior for assets.
	// Default: CacheControlNone (no caching headers).
	CacheControl CacheControlStrategy

	// ManifestPath points at a fingerprint manifest (manifest.json).
	// When set and readable, configured stylesheet hrefs resolve to
	// their fingerprinted names.
	ManifestPath string

	// Headers are custom headers to add to all asset responses.
	Headers map[string]string
}

// CacheControlStrategy determines caching behavior for assets.
type CacheControlStrategy int

const (
	// CacheControlNone adds no caching headers.
	// Use in development for instant updates.
	CacheControlNone CacheControlStrategy = iota

	// CacheControlProduction uses appropriate caching:
	// - Fingerprinted files (*.abc123.css): immutable, 1 year max-age
	// - Other files: short cache with revalidation
	CacheControlProduction
)

// =============================================================================
// Default Configurations
// =============================================================================

// DefaultConfig returns a Config with sensible defaults. Loader must
// still be set.
func DefaultConfig() Config {
	return Config{
		Static:        DefaultStaticConfig(),
		Manager:       DefaultManagerConfig(),
		RenderTimeout: server.DefaultRenderTimeout,
	}
}

// DefaultStaticConfig returns a StaticConfig with sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		Prefix:       "/",
		CacheControl: CacheControlNone,
	}
}

// DefaultManagerConfig returns a ManagerConfig with sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Timeout: manager.DefaultTimeout,
	}
}
