package featurehub

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JorgeRod2594/feature-hub/pkg/assets"
	"github.com/JorgeRod2594/feature-hub/pkg/loader"
	"github.com/JorgeRod2594/feature-hub/pkg/manager"
	"github.com/JorgeRod2594/feature-hub/pkg/middleware"
	"github.com/JorgeRod2594/feature-hub/pkg/server"
)

// =============================================================================
// App Type
// =============================================================================

// App is the main entry point for hosting feature apps. It wraps the
// definition manager, the page host, and asset serving into a single
// http.Handler.
//
// Create an App with featurehub.New():
//
//	app := featurehub.New(featurehub.Config{
//	    Loader:  src,
//	    Pages:   pages,
//	    Static:  featurehub.StaticConfig{Dir: "public"},
//	    Metrics: true,
//	})
//	http.ListenAndServe(":8080", app)
type App struct {
	// Internal components
	manager *manager.Manager
	host    *server.Host

	// Asset serving
	assetDir    string
	assetPrefix string
	assetFS     http.FileSystem

	// Configuration
	config Config
	logger *slog.Logger
}

// New creates a new feature hub application with the given
// configuration.
func New(cfg Config) *App {
	if cfg.Loader == nil {
		panic("featurehub: Config.Loader is required")
	}

	// Apply defaults
	if cfg.Static.Prefix == "" {
		cfg.Static.Prefix = "/"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Observability wraps the module loader, innermost first.
	ml := cfg.Loader
	var mws []middleware.Middleware
	if cfg.Metrics {
		mws = append(mws, middleware.Metrics())
	}
	if cfg.Tracing {
		mws = append(mws, middleware.Trace())
	}
	if len(mws) > 0 {
		ml = middleware.Chain(ml, mws...)
	}

	opts := []manager.Option{manager.WithLogger(logger)}
	if cfg.Manager.Timeout > 0 {
		opts = append(opts, manager.WithTimeout(cfg.Manager.Timeout))
	}
	if cfg.Manager.Retries > 0 {
		opts = append(opts, manager.WithRetries(cfg.Manager.Retries, cfg.Manager.RetryDelay))
	}
	m := manager.New(ml, opts...)

	app := &App{
		manager:     m,
		assetDir:    cfg.Static.Dir,
		assetPrefix: cfg.Static.Prefix,
		config:      cfg,
		logger:      logger,
	}

	// Set up the asset file system if configured
	if cfg.Static.Dir != "" {
		app.assetFS = http.Dir(cfg.Static.Dir)
	}

	app.host = server.New(buildHostConfig(cfg, m, assetResolver(cfg, logger), logger))

	return app
}

// assetResolver builds the stylesheet href resolver. A configured but
// unreadable manifest degrades to passthrough; fingerprinting is a
// deploy refinement, not a startup requirement.
func assetResolver(cfg Config, logger *slog.Logger) assets.Resolver {
	prefix := cfg.Static.Prefix
	if prefix != "/" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if cfg.Static.ManifestPath == "" {
		return assets.NewPassthroughResolver("")
	}
	manifest, err := assets.Load(cfg.Static.ManifestPath)
	if err != nil {
		logger.Warn("asset manifest unreadable, serving unfingerprinted paths",
			"path", cfg.Static.ManifestPath, "error", err)
		return assets.NewPassthroughResolver("")
	}
	return assets.NewResolver(manifest, prefix)
}

// =============================================================================
// http.Handler Implementation
// =============================================================================

// ServeHTTP implements http.Handler.
// It routes requests to assets or to the page host (pages, the
// WebSocket endpoint, health and metrics).
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// Check for assets first (if configured)
	if a.assetFS != nil && a.shouldServeAsset(path) {
		a.serveAsset(w, r)
		return
	}

	a.host.ServeHTTP(w, r)
}

// Handler returns the App as an http.Handler.
// This is useful for explicit type conversion or middleware wrapping.
func (a *App) Handler() http.Handler {
	return a
}

// =============================================================================
// Page Registration
// =============================================================================

// Preload starts loading a module source without rendering it, so a
// later page hit finds the definition already settled.
func (a *App) Preload(src string) {
	a.manager.Preload(src)
}

// PreloadPages starts loading every configured page's module.
func (a *App) PreloadPages() {
	for _, page := range a.config.Pages {
		a.manager.Preload(page.Src)
	}
}

// =============================================================================
// Component Access
// =============================================================================

// Manager returns the underlying definition manager for advanced use.
// Most apps won't need this.
func (a *App) Manager() *manager.Manager {
	return a.manager
}

// Host returns the underlying page host for advanced configuration.
// Most apps won't need this.
func (a *App) Host() *server.Host {
	return a.host
}

// Config returns the app configuration.
func (a *App) Config() Config {
	return a.config
}

// Close shuts down live sessions.
func (a *App) Close() error {
	return a.host.Close()
}

// Run starts an HTTP server for the app and blocks until it stops.
//
//	app := featurehub.New(cfg)
//	app.Run(":8080")
func (a *App) Run(addr string) error {
	srv := &http.Server{Addr: addr, Handler: a}
	a.logger.Info("feature hub listening", "addr", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// buildHostConfig converts the user-facing Config into the host's.
func buildHostConfig(cfg Config, m *manager.Manager, resolver assets.Resolver, logger *slog.Logger) server.Config {
	return server.Config{
		Provider:      m,
		Container:     loader.NewContainer(cfg.Env, logger),
		Pages:         cfg.Pages,
		Logger:        logger,
		RenderTimeout: cfg.RenderTimeout,
		Assets:        resolver,
		Metrics:       cfg.Metrics,
		CheckOrigin:   cfg.CheckOrigin,
	}
}

// trimAssetPrefix removes the asset prefix from a URL path. Returns the
// relative file path within the asset directory.
func (a *App) trimAssetPrefix(urlPath string) string {
	prefix := a.assetPrefix
	if prefix == "" {
		prefix = "/"
	}

	// Ensure prefix ends with /
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	// Handle root prefix specially
	if prefix == "/" {
		// For root prefix, all paths are candidates
		return strings.TrimPrefix(urlPath, "/")
	}

	if !strings.HasPrefix(urlPath, prefix) {
		return ""
	}

	return strings.TrimPrefix(urlPath, prefix)
}
