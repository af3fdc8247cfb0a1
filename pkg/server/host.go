// Package server provides the embedding host: an http.Handler that
// server-renders pages containing feature apps and keeps them fresh
// over a WebSocket live session.
//
// Each configured Page maps a route to one feature app source. A page
// request mounts a FeatureAppLoader, renders the full document, and
// unmounts; the rendered document owns its own stylesheet registry, so
// its head carries exactly the sheets the page's loaders registered.
//
// A client that opens /ws?page=<path> gets a live session: the same
// loader is mounted against a render loop, and every invalidation is
// pushed as a {"type":"replace","id":...,"html":...} message that swaps
// the loader's subtree in place.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JorgeRod2594/feature-hub/pkg/assets"
	"github.com/JorgeRod2594/feature-hub/pkg/document"
	"github.com/JorgeRod2594/feature-hub/pkg/loader"
	"github.com/JorgeRod2594/feature-hub/pkg/render"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// DefaultRenderTimeout bounds how long a page request waits for its
// feature app definition before rendering whatever state it has.
const DefaultRenderTimeout = 5 * time.Second

// Page maps a route to a feature app.
type Page struct {
	// Path is the route pattern, e.g. "/checkout".
	Path string

	// Title is the document title.
	Title string

	// Src is the module source for the page's feature app.
	Src string

	// Key distinguishes multiple instances of the same feature app.
	Key string

	// Stylesheets are registered when the page's loader mounts.
	Stylesheets []document.Stylesheet
}

// Config configures a Host.
type Config struct {
	// Provider resolves module sources to async definitions. Usually a
	// *manager.Manager.
	Provider loader.DefinitionProvider

	// Container instantiates and renders loaded feature apps.
	Container loader.Container

	// Pages is the route table.
	Pages []Page

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// RenderTimeout bounds the SSR wait for a definition.
	// Default: DefaultRenderTimeout.
	RenderTimeout time.Duration

	// Assets resolves configured stylesheet hrefs, e.g. to their
	// fingerprinted deploy names. Default: paths pass through.
	Assets assets.Resolver

	// Metrics exposes /metrics (prometheus default gatherer) when set.
	Metrics bool

	// CheckOrigin validates WebSocket origins. Default: same-origin.
	CheckOrigin func(*http.Request) bool
}

// Host serves the configured pages and their live sessions.
type Host struct {
	provider      loader.DefinitionProvider
	container     loader.Container
	pages         map[string]Page
	logger        *slog.Logger
	renderer      *render.Renderer
	renderTimeout time.Duration
	assets        assets.Resolver
	upgrader      websocket.Upgrader
	router        chi.Router
	sessions      *sessionSet
}

// New creates a Host from cfg. It panics without a Provider, there is
// nothing to serve.
func New(cfg Config) *Host {
	if cfg.Provider == nil {
		panic("server: Config.Provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = SameOriginCheck
	}
	renderTimeout := cfg.RenderTimeout
	if renderTimeout <= 0 {
		renderTimeout = DefaultRenderTimeout
	}
	resolver := cfg.Assets
	if resolver == nil {
		resolver = assets.NewPassthroughResolver("")
	}

	h := &Host{
		provider:      cfg.Provider,
		container:     cfg.Container,
		pages:         make(map[string]Page, len(cfg.Pages)),
		logger:        logger.With("component", "host"),
		renderer:      render.NewRenderer(render.RendererConfig{}),
		renderTimeout: renderTimeout,
		assets:        resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		sessions: newSessionSet(),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(RequestID)
	r.Use(RequestLogger(logger))

	for _, page := range cfg.Pages {
		h.pages[page.Path] = page
		r.Get(page.Path, h.pageHandler(page))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get(ClientScriptPath, handleClientScript)
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/ws", h.handleWebSocket)

	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Close shuts down every live session.
func (h *Host) Close() error {
	h.sessions.closeAll()
	return nil
}

// pageHandler renders one page per request. The request's document owns
// its stylesheet registry and loader; both are gone when the response
// is written.
func (h *Host) pageHandler(page Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.renderTimeout)
		defer cancel()

		// Wait for the shared definition so first paint has content.
		// On timeout or failure the loader still renders per its own
		// rules: empty, with the failure diagnostic already logged.
		value := h.provider.GetAsyncFeatureAppDefinition(page.Src, page.Key)
		value.Result(ctx)

		styles := document.NewStyleRegistry()
		l := loader.New(loader.Config{
			Provider:    h.provider,
			Container:   h.container,
			Styles:      styles,
			Stylesheets: h.pageStylesheets(page),
			Src:         page.Src,
			Key:         page.Key,
			Logger:      h.logger,
		})
		l.Mount()
		defer l.Unmount()

		doc := render.Page{
			Title:  page.Title,
			Lang:   "en",
			Styles: styles,
			Body:   vdom.El("div", vdom.Props{"id": containerID(page), "data-feature-src": page.Src}, l),
			Scripts: []render.ScriptTag{
				{Src: ClientScriptPath, Defer: true},
			},
		}

		// Stream: the head flushes before the loader subtree renders,
		// so the browser starts fetching stylesheets early.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		sr := render.NewStreamingRenderer(w, render.RendererConfig{})
		if err := sr.RenderPage(doc); err != nil {
			h.logger.Error("page render failed", "path", page.Path, "error", err)
		}
	}
}

// handleWebSocket upgrades the connection and runs a live session for
// the requested page.
func (h *Host) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pages[r.URL.Query().Get("page")]
	if !ok {
		http.Error(w, "unknown page", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sess := newLiveSession(h, conn, page)
	h.sessions.add(sess)
	defer h.sessions.remove(sess)

	sess.run()
}

// containerID returns the DOM id of a page's feature app container.
// The server-rendered document and the live session must agree on it,
// so it is derived from the page path, never from loader instances.
func containerID(page Page) string {
	slug := strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, page.Path), "-")
	if slug == "" {
		slug = "index"
	}
	return "feature-" + slug
}

// pageStylesheets resolves a page's configured stylesheet hrefs to
// their deploy names.
func (h *Host) pageStylesheets(page Page) []document.Stylesheet {
	if len(page.Stylesheets) == 0 {
		return nil
	}
	sheets := make([]document.Stylesheet, len(page.Stylesheets))
	for i, s := range page.Stylesheets {
		sheets[i] = document.Stylesheet{Href: h.assets.Asset(s.Href), Media: s.Media}
	}
	return sheets
}

// SameOriginCheck validates that the WebSocket request origin matches
// the host. This is the secure default for CheckOrigin.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}
