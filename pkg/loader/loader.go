// Package loader implements the feature app loader component. A loader
// bridges one asynchronously loaded feature app definition into the
// host UI tree: it asks the manager for the shared async value, renders
// synchronously when the outcome is already known, defers rendering
// until settlement otherwise, and guards every late update against
// unmount and request identity changes.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/JorgeRod2594/feature-hub/pkg/async"
	"github.com/JorgeRod2594/feature-hub/pkg/document"
	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// DefinitionProvider hands out the shared async value for a source URL.
// *manager.Manager satisfies it.
type DefinitionProvider interface {
	GetAsyncFeatureAppDefinition(src, key string) *async.Value[*feature.Definition]
}

// Container renders a resolved definition. Instantiation and its
// failures are the container's own concern; the loader only delegates.
type Container interface {
	RenderFeature(provider DefinitionProvider, def *feature.Definition, key string) *vdom.VNode
}

// Invalidator is notified when a loader settles after its first render
// and needs the host to re-render it.
type Invalidator interface {
	MarkDirty()
}

// InvalidatorFunc adapts a function to Invalidator.
type InvalidatorFunc func()

// MarkDirty implements Invalidator.
func (f InvalidatorFunc) MarkDirty() { f() }

var nextLoaderID atomic.Uint64

// Config configures a FeatureAppLoader.
type Config struct {
	// Provider hands out async definitions. Required.
	Provider DefinitionProvider

	// Container renders resolved definitions. Required for non-empty
	// success renders.
	Container Container

	// Styles is the shared per-document style registry. Optional.
	Styles *document.StyleRegistry

	// Stylesheets are registered with Styles on mount, in order.
	Stylesheets []document.Stylesheet

	// Src is the module URL to load.
	Src string

	// Key distinguishes multiple instances of the same feature app in
	// diagnostics. Optional.
	Key string

	// Logger receives the load failure diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Invalidator is told when an asynchronous settlement requires a
	// re-render. Optional.
	Invalidator Invalidator
}

// outcome mirrors one settled async value. At most one of def and err
// is set.
type outcome struct {
	def *feature.Definition
	err error
}

// FeatureAppLoader loads the feature app for a source URL and renders
// it through the container once available. It implements
// vdom.Component.
type FeatureAppLoader struct {
	id          uint64
	provider    DefinitionProvider
	container   Container
	styles      *document.StyleRegistry
	logger      *slog.Logger
	invalidator Invalidator

	mu          sync.Mutex
	src         string
	key         string
	stylesheets []document.Stylesheet
	mounted     bool
	disposed    bool
	generation  uint64
	settled     *outcome
}

// New creates a loader. It observes nothing until Mount is called.
func New(cfg Config) *FeatureAppLoader {
	if cfg.Provider == nil {
		panic("loader: Config.Provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureAppLoader{
		id:          nextLoaderID.Add(1),
		provider:    cfg.Provider,
		container:   cfg.Container,
		styles:      cfg.Styles,
		logger:      logger,
		invalidator: cfg.Invalidator,
		src:         cfg.Src,
		key:         cfg.Key,
		stylesheets: cfg.Stylesheets,
	}
}

// ID returns the instance identifier, unique per process.
func (l *FeatureAppLoader) ID() string {
	return fmt.Sprintf("f%d", l.id)
}

// Src returns the current source URL.
func (l *FeatureAppLoader) Src() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src
}

// Key returns the current key.
func (l *FeatureAppLoader) Key() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key
}

// Mount attaches the loader: it registers the configured stylesheets
// with the shared registry and begins observing the request. Calling
// Mount a second time is a no-op.
func (l *FeatureAppLoader) Mount() {
	l.mu.Lock()
	if l.mounted || l.disposed {
		l.mu.Unlock()
		return
	}
	l.mounted = true
	gen := l.generation
	src, key := l.src, l.key
	sheets := l.stylesheets
	l.mu.Unlock()

	if l.styles != nil {
		for _, s := range sheets {
			l.styles.EnsureRegistered(s)
		}
	}

	l.observe(gen, src, key)
}

// Unmount detaches the loader. The flag flips once; later settlements
// no longer update state or trigger renders. Failure diagnostics still
// fire. The underlying load is not cancelled, it is not cancellable.
func (l *FeatureAppLoader) Unmount() {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return
	}
	l.mounted = false
	l.disposed = true
	l.mu.Unlock()
}

// SetSource switches the loader to a new request identity. State from
// the prior request is discarded: a settlement of the old generation no
// longer updates state, though its failure diagnostic still fires with
// the old src and key.
func (l *FeatureAppLoader) SetSource(src, key string) {
	l.mu.Lock()
	if l.disposed || (src == l.src && key == l.key) {
		l.mu.Unlock()
		return
	}
	l.src = src
	l.key = key
	l.generation++
	l.settled = nil
	gen := l.generation
	mounted := l.mounted
	l.mu.Unlock()

	if mounted {
		l.observe(gen, src, key)
	}
}

// Render implements vdom.Component. While the request is pending, and
// after a failure, it renders an empty fragment; a loaded definition is
// delegated to the container. Errors never escape the render path.
func (l *FeatureAppLoader) Render() *vdom.VNode {
	l.mu.Lock()
	oc := l.settled
	key := l.key
	l.mu.Unlock()

	if oc == nil || oc.err != nil || l.container == nil {
		return vdom.Empty()
	}
	return l.container.RenderFeature(l.provider, oc.def, key)
}

// observe fetches the shared async value and applies its outcome: in
// place when already settled, otherwise via subscription. The sync path
// skips the invalidator, the first render has not happened yet.
func (l *FeatureAppLoader) observe(gen uint64, src, key string) {
	value := l.provider.GetAsyncFeatureAppDefinition(src, key)

	def, err := value.TryGet()
	if err == nil {
		l.apply(gen, src, key, def, nil, false)
		return
	}
	if !errors.Is(err, async.ErrPending) {
		l.apply(gen, src, key, nil, err, false)
		return
	}

	value.Subscribe(func(def *feature.Definition, err error) {
		l.apply(gen, src, key, def, err, true)
	})
}

// apply records one settlement. It runs exactly once per generation:
// either synchronously from observe or from the single subscription
// callback. The failure diagnostic is therefore emitted exactly once
// per failed request, regardless of mount state or a request identity
// that has moved on; only the state update and the re-render
// notification are guarded.
func (l *FeatureAppLoader) apply(gen uint64, src, key string, def *feature.Definition, err error, notify bool) {
	if err != nil {
		l.logger.Error(
			fmt.Sprintf("The feature app for the url %q and the key %q could not be loaded.", src, key),
			"error", err,
		)
	}

	l.mu.Lock()
	if !l.mounted || gen != l.generation || l.settled != nil {
		l.mu.Unlock()
		return
	}
	l.settled = &outcome{def: def, err: err}
	l.mu.Unlock()

	if notify && l.invalidator != nil {
		l.invalidator.MarkDirty()
	}
}
