// Package source provides module loaders: the backends a Manager uses
// to turn a module URL into a feature app definition.
//
// Four backends are included:
//
//   - Static: an in-process registry for definitions compiled into the
//     host binary
//   - HTTP: fetches modules from a remote endpoint
//   - File: reads modules from a local directory, jailed to its root
//   - S3: fetches modules from an S3 bucket
//
// The fetching backends hand the raw bytes to a Decoder, which builds a
// definition based on the module's extension: .json manifests render
// static markup, .wasm binaries are executed with wazero.
//
// A Mux routes sources to backends by URL scheme:
//
//	mux := source.NewMux()
//	mux.Handle("https", source.NewHTTP(dec))
//	mux.Handle("s3", source.NewS3(client, "my-bucket", dec))
//	mux.Fallback(source.NewFile("./modules", dec))
//	mgr := manager.New(mux)
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
)

// ErrNotFound is returned when a module does not exist at the source.
var ErrNotFound = errors.New("source: module not found")

// ErrTooLarge is returned when a module exceeds the size limit.
var ErrTooLarge = errors.New("source: module too large")

// ErrDecode is returned when module bytes cannot be decoded into a
// definition.
var ErrDecode = errors.New("source: module decode failed")

// ErrUnsupported is returned for module extensions and URL schemes no
// backend handles.
var ErrUnsupported = errors.New("source: unsupported module source")

// Static is an in-process module registry. Definitions are registered
// under the exact src string they will be requested with.
type Static struct {
	mu   sync.RWMutex
	defs map[string]*feature.Definition
}

// NewStatic creates an empty registry.
func NewStatic() *Static {
	return &Static{defs: make(map[string]*feature.Definition)}
}

// Register adds a definition under src, replacing any previous one.
func (s *Static) Register(src string, def *feature.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[src] = def
}

// LoadModule implements manager.ModuleLoader.
func (s *Static) LoadModule(_ context.Context, src string) (*feature.Definition, error) {
	s.mu.RLock()
	def, ok := s.defs[src]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("static module %q: %w", src, ErrNotFound)
	}
	return def, nil
}

// Loader loads a module definition from a source URL. It is the same
// contract as manager.ModuleLoader, restated here so backends do not
// depend on the manager package.
type Loader interface {
	LoadModule(ctx context.Context, src string) (*feature.Definition, error)
}

// Mux routes module sources to backends by URL scheme. Sources without
// a scheme, and schemes with no registered backend, go to the fallback.
type Mux struct {
	mu       sync.RWMutex
	backends map[string]Loader
	fallback Loader
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{backends: make(map[string]Loader)}
}

// Handle registers a backend for a URL scheme, e.g. "https" or "s3".
func (m *Mux) Handle(scheme string, l Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backends[scheme] = l
}

// Fallback sets the backend for sources without a routable scheme.
func (m *Mux) Fallback(l Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = l
}

// LoadModule implements manager.ModuleLoader. The src is passed to the
// selected backend unchanged.
func (m *Mux) LoadModule(ctx context.Context, src string) (*feature.Definition, error) {
	scheme := ""
	if u, err := url.Parse(src); err == nil {
		scheme = u.Scheme
	}

	m.mu.RLock()
	l, ok := m.backends[scheme]
	if !ok {
		l = m.fallback
	}
	m.mu.RUnlock()

	if l == nil {
		return nil, fmt.Errorf("no backend for module source %q: %w", src, ErrUnsupported)
	}
	return l.LoadModule(ctx, src)
}
