// Package manager owns feature app definition loads. It deduplicates
// loads by source URL and hands out one shared async value per source,
// so any number of loaders observing the same URL wait on the same
// settlement.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JorgeRod2594/feature-hub/pkg/async"
	"github.com/JorgeRod2594/feature-hub/pkg/feature"
)

const (
	// DefaultTimeout bounds a single load attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryDelay is the pause between retry attempts.
	DefaultRetryDelay = 500 * time.Millisecond
)

// ModuleLoader fetches and evaluates the feature app module at src.
type ModuleLoader interface {
	LoadModule(ctx context.Context, src string) (*feature.Definition, error)
}

// ModuleLoaderFunc adapts a function to a ModuleLoader.
type ModuleLoaderFunc func(ctx context.Context, src string) (*feature.Definition, error)

// LoadModule implements ModuleLoader.
func (f ModuleLoaderFunc) LoadModule(ctx context.Context, src string) (*feature.Definition, error) {
	return f(ctx, src)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTimeout bounds each load attempt.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithRetries retries failed load attempts up to n extra times, pausing
// delay between attempts. Validation failures are never retried.
func WithRetries(n int, delay time.Duration) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retries = n
		}
		if delay > 0 {
			m.retryDelay = delay
		}
	}
}

// WithValidator replaces the definition validator. Defaults to
// feature.Validate.
func WithValidator(fn func(*feature.Definition) error) Option {
	return func(m *Manager) {
		if fn != nil {
			m.validate = fn
		}
	}
}

// Manager deduplicates feature app definition loads.
type Manager struct {
	loader     ModuleLoader
	logger     *slog.Logger
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	validate   func(*feature.Definition) error

	mu    sync.Mutex
	cache map[string]*async.Value[*feature.Definition]
}

// New creates a Manager that loads modules through loader.
func New(loader ModuleLoader, opts ...Option) *Manager {
	m := &Manager{
		loader:     loader,
		logger:     slog.Default(),
		timeout:    DefaultTimeout,
		retryDelay: DefaultRetryDelay,
		validate:   feature.Validate,
		cache:      make(map[string]*async.Value[*feature.Definition]),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetAsyncFeatureAppDefinition returns the shared async value for src.
// Repeated calls with the same src return the identical value and the
// load runs at most once. The key is diagnostic context for callers and
// does not participate in identity.
func (m *Manager) GetAsyncFeatureAppDefinition(src, key string) *async.Value[*feature.Definition] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.cache[src]; ok {
		return v
	}

	m.logger.Debug("loading feature app definition", "src", src, "key", key)
	v := async.New(func() (*feature.Definition, error) {
		return m.load(src)
	})
	m.cache[src] = v
	return v
}

// Preload starts loading src without waiting for the result.
func (m *Manager) Preload(src string) {
	m.GetAsyncFeatureAppDefinition(src, "")
}

// Known reports whether a load for src has been started.
func (m *Manager) Known(src string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cache[src]
	return ok
}

// Len returns the number of sources the manager has seen.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// load runs the attempt loop for one source.
func (m *Manager) load(src string) (*feature.Definition, error) {
	var lastErr error
	for attempt := 0; attempt <= m.retries; attempt++ {
		if attempt > 0 {
			m.logger.Warn("retrying feature app load", "src", src, "attempt", attempt)
			time.Sleep(m.retryDelay)
		}

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		def, err := m.loader.LoadModule(ctx, src)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}

		if err := m.validate(def); err != nil {
			// A structurally invalid module will not get better on retry.
			return nil, fmt.Errorf("invalid feature app module %q: %w", src, err)
		}
		return def, nil
	}
	return nil, fmt.Errorf("load feature app module %q: %w", src, lastErr)
}
