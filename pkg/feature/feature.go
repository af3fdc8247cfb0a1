// Package feature defines the loadable unit of the hub: a Definition
// describing a feature app and the factory for its instances, plus the
// shared services an instance may consume.
package feature

import (
	"errors"
	"fmt"
	"sync"

	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// App is an instantiated feature app. It renders into the host UI tree,
// which makes every App a vdom.Component. Implementations that also
// implement io.Closer are closed when the host detaches them.
type App interface {
	Render() *vdom.VNode
}

// Env is passed to a definition's Create when the host instantiates it.
type Env struct {
	// Config carries host-provided configuration for this instance.
	Config map[string]any

	// Services exposes shared services registered by the host.
	Services *ServiceRegistry

	// BaseURL is the URL the feature app was loaded from, usable for
	// resolving relative assets.
	BaseURL string
}

// Definition is the resolved, loadable unit a container knows how to
// instantiate and render.
type Definition struct {
	// Name identifies the feature app.
	Name string

	// Version is informational.
	Version string

	// Create builds a new instance. Called once per attached instance.
	Create func(env Env) (App, error)
}

// Validate reports whether def can be instantiated.
func Validate(def *Definition) error {
	if def == nil {
		return errors.New("feature: nil definition")
	}
	if def.Name == "" {
		return errors.New("feature: definition has no name")
	}
	if def.Create == nil {
		return fmt.Errorf("feature: definition %q has no create function", def.Name)
	}
	return nil
}

// ServiceRegistry holds shared services feature apps may look up by
// name. Registration is first come only: a duplicate name is an error,
// so two features cannot silently shadow each other's dependencies.
type ServiceRegistry struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewServiceRegistry returns an empty registry.
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{services: make(map[string]any)}
}

// Register adds a named service.
func (r *ServiceRegistry) Register(name string, svc any) error {
	if name == "" {
		return errors.New("feature: service name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[name]; ok {
		return fmt.Errorf("feature: service %q already registered", name)
	}
	r.services[name] = svc
	return nil
}

// Lookup returns the service registered under name.
func (r *ServiceRegistry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[name]
	return svc, ok
}

// Names returns the registered service names, unordered.
func (r *ServiceRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	return names
}
