// Package middleware provides observability decorators for module
// loaders.
//
// Decorators wrap a manager.ModuleLoader and compose with Chain:
//
//	loader := middleware.Chain(mux,
//	    middleware.Metrics(middleware.WithNamespace("myapp")),
//	    middleware.Trace(),
//	)
//	mgr := manager.New(loader)
//
// Metrics records Prometheus counters and a load-duration histogram;
// Trace creates an OpenTelemetry span per load. The tracer uses the
// global tracer provider, configure it in main() before serving.
package middleware

import (
	"github.com/JorgeRod2594/feature-hub/pkg/manager"
)

// Middleware decorates a module loader.
type Middleware func(manager.ModuleLoader) manager.ModuleLoader

// Chain wraps loader with mws. The first middleware is outermost: it
// sees the call first and the result last.
func Chain(loader manager.ModuleLoader, mws ...Middleware) manager.ModuleLoader {
	for i := len(mws) - 1; i >= 0; i-- {
		loader = mws[i](loader)
	}
	return loader
}
