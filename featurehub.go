// Package featurehub provides the public API for embedding feature
// apps: independently delivered UI modules that are loaded at runtime
// and rendered into the host's tree.
//
// This is the recommended import for most hosts:
//
//	import "github.com/JorgeRod2594/feature-hub"
//
// Usage:
//
//	src := source.NewHTTP(source.NewDecoder(), source.WithBaseURL(cdn))
//	app := featurehub.New(featurehub.Config{
//	    Loader: src,
//	    Pages: []featurehub.Page{
//	        {Path: "/checkout", Title: "Checkout", Src: "apps/checkout.json"},
//	    },
//	    Static: featurehub.StaticConfig{Dir: "public"},
//	})
//	http.ListenAndServe(":8080", app)
package featurehub

import (
	"github.com/JorgeRod2594/feature-hub/pkg/async"
	"github.com/JorgeRod2594/feature-hub/pkg/document"
	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/loader"
	"github.com/JorgeRod2594/feature-hub/pkg/manager"
	"github.com/JorgeRod2594/feature-hub/pkg/server"
	"github.com/JorgeRod2594/feature-hub/pkg/source"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// =============================================================================
// Module loading (re-export from pkg/manager)
// =============================================================================

// Manager caches one async definition per module source and drives the
// loads that settle them.
type Manager = manager.Manager

// ModuleLoader resolves a module source to a feature app definition.
type ModuleLoader = manager.ModuleLoader

// ModuleLoaderFunc adapts a function to a ModuleLoader.
type ModuleLoaderFunc = manager.ModuleLoaderFunc

// ManagerOption configures a Manager.
type ManagerOption = manager.Option

// NewManager creates a Manager on top of the given module loader.
//
// Most hosts do not call this directly: New wires a Manager into the
// App. Use it when embedding loaders without the App shell.
func NewManager(ml ModuleLoader, opts ...ManagerOption) *Manager {
	return manager.New(ml, opts...)
}

// Manager options.
var (
	WithLogger    = manager.WithLogger
	WithTimeout   = manager.WithTimeout
	WithRetries   = manager.WithRetries
	WithValidator = manager.WithValidator
)

// DefaultLoadTimeout bounds a single module load attempt.
const DefaultLoadTimeout = manager.DefaultTimeout

// =============================================================================
// Definitions (re-export from pkg/feature)
// =============================================================================

// Definition is the loadable unit: what a module source resolves to.
type Definition = feature.Definition

// FeatureApp is an instantiated feature app.
type FeatureApp = feature.App

// Env is passed to a definition's Create on instantiation.
type Env = feature.Env

// ServiceRegistry holds shared services feature apps may look up.
type ServiceRegistry = feature.ServiceRegistry

// NewServiceRegistry returns an empty service registry.
func NewServiceRegistry() *ServiceRegistry {
	return feature.NewServiceRegistry()
}

// ValidateDefinition reports whether a definition can be instantiated.
var ValidateDefinition = feature.Validate

// =============================================================================
// Async values (re-export from pkg/async)
// =============================================================================

// Value is a settle-once async result that can be probed synchronously
// and subscribed to.
type Value[T any] = async.Value[T]

// ErrPending is returned by TryGet before a value settles.
var ErrPending = async.ErrPending

// NewPendingValue returns an unsettled value and the function that
// settles it. The settle function is first write wins.
func NewPendingValue[T any]() (*Value[T], func(T, error)) {
	return async.NewPending[T]()
}

// SettledValue returns a value already settled with v.
func SettledValue[T any](v T) *Value[T] {
	return async.Settled(v)
}

// FailedValue returns a value already settled with err.
func FailedValue[T any](err error) *Value[T] {
	return async.Failed[T](err)
}

// =============================================================================
// Loaders (re-export from pkg/loader)
// =============================================================================

// FeatureAppLoader mounts one feature app into the host tree and keeps
// its rendering in step with the definition's settlement.
type FeatureAppLoader = loader.FeatureAppLoader

// LoaderConfig configures a FeatureAppLoader.
type LoaderConfig = loader.Config

// NewLoader creates a FeatureAppLoader. See loader.New.
func NewLoader(cfg LoaderConfig) *FeatureAppLoader {
	return loader.New(cfg)
}

// Container instantiates and renders loaded feature apps.
type Container = loader.Container

// NewContainer returns the default container.
var NewContainer = loader.NewContainer

// DefinitionProvider resolves sources to async definitions.
type DefinitionProvider = loader.DefinitionProvider

// Invalidator is notified when a mounted loader needs re-rendering.
type Invalidator = loader.Invalidator

// InvalidatorFunc adapts a function to an Invalidator.
type InvalidatorFunc = loader.InvalidatorFunc

// =============================================================================
// Documents (re-export from pkg/document)
// =============================================================================

// StyleRegistry deduplicates stylesheet registration for one rendered
// document.
type StyleRegistry = document.StyleRegistry

// Stylesheet describes one stylesheet a feature app ships with.
type Stylesheet = document.Stylesheet

// NewStyleRegistry returns an empty registry.
func NewStyleRegistry() *StyleRegistry {
	return document.NewStyleRegistry()
}

// =============================================================================
// Serving (re-export from pkg/server)
// =============================================================================

// Page maps a route to a feature app.
type Page = server.Page

// SameOriginCheck is the default WebSocket origin policy.
var SameOriginCheck = server.SameOriginCheck

// =============================================================================
// Rendering (re-export from pkg/vdom)
// =============================================================================

// Component is anything that renders to a VNode.
type Component = vdom.Component

// VNode is a node in the host UI tree.
type VNode = vdom.VNode

// Props holds element attributes.
type Props = vdom.Props

// =============================================================================
// Source errors (re-export from pkg/source)
// =============================================================================

// Sentinel errors surfaced by the bundled module sources. Test with
// errors.Is.
var (
	ErrModuleNotFound    = source.ErrNotFound
	ErrModuleTooLarge    = source.ErrTooLarge
	ErrModuleDecode      = source.ErrDecode
	ErrUnsupportedSource = source.ErrUnsupported
)
