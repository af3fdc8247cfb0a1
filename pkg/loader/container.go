package loader

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// DefaultContainer instantiates definitions and renders their apps. One
// app instance is created per (definition, key) pair and reused across
// renders. An instantiation failure is absorbed: logged once, rendered
// empty, and not retried.
type DefaultContainer struct {
	env    feature.Env
	logger *slog.Logger

	mu   sync.Mutex
	apps map[instanceKey]*instance
}

type instanceKey struct {
	def *feature.Definition
	key string
}

type instance struct {
	app feature.App
	err error
}

// NewContainer creates a container that instantiates apps with env.
func NewContainer(env feature.Env, logger *slog.Logger) *DefaultContainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultContainer{
		env:    env,
		logger: logger,
		apps:   make(map[instanceKey]*instance),
	}
}

// RenderFeature implements Container.
func (c *DefaultContainer) RenderFeature(_ DefinitionProvider, def *feature.Definition, key string) *vdom.VNode {
	inst := c.instanceFor(def, key)
	if inst.err != nil || inst.app == nil {
		return vdom.Empty()
	}
	return &vdom.VNode{Kind: vdom.KindComponent, Comp: inst.app}
}

func (c *DefaultContainer) instanceFor(def *feature.Definition, key string) *instance {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := instanceKey{def: def, key: key}
	if inst, ok := c.apps[k]; ok {
		return inst
	}

	app, err := def.Create(c.env)
	if err != nil {
		c.logger.Error("feature app instantiation failed",
			"feature", def.Name, "key", key, "error", err)
	}
	inst := &instance{app: app, err: err}
	c.apps[k] = inst
	return inst
}

// Release detaches the instance for (def, key), closing it if the app
// implements io.Closer.
func (c *DefaultContainer) Release(def *feature.Definition, key string) error {
	c.mu.Lock()
	k := instanceKey{def: def, key: key}
	inst, ok := c.apps[k]
	delete(c.apps, k)
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return closeApp(inst)
}

// Close implements io.Closer, releasing every instance.
func (c *DefaultContainer) Close() error {
	c.mu.Lock()
	apps := c.apps
	c.apps = make(map[instanceKey]*instance)
	c.mu.Unlock()

	var errs []error
	for _, inst := range apps {
		if err := closeApp(inst); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func closeApp(inst *instance) error {
	if closer, ok := inst.app.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
