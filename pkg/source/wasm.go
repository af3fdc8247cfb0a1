package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// renderExport is the function a wasm feature app must export. It takes
// no arguments and returns one u64: pointer<<32 | length of UTF-8 HTML
// in the module's memory.
const renderExport = "render"

// DefaultMemoryPages caps each wasm instance at 16MB (64KB pages).
const DefaultMemoryPages = 256

// WasmRuntime hosts wasm feature apps on a shared wazero runtime with
// WASI preview1 available. Modules are compiled once per load; each app
// instance gets its own module instance.
type WasmRuntime struct {
	runtime wazero.Runtime
	logger  *slog.Logger
	names   atomic.Uint64
}

// WasmOption configures a WasmRuntime.
type WasmOption func(*wasmConfig)

type wasmConfig struct {
	memoryPages uint32
	logger      *slog.Logger
}

// WithMemoryPages caps instance memory in 64KB pages.
func WithMemoryPages(pages uint32) WasmOption {
	return func(c *wasmConfig) { c.memoryPages = pages }
}

// WithWasmLogger sets the logger wasm apps report render failures to.
func WithWasmLogger(logger *slog.Logger) WasmOption {
	return func(c *wasmConfig) { c.logger = logger }
}

// NewWasmRuntime creates the shared runtime. Close it when the host
// shuts down; closing invalidates every app instantiated from it.
func NewWasmRuntime(ctx context.Context, opts ...WasmOption) *WasmRuntime {
	cfg := wasmConfig{memoryPages: DefaultMemoryPages, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithMemoryLimitPages(cfg.memoryPages))
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	return &WasmRuntime{runtime: r, logger: cfg.logger}
}

// Close releases the runtime and every module compiled on it.
func (rt *WasmRuntime) Close(ctx context.Context) error {
	return rt.runtime.Close(ctx)
}

// Definition compiles code and returns a definition whose apps run it.
// Compilation happens here, once; Create instantiates a fresh module
// per app. A module without the render export is rejected up front.
func (rt *WasmRuntime) Definition(ctx context.Context, name string, code []byte) (*feature.Definition, error) {
	compiled, err := rt.runtime.CompileModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("wasm module %q: %w: %w", name, ErrDecode, err)
	}
	if _, ok := compiled.ExportedFunctions()[renderExport]; !ok {
		_ = compiled.Close(ctx)
		return nil, fmt.Errorf("wasm module %q: no %q export: %w", name, renderExport, ErrDecode)
	}

	return &feature.Definition{
		Name: name,
		Create: func(feature.Env) (feature.App, error) {
			instName := fmt.Sprintf("%s.%d", name, rt.names.Add(1))
			mod, err := rt.runtime.InstantiateModule(ctx, compiled,
				wazero.NewModuleConfig().
					WithName(instName).
					WithStartFunctions("_initialize"))
			if err != nil {
				return nil, fmt.Errorf("instantiate wasm module %q: %w", name, err)
			}
			return &wasmApp{
				name:   name,
				mod:    mod,
				render: mod.ExportedFunction(renderExport),
				logger: rt.logger,
			}, nil
		},
	}, nil
}

// wasmApp is one running instance of a wasm feature app.
type wasmApp struct {
	name   string
	mod    api.Module
	render api.Function
	logger *slog.Logger
}

// Render calls the module's render export and embeds the returned HTML
// verbatim. Guest traps and bad pointers render empty; the render path
// never fails.
func (a *wasmApp) Render() *vdom.VNode {
	results, err := a.render.Call(context.Background())
	if err != nil {
		a.logger.Error("wasm render failed", "feature", a.name, "error", err)
		return vdom.Empty()
	}
	if len(results) != 1 {
		a.logger.Error("wasm render returned no result", "feature", a.name)
		return vdom.Empty()
	}

	ptr, n := unpackResult(results[0])
	data, ok := a.mod.Memory().Read(ptr, n)
	if !ok {
		a.logger.Error("wasm render result out of memory range",
			"feature", a.name, "ptr", ptr, "len", n)
		return vdom.Empty()
	}
	return vdom.Raw(string(data))
}

// Close releases the instance's memory and exports.
func (a *wasmApp) Close() error {
	return a.mod.Close(context.Background())
}

func packResult(ptr, n uint32) uint64 {
	return uint64(ptr)<<32 | uint64(n)
}

func unpackResult(v uint64) (ptr, n uint32) {
	return uint32(v >> 32), uint32(v)
}
