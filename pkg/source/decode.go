package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// Manifest is the JSON module format: a feature app described by
// static markup.
type Manifest struct {
	Name        string               `json:"name"`
	Version     string               `json:"version,omitempty"`
	Markup      string               `json:"markup"`
	Stylesheets []ManifestStylesheet `json:"stylesheets,omitempty"`
}

// ManifestStylesheet is a stylesheet reference inside a manifest.
type ManifestStylesheet struct {
	Href  string `json:"href"`
	Media string `json:"media,omitempty"`
}

// Decoder turns fetched module bytes into a definition, dispatching on
// the module's extension. The zero value decodes manifests only; wasm
// decoding needs a runtime.
type Decoder struct {
	wasm *WasmRuntime
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithWasm enables .wasm module decoding on rt.
func WithWasm(rt *WasmRuntime) DecoderOption {
	return func(d *Decoder) { d.wasm = rt }
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode builds a definition from the module bytes fetched for src.
func (d *Decoder) Decode(ctx context.Context, src string, data []byte) (*feature.Definition, error) {
	switch ext := strings.ToLower(path.Ext(srcPath(src))); ext {
	case ".json":
		return decodeManifest(src, data)
	case ".wasm":
		if d.wasm == nil {
			return nil, fmt.Errorf("wasm module %q: no runtime configured: %w", src, ErrUnsupported)
		}
		return d.wasm.Definition(ctx, moduleName(src), data)
	default:
		return nil, fmt.Errorf("module %q: extension %q: %w", src, ext, ErrUnsupported)
	}
}

// srcPath strips scheme and query from a module source, leaving the
// path whose extension selects the decoder.
func srcPath(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	if u.Path != "" {
		return u.Path
	}
	return u.Opaque
}

// moduleName derives a fallback module name from the source path.
func moduleName(src string) string {
	base := path.Base(srcPath(src))
	return strings.TrimSuffix(base, path.Ext(base))
}

func decodeManifest(src string, data []byte) (*feature.Definition, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest %q: %w: %w", src, ErrDecode, err)
	}
	if m.Name == "" {
		m.Name = moduleName(src)
	}

	app := &manifestApp{markup: m.Markup, stylesheets: m.Stylesheets}
	return &feature.Definition{
		Name:    m.Name,
		Version: m.Version,
		Create: func(feature.Env) (feature.App, error) {
			return app, nil
		},
	}, nil
}

// manifestApp renders a manifest's markup verbatim, preceded by its
// stylesheet links so the subtree is self-contained.
type manifestApp struct {
	markup      string
	stylesheets []ManifestStylesheet
}

func (a *manifestApp) Render() *vdom.VNode {
	if len(a.stylesheets) == 0 {
		return vdom.Raw(a.markup)
	}

	nodes := make([]*vdom.VNode, 0, len(a.stylesheets)+1)
	for _, s := range a.stylesheets {
		props := vdom.Props{"rel": "stylesheet", "href": s.Href}
		if s.Media != "" {
			props["media"] = s.Media
		}
		nodes = append(nodes, vdom.El("link", props))
	}
	nodes = append(nodes, vdom.Raw(a.markup))
	return vdom.Fragment(nodes)
}
