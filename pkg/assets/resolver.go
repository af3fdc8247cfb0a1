package assets

// Resolver provides asset path resolution.
// It combines manifest lookup with path prefixing.
type Resolver interface {
	// Asset resolves a source asset path to its full URL path,
	// including any configured prefix and fingerprinted filename.
	//
	// Example:
	//   resolver.Asset("checkout.css") → "/checkout.a1b2c3d4.css"
	Asset(source string) string
}

// manifestResolver wraps a Manifest to implement Resolver.
type manifestResolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver creates a Resolver from a Manifest with an optional path
// prefix. The prefix is prepended to all resolved paths; it should
// match the URL prefix the assets are served under.
//
// Example:
//
//	manifest, _ := assets.Load("public/manifest.json")
//	resolver := assets.NewResolver(manifest, "/")
//	resolver.Asset("checkout.css") // "/checkout.a1b2c3d4.css"
func NewResolver(m *Manifest, prefix string) Resolver {
	return &manifestResolver{
		manifest: m,
		prefix:   prefix,
	}
}

func (r *manifestResolver) Asset(source string) string {
	resolved := r.manifest.Resolve(source)
	return r.prefix + resolved
}

// passthrough returns assets unchanged (for development mode).
type passthrough struct {
	prefix string
}

// NewPassthroughResolver creates a resolver that returns paths
// unchanged. Use this in development where fingerprinting is disabled.
//
// The prefix is still applied, so dev and prod paths stay consistent:
//
//	// Development:
//	resolver := assets.NewPassthroughResolver("/")
//	resolver.Asset("checkout.css") // "/checkout.css"
//
//	// Production:
//	resolver := assets.NewResolver(manifest, "/")
//	resolver.Asset("checkout.css") // "/checkout.a1b2c3d4.css"
func NewPassthroughResolver(prefix string) Resolver {
	return &passthrough{prefix: prefix}
}

func (p *passthrough) Asset(source string) string {
	return p.prefix + source
}
