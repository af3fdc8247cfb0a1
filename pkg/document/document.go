// Package document tracks per-document side effects shared by every
// feature app loader in the process, most importantly the set of external
// stylesheets already inserted into the document head.
package document

import "sync"

// Stylesheet describes one external stylesheet resource.
type Stylesheet struct {
	Href  string // href attribute, identity of the resource
	Media string // media attribute, optional
}

// StyleRegistry records which stylesheet hrefs have been inserted into
// the shared document. Insertion is idempotent: an href is recorded at
// most once for the lifetime of the registry, no matter how many loader
// instances ask for it. Entries are never removed, matching the
// permanent nature of a loaded stylesheet.
type StyleRegistry struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []Stylesheet
}

// NewStyleRegistry returns an empty registry.
func NewStyleRegistry() *StyleRegistry {
	return &StyleRegistry{seen: make(map[string]struct{})}
}

// EnsureRegistered records s if its href has not been seen before and
// reports whether this call inserted it. The check and the insert are a
// single atomic step. First write wins: a later call with the same href
// and a different media is a no-op.
func (r *StyleRegistry) EnsureRegistered(s Stylesheet) bool {
	if s.Href == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[s.Href]; ok {
		return false
	}
	r.seen[s.Href] = struct{}{}
	r.order = append(r.order, s)
	return true
}

// Has reports whether href has been registered.
func (r *StyleRegistry) Has(href string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[href]
	return ok
}

// Stylesheets returns the registered stylesheets in insertion order.
func (r *StyleRegistry) Stylesheets() []Stylesheet {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stylesheet, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered stylesheets.
func (r *StyleRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
