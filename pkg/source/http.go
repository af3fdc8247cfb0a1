package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
)

// DefaultMaxModuleSize caps fetched modules at 16MB.
const DefaultMaxModuleSize = 16 << 20

// HTTP fetches modules over HTTP(S). Absolute srcs are fetched as
// given; relative srcs are resolved against the configured base URL.
type HTTP struct {
	client  *http.Client
	base    *url.URL
	maxSize int64
	decoder *Decoder
}

// HTTPOption configures an HTTP backend.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the backend's client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithBaseURL resolves relative srcs against base.
func WithBaseURL(base *url.URL) HTTPOption {
	return func(h *HTTP) { h.base = base }
}

// WithMaxSize caps the fetched module size in bytes.
func WithMaxSize(n int64) HTTPOption {
	return func(h *HTTP) { h.maxSize = n }
}

// NewHTTP creates an HTTP backend decoding with dec.
func NewHTTP(dec *Decoder, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client:  &http.Client{},
		maxSize: DefaultMaxModuleSize,
		decoder: dec,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// LoadModule implements manager.ModuleLoader.
func (h *HTTP) LoadModule(ctx context.Context, src string) (*feature.Definition, error) {
	target, err := h.resolve(src)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch module %q: %w", src, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch module %q: %w", src, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("fetch module %q: %w", src, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch module %q: unexpected status %d", src, resp.StatusCode)
	}

	data, err := readCapped(resp.Body, h.maxSize)
	if err != nil {
		return nil, fmt.Errorf("fetch module %q: %w", src, err)
	}
	return h.decoder.Decode(ctx, src, data)
}

func (h *HTTP) resolve(src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("module source %q: %w", src, err)
	}
	if u.IsAbs() {
		return src, nil
	}
	if h.base == nil {
		return "", fmt.Errorf("relative module source %q without base URL: %w", src, ErrUnsupported)
	}
	return h.base.ResolveReference(u).String(), nil
}

// readCapped reads r fully, failing with ErrTooLarge past max bytes.
// The extra byte on the limit detects overflow.
func readCapped(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrTooLarge
	}
	return data, nil
}
