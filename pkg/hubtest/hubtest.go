// Package hubtest provides helpers for testing feature hub components:
// rendering assertions, a recording slog handler, and a scripted module
// loader.
package hubtest

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JorgeRod2594/feature-hub/pkg/async"
	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/render"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// RenderToString renders a VNode and returns the HTML string.
// This is useful for asserting on rendered output.
//
// Example:
//
//	html := hubtest.RenderToString(loader.Render())
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// RenderComponent renders a component and returns the HTML string.
func RenderComponent(c vdom.Component) string {
	if c == nil {
		return ""
	}
	return RenderToString(c.Render())
}

// ExpectContains asserts that output contains the expected substring.
func ExpectContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Errorf("Expected output to contain %q, got:\n%s", want, output)
	}
}

// ExpectNotContains asserts that output does not contain the substring.
func ExpectNotContains(t *testing.T, output, unwanted string) {
	t.Helper()
	if strings.Contains(output, unwanted) {
		t.Errorf("Expected output not to contain %q, got:\n%s", unwanted, output)
	}
}

// ExpectEmpty asserts that output is empty.
func ExpectEmpty(t *testing.T, output string) {
	t.Helper()
	if output != "" {
		t.Errorf("Expected empty output, got:\n%s", output)
	}
}

// Definition returns a minimal valid definition whose app renders a div
// carrying the feature name.
func Definition(name string) *feature.Definition {
	return &feature.Definition{
		Name: name,
		Create: func(feature.Env) (feature.App, error) {
			return testApp{name: name}, nil
		},
	}
}

type testApp struct {
	name string
}

func (a testApp) Render() *vdom.VNode {
	return vdom.El("div", vdom.Props{"data-feature-app": a.name})
}

// StubLoader is a scripted module loader. Sources are registered with
// Add or Fail; unknown sources report ErrUnknownSource via a plain
// error. An optional delay simulates slow loads.
type StubLoader struct {
	mu      sync.Mutex
	modules map[string]*feature.Definition
	errs    map[string]error
	delay   time.Duration
	calls   []string
}

// NewStubLoader returns an empty stub.
func NewStubLoader() *StubLoader {
	return &StubLoader{
		modules: make(map[string]*feature.Definition),
		errs:    make(map[string]error),
	}
}

// Add scripts a successful load for src.
func (s *StubLoader) Add(src string, def *feature.Definition) *StubLoader {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[src] = def
	return s
}

// Fail scripts a failed load for src.
func (s *StubLoader) Fail(src string, err error) *StubLoader {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[src] = err
	return s
}

// SetDelay makes every load sleep before answering.
func (s *StubLoader) SetDelay(d time.Duration) *StubLoader {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
	return s
}

// LoadModule implements the module loader contract.
func (s *StubLoader) LoadModule(ctx context.Context, src string) (*feature.Definition, error) {
	s.mu.Lock()
	s.calls = append(s.calls, src)
	delay := s.delay
	def, okDef := s.modules[src]
	err, okErr := s.errs[src]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if okErr {
		return nil, err
	}
	if okDef {
		return def, nil
	}
	return nil, &UnknownSourceError{Src: src}
}

// Calls returns the sources requested so far, in order.
func (s *StubLoader) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// UnknownSourceError reports a load for a source the stub was not
// scripted with.
type UnknownSourceError struct {
	Src string
}

func (e *UnknownSourceError) Error() string {
	return "hubtest: no module scripted for " + e.Src
}

// WaitSettled fails the test unless v settles within timeout.
func WaitSettled[T any](t *testing.T, v *async.Value[T], timeout time.Duration) {
	t.Helper()
	select {
	case <-v.Done():
	case <-time.After(timeout):
		t.Fatal("Timeout waiting for value to settle")
	}
}
