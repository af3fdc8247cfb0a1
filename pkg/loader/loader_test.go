package loader

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/JorgeRod2594/feature-hub/pkg/async"
	"github.com/JorgeRod2594/feature-hub/pkg/document"
	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/hubtest"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

type stubProvider struct {
	mu     sync.Mutex
	values map[string]*async.Value[*feature.Definition]
	calls  []string
}

func newStubProvider() *stubProvider {
	return &stubProvider{values: make(map[string]*async.Value[*feature.Definition])}
}

func (p *stubProvider) set(src string, v *async.Value[*feature.Definition]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[src] = v
}

func (p *stubProvider) GetAsyncFeatureAppDefinition(src, key string) *async.Value[*feature.Definition] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, src+"|"+key)
	if v, ok := p.values[src]; ok {
		return v
	}
	v, _ := async.NewPending[*feature.Definition]()
	p.values[src] = v
	return v
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type recordingContainer struct {
	mu    sync.Mutex
	calls []string
}

func (c *recordingContainer) RenderFeature(_ DefinitionProvider, def *feature.Definition, key string) *vdom.VNode {
	c.mu.Lock()
	c.calls = append(c.calls, def.Name+"|"+key)
	c.mu.Unlock()
	return vdom.El("div", vdom.Props{"data-feature": def.Name, "data-key": key})
}

func (c *recordingContainer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type fixture struct {
	provider  *stubProvider
	container *recordingContainer
	logs      *hubtest.RecordingHandler
	styles    *document.StyleRegistry
	marks     chan struct{}
}

func newFixture() *fixture {
	return &fixture{
		provider:  newStubProvider(),
		container: &recordingContainer{},
		logs:      hubtest.NewRecordingHandler(),
		styles:    document.NewStyleRegistry(),
		marks:     make(chan struct{}, 8),
	}
}

func (f *fixture) loader(src, key string, sheets ...document.Stylesheet) *FeatureAppLoader {
	return New(Config{
		Provider:    f.provider,
		Container:   f.container,
		Styles:      f.styles,
		Stylesheets: sheets,
		Src:         src,
		Key:         key,
		Logger:      f.logs.Logger(),
		Invalidator: InvalidatorFunc(func() { f.marks <- struct{}{} }),
	})
}

func (f *fixture) expectMark(t *testing.T) {
	t.Helper()
	select {
	case <-f.marks:
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for invalidation")
	}
}

func (f *fixture) expectNoMark(t *testing.T) {
	t.Helper()
	select {
	case <-f.marks:
		t.Error("Unexpected invalidation")
	case <-time.After(50 * time.Millisecond):
	}
}

// settledSync subscribes a sentinel and waits for it. Handlers run in
// subscription order, so once the sentinel fires, every handler
// subscribed before it has finished.
func settledSync(t *testing.T, v *async.Value[*feature.Definition]) {
	t.Helper()
	done := make(chan struct{})
	v.Subscribe(func(*feature.Definition, error) { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for settlement handlers")
	}
}

func diagnostic(src, key string) string {
	return fmt.Sprintf("The feature app for the url %q and the key %q could not be loaded.", src, key)
}

func TestMountWithSettledDefinitionRendersImmediately(t *testing.T) {
	f := newFixture()
	f.provider.set("apps/checkout.json", async.Settled(hubtest.Definition("checkout")))

	l := f.loader("apps/checkout.json", "main")
	l.Mount()

	html := hubtest.RenderToString(l.Render())
	hubtest.ExpectContains(t, html, `data-feature="checkout"`)
	hubtest.ExpectContains(t, html, `data-key="main"`)

	if n := f.container.count(); n != 1 {
		t.Errorf("Expected exactly one container delegation, got %d", n)
	}
	if n := len(f.logs.Records()); n != 0 {
		t.Errorf("Expected no diagnostics, got %d", n)
	}
	// A synchronously known outcome must not schedule a re-render.
	f.expectNoMark(t)
}

func TestMountWithFailedDefinitionLogsOnceAndRendersEmpty(t *testing.T) {
	f := newFixture()
	boom := errors.New("fetch failed")
	f.provider.set("apps/broken.json", async.Failed[*feature.Definition](boom))

	l := f.loader("apps/broken.json", "main")
	l.Mount()

	hubtest.ExpectEmpty(t, hubtest.RenderToString(l.Render()))

	want := `The feature app for the url "apps/broken.json" and the key "main" could not be loaded.`
	if got := f.logs.CountMessage(want); got != 1 {
		t.Fatalf("Expected exactly one diagnostic, got %d", got)
	}
	rec, _ := f.logs.LastMessage()
	err, ok := rec.Attrs["error"].(error)
	if !ok || !errors.Is(err, boom) {
		t.Errorf("Expected the original error attached, got %v", rec.Attrs["error"])
	}
	f.expectNoMark(t)
}

func TestPendingThenSuccess(t *testing.T) {
	f := newFixture()
	v, settle := async.NewPending[*feature.Definition]()
	f.provider.set("apps/cart.json", v)

	l := f.loader("apps/cart.json", "")
	l.Mount()

	hubtest.ExpectEmpty(t, hubtest.RenderToString(l.Render()))
	if n := f.container.count(); n != 0 {
		t.Errorf("Expected no container delegation while pending, got %d", n)
	}

	settle(hubtest.Definition("cart"), nil)
	f.expectMark(t)

	hubtest.ExpectContains(t, hubtest.RenderToString(l.Render()), `data-feature="cart"`)
	if n := len(f.logs.Records()); n != 0 {
		t.Errorf("Expected no diagnostics, got %d", n)
	}
}

func TestPendingThenFailure(t *testing.T) {
	f := newFixture()
	v, settle := async.NewPending[*feature.Definition]()
	f.provider.set("apps/flaky.json", v)

	l := f.loader("apps/flaky.json", "side")
	l.Mount()

	hubtest.ExpectEmpty(t, hubtest.RenderToString(l.Render()))

	settle(nil, errors.New("boom"))
	f.expectMark(t)

	hubtest.ExpectEmpty(t, hubtest.RenderToString(l.Render()))
	if got := f.logs.CountMessage(diagnostic("apps/flaky.json", "side")); got != 1 {
		t.Errorf("Expected exactly one diagnostic, got %d", got)
	}
}

func TestFailureLogsOnceAcrossRenders(t *testing.T) {
	f := newFixture()
	v, settle := async.NewPending[*feature.Definition]()
	f.provider.set("apps/x.json", v)

	l := f.loader("apps/x.json", "")
	l.Mount()
	settle(nil, errors.New("boom"))
	settledSync(t, v)

	for i := 0; i < 3; i++ {
		hubtest.ExpectEmpty(t, hubtest.RenderToString(l.Render()))
	}
	if got := f.logs.CountMessage(diagnostic("apps/x.json", "")); got != 1 {
		t.Errorf("Expected exactly one diagnostic, got %d", got)
	}
}

func TestUnmountSuppressesLateSuccess(t *testing.T) {
	f := newFixture()
	v, settle := async.NewPending[*feature.Definition]()
	f.provider.set("apps/late.json", v)

	l := f.loader("apps/late.json", "")
	l.Mount()
	l.Unmount()

	settle(hubtest.Definition("late"), nil)
	settledSync(t, v)

	f.expectNoMark(t)
	if n := len(f.logs.Records()); n != 0 {
		t.Errorf("Expected no diagnostics for a late success, got %d", n)
	}
}

func TestUnmountedFailureStillLogs(t *testing.T) {
	f := newFixture()
	v, settle := async.NewPending[*feature.Definition]()
	f.provider.set("apps/doomed.json", v)

	l := f.loader("apps/doomed.json", "k")
	l.Mount()
	l.Unmount()

	settle(nil, errors.New("boom"))
	settledSync(t, v)

	if got := f.logs.CountMessage(diagnostic("apps/doomed.json", "k")); got != 1 {
		t.Errorf("Expected exactly one diagnostic after unmount, got %d", got)
	}
	f.expectNoMark(t)
}

func TestMountIsIdempotent(t *testing.T) {
	f := newFixture()
	f.provider.set("apps/a.json", async.Settled(hubtest.Definition("a")))

	l := f.loader("apps/a.json", "")
	l.Mount()
	l.Mount()

	if got := f.provider.callCount(); got != 1 {
		t.Errorf("Expected a single provider request, got %d", got)
	}
}

func TestRenderBeforeMountIsEmpty(t *testing.T) {
	f := newFixture()
	f.provider.set("apps/a.json", async.Settled(hubtest.Definition("a")))

	l := f.loader("apps/a.json", "")
	hubtest.ExpectEmpty(t, hubtest.RenderToString(l.Render()))
	if n := f.container.count(); n != 0 {
		t.Errorf("Expected no container delegation before mount, got %d", n)
	}
}

func TestSetSourceDiscardsStaleSuccess(t *testing.T) {
	f := newFixture()
	vA, settleA := async.NewPending[*feature.Definition]()
	vB, settleB := async.NewPending[*feature.Definition]()
	f.provider.set("apps/a.json", vA)
	f.provider.set("apps/b.json", vB)

	l := f.loader("apps/a.json", "one")
	l.Mount()
	l.SetSource("apps/b.json", "two")

	// The old request settles after the identity changed: no state
	// update, no re-render.
	settleA(hubtest.Definition("a"), nil)
	settledSync(t, vA)
	f.expectNoMark(t)
	hubtest.ExpectEmpty(t, hubtest.RenderToString(l.Render()))

	settleB(hubtest.Definition("b"), nil)
	f.expectMark(t)
	hubtest.ExpectContains(t, hubtest.RenderToString(l.Render()), `data-feature="b"`)
}

func TestSetSourceStaleFailureStillLogs(t *testing.T) {
	f := newFixture()
	vA, settleA := async.NewPending[*feature.Definition]()
	f.provider.set("apps/a.json", vA)

	l := f.loader("apps/a.json", "one")
	l.Mount()
	l.SetSource("apps/b.json", "two")

	settleA(nil, errors.New("boom"))
	settledSync(t, vA)

	// The diagnostic names the request that failed, not the current one.
	if got := f.logs.CountMessage(diagnostic("apps/a.json", "one")); got != 1 {
		t.Errorf("Expected one diagnostic for the stale request, got %d", got)
	}
	if got := f.logs.CountMessage(diagnostic("apps/b.json", "two")); got != 0 {
		t.Errorf("Expected no diagnostic for the new request, got %d", got)
	}
	f.expectNoMark(t)
}

func TestSetSourceSameIdentityIsNoop(t *testing.T) {
	f := newFixture()
	f.provider.set("apps/a.json", async.Settled(hubtest.Definition("a")))

	l := f.loader("apps/a.json", "k")
	l.Mount()
	l.SetSource("apps/a.json", "k")

	if got := f.provider.callCount(); got != 1 {
		t.Errorf("Expected no second provider request, got %d", got)
	}
}

func TestStylesheetsRegisteredOncePerDocument(t *testing.T) {
	f := newFixture()
	sheets := []document.Stylesheet{
		{Href: "foo.css"},
		{Href: "bar.css", Media: "print"},
	}
	f.provider.set("apps/a.json", async.Settled(hubtest.Definition("a")))
	f.provider.set("apps/b.json", async.Settled(hubtest.Definition("b")))

	a := f.loader("apps/a.json", "", sheets...)
	b := f.loader("apps/b.json", "", sheets...)
	a.Mount()
	b.Mount()

	got := f.styles.Stylesheets()
	if len(got) != 2 {
		t.Fatalf("Expected 2 registered stylesheets, got %d", len(got))
	}
	if got[0].Href != "foo.css" || got[1].Href != "bar.css" {
		t.Errorf("Expected descriptor order foo.css, bar.css, got %s, %s", got[0].Href, got[1].Href)
	}
	if got[1].Media != "print" {
		t.Errorf("Expected media 'print' on bar.css, got %q", got[1].Media)
	}
}

func TestRenderDoesNotReRegisterStyles(t *testing.T) {
	f := newFixture()
	f.provider.set("apps/a.json", async.Settled(hubtest.Definition("a")))

	l := f.loader("apps/a.json", "", document.Stylesheet{Href: "foo.css"})
	l.Mount()
	l.Render()
	l.Render()

	if f.styles.Len() != 1 {
		t.Errorf("Expected 1 registered stylesheet, got %d", f.styles.Len())
	}
}

func TestLoaderIDsAreUnique(t *testing.T) {
	f := newFixture()
	a := f.loader("apps/a.json", "")
	b := f.loader("apps/b.json", "")

	if a.ID() == b.ID() {
		t.Errorf("Expected unique loader IDs, both got %s", a.ID())
	}
	if a.ID()[0] != 'f' {
		t.Errorf("Expected f-prefixed ID, got %s", a.ID())
	}
}

func TestRenderWithoutContainerIsEmpty(t *testing.T) {
	f := newFixture()
	f.provider.set("apps/a.json", async.Settled(hubtest.Definition("a")))

	l := New(Config{
		Provider: f.provider,
		Src:      "apps/a.json",
		Logger:   f.logs.Logger(),
	})
	l.Mount()
	hubtest.ExpectEmpty(t, hubtest.RenderToString(l.Render()))
}
