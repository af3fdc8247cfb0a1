package featurehub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JorgeRod2594/feature-hub/pkg/hubtest"
)

func TestNew_RequiresLoader(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected New to panic without a loader")
		}
	}()
	New(Config{})
}

func TestApp_ServesConfiguredPage(t *testing.T) {
	stub := hubtest.NewStubLoader()
	stub.Add("apps/checkout.json", hubtest.Definition("checkout"))

	app := New(Config{
		Loader: stub,
		Pages: []Page{
			{Path: "/checkout", Title: "Checkout", Src: "apps/checkout.json"},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/checkout", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GET /checkout status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<title>Checkout</title>") {
		t.Fatalf("GET /checkout missing title, body = %q", body)
	}
	if !strings.Contains(body, `data-feature-app="checkout"`) {
		t.Fatalf("GET /checkout missing feature markup, body = %q", body)
	}
}

func TestApp_HealthThroughApp(t *testing.T) {
	app := New(Config{Loader: hubtest.NewStubLoader()})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/healthz", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GET /healthz status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Body.String(); got != "ok" {
		t.Fatalf("GET /healthz body = %q, want %q", got, "ok")
	}
}

func TestApp_AssetWinsOverRoutes(t *testing.T) {
	tmpDir := t.TempDir()
	writeAssetFile(t, tmpDir, "checkout.css", "body{}")

	stub := hubtest.NewStubLoader()
	stub.Add("apps/checkout.json", hubtest.Definition("checkout"))

	app := New(Config{
		Loader: stub,
		Static: StaticConfig{Dir: tmpDir, Prefix: "/"},
		Pages: []Page{
			{Path: "/checkout", Src: "apps/checkout.json"},
		},
	})

	// An existing file is served as an asset.
	req := httptest.NewRequest(http.MethodGet, "http://example.com/checkout.css", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /checkout.css status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Body.String(); got != "body{}" {
		t.Fatalf("GET /checkout.css body = %q, want %q", got, "body{}")
	}

	// A path with no matching file still reaches the page host.
	req = httptest.NewRequest(http.MethodGet, "http://example.com/checkout", nil)
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /checkout status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `data-feature-app="checkout"`) {
		t.Fatalf("GET /checkout missing feature markup, body = %q", rr.Body.String())
	}
}

func TestApp_PreloadPages(t *testing.T) {
	stub := hubtest.NewStubLoader()
	stub.Add("apps/checkout.json", hubtest.Definition("checkout"))
	stub.Add("apps/cart.json", hubtest.Definition("cart"))

	app := New(Config{
		Loader: stub,
		Pages: []Page{
			{Path: "/checkout", Src: "apps/checkout.json"},
			{Path: "/cart", Src: "apps/cart.json"},
		},
	})

	app.PreloadPages()
	hubtest.WaitSettled(t, app.Manager().GetAsyncFeatureAppDefinition("apps/checkout.json", ""), time.Second)
	hubtest.WaitSettled(t, app.Manager().GetAsyncFeatureAppDefinition("apps/cart.json", ""), time.Second)

	calls := stub.Calls()
	if len(calls) != 2 {
		t.Fatalf("loader calls = %v, want one per page", calls)
	}
}

func TestApp_CustomLoaderFunc(t *testing.T) {
	var requested string
	ml := ModuleLoaderFunc(func(_ context.Context, src string) (*Definition, error) {
		requested = src
		return hubtest.Definition("inline"), nil
	})

	app := New(Config{
		Loader: ml,
		Pages:  []Page{{Path: "/", Src: "inline"}},
	})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want %d", rr.Code, http.StatusOK)
	}
	if requested != "inline" {
		t.Fatalf("loader saw src %q, want %q", requested, "inline")
	}
}

func TestValueHelpers(t *testing.T) {
	settled := SettledValue(42)
	if v, err := settled.TryGet(); err != nil || v != 42 {
		t.Fatalf("TryGet = (%v, %v), want (42, nil)", v, err)
	}

	boom := errors.New("boom")
	failed := FailedValue[int](boom)
	if _, err := failed.TryGet(); !errors.Is(err, boom) {
		t.Fatalf("TryGet err = %v, want %v", err, boom)
	}

	pending, settle := NewPendingValue[string]()
	if _, err := pending.TryGet(); !errors.Is(err, ErrPending) {
		t.Fatalf("TryGet err = %v, want ErrPending", err)
	}
	settle("done", nil)
	if v, err := pending.TryGet(); err != nil || v != "done" {
		t.Fatalf("TryGet = (%v, %v), want (done, nil)", v, err)
	}
}
