// Package integration exercises the App the way embedding hosts use
// it: mounted inside an existing router alongside the host's own
// routes, or served whole.
package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	featurehub "github.com/JorgeRod2594/feature-hub"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// welcomeApp is the feature app every integration test hosts. Its
// markup carries a class the tests can look for in responses.
type welcomeApp struct{}

func (welcomeApp) Render() *vdom.VNode {
	return vdom.Section(vdom.Props{"class": "welcome"},
		vdom.H1("Welcome aboard"),
	)
}

// newHubApp builds an App that serves /welcome from an in-memory
// module loader, with logging silenced.
func newHubApp(static featurehub.StaticConfig) *featurehub.App {
	ml := featurehub.ModuleLoaderFunc(func(ctx context.Context, src string) (*featurehub.Definition, error) {
		if src != "apps/welcome.json" {
			return nil, fmt.Errorf("unknown module %q", src)
		}
		return &featurehub.Definition{
			Name:    "welcome",
			Version: "1.0.0",
			Create: func(env featurehub.Env) (featurehub.FeatureApp, error) {
				return welcomeApp{}, nil
			},
		}, nil
	})

	return featurehub.New(featurehub.Config{
		Loader: ml,
		Pages: []featurehub.Page{
			{Path: "/welcome", Title: "Welcome", Src: "apps/welcome.json"},
		},
		Static: static,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// TestChiRouterIntegration tests that the hub mounts inside a Chi
// router next to the host's own API routes.
func TestChiRouterIntegration(t *testing.T) {
	app := newHubApp(featurehub.StaticConfig{})
	defer app.Close()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// The embedding host's own routes.
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Everything else goes to the hub.
	r.Handle("/*", app.Handler())

	t.Run("API health endpoint", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/health", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != "OK" {
			t.Errorf("expected OK, got %s", rec.Body.String())
		}
	})

	t.Run("middleware chain executes", func(t *testing.T) {
		middlewareExecuted := false

		trackingRouter := chi.NewRouter()
		trackingRouter.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				middlewareExecuted = true
				next.ServeHTTP(w, r)
			})
		})
		trackingRouter.Handle("/*", app.Handler())

		req := httptest.NewRequest("GET", "/welcome", nil)
		rec := httptest.NewRecorder()
		trackingRouter.ServeHTTP(rec, req)

		if !middlewareExecuted {
			t.Error("expected middleware to execute before the hub handler")
		}
	})

	t.Run("page renders through embedding router", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/welcome", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !containsAll(body, "<title>Welcome</title>", "data-feature-src=\"apps/welcome.json\"", "Welcome aboard") {
			t.Errorf("rendered page missing expected markup:\n%s", body)
		}
	})

	t.Run("unknown page falls through to 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/no-such-page", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

// TestStdlibMuxIntegration tests mounting under a plain http.ServeMux.
func TestStdlibMuxIntegration(t *testing.T) {
	app := newHubApp(featurehub.StaticConfig{})
	defer app.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api"))
	})
	mux.Handle("/", app.Handler())

	t.Run("API route works", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Body.String() != "api" {
			t.Errorf("expected api, got %s", rec.Body.String())
		}
	})

	t.Run("page served through mux", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/welcome", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if !containsAll(rec.Body.String(), "Welcome aboard") {
			t.Error("expected page body to contain the feature app markup")
		}
	})
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
