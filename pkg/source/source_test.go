package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/hubtest"
	"github.com/JorgeRod2594/feature-hub/pkg/source"
)

func TestStatic_RegisterAndLoad(t *testing.T) {
	reg := source.NewStatic()
	reg.Register("checkout", hubtest.Definition("checkout"))

	def, err := reg.LoadModule(context.Background(), "checkout")
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if def.Name != "checkout" {
		t.Errorf("expected definition checkout, got %s", def.Name)
	}
}

func TestStatic_UnknownSource(t *testing.T) {
	reg := source.NewStatic()

	_, err := reg.LoadModule(context.Background(), "missing")
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStatic_RegisterReplaces(t *testing.T) {
	reg := source.NewStatic()
	reg.Register("app", hubtest.Definition("old"))
	reg.Register("app", hubtest.Definition("new"))

	def, err := reg.LoadModule(context.Background(), "app")
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if def.Name != "new" {
		t.Errorf("expected the replacement definition, got %s", def.Name)
	}
}

type namedLoader struct {
	name string
}

func (l *namedLoader) LoadModule(context.Context, string) (*feature.Definition, error) {
	return hubtest.Definition(l.name), nil
}

func TestMux_RoutesByScheme(t *testing.T) {
	mux := source.NewMux()
	mux.Handle("https", &namedLoader{name: "via-https"})
	mux.Handle("s3", &namedLoader{name: "via-s3"})
	mux.Fallback(&namedLoader{name: "via-fallback"})

	tests := []struct {
		src  string
		want string
	}{
		{"https://apps.example.com/checkout.json", "via-https"},
		{"s3://bucket/apps/cart.json", "via-s3"},
		{"apps/cart.json", "via-fallback"},
		{"ftp://example.com/x.json", "via-fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			def, err := mux.LoadModule(context.Background(), tt.src)
			if err != nil {
				t.Fatalf("failed to load: %v", err)
			}
			if def.Name != tt.want {
				t.Errorf("expected %s, got %s", tt.want, def.Name)
			}
		})
	}
}

func TestMux_NoBackend(t *testing.T) {
	mux := source.NewMux()

	_, err := mux.LoadModule(context.Background(), "apps/cart.json")
	if !errors.Is(err, source.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
