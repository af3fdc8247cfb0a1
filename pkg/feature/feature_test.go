package feature

import (
	"testing"

	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

func TestValidate(t *testing.T) {
	valid := &Definition{
		Name: "clock",
		Create: func(Env) (App, error) {
			return nil, nil
		},
	}

	tests := []struct {
		name    string
		def     *Definition
		wantErr bool
	}{
		{"valid", valid, false},
		{"nil definition", nil, true},
		{"missing name", &Definition{Create: valid.Create}, true},
		{"missing create", &Definition{Name: "clock"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.def)
			if tt.wantErr && err == nil {
				t.Error("Expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestServiceRegistryDuplicate(t *testing.T) {
	r := NewServiceRegistry()

	if err := r.Register("logger", "svc-a"); err != nil {
		t.Fatalf("Expected first registration to succeed, got %v", err)
	}
	if err := r.Register("logger", "svc-b"); err == nil {
		t.Error("Expected duplicate registration to fail")
	}

	got, ok := r.Lookup("logger")
	if !ok || got != "svc-a" {
		t.Errorf("Expected original service to survive, got %v (ok=%v)", got, ok)
	}
}

func TestServiceRegistryLookupMissing(t *testing.T) {
	r := NewServiceRegistry()

	if _, ok := r.Lookup("absent"); ok {
		t.Error("Expected Lookup on missing service to report false")
	}
	if err := r.Register("", struct{}{}); err == nil {
		t.Error("Expected empty service name to be rejected")
	}
}

func TestAppIsComponent(t *testing.T) {
	def := &Definition{
		Name: "hello",
		Create: func(Env) (App, error) {
			return staticApp{}, nil
		},
	}

	app, err := def.Create(Env{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// An App plugs straight into the UI tree as a component.
	var comp vdom.Component = app
	node := comp.Render()
	if node == nil || node.Tag != "p" {
		t.Errorf("Expected <p> node, got %+v", node)
	}
}

type staticApp struct{}

func (staticApp) Render() *vdom.VNode {
	return vdom.El("p", "hello")
}
