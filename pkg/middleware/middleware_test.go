package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/manager"
	"github.com/JorgeRod2594/feature-hub/pkg/source"
)

func scriptedLoader(def *feature.Definition, err error) manager.ModuleLoader {
	return manager.ModuleLoaderFunc(func(context.Context, string) (*feature.Definition, error) {
		return def, err
	})
}

func tagging(tag string, order *[]string) Middleware {
	return func(next manager.ModuleLoader) manager.ModuleLoader {
		return manager.ModuleLoaderFunc(func(ctx context.Context, src string) (*feature.Definition, error) {
			*order = append(*order, tag)
			return next.LoadModule(ctx, src)
		})
	}
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	var order []string
	loader := Chain(scriptedLoader(&feature.Definition{Name: "x"}, nil),
		tagging("first", &order),
		tagging("second", &order),
		tagging("third", &order),
	)

	if _, err := loader.LoadModule(context.Background(), "apps/x.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("expected first, second, third, got %v", order)
	}
}

func TestChain_Empty(t *testing.T) {
	base := scriptedLoader(&feature.Definition{Name: "x"}, nil)
	if got := Chain(base); got == nil {
		t.Fatal("expected the bare loader back")
	}
}

func gatherCounter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func gatherHistogramCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestMetrics_RecordsSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	loader := Chain(scriptedLoader(&feature.Definition{Name: "checkout"}, nil),
		Metrics(WithRegistry(reg)))

	if _, err := loader.LoadModule(context.Background(), "apps/checkout.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := gatherCounter(t, reg, "featurehub_loads_total", map[string]string{"result": "success"}); got != 1 {
		t.Errorf("loads_total(success)=%v, want 1", got)
	}
	if got := gatherCounter(t, reg, "featurehub_loads_total", map[string]string{"result": "error"}); got != 0 {
		t.Errorf("loads_total(error)=%v, want 0", got)
	}
	if got := gatherHistogramCount(t, reg, "featurehub_load_duration_seconds"); got != 1 {
		t.Errorf("load_duration_seconds samples=%v, want 1", got)
	}
}

func TestMetrics_CategorizesFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{"not found", source.ErrNotFound, "not_found"},
		{"wrapped not found", errors.Join(errors.New("load"), source.ErrNotFound), "not_found"},
		{"too large", source.ErrTooLarge, "too_large"},
		{"decode", source.ErrDecode, "decode"},
		{"unsupported", source.ErrUnsupported, "unsupported"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"validation", errors.New("invalid feature app module"), "validation"},
		{"anything else", errors.New("wire snapped"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			loader := Chain(scriptedLoader(nil, tt.err), Metrics(WithRegistry(reg)))

			if _, err := loader.LoadModule(context.Background(), "apps/x.json"); err == nil {
				t.Fatal("expected the error to pass through")
			}

			if got := gatherCounter(t, reg, "featurehub_load_failures_total", map[string]string{"reason": tt.reason}); got != 1 {
				t.Errorf("load_failures_total(%s)=%v, want 1", tt.reason, got)
			}
			if got := gatherCounter(t, reg, "featurehub_loads_total", map[string]string{"result": "error"}); got != 1 {
				t.Errorf("loads_total(error)=%v, want 1", got)
			}
		})
	}
}

func TestMetrics_NamespaceOption(t *testing.T) {
	reg := prometheus.NewRegistry()
	loader := Chain(scriptedLoader(&feature.Definition{Name: "x"}, nil),
		Metrics(WithRegistry(reg), WithNamespace("myapp")))

	loader.LoadModule(context.Background(), "apps/x.json")

	if got := gatherCounter(t, reg, "myapp_loads_total", map[string]string{"result": "success"}); got != 1 {
		t.Errorf("myapp_loads_total(success)=%v, want 1", got)
	}
}

func TestTrace_PassesResultThrough(t *testing.T) {
	def := &feature.Definition{Name: "checkout"}
	loader := Chain(scriptedLoader(def, nil), Trace())

	got, err := loader.LoadModule(context.Background(), "apps/checkout.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != def {
		t.Error("expected the definition to pass through")
	}
}

func TestTrace_PassesErrorThrough(t *testing.T) {
	boom := errors.New("boom")
	loader := Chain(scriptedLoader(nil, boom), Trace())

	_, err := loader.LoadModule(context.Background(), "apps/x.json")
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestTrace_FilterSkips(t *testing.T) {
	def := &feature.Definition{Name: "x"}
	loader := Chain(scriptedLoader(def, nil),
		Trace(WithTraceFilter(func(src string) bool { return false })))

	got, err := loader.LoadModule(context.Background(), "apps/x.json")
	if err != nil || got != def {
		t.Errorf("expected pass-through with filter off, got (%v, %v)", got, err)
	}
}
