package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/manager"
	"github.com/JorgeRod2594/feature-hub/pkg/source"
)

// MetricsConfig configures the Prometheus metrics decorator.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "featurehub").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for load duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registerer to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics decorator.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registerer. Construct the decorator
// once per registerer; registering the same metrics twice panics.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "featurehub",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type loadMetrics struct {
	loadsTotal   *prometheus.CounterVec
	loadFailures *prometheus.CounterVec
	loadDuration prometheus.Histogram
}

func initLoadMetrics(config MetricsConfig) *loadMetrics {
	factory := promauto.With(config.Registry)

	return &loadMetrics{
		loadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "loads_total",
			Help:        "Total number of module load attempts",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		loadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "load_failures_total",
			Help:        "Total number of module load failures by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "load_duration_seconds",
			Help:        "Module load duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// Metrics creates a decorator that records Prometheus metrics for every
// module load.
//
// Metrics collected:
//   - featurehub_loads_total: Counter of loads by result
//   - featurehub_load_failures_total: Counter of failures by reason
//   - featurehub_load_duration_seconds: Histogram of load duration
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
func Metrics(opts ...MetricsOption) Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	m := initLoadMetrics(config)

	return func(next manager.ModuleLoader) manager.ModuleLoader {
		return manager.ModuleLoaderFunc(func(ctx context.Context, src string) (*feature.Definition, error) {
			start := time.Now()
			def, err := next.LoadModule(ctx, src)
			m.loadDuration.Observe(time.Since(start).Seconds())

			result := "success"
			if err != nil {
				result = "error"
				m.loadFailures.WithLabelValues(failureReason(err)).Inc()
			}
			m.loadsTotal.WithLabelValues(result).Inc()

			return def, err
		})
	}
}

// failureReason maps an error to a fixed label set. Sentinel errors are
// matched first; the string fallback keeps cardinality capped for
// everything else.
func failureReason(err error) string {
	switch {
	case errors.Is(err, source.ErrNotFound):
		return "not_found"
	case errors.Is(err, source.ErrTooLarge):
		return "too_large"
	case errors.Is(err, source.ErrDecode):
		return "decode"
	case errors.Is(err, source.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid"):
		return "validation"
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "not found"):
		return "not_found"
	default:
		return "internal"
	}
}
