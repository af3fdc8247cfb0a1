package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
	"github.com/JorgeRod2594/feature-hub/pkg/manager"
)

// Default tracer name for feature hub hosts.
const defaultTracerName = "featurehub"

// TraceConfig configures the OpenTelemetry decorator.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "featurehub").
	TracerName string

	// Filter determines which loads to trace. Return true to trace.
	// If nil, all loads are traced.
	Filter func(src string) bool

	// AttributeExtractor extracts custom attributes per load.
	AttributeExtractor func(src string) []attribute.KeyValue

	tracer trace.Tracer
}

// TraceOption configures the OpenTelemetry decorator.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithTraceFilter sets a filter function for loads.
func WithTraceFilter(filter func(src string) bool) TraceOption {
	return func(c *TraceConfig) {
		c.Filter = filter
	}
}

// WithTraceAttributes sets a custom attribute extractor.
func WithTraceAttributes(extractor func(src string) []attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.AttributeExtractor = extractor
	}
}

// Trace creates a decorator that opens one span per module load.
//
// Spans are named "featurehub.load_module" and carry the module source;
// a failed load records the error and an Error status. The tracer comes
// from the global provider, set it up in main():
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func Trace(opts ...TraceOption) Middleware {
	config := TraceConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(next manager.ModuleLoader) manager.ModuleLoader {
		return manager.ModuleLoaderFunc(func(ctx context.Context, src string) (*feature.Definition, error) {
			if config.Filter != nil && !config.Filter(src) {
				return next.LoadModule(ctx, src)
			}

			attrs := []attribute.KeyValue{
				attribute.String("featurehub.src", src),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(src)...)
			}

			spanCtx, span := config.tracer.Start(ctx, "featurehub.load_module",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			def, err := next.LoadModule(spanCtx, src)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
				if def != nil {
					span.SetAttributes(attribute.String("featurehub.feature", def.Name))
				}
			}
			return def, err
		})
	}
}
