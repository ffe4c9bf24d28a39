package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "github.com/todo-1m/webclient"

// Setup installs the global tracer provider for exporter ("stdout", "none"
// or ""). The returned func flushes and stops the provider.
func Setup(exporter string, w io.Writer) (func(context.Context) error, error) {
	switch exporter {
	case "", "none":
		return func(context.Context) error { return nil }, nil
	case "stdout":
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		otel.SetTracerProvider(provider)
		return provider.Shutdown, nil
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", exporter)
	}
}

func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
