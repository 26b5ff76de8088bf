package bootstrap

import (
	"browser-pilot/internal/config"
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// newTraceProvider installs the global tracer provider. Spans are printed to
// stdout only when TRACE_STDOUT is set; otherwise they are discarded.
func newTraceProvider(lc fx.Lifecycle, conf *config.Config, logger *zap.Logger) (*sdktrace.TracerProvider, error) {
	opts := []stdouttrace.Option{stdouttrace.WithWriter(io.Discard)}
	if conf.AppConfig.TraceStdout {
		opts = []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	}

	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		logger.Error("Failed to create trace exporter", zap.Error(err))
		return nil, err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(conf.AppConfig.ServiceName),
		),
	)
	if err != nil {
		logger.Error("Failed to create resource", zap.Error(err))
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

// installTracing forces the provider to be built so that the global tracer is
// set before any component starts a span.
func installTracing(_ *sdktrace.TracerProvider, logger *zap.Logger) {
	logger.Debug("Tracer provider installed")
}
