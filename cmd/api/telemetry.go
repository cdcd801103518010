package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"thermo-server/internal/infra/node"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

type ShutdownFunc func() error

const (
	_serviceName      = "thermo-server"
	_endpointEnv      = "THERMO_SERVER_OTELCOL_ENDPOINT"
	_defaultEndpoint  = "localhost:4317"
	_collectPeriod    = 30 * time.Second
	_collectTimeout   = 35 * time.Second
	_minimumInterval  = time.Minute
	_shutdownDeadline = 5 * time.Second
)

func otelStart(ctx context.Context) (ShutdownFunc, error) {
	endpoint := collectorEndpoint()
	slog.Info("starting OTel providers", slog.String("endpoint", endpoint))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(_serviceName),
		semconv.ServiceVersionKey.String(node.Version),
		semconv.ServiceInstanceIDKey.String(node.GetNodeInfo().ID),
	)

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(
			metric.NewPeriodicReader(
				metricExporter,
				metric.WithTimeout(_collectTimeout),
				metric.WithInterval(_collectPeriod))),
	)
	otel.SetMeterProvider(mp)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(_minimumInterval)); err != nil {
		return nil, fmt.Errorf("starting runtime metrics: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(b3.New())

	return func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), _shutdownDeadline)
		defer cancel()

		return errors.Join(
			mp.Shutdown(shutdownCtx),
			tp.Shutdown(shutdownCtx),
		)
	}, nil
}

func collectorEndpoint() string {
	if value, ok := os.LookupEnv(_endpointEnv); ok && value != "" {
		return value
	}
	return _defaultEndpoint
}
