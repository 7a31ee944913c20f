// Package otel builds the OTLP trace, metric and log providers for taskhub and an
// events.Emitter that forwards domain events as log records.
package otel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.uber.org/zap"
)

const metricExportInterval = 10 * time.Second

// Providers bundles the three SDK providers. Shutdown flushes and stops them in reverse start order.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Shutdown       func(context.Context) error
}

// NewProviders dials the collector at endpoint (host:port or URL; any path is dropped).
// An empty endpoint yields unexported providers and a no-op Shutdown.
// Plain http endpoints and insecure=true disable TLS. log may be nil.
func NewProviders(ctx context.Context, endpoint, serviceName string, insecure bool, log *zap.Logger) (*Providers, error) {
	if log == nil {
		log = zap.NewNop()
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return &Providers{
			TracerProvider: sdktrace.NewTracerProvider(),
			MeterProvider:  metric.NewMeterProvider(),
			LoggerProvider: sdklog.NewLoggerProvider(),
			Shutdown:       func(context.Context) error { return nil },
		}, nil
	}
	target, tls, err := collectorTarget(endpoint)
	if err != nil {
		return nil, err
	}
	plaintext := insecure || !tls

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	))
	if err != nil {
		return nil, err
	}

	p := &Providers{}
	var stops []func(context.Context) error
	abort := func(err error) (*Providers, error) {
		for i := len(stops) - 1; i >= 0; i-- {
			_ = stops[i](ctx)
		}
		return nil, err
	}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(target)}
	if plaintext {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
	}
	traceExp, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return abort(err)
	}
	p.TracerProvider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp), sdktrace.WithResource(res))
	stops = append(stops, p.TracerProvider.Shutdown)

	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(target)}
	if plaintext {
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}
	metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return abort(err)
	}
	p.MeterProvider = metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExp, metric.WithInterval(metricExportInterval))),
	)
	stops = append(stops, p.MeterProvider.Shutdown)

	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(target)}
	if plaintext {
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}
	logExp, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		return abort(err)
	}
	p.LoggerProvider = sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)), sdklog.WithResource(res))
	stops = append(stops, p.LoggerProvider.Shutdown)

	p.Shutdown = func(ctx context.Context) error {
		var errList []error
		for i := len(stops) - 1; i >= 0; i-- {
			if err := stops[i](ctx); err != nil {
				log.Warn("telemetry: shutdown failed", zap.Error(err))
				errList = append(errList, err)
			}
		}
		return errors.Join(errList...)
	}
	return p, nil
}

// collectorTarget reduces endpoint to the host:port the gRPC exporters dial and reports whether it asked for TLS.
func collectorTarget(endpoint string) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: missing host", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

// SetGlobal installs the tracer and meter providers used by otelgrpc. The logger provider stays local to the event emitter.
func (p *Providers) SetGlobal() {
	if p.TracerProvider != nil {
		otel.SetTracerProvider(p.TracerProvider)
	}
	if p.MeterProvider != nil {
		otel.SetMeterProvider(p.MeterProvider)
	}
}
