package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		providers, err := NewProviders(ctx, endpoint, "taskhub", false, nil)
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
			t.Fatalf("NewProviders(%q): providers not all set: %+v", endpoint, providers)
		}
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("first shutdown: %v", err)
		}
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("second shutdown: %v", err)
		}
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{"invalid characters", "://invalid"},
		{"malformed URL", "http://[invalid"},
		{"missing host", "http://"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProviders(context.Background(), tt.endpoint, "taskhub", false, nil); err == nil {
				t.Errorf("NewProviders(%q) should return error", tt.endpoint)
			}
		})
	}
}

// OTLP gRPC exporters dial lazily, so construction succeeds without a collector.
func TestNewProviders_ValidEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		insecure bool
	}{
		{"host and port", "localhost:4317", false},
		{"http scheme", "http://localhost:4317", false},
		{"https scheme", "https://collector.example.com:4317", false},
		{"https with insecure override", "https://collector.example.com:4317", true},
		{"path is dropped", "http://localhost:4317/v1/traces", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			providers, err := NewProviders(ctx, tt.endpoint, "taskhub", tt.insecure, nil)
			if err != nil {
				t.Fatalf("NewProviders(%q): %v", tt.endpoint, err)
			}
			ctx, cancel := context.WithTimeout(ctx, 0)
			defer cancel()
			_ = providers.Shutdown(ctx)
		})
	}
}

func TestSetGlobal(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	providers, err := NewProviders(context.Background(), "", "taskhub", false, nil)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	providers.SetGlobal()
	if otel.GetTracerProvider() != providers.TracerProvider {
		t.Error("global TracerProvider not set")
	}
	if otel.GetMeterProvider() != providers.MeterProvider {
		t.Error("global MeterProvider not set")
	}

	// Nil providers leave the globals untouched.
	(&Providers{}).SetGlobal()
	if otel.GetTracerProvider() != providers.TracerProvider {
		t.Error("SetGlobal with nil TracerProvider replaced the global")
	}
}

func TestCollectorTarget(t *testing.T) {
	tests := []struct {
		endpoint string
		target   string
		tls      bool
	}{
		{"localhost:4317", "localhost:4317", false},
		{"http://collector:4317", "collector:4317", false},
		{"https://collector:4317/v1/traces", "collector:4317", true},
	}
	for _, tt := range tests {
		target, tls, err := collectorTarget(tt.endpoint)
		if err != nil {
			t.Fatalf("collectorTarget(%q): %v", tt.endpoint, err)
		}
		if target != tt.target || tls != tt.tls {
			t.Errorf("collectorTarget(%q) = %q, %v; want %q, %v", tt.endpoint, target, tls, tt.target, tt.tls)
		}
	}
}
