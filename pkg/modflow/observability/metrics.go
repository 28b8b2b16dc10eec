package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records modflow dispatch metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEmit records an emission on a channel with its fan-out width.
	RecordEmit(ctx context.Context, channel string, connections int)

	// RecordSlot records a single slot invocation with its duration and
	// error status.
	RecordSlot(ctx context.Context, channel, slot string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	emissions   metric.Int64Counter
	fanout      metric.Int64Histogram
	slotLatency metric.Float64Histogram
	slotErrors  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("modflow")

	emissions, err := meter.Int64Counter("modflow.emissions",
		metric.WithDescription("Number of channel emissions"),
	)
	if err != nil {
		return nil, err
	}

	fanout, err := meter.Int64Histogram("modflow.emission.fanout",
		metric.WithDescription("Connections dispatched per emission"),
	)
	if err != nil {
		return nil, err
	}

	slotLatency, err := meter.Float64Histogram("modflow.slot.latency_ms",
		metric.WithDescription("Slot invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	slotErrors, err := meter.Int64Counter("modflow.slot.errors",
		metric.WithDescription("Number of slot invocation errors"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		emissions:   emissions,
		fanout:      fanout,
		slotLatency: slotLatency,
		slotErrors:  slotErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordEmit records an emission.
func (m *otelMetrics) RecordEmit(ctx context.Context, channel string, connections int) {
	attrs := []attribute.KeyValue{
		attribute.String("channel", channel),
	}
	m.emissions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.fanout.Record(ctx, int64(connections), metric.WithAttributes(attrs...))
}

// RecordSlot records a slot invocation.
func (m *otelMetrics) RecordSlot(ctx context.Context, channel, slot string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("channel", channel),
		attribute.String("slot", slot),
	}
	m.slotLatency.Record(ctx, float64(duration.Microseconds())/1000.0, metric.WithAttributes(attrs...))
	if err != nil {
		m.slotErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
