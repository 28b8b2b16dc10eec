package modflow

import (
	"log/slog"

	"github.com/nicola-lissandrini/modflow/pkg/modflow/observability"
)

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithLogger sets the logger used for debug tracing and per-module
// configuration reports. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder for emissions and slot invocations.
// Defaults to a no-op recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(g *Graph) {
		if m != nil {
			g.metrics = m
		}
	}
}

// WithTraceRecorder attaches a persistent journal for emission traces.
// Entries are recorded only for emissions that pass the debug filters.
func WithTraceRecorder(r TraceRecorder) Option {
	return func(g *Graph) {
		g.recorder = r
	}
}

// WithStrictSinkOwnership restricts sink channels to their declaring
// module, the policy of earlier revisions of this design. The default is
// permissive: any module may emit on a sink.
func WithStrictSinkOwnership() Option {
	return func(g *Graph) {
		g.strictSinks = true
	}
}
