// Package observability provides structured logging, metrics and tracing
// helpers for modflow graphs.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"strings"
)

// EnrichLogger adds graph context to a logger.
// Returns a new logger with graph and module fields.
func EnrichLogger(logger *slog.Logger, graph, module string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("graph", graph),
		slog.String("module", module),
	)
}

// LogEmit logs an emission before its connections are dispatched.
// Depth is rendered as a "+" prefix so nested emissions indent like a tree.
func LogEmit(logger *slog.Logger, depth int, module, channel string, connections int) {
	if logger == nil {
		return
	}
	logger.Debug("emit",
		slog.String("prefix", strings.Repeat("+", depth)),
		slog.String("module", module),
		slog.String("channel", channel),
		slog.Int("connections", connections),
	)
}

// LogSlotInvoke logs a single slot invocation during an emission fan-out.
func LogSlotInvoke(logger *slog.Logger, depth int, module, slot string, enabled bool) {
	if logger == nil {
		return
	}
	logger.Debug("invoke slot",
		slog.String("prefix", strings.Repeat("+", depth)),
		slog.String("module", module),
		slog.String("slot", slot),
		slog.Bool("enabled", enabled),
	)
}

// LogModuleConfigured logs successful per-module configuration at finalize.
func LogModuleConfigured(logger *slog.Logger, module string) {
	if logger == nil {
		return
	}
	logger.Debug("module configured",
		slog.String("module", module),
	)
}

// LogConfigSkipped logs a per-module configuration failure.
// The module is skipped; the rest of the graph still finalizes.
func LogConfigSkipped(logger *slog.Logger, module string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("module configuration failed, skipping",
		slog.String("module", module),
		slog.String("error", err.Error()),
	)
}

// LogGraphFinalized logs graph finalization.
func LogGraphFinalized(logger *slog.Logger, modules, channels int) {
	if logger == nil {
		return
	}
	logger.Info("graph finalized",
		slog.Int("modules", modules),
		slog.Int("channels", channels),
	)
}

// LogSourceCall logs an inbound boundary call on a source channel.
func LogSourceCall(logger *slog.Logger, channel string, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Error("source call failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("source call",
		slog.String("channel", channel),
	)
}
