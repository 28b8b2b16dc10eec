// Package tracelog persists emission-trace diagnostics for modflow graphs.
//
// A store records modflow.TraceEntry values as a graph dispatches events
// and lets the host inspect them after the fact: which module emitted on
// which channel, at what depth, caused by which event. Entries never carry
// payload values and cannot be replayed; this is a diagnostic journal, not
// an event store.
//
// Attach a store to a graph with modflow.WithTraceRecorder; entries are
// written only for emissions that pass the graph's debug filters.
package tracelog

import (
	"errors"

	"github.com/nicola-lissandrini/modflow/pkg/modflow"
)

// Store records and queries trace entries.
// Implementations must be safe for concurrent use.
type Store interface {
	modflow.TraceRecorder

	// List returns all recorded entries in insertion order.
	List() ([]modflow.TraceEntry, error)

	// ListChannel returns entries for one channel, in insertion order.
	ListChannel(channel string) ([]modflow.TraceEntry, error)

	// Clear removes all recorded entries.
	Clear() error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for trace stores.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("trace store closed")
)
