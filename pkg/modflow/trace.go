package modflow

import "time"

// TraceEntry is one diagnostic record of an emission or slot invocation.
// Entries carry wiring metadata only, never payload values; they cannot be
// used to replay events.
type TraceEntry struct {
	// EventID is the short id of the emission's event.
	EventID string
	// ParentID is the causing event's id, empty for a root emission.
	ParentID string
	// Depth is the emission's nesting depth.
	Depth int
	// Module is the emitting module.
	Module string
	// Channel is the emitted channel.
	Channel string
	// Slot is the invoked slot's name, empty for the emission record
	// itself.
	Slot string
	// Connections is the channel's fan-out width at emission time.
	Connections int
	// At is when the emission was created.
	At time.Time
}

// TraceRecorder persists trace entries. The tracelog package provides
// SQLite-backed and in-memory implementations; attach one with
// WithTraceRecorder. Recorder failures are logged and otherwise ignored:
// journaling must never alter dispatch.
type TraceRecorder interface {
	Record(e TraceEntry) error
}
